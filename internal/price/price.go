package price

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"crypto-alerts-bot/internal/types"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Feed supplies current prices for a set of symbols. An entry is
// returned for every requested symbol; failures are carried per symbol
// inside the Quote rather than failing the whole fetch.
type Feed interface {
	Fetch(ctx context.Context, symbols []types.Symbol) map[types.Symbol]types.Quote
}

// BinanceFeed fetches spot prices from the Binance REST API, one
// request per symbol.
type BinanceFeed struct {
	baseURL string
	client  *http.Client
}

func NewBinanceFeed(baseURL string) *BinanceFeed {
	return &BinanceFeed{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func (f *BinanceFeed) Fetch(ctx context.Context, symbols []types.Symbol) map[types.Symbol]types.Quote {
	quotes := make(map[types.Symbol]types.Quote, len(symbols))
	for _, symbol := range symbols {
		p, err := f.fetchOne(ctx, symbol)
		if err != nil {
			log.Debugf("failed to fetch price for %s: %v", symbol, err)
			quotes[symbol] = types.Quote{Err: err}
			continue
		}
		quotes[symbol] = types.Quote{Price: p}
	}
	return quotes
}

func (f *BinanceFeed) fetchOne(ctx context.Context, symbol types.Symbol) (float64, error) {
	url := f.baseURL + "/api/v3/ticker/price?symbol=" + string(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "could not build ticker request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "ticker request for %s failed", symbol)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("ticker request for %s returned status %d", symbol, resp.StatusCode)
	}

	var ticker tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return 0, errors.Wrapf(err, "could not decode ticker response for %s", symbol)
	}

	p, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "could not parse price %q for %s", ticker.Price, symbol)
	}
	return p, nil
}
