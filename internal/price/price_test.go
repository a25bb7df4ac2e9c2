package price

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crypto-alerts-bot/internal/types"
)

func TestBinanceFeed_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "ETHFIUSDT" {
			http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"symbol":%q,"price":"123.4500"}`, symbol)
	}))
	defer server.Close()

	feed := NewBinanceFeed(server.URL)
	quotes := feed.Fetch(context.Background(), types.SupportedSymbols)

	if len(quotes) != len(types.SupportedSymbols) {
		t.Fatalf("got %d quotes, want an entry per symbol", len(quotes))
	}

	for _, symbol := range []types.Symbol{"BTCUSDT", "ETHUSDT", "SOLUSDT"} {
		quote := quotes[symbol]
		if quote.Err != nil {
			t.Errorf("%s: unexpected error %v", symbol, quote.Err)
		}
		if quote.Price != 123.45 {
			t.Errorf("%s: price = %f, want 123.45", symbol, quote.Price)
		}
	}

	if quotes["ETHFIUSDT"].Err == nil {
		t.Error("expected per-symbol error for ETHFIUSDT")
	}
}

func TestBinanceFeed_FetchServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	feed := NewBinanceFeed(server.URL)
	quotes := feed.Fetch(context.Background(), []types.Symbol{"BTCUSDT"})

	if quotes["BTCUSDT"].Err == nil {
		t.Error("expected error when the feed is unreachable")
	}
}

func TestSnapshot(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	quotes := map[types.Symbol]types.Quote{
		"BTCUSDT":   {Price: 104532.1},
		"ETHUSDT":   {Price: 2511.5},
		"SOLUSDT":   {Price: 144.3312},
		"ETHFIUSDT": {Err: fmt.Errorf("binance 400")},
	}

	msg := Snapshot(quotes, now)

	if !strings.Contains(msg, "Crypto Price Update") {
		t.Errorf("missing header: %q", msg)
	}
	if !strings.Contains(msg, "14:30") {
		t.Errorf("missing timestamp: %q", msg)
	}
	if !strings.Contains(msg, "`$104,532.10`") {
		t.Errorf("large price should use 2 decimals with separators: %q", msg)
	}
	if !strings.Contains(msg, "`$144.3312`") {
		t.Errorf("small price should use 4 decimals: %q", msg)
	}
	if !strings.Contains(msg, "Error fetching price") {
		t.Errorf("unavailable symbol must render an error marker: %q", msg)
	}

	// every supported symbol appears, none is silently dropped
	for _, symbol := range types.SupportedSymbols {
		if !strings.Contains(msg, string(symbol)) {
			t.Errorf("symbol %s missing from snapshot: %q", symbol, msg)
		}
	}
}
