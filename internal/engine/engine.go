package engine

import (
	"context"
	"strconv"

	"crypto-alerts-bot/internal/price"
	"crypto-alerts-bot/internal/types"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrInvalidSymbol means the requested pair is outside the supported set.
	ErrInvalidSymbol = errors.New("unsupported symbol")
	// ErrPriceUnavailable means the feed could not supply a reference price.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrNotFound means the cancellation target does not exist.
	ErrNotFound = errors.New("alert not found")
)

// Store is the persistence surface the engine needs.
type Store interface {
	InsertAlert(ctx context.Context, alert *types.Alert) error
	ActiveAlerts(ctx context.Context) ([]types.Alert, error)
	ActiveAlertsByChat(ctx context.Context, chatID int64) ([]types.Alert, error)
	MarkTriggered(ctx context.Context, alertID int64) error
	DeleteAlert(ctx context.Context, alertID int64) (bool, error)
	DeleteActiveAlertsBySymbol(ctx context.Context, chatID int64, symbol types.Symbol) (int64, error)
}

// Engine owns the alert lifecycle: creation, crossing evaluation,
// one-shot vs repeating semantics and cancellation.
type Engine struct {
	store Store
	feed  price.Feed
}

func New(store Store, feed price.Feed) *Engine {
	return &Engine{store: store, feed: feed}
}

// CreateAlert registers a threshold watch. The direction is decided
// once, against the price at creation time: ABOVE only when the target
// is strictly greater than the current price, so a target equal to the
// current price becomes BELOW.
func (e *Engine) CreateAlert(ctx context.Context, chatID int64, symbol types.Symbol, target float64, repeat bool) (*types.Alert, error) {
	if !types.IsSupported(symbol) {
		return nil, errors.Wrapf(ErrInvalidSymbol, "%s", symbol)
	}
	if target <= 0 {
		return nil, errors.Errorf("target price must be positive, got %f", target)
	}

	quote, ok := e.feed.Fetch(ctx, []types.Symbol{symbol})[symbol]
	if !ok || quote.Err != nil {
		return nil, errors.Wrapf(ErrPriceUnavailable, "%s", symbol)
	}

	direction := types.Below
	if target > quote.Price {
		direction = types.Above
	}

	alert := &types.Alert{
		ChatID:    chatID,
		Symbol:    symbol,
		Target:    target,
		Direction: direction,
		Repeat:    repeat,
	}
	if err := e.store.InsertAlert(ctx, alert); err != nil {
		return nil, errors.Wrap(err, "could not save alert")
	}

	return alert, nil
}

// CreateResult is the outcome for one target price of a multi-price
// create request. Exactly one of Alert and Err is set.
type CreateResult struct {
	Input string
	Alert *types.Alert
	Err   error
}

// CreateAlerts registers one alert per raw target price. Each price is
// validated on its own: a malformed entry yields a failed result for
// that entry without discarding its siblings. The reference price is
// fetched once and shared across the batch.
func (e *Engine) CreateAlerts(ctx context.Context, chatID int64, symbol types.Symbol, rawTargets []string, repeat bool) ([]CreateResult, error) {
	if !types.IsSupported(symbol) {
		return nil, errors.Wrapf(ErrInvalidSymbol, "%s", symbol)
	}

	quote, ok := e.feed.Fetch(ctx, []types.Symbol{symbol})[symbol]
	if !ok || quote.Err != nil {
		return nil, errors.Wrapf(ErrPriceUnavailable, "%s", symbol)
	}

	results := make([]CreateResult, 0, len(rawTargets))
	for _, raw := range rawTargets {
		target, err := strconv.ParseFloat(raw, 64)
		if err != nil || target <= 0 {
			results = append(results, CreateResult{
				Input: raw,
				Err:   errors.Errorf("invalid price value: %s", raw),
			})
			continue
		}

		direction := types.Below
		if target > quote.Price {
			direction = types.Above
		}

		alert := &types.Alert{
			ChatID:    chatID,
			Symbol:    symbol,
			Target:    target,
			Direction: direction,
			Repeat:    repeat,
		}
		if err := e.store.InsertAlert(ctx, alert); err != nil {
			return results, errors.Wrap(err, "could not save alert")
		}
		results = append(results, CreateResult{Input: raw, Alert: alert})
	}

	return results, nil
}

// ListActiveAlerts returns the chat's non-triggered alerts in store order.
func (e *Engine) ListActiveAlerts(ctx context.Context, chatID int64) ([]types.Alert, error) {
	return e.store.ActiveAlertsByChat(ctx, chatID)
}

// CancelAlert deletes an alert by id. The inline cancel button routes
// here without an ownership check; the button is only ever rendered
// into the owner's own chat, which is the trust assumption.
func (e *Engine) CancelAlert(ctx context.Context, alertID int64) error {
	deleted, err := e.store.DeleteAlert(ctx, alertID)
	if err != nil {
		return errors.Wrap(err, "could not delete alert")
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// CancelAlertsBySymbol removes all of the chat's active alerts for one
// symbol. Zero matches is a valid outcome, not an error.
func (e *Engine) CancelAlertsBySymbol(ctx context.Context, chatID int64, symbol types.Symbol) (int64, error) {
	if !types.IsSupported(symbol) {
		return 0, errors.Wrapf(ErrInvalidSymbol, "%s", symbol)
	}
	return e.store.DeleteActiveAlertsBySymbol(ctx, chatID, symbol)
}

// EvaluateAndFire walks every active alert against the given prices
// and returns the crossings to notify. One-shot alerts are marked
// triggered here, before any notification goes out, so a delivery
// failure never resurrects them. Alerts whose symbol has no usable
// quote this round are skipped without side effect.
func (e *Engine) EvaluateAndFire(ctx context.Context, quotes map[types.Symbol]types.Quote) ([]types.FireEvent, error) {
	alerts, err := e.store.ActiveAlerts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch alerts")
	}

	var events []types.FireEvent
	for _, alert := range alerts {
		quote, ok := quotes[alert.Symbol]
		if !ok || quote.Err != nil {
			continue
		}

		crossed := false
		switch alert.Direction {
		case types.Above:
			crossed = quote.Price >= alert.Target
		case types.Below:
			crossed = quote.Price <= alert.Target
		}
		if !crossed {
			continue
		}

		if !alert.Repeat {
			if err := e.store.MarkTriggered(ctx, alert.ID); err != nil {
				log.Errorf("failed to mark alert %d triggered: %v", alert.ID, err)
				continue
			}
		}

		events = append(events, types.FireEvent{
			ChatID:    alert.ChatID,
			Symbol:    alert.Symbol,
			Direction: alert.Direction,
			Target:    alert.Target,
			Price:     quote.Price,
		})
	}

	return events, nil
}
