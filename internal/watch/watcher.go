package watch

import (
	"context"
	"fmt"
	"time"

	"crypto-alerts-bot/internal/engine"
	"crypto-alerts-bot/internal/metrics"
	"crypto-alerts-bot/internal/price"
	"crypto-alerts-bot/internal/types"
	"crypto-alerts-bot/lib/helpers"
	"crypto-alerts-bot/lib/translation"

	log "github.com/sirupsen/logrus"
)

// WatchInterval is how long the watch loop pauses between cycles,
// measured from the end of each cycle's work.
const WatchInterval = 10 * time.Second

// Notifier delivers a formatted message to one chat.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// Watcher drives the poll-evaluate-notify cycle for price alerts.
type Watcher struct {
	engine   *engine.Engine
	feed     price.Feed
	notifier Notifier
	interval time.Duration
}

func NewWatcher(eng *engine.Engine, feed price.Feed, notifier Notifier) *Watcher {
	return &Watcher{
		engine:   eng,
		feed:     feed,
		notifier: notifier,
		interval: WatchInterval,
	}
}

// Run cycles until ctx is cancelled. Feed and delivery failures are
// contained per cycle and per recipient; they never stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	log.Debug("alert watcher started")
	for {
		w.checkAlerts(ctx)

		select {
		case <-ctx.Done():
			log.Debug("alert watcher stopped")
			return nil
		case <-time.After(w.interval):
		}
	}
}

func (w *Watcher) checkAlerts(ctx context.Context) {
	quotes := w.feed.Fetch(ctx, types.SupportedSymbols)
	for symbol, quote := range quotes {
		if quote.Err != nil {
			metrics.FeedErrors.WithLabelValues(string(symbol)).Inc()
		}
	}

	events, err := w.engine.EvaluateAndFire(ctx, quotes)
	if err != nil {
		log.Errorf("alert evaluation failed, skipping cycle: %v", err)
		return
	}

	for _, event := range events {
		if err := w.notifier.Notify(event.ChatID, FireMessage(event)); err != nil {
			metrics.DeliveryErrors.Inc()
			log.Errorf("failed to send alert notification to %d: %v", event.ChatID, err)
			continue
		}
		metrics.AlertsFired.Inc()
	}
}

// FireMessage renders the MarkdownV2 notification for one crossing.
func FireMessage(event types.FireEvent) string {
	verb := translation.Translate("has risen above")
	if event.Direction == types.Below {
		verb = translation.Translate("has fallen below")
	}

	return fmt.Sprintf(
		"🚨 *%s*\n\n*%s* %s *$%s*\n%s: *$%s*",
		helpers.EscapeMarkdownV2(translation.Translate("Price Alert Triggered")),
		event.Symbol,
		helpers.EscapeMarkdownV2(verb),
		helpers.FormatPriceUS(event.Target, true),
		helpers.EscapeMarkdownV2(translation.Translate("Current Price")),
		helpers.FormatPriceUS(event.Price, true),
	)
}
