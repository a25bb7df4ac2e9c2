package watch

import (
	"context"
	"time"

	"crypto-alerts-bot/internal/metrics"
	"crypto-alerts-bot/internal/price"
	"crypto-alerts-bot/internal/types"

	log "github.com/sirupsen/logrus"
)

// BroadcastPeriod is the pause between snapshot broadcasts, measured
// from the end of each broadcast's work. Only the first broadcast is
// wall-clock aligned; latency drift after that is accepted.
const BroadcastPeriod = 30 * time.Minute

// Subscribers lists the chats that receive price broadcasts.
type Subscribers interface {
	AllSubscriberChats(ctx context.Context) ([]int64, error)
}

// Broadcaster sends the half-hourly price snapshot to every subscriber.
type Broadcaster struct {
	subscribers Subscribers
	feed        price.Feed
	notifier    Notifier
	period      time.Duration
	now         func() time.Time
}

func NewBroadcaster(subscribers Subscribers, feed price.Feed, notifier Notifier) *Broadcaster {
	return &Broadcaster{
		subscribers: subscribers,
		feed:        feed,
		notifier:    notifier,
		period:      BroadcastPeriod,
		now:         time.Now,
	}
}

// NextMark returns the next wall-clock :00 or :30 boundary strictly
// after now.
func NextMark(now time.Time) time.Time {
	if now.Minute() < 30 {
		return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 30, 0, 0, now.Location())
	}
	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())
}

// Run waits for the next aligned mark, then broadcasts on a fixed
// period until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	mark := NextMark(b.now())
	wait := mark.Sub(b.now())
	log.Debugf("waiting %s until first broadcast at %s", wait.Round(time.Second), mark.Format("15:04:05"))

	select {
	case <-ctx.Done():
		return nil
	case <-time.After(wait):
	}

	for {
		b.broadcast(ctx)

		select {
		case <-ctx.Done():
			log.Debug("price broadcaster stopped")
			return nil
		case <-time.After(b.period):
		}
	}
}

func (b *Broadcaster) broadcast(ctx context.Context) {
	quotes := b.feed.Fetch(ctx, types.SupportedSymbols)
	msg := price.Snapshot(quotes, b.now())

	chatIDs, err := b.subscribers.AllSubscriberChats(ctx)
	if err != nil {
		log.Errorf("failed to list subscribers, skipping broadcast: %v", err)
		return
	}

	for _, chatID := range chatIDs {
		if err := b.notifier.Notify(chatID, msg); err != nil {
			metrics.DeliveryErrors.Inc()
			log.Errorf("could not send broadcast to %d: %v", chatID, err)
			continue
		}
		metrics.BroadcastsSent.Inc()
	}
}
