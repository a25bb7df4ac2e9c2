package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CommandsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crypto_alerts",
		Subsystem: "telegram_bot",
		Name:      "commands_processed",
		Help:      "The total number of processed commands",
	})
	AlertsFired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crypto_alerts",
		Subsystem: "telegram_bot",
		Name:      "alerts_fired",
		Help:      "The total number of alert crossings notified",
	})
	BroadcastsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crypto_alerts",
		Subsystem: "telegram_bot",
		Name:      "broadcasts_sent",
		Help:      "The total number of price snapshot messages delivered",
	})
	FeedErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crypto_alerts",
		Subsystem: "telegram_bot",
		Name:      "feed_errors",
		Help:      "The total number of per-symbol price fetch failures",
	}, []string{"symbol"})
	DeliveryErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crypto_alerts",
		Subsystem: "telegram_bot",
		Name:      "delivery_errors",
		Help:      "The total number of failed notification sends",
	})
)

func init() {
	prometheus.MustRegister(CommandsProcessed)
	prometheus.MustRegister(AlertsFired)
	prometheus.MustRegister(BroadcastsSent)
	prometheus.MustRegister(FeedErrors)
	prometheus.MustRegister(DeliveryErrors)
}
