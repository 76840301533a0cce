package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_messages_total",
		Help: "Incoming text messages by detected intent",
	}, []string{"intent"})

	EventsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_events_created_total",
		Help: "Calendar events created",
	})

	EventCreateErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_event_create_errors_total",
		Help: "Calendar insert failures",
	})

	ReplyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_reply_errors_total",
		Help: "Failures sending replies to Telegram",
	})

	NLURequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nlu_request_duration_seconds",
		Help:    "Duration of NLU requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	KeepalivePings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keepalive_pings_total",
		Help: "Self pings by outcome",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(
		MessagesTotal,
		EventsCreated,
		EventCreateErrors,
		ReplyErrors,
		NLURequestDuration,
		KeepalivePings,
	)
}

// ObserveNLU records one NLU round trip.
func ObserveNLU(status string, d time.Duration) {
	NLURequestDuration.WithLabelValues(status).Observe(d.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
