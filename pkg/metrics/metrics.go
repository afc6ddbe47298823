package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var HistogramBuckets = []float64{
	// fast responses
	5, 10, 25, 50, 75, 100, 150, 200, 300, 400, 500,

	// slow database or Adyen round trips
	750, 1000, 1500, 2000, 3000, 5000, 7500, 10000,
}

// Metric describes a collector by name, help text, type and label names.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric builds the prometheus.Collector matching m.Type. Unknown types yield nil.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "counter":
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "gauge_vec":
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "gauge":
		return prometheus.NewGauge(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets}, m.Args)
	case "histogram":
		return prometheus.NewHistogram(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets})
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "summary":
		return prometheus.NewSummary(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	}
	return nil
}

// register adds c to reg, reusing the collector already registered under the
// same descriptor.
func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

var notificationTotal = &Metric{
	ID:          "notificationTotal",
	Name:        "notification_total",
	Description: "Adyen notification items handled, partitioned by event code and outcome.",
	Type:        "counter_vec",
	Args:        []string{"event_code", "outcome"},
}

var notificationProcess = &Metric{
	ID:          "notificationProcess",
	Name:        "notification_process_ms",
	Description: "Time spent handling one notification item in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"event_code"},
}

// Notification outcomes.
const (
	OutcomeHandled = "handled"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Notifications records per-item webhook processing metrics. A nil value is a no-op.
type Notifications struct {
	total *prometheus.CounterVec
	dur   *prometheus.HistogramVec
}

func NewNotifications(reg prometheus.Registerer) (*Notifications, error) {
	total, err := register(reg, NewMetric(notificationTotal, ""))
	if err != nil {
		return nil, err
	}
	dur, err := register(reg, NewMetric(notificationProcess, ""))
	if err != nil {
		return nil, err
	}
	return &Notifications{total: total.(*prometheus.CounterVec), dur: dur.(*prometheus.HistogramVec)}, nil
}

func (n *Notifications) Observe(eventCode, outcome string, elapsed time.Duration) {
	if n == nil {
		return
	}
	n.total.WithLabelValues(eventCode, outcome).Inc()
	n.dur.WithLabelValues(eventCode).Observe(float64(elapsed) / float64(time.Millisecond))
}

const (
	RefererKey = "X-Referer"
)

var Module = fx.Options(
	fx.Provide(
		func() prometheus.Registerer { return prometheus.DefaultRegisterer },
		func() prometheus.Gatherer { return prometheus.DefaultGatherer },
		NewNotifications,
	),
)
