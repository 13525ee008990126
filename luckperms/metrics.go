package luckperms

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// clientMetrics is nil when metrics are disabled; its methods accept a nil receiver.
type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer, logger zerolog.Logger) *clientMetrics {
	if reg == nil {
		return nil
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "luckperms_client_requests_total",
		Help: "Total number of LuckPerms API requests",
	}, []string{"operation", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "luckperms_client_request_duration_seconds",
		Help:    "LuckPerms API request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	m := &clientMetrics{}
	var err error
	if m.requests, err = registerOrReuse(reg, requests); err != nil {
		logger.Warn().Err(err).Msg("Failed to register LuckPerms client metrics")
		return nil
	}
	if m.duration, err = registerOrReuse(reg, duration); err != nil {
		logger.Warn().Err(err).Msg("Failed to register LuckPerms client metrics")
		return nil
	}
	return m
}

// registerOrReuse lets several clients share one registry
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

func (m *clientMetrics) observe(op, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, status).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}
