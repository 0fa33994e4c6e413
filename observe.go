package genedex

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "genedex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status (ok, rejected, error).",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "genedex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("genedex: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("genedex: register metric: %w", err)
	}
	return nil
}

// observer logs and counts SDK operations. A nil observer is a no-op.
type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// Operation statuses. A query the cluster refused is "rejected": the call
// itself succeeded and the refusal is carried in the result.
const (
	statusOK       = "ok"
	statusRejected = "rejected"
	statusError    = "error"
)

func (o *observer) observe(op string, start time.Time, err error, rejected *QueryError) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	status := statusOK
	switch {
	case err != nil:
		status = statusError
	case rejected != nil:
		status = statusRejected
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	switch status {
	case statusError:
		o.logger.Warn("operation failed", zap.String("op", op), zap.Duration("duration", dur), zap.Error(err))
	case statusRejected:
		o.logger.Info("query rejected",
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.String("type", rejected.Type),
			zap.String("reason", rejected.Reason),
		)
	default:
		o.logger.Debug("operation completed", zap.String("op", op), zap.Duration("duration", dur))
	}
}

func pageRejection(p *Page) *QueryError {
	if p == nil {
		return nil
	}
	return p.Err
}

// lookupsRejection returns the first refused slot of a batch.
func lookupsRejection(ls []Lookup) *QueryError {
	for _, l := range ls {
		if l.Err != nil {
			return l.Err
		}
	}
	return nil
}
