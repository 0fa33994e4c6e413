package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/db"
	"github.com/kailas-cloud/genedex/internal/metrics"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds circuit breaker thresholds.
type Config struct {
	Name             string
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

func (c Config) normalize() Config {
	if c.Name == "" {
		c.Name = "search-backend"
	}
	if c.MinRequests == 0 {
		c.MinRequests = 10
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = 0.5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenRequests == 0 {
		c.HalfOpenRequests = 1
	}
	return c
}

// Store guards a db.Store with a circuit breaker. Only connectivity failures
// count against the breaker; rejected queries and missing documents do not.
// While open, calls fail fast with db.ErrUnavailable. Nothing is retried.
type Store struct {
	next db.Store
	cb   *gobreaker.CircuitBreaker[any]
}

// New wraps next.
func New(next db.Store, cfg Config, logger *zap.Logger) *Store {
	cfg = cfg.normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, db.ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerStateChangesTotal.WithLabelValues(name, to.String()).Inc()
			logger.Warn("circuit_breaker_state_change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &Store{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// State returns the current breaker state.
func (s *Store) State() gobreaker.State { return s.cb.State() }

func (s *Store) run(op string, fn func() (any, error)) (any, error) {
	v, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	return v, err
}

// Ping bypasses the breaker so health checks observe the real backend.
func (s *Store) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Search implements db.Searcher.
func (s *Store) Search(ctx context.Context, index string, body []byte) (*db.SearchResponse, error) {
	v, err := s.run(db.OpSearch, func() (any, error) { return s.next.Search(ctx, index, body) })
	if err != nil {
		return nil, err
	}
	return v.(*db.SearchResponse), nil
}

// MultiSearch implements db.MultiSearcher.
func (s *Store) MultiSearch(ctx context.Context, index string, body []byte) ([]*db.SearchResponse, error) {
	v, err := s.run(db.OpMultiSearch, func() (any, error) { return s.next.MultiSearch(ctx, index, body) })
	if err != nil {
		return nil, err
	}
	return v.([]*db.SearchResponse), nil
}

// OpenScroll implements db.Scroller.
func (s *Store) OpenScroll(
	ctx context.Context, index string, body []byte, keepAlive time.Duration,
) (*db.SearchResponse, error) {
	v, err := s.run(db.OpOpenScroll, func() (any, error) { return s.next.OpenScroll(ctx, index, body, keepAlive) })
	if err != nil {
		return nil, err
	}
	return v.(*db.SearchResponse), nil
}

// Scroll implements db.Scroller.
func (s *Store) Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*db.SearchResponse, error) {
	v, err := s.run(db.OpScroll, func() (any, error) { return s.next.Scroll(ctx, scrollID, keepAlive) })
	if err != nil {
		return nil, err
	}
	return v.(*db.SearchResponse), nil
}

// ClearScroll implements db.Scroller.
func (s *Store) ClearScroll(ctx context.Context, scrollID string) error {
	_, err := s.run(db.OpClearScroll, func() (any, error) { return nil, s.next.ClearScroll(ctx, scrollID) })
	return err
}

// GetDocument implements db.DocumentGetter.
func (s *Store) GetDocument(ctx context.Context, index, id string, fields []string) (*db.Hit, error) {
	v, err := s.run(db.OpGet, func() (any, error) { return s.next.GetDocument(ctx, index, id, fields) })
	if err != nil {
		return nil, err
	}
	return v.(*db.Hit), nil
}

// MultiGet implements db.MultiGetter.
func (s *Store) MultiGet(ctx context.Context, index string, ids []string, fields []string) ([]*db.Hit, error) {
	v, err := s.run(db.OpMultiGet, func() (any, error) { return s.next.MultiGet(ctx, index, ids, fields) })
	if err != nil {
		return nil, err
	}
	return v.([]*db.Hit), nil
}

// Mapping implements db.MappingReader.
func (s *Store) Mapping(ctx context.Context, index string) (*db.Mapping, error) {
	v, err := s.run(db.OpMapping, func() (any, error) { return s.next.Mapping(ctx, index) })
	if err != nil {
		return nil, err
	}
	return v.(*db.Mapping), nil
}

// Close closes the wrapped store.
func (s *Store) Close() { s.next.Close() }

// WaitForReady delegates to the wrapped store.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return s.next.WaitForReady(ctx, timeout)
}
