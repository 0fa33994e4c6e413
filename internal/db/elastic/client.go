package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/genedex/internal/db"
	"github.com/kailas-cloud/genedex/internal/metrics"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addrs          []string
	Username       string
	Password       string
	APIKey         string
	MaxRetries     int // 0 disables transport retries
	RequestTimeout time.Duration
	Transport      http.RoundTripper
}

// Store implements db.Store over the Elasticsearch REST API.
type Store struct {
	client  *elasticsearch.Client
	timeout time.Duration
}

// NewStore creates an Elasticsearch store. No request is sent until first use.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		APIKey:       cfg.APIKey,
		Transport:    cfg.Transport,
		DisableRetry: cfg.MaxRetries <= 0,
		MaxRetries:   cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, timeout: cfg.RequestTimeout}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: unavailable(err)}
	}
	defer drain(res)
	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%w: status %d", db.ErrUnavailable, res.StatusCode)}
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	if t, ok := s.client.Transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for search backend: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// observe records one backend round trip.
func observe(op string, start time.Time, err error) {
	record(op, start, statusLabel(err))
}

// observeSearch records a search round trip. A query the cluster refused is
// returned as a value, so it is labelled from the response.
func observeSearch(op string, start time.Time, err error, rejected bool) {
	status := statusLabel(err)
	if err == nil && rejected {
		status = "rejected"
	}
	record(op, start, status)
}

func record(op string, start time.Time, status string) {
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.BackendRequestsTotal.WithLabelValues(op, status).Inc()
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, db.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, db.ErrScrollIDNotFound):
		return "expired"
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrIndexNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// unavailable marks a transport failure. Caller cancellation is kept as is.
func unavailable(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", db.ErrUnavailable, err)
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}

type errorEnvelope struct {
	Error  *db.ErrorCause `json:"error"`
	Status int            `json:"status"`
}

// decodeError reads an error body. Gateway and cluster availability failures
// map to db.ErrUnavailable; everything else is returned as the backend's cause.
func decodeError(res *esapi.Response) (*db.ErrorCause, error) {
	var env errorEnvelope
	_ = json.NewDecoder(res.Body).Decode(&env)
	if res.StatusCode == http.StatusBadGateway ||
		res.StatusCode == http.StatusServiceUnavailable ||
		res.StatusCode == http.StatusGatewayTimeout {
		return env.Error, fmt.Errorf("%w: status %d", db.ErrUnavailable, res.StatusCode)
	}
	if env.Error == nil {
		env.Error = &db.ErrorCause{Type: "http_error", Reason: res.Status()}
	}
	return env.Error, nil
}

func isIndexMissing(cause *db.ErrorCause) bool {
	return cause != nil && cause.Type == "index_not_found_exception"
}

func isScrollMissing(cause *db.ErrorCause) bool {
	if cause == nil {
		return false
	}
	if cause.Type == "search_context_missing_exception" {
		return true
	}
	for _, rc := range cause.RootCause {
		if rc.Type == "search_context_missing_exception" {
			return true
		}
	}
	return false
}
