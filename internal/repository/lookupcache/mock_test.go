package lookupcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/db"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	"github.com/kailas-cloud/genedex/internal/domain/result"
)

type mockLookuper struct {
	lookup result.Lookup
	err    error
	calls  int
}

func (m *mockLookuper) Lookup(_ context.Context, _, id string, _ query.Body) (result.Lookup, error) {
	m.calls++
	if m.err != nil {
		return result.Lookup{}, m.err
	}
	l := m.lookup
	l.Query = id
	return l, nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCache(t *testing.T, inner *mockLookuper) (*CachedLookuper, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, time.Hour, nil, zap.NewNop()), ms
}
