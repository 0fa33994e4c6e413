package gene

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/genedex/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn      func(ctx context.Context, index string, body []byte) (*db.SearchResponse, error)
	multiSearchFn func(ctx context.Context, index string, body []byte) ([]*db.SearchResponse, error)
	openScrollFn  func(ctx context.Context, index string, body []byte, keepAlive time.Duration) (*db.SearchResponse, error)
	scrollFn      func(ctx context.Context, scrollID string, keepAlive time.Duration) (*db.SearchResponse, error)
	clearScrollFn func(ctx context.Context, scrollID string) error
	getFn         func(ctx context.Context, index, id string, fields []string) (*db.Hit, error)
	multiGetFn    func(ctx context.Context, index string, ids []string, fields []string) ([]*db.Hit, error)
	mappingFn     func(ctx context.Context, index string) (*db.Mapping, error)
}

func (m *mockStore) Search(ctx context.Context, index string, body []byte) (*db.SearchResponse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body)
	}
	return &db.SearchResponse{}, nil
}

func (m *mockStore) MultiSearch(ctx context.Context, index string, body []byte) ([]*db.SearchResponse, error) {
	if m.multiSearchFn != nil {
		return m.multiSearchFn(ctx, index, body)
	}
	return nil, nil
}

func (m *mockStore) OpenScroll(
	ctx context.Context, index string, body []byte, keepAlive time.Duration,
) (*db.SearchResponse, error) {
	if m.openScrollFn != nil {
		return m.openScrollFn(ctx, index, body, keepAlive)
	}
	return &db.SearchResponse{}, nil
}

func (m *mockStore) Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*db.SearchResponse, error) {
	if m.scrollFn != nil {
		return m.scrollFn(ctx, scrollID, keepAlive)
	}
	return &db.SearchResponse{}, nil
}

func (m *mockStore) ClearScroll(ctx context.Context, scrollID string) error {
	if m.clearScrollFn != nil {
		return m.clearScrollFn(ctx, scrollID)
	}
	return nil
}

func (m *mockStore) GetDocument(ctx context.Context, index, id string, fields []string) (*db.Hit, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id, fields)
	}
	return nil, &db.Error{Op: db.OpGet, Err: db.ErrNotFound}
}

func (m *mockStore) MultiGet(ctx context.Context, index string, ids []string, fields []string) ([]*db.Hit, error) {
	if m.multiGetFn != nil {
		return m.multiGetFn(ctx, index, ids, fields)
	}
	return make([]*db.Hit, len(ids)), nil
}

func (m *mockStore) Mapping(ctx context.Context, index string) (*db.Mapping, error) {
	if m.mappingFn != nil {
		return m.mappingFn(ctx, index)
	}
	return &db.Mapping{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, nil), ms
}

func hit(id string, source map[string]any) db.Hit {
	return db.Hit{Index: "genes", ID: id, Source: source}
}

func ptr[T any](v T) *T { return &v }
