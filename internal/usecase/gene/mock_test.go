package gene

import (
	"context"
	"strconv"
	"time"

	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	"github.com/kailas-cloud/genedex/internal/domain/result"
)

// mockRepo implements Repository with overridable function fields.
type mockRepo struct {
	searchFn     func(ctx context.Context, index string, body query.Body) (*result.Page, error)
	lookupFn     func(ctx context.Context, index, id string, body query.Body) (result.Lookup, error)
	lookupManyFn func(ctx context.Context, index string, batch query.Batch) ([]result.Lookup, error)
	getFn        func(ctx context.Context, index, id string, fields []string) (result.Lookup, error)
	getManyFn    func(ctx context.Context, index string, ids []string, fields []string) ([]result.Lookup, error)
	metadataFn   func(ctx context.Context, index string) (result.Metadata, error)

	*corpus
}

func (m *mockRepo) Search(ctx context.Context, index string, body query.Body) (*result.Page, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body)
	}
	return &result.Page{}, nil
}

func (m *mockRepo) Lookup(ctx context.Context, index, id string, body query.Body) (result.Lookup, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, index, id, body)
	}
	return result.Lookup{Query: id}, nil
}

func (m *mockRepo) LookupMany(ctx context.Context, index string, batch query.Batch) ([]result.Lookup, error) {
	if m.lookupManyFn != nil {
		return m.lookupManyFn(ctx, index, batch)
	}
	out := make([]result.Lookup, batch.Len())
	for i, id := range batch.IDs {
		out[i] = result.Lookup{Query: id}
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, index, id string, fields []string) (result.Lookup, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id, fields)
	}
	return result.Lookup{Query: id}, nil
}

func (m *mockRepo) GetMany(ctx context.Context, index string, ids []string, fields []string) ([]result.Lookup, error) {
	if m.getManyFn != nil {
		return m.getManyFn(ctx, index, ids, fields)
	}
	out := make([]result.Lookup, len(ids))
	for i, id := range ids {
		out[i] = result.Lookup{Query: id}
	}
	return out, nil
}

func (m *mockRepo) Metadata(ctx context.Context, index string) (result.Metadata, error) {
	if m.metadataFn != nil {
		return m.metadataFn(ctx, index)
	}
	return result.Metadata{}, nil
}

// corpus is an in-memory scroll backend over n numbered documents.
type corpus struct {
	n         int
	batchSize int
	pos       int
	cursor    int
	opened    int
	scrolls   int
	cleared   []string
	lastIndex string
	lastBody  query.Body
	openErr   error
	scrollErr error
}

func newCorpus(n, batchSize int) *corpus {
	return &corpus{n: n, batchSize: batchSize}
}

func (c *corpus) next() *result.ScrollPage {
	end := min(c.pos+c.batchSize, c.n)
	docs := make([]gene.Document, 0, end-c.pos)
	for i := c.pos; i < end; i++ {
		docs = append(docs, gene.Document{gene.KeyID: strconv.Itoa(i + 1)})
	}
	c.pos = end
	c.cursor++
	return &result.ScrollPage{ScrollID: "cursor-" + strconv.Itoa(c.cursor), Docs: docs, Total: c.n}
}

func (c *corpus) OpenScroll(_ context.Context, index string, body query.Body, _ time.Duration) (*result.ScrollPage, error) {
	c.opened++
	c.lastIndex = index
	c.lastBody = body
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.next(), nil
}

func (c *corpus) Scroll(_ context.Context, scrollID string, _ time.Duration) (*result.ScrollPage, error) {
	c.scrolls++
	if c.scrollErr != nil {
		return nil, c.scrollErr
	}
	if scrollID != "cursor-"+strconv.Itoa(c.cursor) {
		return nil, context.DeadlineExceeded
	}
	return c.next(), nil
}

func (c *corpus) ClearScroll(_ context.Context, scrollID string) error {
	c.cleared = append(c.cleared, scrollID)
	return nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestService(cfg Config, opts ...Option) (*Service, *mockRepo) {
	repo := &mockRepo{corpus: newCorpus(0, 1)}
	return New(repo, cfg, nil, opts...), repo
}
