package gene

import (
	"context"
	"time"

	"github.com/kailas-cloud/genedex/internal/domain/query"
	"github.com/kailas-cloud/genedex/internal/domain/result"
)

// Lookuper resolves one identifier query.
type Lookuper interface {
	Lookup(ctx context.Context, index, id string, body query.Body) (result.Lookup, error)
}

// Scroller walks a result set batch by batch.
type Scroller interface {
	OpenScroll(ctx context.Context, index string, body query.Body, keepAlive time.Duration) (*result.ScrollPage, error)
	Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*result.ScrollPage, error)
	ClearScroll(ctx context.Context, scrollID string) error
}

// Repository defines the storage contract for gene retrieval.
type Repository interface {
	Lookuper
	Scroller
	Search(ctx context.Context, index string, body query.Body) (*result.Page, error)
	LookupMany(ctx context.Context, index string, batch query.Batch) ([]result.Lookup, error)
	Get(ctx context.Context, index, id string, fields []string) (result.Lookup, error)
	GetMany(ctx context.Context, index string, ids []string, fields []string) ([]result.Lookup, error)
	Metadata(ctx context.Context, index string) (result.Metadata, error)
}
