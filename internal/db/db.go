package db

import (
	"context"
	"time"
)

// Store is the search backend facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	Searcher
	MultiSearcher
	Scroller
	DocumentGetter
	MultiGetter
	MappingReader
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs one query body against an index.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) (*SearchResponse, error)
}

// MultiSearcher runs an NDJSON batch of query bodies in one round trip.
// Responses are in request order.
type MultiSearcher interface {
	MultiSearch(ctx context.Context, index string, body []byte) ([]*SearchResponse, error)
}

// Scroller walks a result set with a server-side cursor.
type Scroller interface {
	OpenScroll(ctx context.Context, index string, body []byte, keepAlive time.Duration) (*SearchResponse, error)
	Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*SearchResponse, error)
	ClearScroll(ctx context.Context, scrollID string) error
}

// DocumentGetter fetches one document by primary id.
type DocumentGetter interface {
	GetDocument(ctx context.Context, index, id string, fields []string) (*Hit, error)
}

// MultiGetter fetches documents by primary id in one round trip.
// The result is index-aligned with ids; a missing document is nil.
type MultiGetter interface {
	MultiGet(ctx context.Context, index string, ids []string, fields []string) ([]*Hit, error)
}

// MappingReader reads index mappings.
type MappingReader interface {
	Mapping(ctx context.Context, index string) (*Mapping, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache is a key-value store used as a read-through cache.
type Cache interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}
