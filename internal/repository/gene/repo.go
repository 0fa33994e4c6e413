package gene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/db"
	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	"github.com/kailas-cloud/genedex/internal/domain/result"
)

// store is the consumer interface for gene retrieval (ISP).
type store interface {
	Search(ctx context.Context, index string, body []byte) (*db.SearchResponse, error)
	MultiSearch(ctx context.Context, index string, body []byte) ([]*db.SearchResponse, error)
	OpenScroll(ctx context.Context, index string, body []byte, keepAlive time.Duration) (*db.SearchResponse, error)
	Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*db.SearchResponse, error)
	ClearScroll(ctx context.Context, scrollID string) error
	GetDocument(ctx context.Context, index, id string, fields []string) (*db.Hit, error)
	MultiGet(ctx context.Context, index string, ids []string, fields []string) ([]*db.Hit, error)
	Mapping(ctx context.Context, index string) (*db.Mapping, error)
}

// Repo executes built queries and normalizes what comes back.
type Repo struct {
	store  store
	logger *zap.Logger
}

// New creates a gene repository.
func New(s store, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, logger: logger}
}

// Search runs a text or interval body and returns a scored page.
func (r *Repo) Search(ctx context.Context, index string, body query.Body) (*result.Page, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}
	resp, err := r.store.Search(ctx, index, data)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, translate(err))
	}
	if resp.Error != nil {
		qe := r.rejected(index, resp)
		return &result.Page{Err: qe}, nil
	}

	docs := make([]gene.Document, 0, len(resp.Hits.Hits))
	for i := range resp.Hits.Hits {
		docs = append(docs, normalizeHit(&resp.Hits.Hits[i], true))
	}
	return &result.Page{
		Docs:     docs,
		Total:    resp.Hits.Total.Value,
		MaxScore: resp.Hits.MaxScore,
		Took:     time.Duration(resp.Took) * time.Millisecond,
	}, nil
}

// Lookup runs an identifier body and collapses the hits for id.
func (r *Repo) Lookup(ctx context.Context, index, id string, body query.Body) (result.Lookup, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return result.Lookup{}, fmt.Errorf("encode lookup: %w", err)
	}
	resp, err := r.store.Search(ctx, index, data)
	if err != nil {
		return result.Lookup{}, fmt.Errorf("lookup %q: %w", id, translate(err))
	}
	return r.collapse(index, id, resp), nil
}

// LookupMany runs a batch of identifier bodies in one round trip.
// The returned slice is index-aligned with batch.IDs.
func (r *Repo) LookupMany(ctx context.Context, index string, batch query.Batch) ([]result.Lookup, error) {
	if batch.Len() == 0 {
		return []result.Lookup{}, nil
	}
	data, err := batch.NDJSON()
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	resps, err := r.store.MultiSearch(ctx, index, data)
	if err != nil {
		return nil, fmt.Errorf("lookup batch of %d: %w", batch.Len(), translate(err))
	}
	if len(resps) != batch.Len() {
		return nil, fmt.Errorf("lookup batch: got %d responses for %d queries", len(resps), batch.Len())
	}

	out := make([]result.Lookup, batch.Len())
	for i, resp := range resps {
		if resp == nil {
			out[i] = result.Lookup{Query: batch.IDs[i]}
			continue
		}
		out[i] = r.collapse(index, batch.IDs[i], resp)
	}
	return out, nil
}

// Get fetches one document by primary id. A missing document is an empty
// lookup, not an error.
func (r *Repo) Get(ctx context.Context, index, id string, fields []string) (result.Lookup, error) {
	hit, err := r.store.GetDocument(ctx, index, id, fields)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return result.Lookup{Query: id}, nil
		}
		return result.Lookup{}, fmt.Errorf("get %q: %w", id, translate(err))
	}
	return result.Lookup{Query: id, Docs: []gene.Document{normalizeHit(hit, false)}}, nil
}

// GetMany fetches documents by primary id in one backend round trip. The
// result has one lookup per id in input order; missing documents are empty.
func (r *Repo) GetMany(ctx context.Context, index string, ids []string, fields []string) ([]result.Lookup, error) {
	if len(ids) == 0 {
		return []result.Lookup{}, nil
	}
	hits, err := r.store.MultiGet(ctx, index, ids, fields)
	if err != nil {
		return nil, fmt.Errorf("get %d ids: %w", len(ids), translate(err))
	}
	out := make([]result.Lookup, len(ids))
	for i, id := range ids {
		out[i] = result.Lookup{Query: id}
		if hits[i] != nil {
			out[i].Docs = []gene.Document{normalizeHit(hits[i], false)}
		}
	}
	return out, nil
}

// Metadata lists the searchable fields of an index together with its _meta.
func (r *Repo) Metadata(ctx context.Context, index string) (result.Metadata, error) {
	m, err := r.store.Mapping(ctx, index)
	if err != nil {
		return result.Metadata{}, fmt.Errorf("metadata %s: %w", index, translate(err))
	}
	return result.Metadata{
		AvailableFields: availableFields(m.Properties),
		Meta:            m.Meta,
	}, nil
}

// OpenScroll runs the first query of a scroll walk.
func (r *Repo) OpenScroll(
	ctx context.Context, index string, body query.Body, keepAlive time.Duration,
) (*result.ScrollPage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode scroll: %w", err)
	}
	resp, err := r.store.OpenScroll(ctx, index, data, keepAlive)
	if err != nil {
		return nil, fmt.Errorf("open scroll %s: %w", index, translate(err))
	}
	return r.scrollPage(index, resp)
}

// Scroll fetches the next batch for scrollID.
func (r *Repo) Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*result.ScrollPage, error) {
	resp, err := r.store.Scroll(ctx, scrollID, keepAlive)
	if err != nil {
		return nil, fmt.Errorf("scroll: %w", translate(err))
	}
	return r.scrollPage("", resp)
}

// ClearScroll releases the server-side cursor.
func (r *Repo) ClearScroll(ctx context.Context, scrollID string) error {
	if err := r.store.ClearScroll(ctx, scrollID); err != nil {
		return fmt.Errorf("clear scroll: %w", translate(err))
	}
	return nil
}

func (r *Repo) scrollPage(index string, resp *db.SearchResponse) (*result.ScrollPage, error) {
	if resp.Error != nil {
		if resp.Error.Type == "search_context_missing_exception" {
			return nil, fmt.Errorf("scroll: %w", domain.ErrCursorExpired)
		}
		return nil, r.rejected(index, resp)
	}
	docs := make([]gene.Document, 0, len(resp.Hits.Hits))
	for i := range resp.Hits.Hits {
		docs = append(docs, normalizeHit(&resp.Hits.Hits[i], false))
	}
	return &result.ScrollPage{ScrollID: resp.ScrollID, Docs: docs, Total: resp.Hits.Total.Value}, nil
}

// collapse maps a response to an error value, nothing, one document or several.
func (r *Repo) collapse(index, id string, resp *db.SearchResponse) result.Lookup {
	if resp.Error != nil {
		return result.Lookup{Query: id, Err: r.rejected(index, resp)}
	}
	if len(resp.Hits.Hits) == 0 {
		return result.Lookup{Query: id}
	}
	docs := make([]gene.Document, 0, len(resp.Hits.Hits))
	for i := range resp.Hits.Hits {
		docs = append(docs, normalizeHit(&resp.Hits.Hits[i], false))
	}
	return result.Lookup{Query: id, Docs: docs}
}

func (r *Repo) rejected(index string, resp *db.SearchResponse) *result.QueryError {
	r.logger.Warn("Query rejected by backend",
		zap.String("index", index),
		zap.String("type", resp.Error.Type),
		zap.String("reason", resp.Error.Reason),
		zap.Int("status", resp.Status),
	)
	return result.NewQueryError(resp.Error.Type, resp.Error.Reason, resp.Status)
}

// translate maps storage errors to domain errors. Caller cancellation passes through.
func translate(err error) error {
	switch {
	case errors.Is(err, db.ErrUnavailable):
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	case errors.Is(err, db.ErrScrollIDNotFound):
		return fmt.Errorf("%w: %w", domain.ErrCursorExpired, err)
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrIndexNotFound):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	default:
		return err
	}
}
