package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/genedex/internal/db"
)

// GetDocument fetches one document by primary id, optionally restricted to fields.
func (s *Store) GetDocument(ctx context.Context, index, id string, fields []string) (hit *db.Hit, err error) {
	start := time.Now()
	defer func() { observe(db.OpGet, start, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := []func(*esapi.GetRequest){s.client.Get.WithContext(ctx)}
	if len(fields) > 0 {
		opts = append(opts, s.client.Get.WithSourceIncludes(fields...))
	}
	res, err := s.client.Get(index, id, opts...)
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: unavailable(err)}
	}
	defer drain(res)

	if res.StatusCode == http.StatusNotFound {
		cause, _ := decodeError(res)
		if isIndexMissing(cause) {
			return nil, &db.Error{Op: db.OpGet, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, index)}
		}
		return nil, &db.Error{Op: db.OpGet, Err: fmt.Errorf("%w: %s", db.ErrNotFound, id)}
	}
	if res.IsError() {
		cause, uerr := decodeError(res)
		if uerr != nil {
			return nil, &db.Error{Op: db.OpGet, Err: uerr}
		}
		return nil, &db.Error{Op: db.OpGet, Err: fmt.Errorf("%s: %s", cause.Type, cause.Reason)}
	}

	var out db.Hit
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.Found != nil && !*out.Found {
		return nil, &db.Error{Op: db.OpGet, Err: fmt.Errorf("%w: %s", db.ErrNotFound, id)}
	}
	return &out, nil
}

// MultiGet fetches documents by primary id with a single _mget request. The
// result is index-aligned with ids; a document the index does not hold is nil.
func (s *Store) MultiGet(ctx context.Context, index string, ids []string, fields []string) (hits []*db.Hit, err error) {
	start := time.Now()
	defer func() { observe(db.OpMultiGet, start, err) }()

	body, err := json.Marshal(map[string][]string{"ids": ids})
	if err != nil {
		return nil, &db.Error{Op: db.OpMultiGet, Err: fmt.Errorf("encode request: %w", err)}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := []func(*esapi.MgetRequest){
		s.client.Mget.WithContext(ctx),
		s.client.Mget.WithIndex(index),
	}
	if len(fields) > 0 {
		opts = append(opts, s.client.Mget.WithSourceIncludes(fields...))
	}
	res, err := s.client.Mget(bytes.NewReader(body), opts...)
	if err != nil {
		return nil, &db.Error{Op: db.OpMultiGet, Err: unavailable(err)}
	}
	defer drain(res)

	if res.IsError() {
		cause, uerr := decodeError(res)
		if uerr != nil {
			return nil, &db.Error{Op: db.OpMultiGet, Err: uerr}
		}
		return nil, &db.Error{Op: db.OpMultiGet, Err: docError(index, cause)}
	}

	var out struct {
		Docs []mgetDoc `json:"docs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, &db.Error{Op: db.OpMultiGet, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Docs) != len(ids) {
		return nil, &db.Error{
			Op:  db.OpMultiGet,
			Err: fmt.Errorf("got %d docs for %d ids", len(out.Docs), len(ids)),
		}
	}

	hits = make([]*db.Hit, len(ids))
	for i := range out.Docs {
		d := &out.Docs[i]
		if d.Error != nil {
			return nil, &db.Error{Op: db.OpMultiGet, Err: docError(index, d.Error)}
		}
		if d.Found != nil && !*d.Found {
			continue
		}
		hits[i] = &d.Hit
	}
	return hits, nil
}

// mgetDoc is one entry of an _mget response. Entries fail individually.
type mgetDoc struct {
	db.Hit
	Error *db.ErrorCause `json:"error,omitempty"`
}

func docError(index string, cause *db.ErrorCause) error {
	if isIndexMissing(cause) {
		return fmt.Errorf("%w: %s", db.ErrIndexNotFound, index)
	}
	return fmt.Errorf("%s: %s", cause.Type, cause.Reason)
}

// Mapping reads the field mapping of an index. When index is an alias the
// first concrete index behind it is used.
func (s *Store) Mapping(ctx context.Context, index string) (m *db.Mapping, err error) {
	start := time.Now()
	defer func() { observe(db.OpMapping, start, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Indices.GetMapping(
		s.client.Indices.GetMapping.WithContext(ctx),
		s.client.Indices.GetMapping.WithIndex(index),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpMapping, Err: unavailable(err)}
	}
	defer drain(res)

	if res.IsError() {
		cause, uerr := decodeError(res)
		if uerr != nil {
			return nil, &db.Error{Op: db.OpMapping, Err: uerr}
		}
		if isIndexMissing(cause) {
			return nil, &db.Error{Op: db.OpMapping, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, index)}
		}
		return nil, &db.Error{Op: db.OpMapping, Err: fmt.Errorf("%s: %s", cause.Type, cause.Reason)}
	}

	var out map[string]struct {
		Mappings db.Mapping `json:"mappings"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, &db.Error{Op: db.OpMapping, Err: fmt.Errorf("decode response: %w", err)}
	}
	if entry, ok := out[index]; ok {
		return &entry.Mappings, nil
	}
	for _, entry := range out {
		return &entry.Mappings, nil
	}
	return nil, &db.Error{Op: db.OpMapping, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, index)}
}
