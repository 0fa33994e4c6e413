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

// Search runs one query body. A query the cluster rejects comes back as a
// response with Error set and a nil error.
func (s *Store) Search(ctx context.Context, index string, body []byte) (resp *db.SearchResponse, err error) {
	start := time.Now()
	defer func() { observeSearch(db.OpSearch, start, err, rejected(resp)) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: unavailable(err)}
	}
	return readSearch(db.OpSearch, res)
}

// OpenScroll runs the first query of a scroll walk, keeping the cursor alive for keepAlive.
func (s *Store) OpenScroll(
	ctx context.Context, index string, body []byte, keepAlive time.Duration,
) (resp *db.SearchResponse, err error) {
	start := time.Now()
	defer func() { observeSearch(db.OpOpenScroll, start, err, rejected(resp)) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithScroll(keepAlive),
		s.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpOpenScroll, Err: unavailable(err)}
	}
	return readSearch(db.OpOpenScroll, res)
}

// Scroll fetches the next batch of an open cursor.
func (s *Store) Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (resp *db.SearchResponse, err error) {
	start := time.Now()
	defer func() { observeSearch(db.OpScroll, start, err, rejected(resp)) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Scroll(
		s.client.Scroll.WithContext(ctx),
		s.client.Scroll.WithScrollID(scrollID),
		s.client.Scroll.WithScroll(keepAlive),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpScroll, Err: unavailable(err)}
	}
	return readSearch(db.OpScroll, res)
}

// ClearScroll releases a cursor. Clearing an already expired cursor is not an error.
func (s *Store) ClearScroll(ctx context.Context, scrollID string) (err error) {
	start := time.Now()
	defer func() { observe(db.OpClearScroll, start, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.ClearScroll(
		s.client.ClearScroll.WithContext(ctx),
		s.client.ClearScroll.WithScrollID(scrollID),
	)
	if err != nil {
		return &db.Error{Op: db.OpClearScroll, Err: unavailable(err)}
	}
	defer drain(res)
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		cause, uerr := decodeError(res)
		if uerr != nil {
			return &db.Error{Op: db.OpClearScroll, Err: uerr}
		}
		return &db.Error{Op: db.OpClearScroll, Err: fmt.Errorf("%s: %s", cause.Type, cause.Reason)}
	}
	return nil
}

// MultiSearch runs an NDJSON batch. Each item is decoded independently, so
// one rejected query does not fail its neighbours.
func (s *Store) MultiSearch(ctx context.Context, index string, body []byte) (resps []*db.SearchResponse, err error) {
	start := time.Now()
	defer func() { observeSearch(db.OpMultiSearch, start, err, anyRejected(resps)) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Msearch(
		bytes.NewReader(body),
		s.client.Msearch.WithContext(ctx),
		s.client.Msearch.WithIndex(index),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpMultiSearch, Err: unavailable(err)}
	}
	defer drain(res)

	if res.IsError() {
		cause, uerr := decodeError(res)
		if uerr != nil {
			return nil, &db.Error{Op: db.OpMultiSearch, Err: uerr}
		}
		if isIndexMissing(cause) {
			return nil, &db.Error{Op: db.OpMultiSearch, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, index)}
		}
		return nil, &db.Error{Op: db.OpMultiSearch, Err: fmt.Errorf("%s: %s", cause.Type, cause.Reason)}
	}

	var out struct {
		Responses []*db.SearchResponse `json:"responses"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, &db.Error{Op: db.OpMultiSearch, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.Responses, nil
}

func rejected(resp *db.SearchResponse) bool {
	return resp != nil && resp.Error != nil
}

func anyRejected(resps []*db.SearchResponse) bool {
	for _, r := range resps {
		if rejected(r) {
			return true
		}
	}
	return false
}

func readSearch(op string, res *esapi.Response) (*db.SearchResponse, error) {
	defer drain(res)

	if res.IsError() {
		cause, err := decodeError(res)
		switch {
		case err != nil:
			return nil, &db.Error{Op: op, Err: err}
		case res.StatusCode == http.StatusNotFound && isScrollMissing(cause):
			return nil, &db.Error{Op: op, Err: fmt.Errorf("%w: %s", db.ErrScrollIDNotFound, cause.Reason)}
		case isIndexMissing(cause):
			return nil, &db.Error{Op: op, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, cause.Reason)}
		}
		return &db.SearchResponse{Error: cause, Status: res.StatusCode}, nil
	}

	var resp db.SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &resp, nil
}
