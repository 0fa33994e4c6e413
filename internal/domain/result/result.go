package result

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/genedex/internal/domain/gene"
)

// InvalidQueryMessage is reported when the backend rejects a query.
const InvalidQueryMessage = "Invalid query. Please check parameters."

// QueryError is a query the backend refused to run. It is a value, not a
// failure: the request reached the backend and got an answer.
type QueryError struct {
	Type    string
	Reason  string
	Status  int
	Message string
}

// NewQueryError creates a rejection with the standard caller-facing message.
func NewQueryError(typ, reason string, status int) *QueryError {
	return &QueryError{Type: typ, Reason: reason, Status: status, Message: InvalidQueryMessage}
}

func (e *QueryError) Error() string {
	if e.Reason == "" {
		return e.Message
	}
	return e.Message + " " + e.Type + ": " + e.Reason
}

// MarshalJSON renders {"error": true, "message": ...}.
func (e *QueryError) MarshalJSON() ([]byte, error) {
	out := map[string]any{"error": true, "message": e.Message}
	if e.Reason != "" {
		out["reason"] = e.Reason
	}
	return json.Marshal(out)
}

// Lookup is the outcome of resolving one identifier: nothing, one document,
// or several when the identifier maps to more than one record.
type Lookup struct {
	Query string
	Docs  []gene.Document
	Err   *QueryError
}

// Found reports whether any document matched.
func (l Lookup) Found() bool { return len(l.Docs) > 0 }

// Single returns the document when exactly one matched.
func (l Lookup) Single() (gene.Document, bool) {
	if len(l.Docs) != 1 {
		return nil, false
	}
	return l.Docs[0], true
}

// Multiple reports whether more than one document matched.
func (l Lookup) Multiple() bool { return len(l.Docs) > 1 }

// MarshalJSON renders null, a single document, a list, or the error value.
func (l Lookup) MarshalJSON() ([]byte, error) {
	switch {
	case l.Err != nil:
		return json.Marshal(l.Err)
	case len(l.Docs) == 0:
		return []byte("null"), nil
	case len(l.Docs) == 1:
		return json.Marshal(l.Docs[0])
	default:
		return json.Marshal(l.Docs)
	}
}

// Page is one page of search hits.
type Page struct {
	Docs     []gene.Document
	Total    int
	MaxScore *float64
	Took     time.Duration
	Err      *QueryError
}

// Failed reports whether the backend rejected the query.
func (p *Page) Failed() bool { return p.Err != nil }

type pageJSON struct {
	Hits     []gene.Document `json:"hits"`
	Total    int             `json:"total"`
	MaxScore *float64        `json:"max_score"`
	Took     int64           `json:"took"`
}

// MarshalJSON renders {"hits", "total", "max_score", "took"} or the error value.
func (p *Page) MarshalJSON() ([]byte, error) {
	if p.Err != nil {
		return json.Marshal(p.Err)
	}
	hits := p.Docs
	if hits == nil {
		hits = []gene.Document{}
	}
	return json.Marshal(pageJSON{
		Hits:     hits,
		Total:    p.Total,
		MaxScore: p.MaxScore,
		Took:     p.Took.Milliseconds(),
	})
}

// Metadata describes the searchable surface of an index.
type Metadata struct {
	AvailableFields []string
	Meta            map[string]any
}

// MarshalJSON renders the index _meta entries with available_fields merged in.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Meta)+1)
	for k, v := range m.Meta {
		out[k] = v
	}
	fields := m.AvailableFields
	if fields == nil {
		fields = []string{}
	}
	out["available_fields"] = fields
	return json.Marshal(out)
}

// ScrollPage is one batch of a scroll walk together with the cursor that
// fetches the next one.
type ScrollPage struct {
	ScrollID string
	Docs     []gene.Document
	Total    int
}
