package db

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SearchResponse is the decoded body of a search, scroll or msearch item.
// A backend-rejected query has Error set and no hits.
type SearchResponse struct {
	Took     int64       `json:"took"`
	TimedOut bool        `json:"timed_out"`
	ScrollID string      `json:"_scroll_id,omitempty"`
	Hits     Hits        `json:"hits"`
	Error    *ErrorCause `json:"error,omitempty"`
	Status   int         `json:"status,omitempty"`
}

// Hits holds the hit list and the total match count.
type Hits struct {
	Total    Total    `json:"total"`
	MaxScore *float64 `json:"max_score"`
	Hits     []Hit    `json:"hits"`
}

// Total is the number of matching documents. It decodes both the
// {"value": n, "relation": "eq"} object and a bare integer.
type Total struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Total) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		if bytes.Equal(data, []byte("null")) {
			*t = Total{}
			return nil
		}
		n, err := strconv.Atoi(string(data))
		if err != nil {
			return err
		}
		*t = Total{Value: n, Relation: "eq"}
		return nil
	}
	type plain Total
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Total(p)
	return nil
}

// Hit is a single raw document hit.
type Hit struct {
	Index   string                     `json:"_index"`
	Type    string                     `json:"_type,omitempty"`
	ID      string                     `json:"_id"`
	Version *int64                     `json:"_version,omitempty"`
	Score   *float64                   `json:"_score"`
	Found   *bool                      `json:"found,omitempty"`
	Source  map[string]any             `json:"_source,omitempty"`
	Fields  map[string]json.RawMessage `json:"fields,omitempty"`
}

// ErrorCause is the backend's description of a failed request.
type ErrorCause struct {
	Type      string       `json:"type"`
	Reason    string       `json:"reason"`
	RootCause []ErrorCause `json:"root_cause,omitempty"`
}

// UnmarshalJSON accepts both the structured error object and a plain string.
func (e *ErrorCause) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ErrorCause{Reason: s}
		return nil
	}
	type plain ErrorCause
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = ErrorCause(p)
	return nil
}

// Mapping is the field layout of one index.
type Mapping struct {
	Properties map[string]Property `json:"properties"`
	Meta       map[string]any      `json:"_meta,omitempty"`
}

// Property describes one mapped field. Objects and nested fields carry Properties.
type Property struct {
	Type       string              `json:"type,omitempty"`
	Index      any                 `json:"index,omitempty"`
	IndexName  string              `json:"index_name,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`
}

// Indexed reports whether the field is searchable.
func (p Property) Indexed() bool {
	switch v := p.Index.(type) {
	case bool:
		return v
	case string:
		return v != "no" && v != "false"
	default:
		return true
	}
}
