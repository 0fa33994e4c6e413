package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Batch is an ordered set of bodies sent as one multi-search request.
type Batch struct {
	IDs    []string
	Bodies []Body
}

// Len returns the number of queries.
func (b Batch) Len() int { return len(b.Bodies) }

// NDJSON renders the multi-search payload: an empty header line and a body
// line per query, ending with a newline.
func (b Batch) NDJSON() ([]byte, error) {
	var buf bytes.Buffer
	for i, body := range b.Bodies {
		data, err := json.Marshal(body.Source())
		if err != nil {
			return nil, fmt.Errorf("encode query %d: %w", i, err)
		}
		buf.WriteString("{}\n")
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
