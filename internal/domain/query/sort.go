package query

import (
	"strings"

	"github.com/kailas-cloud/genedex/internal/domain/gene"
)

// SortField orders hits by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Source renders the sort entry.
func (f SortField) Source() map[string]any {
	dir := "asc"
	if f.Desc {
		dir = "desc"
	}
	return map[string]any{f.Field: dir}
}

// ParseSort parses "field,-other" into sort entries. The multi-text name
// field cannot be sorted on and is skipped.
func ParseSort(s string) []SortField {
	var out []SortField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := SortField{Field: part}
		if rest, ok := strings.CutPrefix(part, "-"); ok {
			f = SortField{Field: rest, Desc: true}
		}
		if f.Field == "" || f.Field == gene.FieldName {
			continue
		}
		out = append(out, f)
	}
	return out
}
