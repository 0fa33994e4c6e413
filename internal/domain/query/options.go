package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/genedex/internal/domain/gene"
)

// FieldsAll selects every stored field.
const FieldsAll = "all"

// Options shape the returned page: which fields, which slice, what order.
type Options struct {
	Fields  []string
	From    int
	Size    int // 0 = backend default
	Sort    []SortField
	Explain bool
	Version bool
	Species Species
}

// Validate checks paging bounds. maxSize <= 0 disables the size cap.
func (o Options) Validate(maxSize int) error {
	if o.From < 0 {
		return fmt.Errorf("from must be >= 0, got %d", o.From)
	}
	if o.Size < 0 {
		return fmt.Errorf("size must be >= 0, got %d", o.Size)
	}
	if maxSize > 0 && o.Size > maxSize {
		return fmt.Errorf("size must be <= %d, got %d", maxSize, o.Size)
	}
	for _, f := range o.Sort {
		if f.Field == "" {
			return fmt.Errorf("sort field is empty")
		}
	}
	return nil
}

// WithDefaultFields returns o with fields set when the caller chose none.
func (o Options) WithDefaultFields(fields []string) Options {
	if len(o.Fields) == 0 {
		o.Fields = slices.Clone(fields)
	}
	return o
}

// ParseFields splits a comma-separated field list. "all" and "" select every field.
func ParseFields(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == FieldsAll {
			return nil
		}
		out = append(out, part)
	}
	return out
}

func (o Options) sortable() []SortField {
	out := make([]SortField, 0, len(o.Sort))
	for _, f := range o.Sort {
		if f.Field != gene.FieldName {
			out = append(out, f)
		}
	}
	return out
}
