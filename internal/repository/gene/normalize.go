package gene

import (
	"encoding/json"
	"sort"

	"github.com/kailas-cloud/genedex/internal/db"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
)

// bookkeeping keys never reach callers.
var bookkeeping = []string{"_index", "_type", "_seq_no", "_primary_term", "_routing", "_shards"}

// normalizeHit builds the canonical document for one hit. The fields
// payload wins over _source when both are present.
func normalizeHit(h *db.Hit, withScore bool) gene.Document {
	var doc gene.Document
	if len(h.Fields) > 0 {
		doc = make(gene.Document, len(h.Fields)+2)
		for k, raw := range h.Fields {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				continue
			}
			if list, ok := v.([]any); ok && len(list) == 1 {
				v = list[0]
			}
			doc[k] = v
		}
	} else {
		doc = make(gene.Document, len(h.Source)+2)
		for k, v := range h.Source {
			doc[k] = v
		}
	}

	for _, k := range bookkeeping {
		delete(doc, k)
	}
	doc[gene.KeyID] = h.ID
	if h.Version != nil {
		doc[gene.KeyVersion] = *h.Version
	} else {
		delete(doc, gene.KeyVersion)
	}
	if withScore && h.Score != nil {
		doc[gene.KeyScore] = *h.Score
	}
	return doc
}

// availableFields lists the distinct leaf field names of a mapping, sorted,
// skipping unindexed fields and honoring index_name renames.
func availableFields(props map[string]db.Property) []string {
	seen := make(map[string]struct{})
	var walk func(props map[string]db.Property)
	walk = func(props map[string]db.Property) {
		for name, p := range props {
			if len(p.Properties) > 0 {
				walk(p.Properties)
				continue
			}
			if !p.Indexed() {
				continue
			}
			if p.IndexName != "" {
				name = p.IndexName
			}
			seen[name] = struct{}{}
		}
	}
	walk(props)

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
