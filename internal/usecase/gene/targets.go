package gene

import (
	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/query"
)

// Targets is the immutable routing table from a request to an index.
type Targets struct {
	Index      string
	Tier1Index string
	Tier1Taxa  []int
}

// Resolve picks the index for one call. An explicit override wins; species
// that all belong to the tier-1 set go to the smaller tier-1 index.
func (t Targets) Resolve(species query.Species, override string) string {
	if override != "" {
		return override
	}
	if t.Tier1Index == "" {
		return t.Index
	}
	taxa := t.Tier1Taxa
	if len(taxa) == 0 {
		taxa = gene.Tier1Species()
	}
	if species.Within(taxa) {
		return t.Tier1Index
	}
	return t.Index
}
