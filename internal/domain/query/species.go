package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/genedex/internal/domain/gene"
)

// SpeciesAll is the keyword that disables the organism filter.
const SpeciesAll = "all"

// Species restricts a query to a set of organisms. The zero value means
// "not chosen" and resolves to gene.DefaultSpecies.
type Species struct {
	all bool
	ids []int
}

// AllSpecies disables the organism filter.
func AllSpecies() Species { return Species{all: true} }

// DefaultSpecies is the reference organism set.
func DefaultSpecies() Species { return Species{ids: gene.DefaultSpecies()} }

// NewSpecies builds a set from taxon ids, dropping duplicates. No ids yields the default set.
func NewSpecies(ids ...int) Species {
	if len(ids) == 0 {
		return DefaultSpecies()
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return Species{ids: out}
}

// ParseSpecies parses "all" or a comma-separated list of taxon ids and common names.
func ParseSpecies(s string) (Species, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSpecies(), nil
	}
	if strings.EqualFold(s, SpeciesAll) {
		return AllSpecies(), nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && n > 0 {
			ids = append(ids, n)
			continue
		}
		id, ok := gene.TaxIDByName(part)
		if !ok {
			return Species{}, fmt.Errorf("unknown species %q", part)
		}
		ids = append(ids, id)
	}
	return NewSpecies(ids...), nil
}

// IsAll reports whether the organism filter is disabled.
func (s Species) IsAll() bool { return s.all }

// IDs returns the taxon ids, or nil for "all".
func (s Species) IDs() []int {
	if s.all {
		return nil
	}
	if len(s.ids) == 0 {
		return gene.DefaultSpecies()
	}
	return slices.Clone(s.ids)
}

// Within reports whether every organism of s belongs to set. "all" never does.
func (s Species) Within(set []int) bool {
	if s.all {
		return false
	}
	for _, id := range s.IDs() {
		if !slices.Contains(set, id) {
			return false
		}
	}
	return true
}

func (s Species) String() string {
	if s.all {
		return SpeciesAll
	}
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// filter wraps q in an organism restriction unless s is "all".
func (s Species) filter(q Clause) Clause {
	if s.all {
		return q
	}
	ids := s.IDs()
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return Bool{
		Must:   []Clause{q},
		Filter: []Clause{Terms{Field: gene.FieldTaxID, Values: values}},
	}
}
