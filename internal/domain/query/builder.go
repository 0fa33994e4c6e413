package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/interval"
)

// Clause boosts of the scored text query.
const (
	BoostInteger = 8
	BoostSymbol  = 5
	BoostPhrase  = 4
	BoostName    = 3
	BoostXref    = 1.1
	BoostAll     = 1
)

// Builder turns identifiers, free text and coordinates into request bodies.
// It performs no I/O; one Builder may be reused for many queries.
type Builder struct {
	opts Options
}

// NewBuilder creates a builder applying opts to every body it produces.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Options returns the page options applied by the builder.
func (b *Builder) Options() Options { return b.opts }

// Text builds a free-text query in the given mode, restricted to the
// configured species and re-weighted by organism and pseudogene status.
func (b *Builder) Text(term string, mode Mode) (Body, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Body{}, domain.NewInvalidInput("q", "is required")
	}
	var q Clause
	switch mode {
	case Scored:
		q = ScoredClauses(term)
	case Structured:
		q = structuredQuery(term)
	case Raw:
		q = QueryString{Query: term, DefaultOperator: "AND"}
	default:
		return Body{}, domain.NewInvalidInput("mode", fmt.Sprintf("unsupported mode %s", mode))
	}
	q = b.opts.Species.filter(q)
	return Body{Query: adjustScores(q), Options: b.opts}, nil
}

// ScoredClauses builds the best-match query over the name and cross-reference
// fields. Integer-shaped terms lead with an exact gene id clause and skip the
// catch-all.
func ScoredClauses(term string) DisMax {
	names := []Weighted{
		{Clause: Match{Field: gene.FieldSymbol, Query: term, Analyzer: gene.AnalyzerWhitespaceLowercase}, Boost: BoostSymbol},
		{Clause: MatchPhrase{Field: gene.FieldName, Query: term}, Boost: BoostPhrase},
		{Clause: Match{Field: gene.FieldName, Query: term, Analyzer: gene.AnalyzerWhitespaceLowercase}, Boost: BoostName},
		{Clause: Match{Field: gene.FieldUnigene, Query: term, Analyzer: gene.AnalyzerStringLowercase}, Boost: BoostXref},
		{Clause: Match{Field: gene.FieldGO, Query: term, Analyzer: gene.AnalyzerStringLowercase}, Boost: BoostXref},
	}
	if n, ok := ParseInteger(term); ok {
		queries := make([]Weighted, 0, len(names)+1)
		queries = append(queries, Weighted{Clause: Term{Field: gene.FieldEntrezGene, Value: n}, Boost: BoostInteger})
		return DisMax{Queries: append(queries, names...)}
	}
	catchAll := Weighted{
		Clause: MultiMatch{
			Query:    term,
			Fields:   []string{gene.AllFields},
			Analyzer: gene.AnalyzerWhitespaceLowercase,
			Lenient:  true,
		},
		Boost: BoostAll,
	}
	return DisMax{Queries: append(names, catchAll)}
}

func structuredQuery(term string) Clause {
	return MultiMatch{
		Query:    term,
		Fields:   []string{gene.FieldSymbol, gene.FieldName, gene.AllFields},
		Analyzer: gene.AnalyzerStringLowercase,
		Operator: "and",
		Lenient:  true,
	}
}

// adjustScores applies the first matching of: pseudogene down-weight, then
// reference organism boosts.
func adjustScores(q Clause) Clause {
	fns := []ScoreFunction{{
		Filter: Term{Field: gene.FieldName, Value: gene.PseudogeneMarker},
		Weight: gene.PseudogeneWeight,
	}}
	for _, tb := range gene.TaxonBoosts() {
		fns = append(fns, ScoreFunction{
			Filter: Term{Field: gene.FieldTaxID, Value: tb.TaxID},
			Weight: tb.Weight,
		})
	}
	return FunctionScore{Query: q, Functions: fns, ScoreMode: "first", BoostMode: "multiply"}
}

// Identifier builds a lookup of id against scope. Scope and type mismatches
// resolve to NoHits instead of failing.
func (b *Builder) Identifier(id string, scope Scope) (Body, error) {
	q, err := identifierClause(id, scope)
	if err != nil {
		return Body{}, err
	}
	return Body{Query: b.opts.Species.filter(q), Options: b.opts}, nil
}

func identifierClause(id string, scope Scope) (Clause, error) {
	n, isInt := ParseInteger(id)
	switch s := scope.(type) {
	case nil, NoScope:
		if isInt {
			return MultiMatch{Query: strconv.FormatInt(n, 10), Fields: gene.DefaultIntegerScopes()}, nil
		}
		return Match{Field: gene.DefaultStringScope, Query: id}, nil
	case SingleScope:
		if gene.IsIntegerField(s.Field) {
			if !isInt {
				return NoHits, nil
			}
			return Match{Field: s.Field, Query: n}, nil
		}
		return Match{Field: s.Field, Query: id}, nil
	case MultiScope:
		var intFields, strFields []string
		for _, f := range s.Fields {
			if gene.IsIntegerField(f) {
				intFields = append(intFields, f)
			} else {
				strFields = append(strFields, f)
			}
		}
		if isInt {
			switch len(intFields) {
			case 0:
				return NoHits, nil
			case 1:
				return Match{Field: intFields[0], Query: n}, nil
			default:
				return MultiMatch{Query: strconv.FormatInt(n, 10), Fields: intFields}, nil
			}
		}
		if len(strFields) == 0 {
			return NoHits, nil
		}
		return MultiMatch{Query: id, Fields: strFields}, nil
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrUnsupportedScope, scope)
	}
}

// Identifiers builds one identifier lookup per id, in input order.
func (b *Builder) Identifiers(ids []string, scope Scope) (Batch, error) {
	batch := Batch{
		IDs:    append([]string(nil), ids...),
		Bodies: make([]Body, 0, len(ids)),
	}
	for _, id := range ids {
		body, err := b.Identifier(id, scope)
		if err != nil {
			return Batch{}, err
		}
		batch.Bodies = append(batch.Bodies, body)
	}
	return batch, nil
}

// Interval builds an overlap query for a genomic range of one organism.
// The species option does not apply; the range carries its own organism.
func (b *Builder) Interval(iv interval.Query) Body {
	start, end := iv.Start, iv.End
	overlap := Nested{
		Path: gene.FieldGenomicPos,
		Query: Bool{Must: []Clause{
			Term{Field: gene.FieldGenomicChr, Value: iv.Chr},
			Range{Field: gene.FieldGenomicStart, LTE: &end},
			Range{Field: gene.FieldGenomicEnd, GTE: &start},
		}},
	}
	return Body{
		Query: Bool{
			Must:   []Clause{overlap},
			Filter: []Clause{Term{Field: gene.FieldTaxID, Value: iv.TaxID}},
		},
		Options: b.opts,
	}
}

// Filter builds an unscored walk over documents matching a query-string
// filter such as "taxid:9606". An empty filter matches everything.
func (b *Builder) Filter(expr string) Body {
	var q Clause = MatchAll{}
	if expr = strings.TrimSpace(expr); expr != "" {
		q = QueryString{Query: expr, DefaultOperator: "AND"}
	}
	return Body{Query: q, Options: b.opts}
}
