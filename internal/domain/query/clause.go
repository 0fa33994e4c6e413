package query

// Clause is one node of a query tree. Source renders it as the backend's JSON DSL.
type Clause interface {
	Source() map[string]any
}

// MatchNone matches no document. Its zero value is the NoHits sentinel.
type MatchNone struct{}

// Source implements Clause.
func (MatchNone) Source() map[string]any {
	return map[string]any{"match_none": map[string]any{}}
}

// NoHits is substituted whenever an identifier cannot match any searched field.
var NoHits Clause = MatchNone{}

// IsNoHits reports whether c is the NoHits sentinel.
func IsNoHits(c Clause) bool {
	_, ok := c.(MatchNone)
	return ok
}

// MatchAll matches every document.
type MatchAll struct{}

// Source implements Clause.
func (MatchAll) Source() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}

// Match is a full-text match on one field.
type Match struct {
	Field    string
	Query    any
	Analyzer string
	Operator string
}

// Source implements Clause.
func (m Match) Source() map[string]any {
	if m.Analyzer == "" && m.Operator == "" {
		return map[string]any{"match": map[string]any{m.Field: m.Query}}
	}
	body := map[string]any{"query": m.Query}
	if m.Analyzer != "" {
		body["analyzer"] = m.Analyzer
	}
	if m.Operator != "" {
		body["operator"] = m.Operator
	}
	return map[string]any{"match": map[string]any{m.Field: body}}
}

// MatchPhrase matches the terms of Query as an ordered phrase.
type MatchPhrase struct {
	Field string
	Query string
}

// Source implements Clause.
func (m MatchPhrase) Source() map[string]any {
	return map[string]any{"match_phrase": map[string]any{m.Field: m.Query}}
}

// MultiMatch runs one match across several fields or field patterns.
type MultiMatch struct {
	Query    string
	Fields   []string
	Analyzer string
	Operator string
	Lenient  bool
}

// Source implements Clause.
func (m MultiMatch) Source() map[string]any {
	body := map[string]any{
		"query":  m.Query,
		"fields": append([]string(nil), m.Fields...),
	}
	if m.Analyzer != "" {
		body["analyzer"] = m.Analyzer
	}
	if m.Operator != "" {
		body["operator"] = m.Operator
	}
	if m.Lenient {
		body["lenient"] = true
	}
	return map[string]any{"multi_match": body}
}

// Term is an exact, unanalyzed value match.
type Term struct {
	Field string
	Value any
}

// Source implements Clause.
func (t Term) Source() map[string]any {
	return map[string]any{"term": map[string]any{t.Field: t.Value}}
}

// Terms matches any of the listed values.
type Terms struct {
	Field  string
	Values []any
}

// Source implements Clause.
func (t Terms) Source() map[string]any {
	return map[string]any{"terms": map[string]any{t.Field: append([]any(nil), t.Values...)}}
}

// Range bounds a numeric field. Nil bounds are open.
type Range struct {
	Field string
	GTE   *int64
	LTE   *int64
}

// Source implements Clause.
func (r Range) Source() map[string]any {
	body := map[string]any{}
	if r.GTE != nil {
		body["gte"] = *r.GTE
	}
	if r.LTE != nil {
		body["lte"] = *r.LTE
	}
	return map[string]any{"range": map[string]any{r.Field: body}}
}

// Nested evaluates Query against each object of a nested field path.
type Nested struct {
	Path  string
	Query Clause
}

// Source implements Clause.
func (n Nested) Source() map[string]any {
	return map[string]any{"nested": map[string]any{
		"path":  n.Path,
		"query": n.Query.Source(),
	}}
}

// Bool combines clauses. Filter clauses restrict without scoring.
type Bool struct {
	Must    []Clause
	Should  []Clause
	Filter  []Clause
	MustNot []Clause
}

// Source implements Clause.
func (b Bool) Source() map[string]any {
	body := map[string]any{}
	putClauses(body, "must", b.Must)
	putClauses(body, "should", b.Should)
	putClauses(body, "filter", b.Filter)
	putClauses(body, "must_not", b.MustNot)
	return map[string]any{"bool": body}
}

func putClauses(body map[string]any, key string, cs []Clause) {
	if len(cs) == 0 {
		return
	}
	out := make([]any, len(cs))
	for i, c := range cs {
		out[i] = c.Source()
	}
	body[key] = out
}

// QueryString passes native query syntax through to the backend parser.
type QueryString struct {
	Query           string
	DefaultOperator string
	Analyzer        string
}

// Source implements Clause.
func (q QueryString) Source() map[string]any {
	body := map[string]any{"query": q.Query}
	if q.DefaultOperator != "" {
		body["default_operator"] = q.DefaultOperator
	}
	if q.Analyzer != "" {
		body["analyzer"] = q.Analyzer
	}
	return map[string]any{"query_string": body}
}

// Weighted multiplies the score of Clause by Boost.
type Weighted struct {
	Clause Clause
	Boost  float64
}

// Source implements Clause.
func (w Weighted) Source() map[string]any {
	return map[string]any{"function_score": map[string]any{
		"query": w.Clause.Source(),
		"boost": w.Boost,
	}}
}

// DisMax scores a document by its best matching clause.
type DisMax struct {
	Queries    []Weighted
	TieBreaker float64
}

// Source implements Clause.
func (d DisMax) Source() map[string]any {
	qs := make([]any, len(d.Queries))
	for i, q := range d.Queries {
		qs[i] = q.Source()
	}
	body := map[string]any{"queries": qs}
	if d.TieBreaker != 0 {
		body["tie_breaker"] = d.TieBreaker
	}
	return map[string]any{"dis_max": body}
}

// ScoreFunction applies Weight to documents matching Filter.
type ScoreFunction struct {
	Filter Clause
	Weight float64
}

// FunctionScore adjusts the score of Query with filter-weight functions.
type FunctionScore struct {
	Query     Clause
	Functions []ScoreFunction
	ScoreMode string
	BoostMode string
}

// Source implements Clause.
func (f FunctionScore) Source() map[string]any {
	fns := make([]any, len(f.Functions))
	for i, fn := range f.Functions {
		fns[i] = map[string]any{
			"filter": fn.Filter.Source(),
			"weight": fn.Weight,
		}
	}
	body := map[string]any{
		"query":     f.Query.Source(),
		"functions": fns,
	}
	if f.ScoreMode != "" {
		body["score_mode"] = f.ScoreMode
	}
	if f.BoostMode != "" {
		body["boost_mode"] = f.BoostMode
	}
	return map[string]any{"function_score": body}
}
