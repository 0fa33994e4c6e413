package query

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/interval"
)

// textCore strips score adjustment and the species filter off a text query.
func textCore(t *testing.T, body Body) (Clause, []Clause) {
	t.Helper()
	fs, ok := body.Query.(FunctionScore)
	if !ok {
		t.Fatalf("query = %T, want FunctionScore", body.Query)
	}
	if b, ok := fs.Query.(Bool); ok {
		return b.Must[0], b.Filter
	}
	return fs.Query, nil
}

func stripSpecies(t *testing.T, body Body) Clause {
	t.Helper()
	if b, ok := body.Query.(Bool); ok {
		if len(b.Must) != 1 || len(b.Filter) != 1 {
			t.Fatalf("unexpected bool shape: %+v", b)
		}
		return b.Must[0]
	}
	return body.Query
}

func TestText_IntegerTermClauseOrder(t *testing.T) {
	body, err := NewBuilder(Options{}).Text("1017", Scored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	core, _ := textCore(t, body)
	dm, ok := core.(DisMax)
	if !ok {
		t.Fatalf("core = %T, want DisMax", core)
	}
	if len(dm.Queries) != 6 {
		t.Fatalf("clauses = %d, want 6", len(dm.Queries))
	}

	first := dm.Queries[0]
	if first.Boost != BoostInteger {
		t.Errorf("first boost = %v, want %v", first.Boost, BoostInteger)
	}
	if !reflect.DeepEqual(first.Clause, Term{Field: gene.FieldEntrezGene, Value: int64(1017)}) {
		t.Errorf("first clause = %+v", first.Clause)
	}
	for _, w := range dm.Queries[1:] {
		if w.Boost >= first.Boost {
			t.Errorf("boost %v not below integer shortcut", w.Boost)
		}
	}

	want := []struct {
		kind  string
		field string
		boost float64
	}{
		{"match", gene.FieldSymbol, BoostSymbol},
		{"match_phrase", gene.FieldName, BoostPhrase},
		{"match", gene.FieldName, BoostName},
		{"match", gene.FieldUnigene, BoostXref},
		{"match", gene.FieldGO, BoostXref},
	}
	for i, w := range want {
		got := dm.Queries[i+1]
		if got.Boost != w.boost {
			t.Errorf("clause %d boost = %v, want %v", i+1, got.Boost, w.boost)
		}
		src := got.Clause.Source()
		inner, ok := src[w.kind].(map[string]any)
		if !ok {
			t.Errorf("clause %d = %v, want %s", i+1, src, w.kind)
			continue
		}
		if _, ok := inner[w.field]; !ok {
			t.Errorf("clause %d targets %v, want %s", i+1, inner, w.field)
		}
	}
}

func TestText_ScoredTermHasCatchAll(t *testing.T) {
	body, err := NewBuilder(Options{}).Text("cdk2", Scored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	core, _ := textCore(t, body)
	dm := core.(DisMax)
	if len(dm.Queries) != 6 {
		t.Fatalf("clauses = %d, want 6", len(dm.Queries))
	}
	if dm.Queries[0].Boost != BoostSymbol {
		t.Errorf("first boost = %v, want %v", dm.Queries[0].Boost, BoostSymbol)
	}
	last := dm.Queries[5]
	mm, ok := last.Clause.(MultiMatch)
	if !ok {
		t.Fatalf("last clause = %T, want MultiMatch", last.Clause)
	}
	if last.Boost != BoostAll || mm.Fields[0] != gene.AllFields || !mm.Lenient {
		t.Errorf("catch-all = %+v boost %v", mm, last.Boost)
	}
}

func TestText_Structured(t *testing.T) {
	term := `cdk2" OR name:*`
	body, err := NewBuilder(Options{}).Text(term, Structured)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	core, _ := textCore(t, body)
	mm, ok := core.(MultiMatch)
	if !ok {
		t.Fatalf("core = %T, want MultiMatch", core)
	}
	if mm.Query != term {
		t.Errorf("query = %q, want the term unchanged", mm.Query)
	}
	if mm.Operator != "and" || mm.Analyzer != gene.AnalyzerStringLowercase {
		t.Errorf("multi_match = %+v", mm)
	}
	want := []string{gene.FieldSymbol, gene.FieldName, gene.AllFields}
	if !reflect.DeepEqual(mm.Fields, want) {
		t.Errorf("fields = %v, want %v", mm.Fields, want)
	}
}

func TestText_Raw(t *testing.T) {
	body, err := NewBuilder(Options{}).Text("symbol:cdk*", Raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	core, _ := textCore(t, body)
	want := QueryString{Query: "symbol:cdk*", DefaultOperator: "AND"}
	if !reflect.DeepEqual(core, want) {
		t.Errorf("core = %+v, want %+v", core, want)
	}
}

func TestText_DefaultSpeciesFilter(t *testing.T) {
	body, err := NewBuilder(Options{}).Text("cdk2", Scored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, filter := textCore(t, body)
	if len(filter) != 1 {
		t.Fatalf("filters = %d, want 1", len(filter))
	}
	terms, ok := filter[0].(Terms)
	if !ok {
		t.Fatalf("filter = %T, want Terms", filter[0])
	}
	want := []any{9606, 10090, 10116, 7227, 6239}
	if terms.Field != gene.FieldTaxID || !reflect.DeepEqual(terms.Values, want) {
		t.Errorf("filter = %+v, want taxid %v", terms, want)
	}
}

func TestText_SpeciesAllOmitsFilter(t *testing.T) {
	body, err := NewBuilder(Options{Species: AllSpecies()}).Text("cdk2", Scored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, filter := textCore(t, body)
	if filter != nil {
		t.Errorf("filters = %v, want none", filter)
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"terms"`) {
		t.Errorf("body restricts taxid: %s", data)
	}
}

func TestText_ScoreAdjustment(t *testing.T) {
	body, err := NewBuilder(Options{}).Text("cdk2", Scored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fs := body.Query.(FunctionScore)
	if fs.ScoreMode != "first" || fs.BoostMode != "multiply" {
		t.Errorf("modes = %q/%q, want first/multiply", fs.ScoreMode, fs.BoostMode)
	}
	want := []ScoreFunction{
		{Filter: Term{Field: gene.FieldName, Value: "pseudogene"}, Weight: 0.5},
		{Filter: Term{Field: gene.FieldTaxID, Value: 9606}, Weight: 1.5},
		{Filter: Term{Field: gene.FieldTaxID, Value: 10090}, Weight: 1.3},
		{Filter: Term{Field: gene.FieldTaxID, Value: 10116}, Weight: 1.1},
	}
	if !reflect.DeepEqual(fs.Functions, want) {
		t.Errorf("functions = %+v, want %+v", fs.Functions, want)
	}
}

func TestText_InvalidInput(t *testing.T) {
	b := NewBuilder(Options{})
	if _, err := b.Text("   ", Scored); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty term: err = %v, want ErrInvalidInput", err)
	}
	if _, err := b.Text("cdk2", Mode(42)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad mode: err = %v, want ErrInvalidInput", err)
	}
}

type otherScope struct{ NoScope }

func TestIdentifier_Resolution(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		scope Scope
		want  Clause
	}{
		{"default int", "1017", NoScope{}, MultiMatch{Query: "1017", Fields: []string{"entrezgene", "retired"}}},
		{"nil scope", "1017", nil, MultiMatch{Query: "1017", Fields: []string{"entrezgene", "retired"}}},
		{"default string", "ENSG00000123374", NoScope{}, Match{Field: "ensemblgene", Query: "ENSG00000123374"}},
		{"single int field", "1017", SingleScope{Field: "entrezgene"}, Match{Field: "entrezgene", Query: int64(1017)}},
		{"single int field string id", "CDK2", SingleScope{Field: "retired"}, NoHits},
		{"single text field", "CDK2", SingleScope{Field: "symbol"}, Match{Field: "symbol", Query: "CDK2"}},
		{"single text field int id", "1017", SingleScope{Field: "symbol"}, Match{Field: "symbol", Query: "1017"}},
		{"multi both int", "12345", MultiScope{Fields: []string{"entrezgene", "retired"}}, MultiMatch{Query: "12345", Fields: []string{"entrezgene", "retired"}}},
		{"multi string vs int only", "BRCA1", MultiScope{Fields: []string{"entrezgene", "retired"}}, NoHits},
		{"multi one int", "1017", MultiScope{Fields: []string{"symbol", "retired"}}, Match{Field: "retired", Query: int64(1017)}},
		{"multi int no int fields", "1017", MultiScope{Fields: []string{"symbol", "name"}}, NoHits},
		{"multi string", "CDK2", MultiScope{Fields: []string{"entrezgene", "symbol", "name"}}, MultiMatch{Query: "CDK2", Fields: []string{"symbol", "name"}}},
	}
	b := NewBuilder(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := b.Identifier(tt.id, tt.scope)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := stripSpecies(t, body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("clause = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestIdentifier_SentinelIsNamed(t *testing.T) {
	body, err := NewBuilder(Options{Species: AllSpecies()}).Identifier("BRCA1", SingleScope{Field: "entrezgene"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsNoHits(body.Query) {
		t.Errorf("query = %#v, want NoHits", body.Query)
	}
	if body.Query != NoHits {
		t.Errorf("query is not the NoHits value")
	}
}

func TestIdentifier_UnsupportedScope(t *testing.T) {
	_, err := NewBuilder(Options{}).Identifier("1017", otherScope{})
	if !errors.Is(err, domain.ErrUnsupportedScope) {
		t.Fatalf("err = %v, want ErrUnsupportedScope", err)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("unsupported scope is not a caller error: %v", err)
	}
}

func TestIdentifier_SpeciesFilter(t *testing.T) {
	body, err := NewBuilder(Options{Species: NewSpecies(9606)}).Identifier("1017", NoScope{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := body.Query.(Bool)
	if !ok {
		t.Fatalf("query = %T, want Bool", body.Query)
	}
	if !reflect.DeepEqual(b.Filter, []Clause{Terms{Field: "taxid", Values: []any{9606}}}) {
		t.Errorf("filter = %#v", b.Filter)
	}
}

func TestIdentifiers_PreservesOrder(t *testing.T) {
	ids := []string{"1017", "CDK2", "BRCA1"}
	batch, err := NewBuilder(Options{Species: AllSpecies()}).Identifiers(ids, SingleScope{Field: "symbol"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Len() != 3 {
		t.Fatalf("len = %d, want 3", batch.Len())
	}
	for i, id := range ids {
		m := batch.Bodies[i].Query.(Match)
		if m.Query != id {
			t.Errorf("body %d queries %v, want %s", i, m.Query, id)
		}
	}

	data, err := batch.NDJSON()
	if err != nil {
		t.Fatalf("ndjson: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Errorf("payload does not end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6", len(lines))
	}
	for i := 0; i < len(lines); i += 2 {
		if lines[i] != "{}" {
			t.Errorf("header %d = %q, want {}", i/2, lines[i])
		}
		var body map[string]any
		if err := json.Unmarshal([]byte(lines[i+1]), &body); err != nil {
			t.Fatalf("body %d: %v", i/2, err)
		}
		if _, ok := body["query"]; !ok {
			t.Errorf("body %d has no query: %v", i/2, body)
		}
	}
}

func TestIdentifiers_UnsupportedScope(t *testing.T) {
	_, err := NewBuilder(Options{}).Identifiers([]string{"1"}, otherScope{})
	if !errors.Is(err, domain.ErrUnsupportedScope) {
		t.Errorf("err = %v, want ErrUnsupportedScope", err)
	}
}

func TestInterval_Body(t *testing.T) {
	iv, err := interval.New(9606, "chrX", 100, 200)
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	body := NewBuilder(Options{Size: 5}).Interval(iv)

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"query":{"bool":{"filter":[{"term":{"taxid":9606}}],"must":[{"nested":{"path":"genomic_pos","query":{"bool":{"must":[{"term":{"genomic_pos.chr":"X"}},{"range":{"genomic_pos.start":{"lte":200}}},{"range":{"genomic_pos.end":{"gte":100}}}]}}}}]}},"size":5}`
	if string(data) != want {
		t.Errorf("body:\ngot:  %s\nwant: %s", data, want)
	}
}

func TestFilter(t *testing.T) {
	b := NewBuilder(Options{})
	if _, ok := b.Filter("").Query.(MatchAll); !ok {
		t.Errorf("empty filter should match all")
	}
	want := QueryString{Query: "taxid:9606", DefaultOperator: "AND"}
	if got := b.Filter(" taxid:9606 ").Query; !reflect.DeepEqual(got, want) {
		t.Errorf("filter = %#v, want %#v", got, want)
	}
}
