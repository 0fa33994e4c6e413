package query

import (
	"encoding/json"
	"testing"
)

func TestClause_Source(t *testing.T) {
	lo, hi := int64(1), int64(9)
	tests := []struct {
		name   string
		clause Clause
		want   string
	}{
		{"no hits", NoHits, `{"match_none":{}}`},
		{"match plain", Match{Field: "symbol", Query: "cdk2"}, `{"match":{"symbol":"cdk2"}}`},
		{"match analyzer", Match{Field: "go", Query: "x", Analyzer: "string_lowercase"}, `{"match":{"go":{"analyzer":"string_lowercase","query":"x"}}}`},
		{"phrase", MatchPhrase{Field: "name", Query: "cyclin dependent"}, `{"match_phrase":{"name":"cyclin dependent"}}`},
		{"range", Range{Field: "start", GTE: &lo, LTE: &hi}, `{"range":{"start":{"gte":1,"lte":9}}}`},
		{"weighted", Weighted{Clause: Term{Field: "entrezgene", Value: 1017}, Boost: 8}, `{"function_score":{"boost":8,"query":{"term":{"entrezgene":1017}}}}`},
		{"dis max", DisMax{Queries: []Weighted{{Clause: MatchAll{}, Boost: 2}}}, `{"dis_max":{"queries":[{"function_score":{"boost":2,"query":{"match_all":{}}}}]}}`},
		{"query string", QueryString{Query: `a "b`, DefaultOperator: "AND"}, `{"query_string":{"default_operator":"AND","query":"a \"b"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.clause.Source())
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("source:\ngot:  %s\nwant: %s", data, tt.want)
			}
		})
	}
}
