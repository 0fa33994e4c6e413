package query

import (
	"reflect"
	"testing"
)

func TestParseScopes(t *testing.T) {
	tests := []struct {
		in   string
		want Scope
	}{
		{"", NoScope{}},
		{" , ", NoScope{}},
		{"symbol", SingleScope{Field: "symbol"}},
		{"entrezgene, retired", MultiScope{Fields: []string{"entrezgene", "retired"}}},
	}
	for _, tt := range tests {
		if got := ParseScopes(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseScopes(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
