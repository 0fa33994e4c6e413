package query

import (
	"reflect"
	"testing"
)

func TestParseSpecies(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "9606,10090,10116,7227,6239"},
		{"all", "all"},
		{"ALL", "all"},
		{"9606", "9606"},
		{"human,mouse", "9606,10090"},
		{"human, 9606, zebrafish", "9606,7955"},
	}
	for _, tt := range tests {
		s, err := ParseSpecies(tt.in)
		if err != nil {
			t.Errorf("ParseSpecies(%q) error: %v", tt.in, err)
			continue
		}
		if s.String() != tt.want {
			t.Errorf("ParseSpecies(%q) = %s, want %s", tt.in, s, tt.want)
		}
	}

	if _, err := ParseSpecies("unicorn"); err == nil {
		t.Error("ParseSpecies(unicorn) = nil error")
	}
}

func TestSpecies_ZeroValueIsDefault(t *testing.T) {
	var s Species
	if s.IsAll() {
		t.Error("zero Species is all")
	}
	if !reflect.DeepEqual(s.IDs(), []int{9606, 10090, 10116, 7227, 6239}) {
		t.Errorf("IDs() = %v", s.IDs())
	}
}

func TestSpecies_Within(t *testing.T) {
	tier1 := []int{9606, 10090, 10116, 7227, 6239, 7955}
	if !NewSpecies(9606, 7955).Within(tier1) {
		t.Error("human+zebrafish should be within tier 1")
	}
	if NewSpecies(9606, 9913).Within(tier1) {
		t.Error("cow is not tier 1")
	}
	if AllSpecies().Within(tier1) {
		t.Error("all is never within a set")
	}
	if !DefaultSpecies().Within(tier1) {
		t.Error("default species should be within tier 1")
	}
}

func TestSpecies_FilterAll(t *testing.T) {
	q := Match{Field: "symbol", Query: "cdk2"}
	if got := AllSpecies().filter(q); !reflect.DeepEqual(got, q) {
		t.Errorf("all species wrapped the query: %#v", got)
	}
}
