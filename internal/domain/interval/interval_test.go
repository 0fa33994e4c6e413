package interval

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
)

func TestQuery_Matches(t *testing.T) {
	q, err := New(9606, "chrX", 100, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Chr != "X" {
		t.Errorf("chr = %q, want X", q.Chr)
	}

	tests := []struct {
		name  string
		taxid int
		pos   gene.GenomicPos
		want  bool
	}{
		{"inside", 9606, gene.GenomicPos{Chr: "X", Start: 150, End: 160}, true},
		{"after", 9606, gene.GenomicPos{Chr: "X", Start: 300, End: 400}, false},
		{"other organism", 10090, gene.GenomicPos{Chr: "X", Start: 150, End: 160}, false},
		{"other chromosome", 9606, gene.GenomicPos{Chr: "Y", Start: 150, End: 160}, false},
		{"spans", 9606, gene.GenomicPos{Chr: "X", Start: 50, End: 500}, true},
		{"touches start", 9606, gene.GenomicPos{Chr: "X", Start: 10, End: 100}, true},
		{"touches end", 9606, gene.GenomicPos{Chr: "X", Start: 200, End: 210}, true},
		{"before", 9606, gene.GenomicPos{Chr: "X", Start: 10, End: 99}, false},
		{"prefixed chromosome", 9606, gene.GenomicPos{Chr: "chrX", Start: 150, End: 160}, true},
		{"chromosome case differs", 9606, gene.GenomicPos{Chr: "x", Start: 150, End: 160}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.Matches(tt.taxid, tt.pos); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuery_MatchesDocument(t *testing.T) {
	q, _ := New(9606, "1", 1000, 2000)
	doc := gene.Document{
		"_id":   "1017",
		"taxid": float64(9606),
		"genomic_pos": []any{
			map[string]any{"chr": "HSCHR1_CTG", "start": float64(1500), "end": float64(1600)},
			map[string]any{"chr": "1", "start": float64(1900), "end": float64(2500)},
		},
	}
	if !q.MatchesDocument(doc) {
		t.Error("document with overlapping second placement should match")
	}
	doc["taxid"] = float64(10090)
	if q.MatchesDocument(doc) {
		t.Error("document of another organism should not match")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		taxid int
		chr   string
		start int64
		end   int64
	}{
		{"no taxid", 0, "1", 1, 2},
		{"no chromosome", 9606, "chr", 1, 2},
		{"empty chromosome", 9606, "", 1, 2},
		{"reversed", 9606, "1", 20, 10},
		{"negative", 9606, "1", -1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.taxid, tt.chr, tt.start, tt.end)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestFromStrings(t *testing.T) {
	q, err := FromStrings("9606", "CHR12", "1,000", "2,500,000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Query{TaxID: 9606, Chr: "12", Start: 1000, End: 2500000}
	if q != want {
		t.Errorf("FromStrings = %+v, want %+v", q, want)
	}

	if _, err := FromStrings("human", "1", "1", "2"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad taxid: err = %v", err)
	}
	if _, err := FromStrings("9606", "1", "abc", "2"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad start: err = %v", err)
	}
}

func TestParse(t *testing.T) {
	q, ok, err := Parse(9606, "chr1:151,073,054-151,383,976")
	if err != nil || !ok {
		t.Fatalf("Parse = %v, %v", ok, err)
	}
	want := Query{TaxID: 9606, Chr: "1", Start: 151073054, End: 151383976}
	if q != want {
		t.Errorf("Parse = %+v, want %+v", q, want)
	}

	if _, ok, _ := Parse(9606, "cdk2"); ok {
		t.Error("plain term parsed as interval")
	}
	if !LooksLikeInterval("genes in chrX:100-200") {
		t.Error("embedded coordinates not detected")
	}
	if _, ok, err := Parse(9606, "chrX:300-200"); !ok || !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("reversed range: ok=%v err=%v", ok, err)
	}
}
