package gene

import (
	"strconv"
	"strings"
)

// GenomicPos is one placement of a gene on a chromosome.
type GenomicPos struct {
	Chr    string
	Start  int64
	End    int64
	Strand int
}

// NormalizeChr strips a leading "chr" prefix: "chr1" and "1" name the same chromosome.
func NormalizeChr(chr string) string {
	chr = strings.TrimSpace(chr)
	if len(chr) >= 3 && strings.EqualFold(chr[:3], "chr") {
		return chr[3:]
	}
	return chr
}

// Overlaps reports whether the placement intersects [start, end] on chr.
// Chromosome names compare exactly once the "chr" prefix is stripped, as the
// backend's keyword term does.
func (p GenomicPos) Overlaps(chr string, start, end int64) bool {
	return NormalizeChr(p.Chr) == NormalizeChr(chr) &&
		p.Start <= end && p.End >= start
}

// GenomicPositions extracts placements from a document's genomic_pos field,
// which holds either one object or a list of them.
func (d Document) GenomicPositions() []GenomicPos {
	switch v := d[FieldGenomicPos].(type) {
	case map[string]any:
		return []GenomicPos{parsePos(v)}
	case []any:
		out := make([]GenomicPos, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, parsePos(m))
			}
		}
		return out
	default:
		return nil
	}
}

func parsePos(m map[string]any) GenomicPos {
	var p GenomicPos
	switch c := m["chr"].(type) {
	case string:
		p.Chr = c
	case float64:
		p.Chr = strconv.FormatInt(int64(c), 10)
	}
	p.Start = toInt64(m["start"])
	p.End = toInt64(m["end"])
	p.Strand = int(toInt64(m["strand"]))
	return p
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
