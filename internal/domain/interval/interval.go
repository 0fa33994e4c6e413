package interval

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
)

// Query is a genomic range on one chromosome of one organism.
type Query struct {
	TaxID int
	Chr   string
	Start int64
	End   int64
}

// New validates and normalizes a range. The "chr" prefix is stripped.
func New(taxid int, chr string, start, end int64) (Query, error) {
	if taxid <= 0 {
		return Query{}, domain.NewInvalidInput("taxid", fmt.Sprintf("must be positive, got %d", taxid))
	}
	chr = gene.NormalizeChr(chr)
	if chr == "" {
		return Query{}, domain.NewInvalidInput("chr", "is required")
	}
	if start < 0 || end < 0 {
		return Query{}, domain.NewInvalidInput("range", "coordinates must be non-negative")
	}
	if start > end {
		return Query{}, domain.NewInvalidInput("range", fmt.Sprintf("start %d is after end %d", start, end))
	}
	return Query{TaxID: taxid, Chr: chr, Start: start, End: end}, nil
}

// FromStrings parses caller-supplied values. Coordinates may carry thousands separators.
func FromStrings(taxid, chr, start, end string) (Query, error) {
	tid, err := strconv.Atoi(strings.TrimSpace(taxid))
	if err != nil {
		return Query{}, domain.NewInvalidInput("taxid", fmt.Sprintf("not an integer: %q", taxid))
	}
	s, err := parseCoord(start)
	if err != nil {
		return Query{}, domain.NewInvalidInput("start", err.Error())
	}
	e, err := parseCoord(end)
	if err != nil {
		return Query{}, domain.NewInvalidInput("end", err.Error())
	}
	return New(tid, chr, s, e)
}

var pattern = regexp.MustCompile(`chr(\w+):([0-9,]+)-([0-9,]+)`)

// Parse looks for a "chr<chr>:<start>-<end>" expression in text.
// ok is false when text holds no such expression.
func Parse(taxid int, text string) (q Query, ok bool, err error) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Query{}, false, nil
	}
	start, err := parseCoord(m[2])
	if err != nil {
		return Query{}, true, domain.NewInvalidInput("start", err.Error())
	}
	end, err := parseCoord(m[3])
	if err != nil {
		return Query{}, true, domain.NewInvalidInput("end", err.Error())
	}
	q, err = New(taxid, m[1], start, end)
	return q, true, err
}

// LooksLikeInterval reports whether text contains a coordinate expression.
func LooksLikeInterval(text string) bool {
	return pattern.MatchString(text)
}

func parseCoord(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}

// Matches reports whether a record of organism taxid placed at pos overlaps q.
func (q Query) Matches(taxid int, pos gene.GenomicPos) bool {
	return taxid == q.TaxID && pos.Overlaps(q.Chr, q.Start, q.End)
}

// MatchesDocument reports whether any placement of doc overlaps q.
func (q Query) MatchesDocument(doc gene.Document) bool {
	for _, pos := range doc.GenomicPositions() {
		if q.Matches(doc.TaxID(), pos) {
			return true
		}
	}
	return false
}

func (q Query) String() string {
	return fmt.Sprintf("chr%s:%d-%d (taxid %d)", q.Chr, q.Start, q.End, q.TaxID)
}
