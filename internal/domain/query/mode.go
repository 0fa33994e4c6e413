package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects how free text becomes a query.
type Mode int

// Text query modes.
const (
	// Scored ranks hits by the best of several boosted field matches.
	Scored Mode = iota + 1
	// Structured requires every term to match across the name fields or the catch-all.
	Structured
	// Raw hands the term to the backend's query-string parser.
	Raw
)

var modeNames = map[Mode]string{
	Scored:     "scored",
	Structured: "structured",
	Raw:        "raw",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts a mode name or its number. Empty input selects Scored.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Scored, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if m := Mode(n); m.IsValid() {
			return m, nil
		}
		return 0, fmt.Errorf("unknown query mode %d", n)
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown query mode %q", s)
}

var rawMarkers = []string{"*", "?", ":", " AND ", " OR "}

// IsRawQuery reports whether the term carries wildcard, fielded or boolean
// syntax. GO term ids ("GO:0008150") are exempt.
func IsRawQuery(term string) bool {
	if strings.HasPrefix(strings.ToLower(term), "go:") {
		return false
	}
	for _, m := range rawMarkers {
		if strings.Contains(term, m) {
			return true
		}
	}
	return false
}

// DetectMode returns Raw for raw-syntax terms, otherwise the requested mode.
func DetectMode(term string, requested Mode) Mode {
	if IsRawQuery(term) {
		return Raw
	}
	return requested
}

// ParseInteger reports whether s is integer-shaped, returning its value.
// Surrounding whitespace and a sign are accepted.
func ParseInteger(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
