package query

import "strings"

// Scope names the fields an identifier is matched against.
// Implementations: NoScope, SingleScope, MultiScope.
type Scope interface {
	isScope()
}

// NoScope searches the default identifier fields.
type NoScope struct{}

// SingleScope searches one field.
type SingleScope struct {
	Field string
}

// MultiScope searches several fields.
type MultiScope struct {
	Fields []string
}

func (NoScope) isScope()     {}
func (SingleScope) isScope() {}
func (MultiScope) isScope()  {}

// ParseScopes turns a comma-separated field list into a Scope.
func ParseScopes(s string) Scope {
	var fields []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			fields = append(fields, part)
		}
	}
	return ScopeOf(fields...)
}

// ScopeOf picks the Scope variant for a field list.
func ScopeOf(fields ...string) Scope {
	switch len(fields) {
	case 0:
		return NoScope{}
	case 1:
		return SingleScope{Field: fields[0]}
	default:
		return MultiScope{Fields: append([]string(nil), fields...)}
	}
}
