package query

import "encoding/json"

// Body is a complete search request: the clause tree plus page options.
type Body struct {
	Query   Clause
	Options Options
}

// Source renders the request body.
func (b Body) Source() map[string]any {
	q := b.Query
	if q == nil {
		q = MatchAll{}
	}
	out := map[string]any{"query": q.Source()}
	o := b.Options
	if len(o.Fields) > 0 {
		out["_source"] = append([]string(nil), o.Fields...)
	}
	if o.From > 0 {
		out["from"] = o.From
	}
	if o.Size > 0 {
		out["size"] = o.Size
	}
	if s := o.sortable(); len(s) > 0 {
		sort := make([]any, len(s))
		for i, f := range s {
			sort[i] = f.Source()
		}
		out["sort"] = sort
	}
	if o.Explain {
		out["explain"] = true
	}
	if o.Version {
		out["version"] = true
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (b Body) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Source())
}
