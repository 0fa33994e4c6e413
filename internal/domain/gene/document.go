package gene

import "maps"

// Reserved document keys.
const (
	KeyID      = "_id"
	KeyVersion = "_version"
	KeyScore   = "_score"
)

// Document is one gene record in its canonical shape: the stored fields at top
// level plus the _id key and, when the backend reports one, _version.
type Document map[string]any

// ID returns the document identifier.
func (d Document) ID() string {
	id, _ := d[KeyID].(string)
	return id
}

// Version returns the document version when one was reported.
func (d Document) Version() (int64, bool) {
	switch v := d[KeyVersion].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// TaxID returns the organism taxon id of the record, or 0.
func (d Document) TaxID() int {
	switch v := d[FieldTaxID].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Clone returns a shallow copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}
