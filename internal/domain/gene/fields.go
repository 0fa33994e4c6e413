package gene

// Indexed document fields referenced by query construction.
const (
	FieldEntrezGene  = "entrezgene"
	FieldRetired     = "retired"
	FieldEnsemblGene = "ensemblgene"
	FieldSymbol      = "symbol"
	FieldName        = "name"
	FieldUnigene     = "unigene"
	FieldGO          = "go"
	FieldTaxID       = "taxid"
	FieldGenomicPos  = "genomic_pos"

	// AllFields is the catch-all pattern covering every indexed text field.
	AllFields = "*"
)

// Nested genomic position sub-fields.
const (
	FieldGenomicChr   = FieldGenomicPos + ".chr"
	FieldGenomicStart = FieldGenomicPos + ".start"
	FieldGenomicEnd   = FieldGenomicPos + ".end"
)

// Analyzer names configured on the gene index.
const (
	AnalyzerWhitespaceLowercase = "whitespace_lowercase"
	AnalyzerStringLowercase     = "string_lowercase"
)

// PseudogeneMarker is the name term that marks pseudogene records.
const PseudogeneMarker = "pseudogene"

var integerFields = map[string]struct{}{
	FieldEntrezGene: {},
	FieldRetired:    {},
}

// IsIntegerField reports whether the field only holds integer identifiers.
func IsIntegerField(field string) bool {
	_, ok := integerFields[field]
	return ok
}

// DefaultIntegerScopes are searched for integer-shaped identifiers when no scope is given.
func DefaultIntegerScopes() []string { return []string{FieldEntrezGene, FieldRetired} }

// DefaultStringScope is searched for string-shaped identifiers when no scope is given.
const DefaultStringScope = FieldEnsemblGene

// DefaultIntervalFields are returned by coordinate queries when the caller names none.
func DefaultIntervalFields() []string { return []string{FieldSymbol, FieldName, FieldTaxID} }
