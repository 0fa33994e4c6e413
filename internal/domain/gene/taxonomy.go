package gene

import "strings"

// Reference organism taxon ids.
const (
	TaxHuman      = 9606
	TaxMouse      = 10090
	TaxRat        = 10116
	TaxFruitfly   = 7227
	TaxNematode   = 6239
	TaxZebrafish  = 7955
	TaxThaleCress = 3702
	TaxFrog       = 8364
	TaxPig        = 9823
)

var commonNames = map[string]int{
	"human":       TaxHuman,
	"mouse":       TaxMouse,
	"rat":         TaxRat,
	"fruitfly":    TaxFruitfly,
	"nematode":    TaxNematode,
	"zebrafish":   TaxZebrafish,
	"thale-cress": TaxThaleCress,
	"frog":        TaxFrog,
	"pig":         TaxPig,
}

// DefaultSpecies is the organism set searched when the caller does not choose one.
func DefaultSpecies() []int {
	return []int{TaxHuman, TaxMouse, TaxRat, TaxFruitfly, TaxNematode}
}

// Tier1Species are the organisms kept in the reduced tier-1 index.
func Tier1Species() []int {
	return []int{
		TaxHuman, TaxMouse, TaxRat, TaxFruitfly, TaxNematode,
		TaxZebrafish, TaxThaleCress, TaxFrog, TaxPig,
	}
}

// TaxIDByName resolves a common organism name (case-insensitive).
func TaxIDByName(name string) (int, bool) {
	id, ok := commonNames[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// TaxonBoost is a relevance multiplier applied to hits from one organism.
type TaxonBoost struct {
	TaxID  int
	Weight float64
}

// TaxonBoosts lists organism multipliers in priority order.
func TaxonBoosts() []TaxonBoost {
	return []TaxonBoost{
		{TaxID: TaxHuman, Weight: 1.5},
		{TaxID: TaxMouse, Weight: 1.3},
		{TaxID: TaxRat, Weight: 1.1},
	}
}

// PseudogeneWeight down-weights pseudogene records.
const PseudogeneWeight = 0.5
