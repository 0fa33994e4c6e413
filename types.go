package genedex

import (
	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/interval"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	"github.com/kailas-cloud/genedex/internal/domain/result"
	geneuc "github.com/kailas-cloud/genedex/internal/usecase/gene"
)

type (
	// Document is one gene record keyed by field name, plus _id and _version.
	Document = gene.Document
	// Lookup is the outcome of resolving one identifier.
	Lookup = result.Lookup
	// Page is one page of search hits.
	Page = result.Page
	// Metadata lists the searchable fields of an index.
	Metadata = result.Metadata
	// QueryError is a query the cluster refused to run.
	QueryError = result.QueryError
	// Interval is a genomic range on one chromosome of one organism.
	Interval = interval.Query
	// Species restricts a query to a set of organisms.
	Species = query.Species
	// Scope names the fields an identifier is matched against.
	Scope = query.Scope
	// Mode selects how free text becomes a query.
	Mode = query.Mode
	// PageOptions shape a result page.
	PageOptions = query.Options
	// SortField orders hits by one field.
	SortField = query.SortField
	// LookupOptions shape an identifier lookup.
	LookupOptions = geneuc.LookupOptions
	// SearchOptions shape a text or interval search.
	SearchOptions = geneuc.SearchOptions
	// ScrollOptions shape an exhaustive walk.
	ScrollOptions = geneuc.ScrollOptions
	// Iterator walks a result set batch by batch.
	Iterator = geneuc.Iterator
)

// Text query modes.
const (
	ModeScored     = query.Scored
	ModeStructured = query.Structured
	ModeRaw        = query.Raw
)

// Sentinel errors. Use errors.Is() to check.
var (
	ErrInvalidInput       = domain.ErrInvalidInput
	ErrNotFound           = domain.ErrNotFound
	ErrBackendUnavailable = domain.ErrBackendUnavailable
	ErrCursorExpired      = domain.ErrCursorExpired
	ErrCursorClosed       = domain.ErrCursorClosed
)

var (
	// AllSpecies disables the organism filter.
	AllSpecies = query.AllSpecies
	// NewSpecies builds an organism set from taxon ids.
	NewSpecies = query.NewSpecies
	// ParseSpecies parses "all" or a comma-separated list of taxon ids and common names.
	ParseSpecies = query.ParseSpecies
	// ScopeOf picks the identifier scope for a field list.
	ScopeOf = query.ScopeOf
	// NewInterval validates a genomic range.
	NewInterval = interval.New
)
