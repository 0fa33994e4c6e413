package gene

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/interval"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	"github.com/kailas-cloud/genedex/internal/domain/result"
)

// Defaults applied when Config leaves a value unset.
const (
	DefaultBatchSize = 1000
	DefaultKeepAlive = 5 * time.Minute
	DefaultSize      = 10
	DefaultMaxSize   = 1000
	DefaultMaxIDs    = 1000
)

// Config holds the service limits and routing table.
type Config struct {
	Targets     Targets
	DefaultSize int
	MaxSize     int
	MaxIDs      int
	BatchSize   int
	KeepAlive   time.Duration
}

func (c *Config) applyDefaults() {
	if c.DefaultSize <= 0 {
		c.DefaultSize = DefaultSize
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.MaxIDs <= 0 {
		c.MaxIDs = DefaultMaxIDs
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = DefaultKeepAlive
	}
}

// LookupOptions shape an identifier lookup.
type LookupOptions struct {
	Fields  []string
	Scope   query.Scope
	Species query.Species
	Index   string
}

// SearchOptions shape a text or interval search. TaxID enables coordinate
// detection in free text.
type SearchOptions struct {
	Page  query.Options
	Mode  query.Mode
	TaxID int
	Index string
}

// Option configures a Service.
type Option func(*Service)

// WithLookuper routes single identifier lookups through l, e.g. a cache.
func WithLookuper(l Lookuper) Option {
	return func(s *Service) { s.lookups = l }
}

// WithClock replaces the wall clock used for cursor idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service resolves identifiers, runs searches and opens scroll walks.
// It holds no per-call state and is safe for concurrent use.
type Service struct {
	repo    Repository
	lookups Lookuper
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a gene service.
func New(repo Repository, cfg Config, logger *zap.Logger, opts ...Option) *Service {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{repo: repo, lookups: repo, cfg: cfg, logger: logger, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetByID resolves one identifier against opts.Scope.
func (s *Service) GetByID(ctx context.Context, id string, opts LookupOptions) (result.Lookup, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return result.Lookup{}, domain.NewInvalidInput("id", "is required")
	}
	b := query.NewBuilder(query.Options{Fields: opts.Fields, Species: opts.Species})
	body, err := b.Identifier(id, opts.Scope)
	if err != nil {
		return result.Lookup{}, err
	}
	if query.IsNoHits(body.Query) {
		return result.Lookup{Query: id}, nil
	}
	return s.lookups.Lookup(ctx, s.cfg.Targets.Resolve(opts.Species, opts.Index), id, body)
}

// GetByIDs resolves identifiers in one batch. The result is index-aligned with ids.
func (s *Service) GetByIDs(ctx context.Context, ids []string, opts LookupOptions) ([]result.Lookup, error) {
	if len(ids) == 0 {
		return nil, domain.NewInvalidInput("ids", "is required")
	}
	if len(ids) > s.cfg.MaxIDs {
		return nil, domain.NewInvalidInput("ids", fmt.Sprintf("at most %d ids per request, got %d", s.cfg.MaxIDs, len(ids)))
	}
	trimmed := make([]string, len(ids))
	for i, id := range ids {
		trimmed[i] = strings.TrimSpace(id)
	}

	b := query.NewBuilder(query.Options{Fields: opts.Fields, Species: opts.Species})
	batch, err := b.Identifiers(trimmed, opts.Scope)
	if err != nil {
		return nil, err
	}
	return s.repo.LookupMany(ctx, s.cfg.Targets.Resolve(opts.Species, opts.Index), batch)
}

// Search runs a free-text search. With a caller taxid, a coordinate term
// such as "chr1:1,000-2,000" becomes an interval search.
func (s *Service) Search(ctx context.Context, term string, opts SearchOptions) (*result.Page, error) {
	target, body, err := s.plan(term, opts)
	if err != nil {
		return nil, err
	}
	page, err := s.repo.Search(ctx, target, body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Search finished",
		zap.String("index", target),
		zap.Int("hits", len(page.Docs)),
		zap.Int("total", page.Total),
		zap.Bool("rejected", page.Failed()),
	)
	return page, nil
}

// SearchInterval finds genes overlapping a genomic range.
func (s *Service) SearchInterval(ctx context.Context, iv interval.Query, opts SearchOptions) (*result.Page, error) {
	target, body, err := s.intervalPlan(iv, opts)
	if err != nil {
		return nil, err
	}
	return s.repo.Search(ctx, target, body)
}

// BuildQuery returns the body Search would send, without sending it.
func (s *Service) BuildQuery(term string, opts SearchOptions) (query.Body, error) {
	_, body, err := s.plan(term, opts)
	return body, err
}

func (s *Service) plan(term string, opts SearchOptions) (string, query.Body, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", query.Body{}, domain.NewInvalidInput("q", "is required")
	}
	if opts.TaxID > 0 {
		iv, ok, err := interval.Parse(opts.TaxID, term)
		if err != nil {
			return "", query.Body{}, err
		}
		if ok {
			return s.intervalPlan(iv, opts)
		}
	}

	page, err := s.page(opts.Page)
	if err != nil {
		return "", query.Body{}, err
	}
	requested := opts.Mode
	if requested == 0 {
		requested = query.Scored
	}
	body, err := query.NewBuilder(page).Text(term, query.DetectMode(term, requested))
	if err != nil {
		return "", query.Body{}, err
	}
	return s.cfg.Targets.Resolve(page.Species, opts.Index), body, nil
}

func (s *Service) intervalPlan(iv interval.Query, opts SearchOptions) (string, query.Body, error) {
	page, err := s.page(opts.Page.WithDefaultFields(gene.DefaultIntervalFields()))
	if err != nil {
		return "", query.Body{}, err
	}
	body := query.NewBuilder(page).Interval(iv)
	return s.cfg.Targets.Resolve(query.NewSpecies(iv.TaxID), opts.Index), body, nil
}

func (s *Service) page(o query.Options) (query.Options, error) {
	if err := o.Validate(s.cfg.MaxSize); err != nil {
		return query.Options{}, domain.NewInvalidInput("options", err.Error())
	}
	if o.Size == 0 {
		o.Size = s.cfg.DefaultSize
	}
	return o, nil
}

// Fetch reads one document by its primary id.
func (s *Service) Fetch(ctx context.Context, id string, fields []string, index string) (result.Lookup, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return result.Lookup{}, domain.NewInvalidInput("id", "is required")
	}
	return s.repo.Get(ctx, s.cfg.Targets.Resolve(query.AllSpecies(), index), id, fields)
}

// FetchMany reads documents by primary id in one backend round trip, one
// lookup per id in input order.
func (s *Service) FetchMany(ctx context.Context, ids []string, fields []string, index string) ([]result.Lookup, error) {
	if len(ids) > s.cfg.MaxIDs {
		return nil, domain.NewInvalidInput("ids", fmt.Sprintf("at most %d ids per request, got %d", s.cfg.MaxIDs, len(ids)))
	}
	clean := make([]string, len(ids))
	for i, id := range ids {
		clean[i] = strings.TrimSpace(id)
		if clean[i] == "" {
			return nil, domain.NewInvalidInput("ids", fmt.Sprintf("empty id at position %d", i))
		}
	}
	return s.repo.GetMany(ctx, s.cfg.Targets.Resolve(query.AllSpecies(), index), clean, fields)
}

// Metadata describes the searchable fields of the default or given index.
func (s *Service) Metadata(ctx context.Context, index string) (result.Metadata, error) {
	return s.repo.Metadata(ctx, s.cfg.Targets.Resolve(query.AllSpecies(), index))
}

// ScrollOptions shape an exhaustive walk.
type ScrollOptions struct {
	// Filter is a query-string expression such as "taxid:9606". Empty walks everything.
	Filter    string
	Fields    []string
	// From skips that many leading documents of the walk.
	From      int
	Index     string
	BatchSize int
	KeepAlive time.Duration
	// Stop ends the walk at the first batch boundary past this many documents. 0 = no bound.
	Stop int
}

// Scroll prepares a lazy walk. Nothing is sent until the first Next.
func (s *Service) Scroll(opts ScrollOptions) (*Iterator, error) {
	if opts.Stop < 0 {
		return nil, domain.NewInvalidInput("stop", "must be >= 0")
	}
	if opts.From < 0 {
		return nil, domain.NewInvalidInput("from", "must be >= 0")
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = s.cfg.BatchSize
	}
	keepAlive := opts.KeepAlive
	if keepAlive <= 0 {
		keepAlive = s.cfg.KeepAlive
	}
	b := query.NewBuilder(query.Options{Fields: opts.Fields, Size: batch})
	return newIterator(iteratorConfig{
		repo:      s.repo,
		index:     s.cfg.Targets.Resolve(query.AllSpecies(), opts.Index),
		body:      b.Filter(opts.Filter),
		keepAlive: keepAlive,
		stop:      opts.Stop,
		skip:      opts.From,
		now:       s.now,
		logger:    s.logger,
	}), nil
}
