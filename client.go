// Package genedex is an in-process client for gene lookup, search and export
// over an Elasticsearch gene index.
package genedex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/db"
	"github.com/kailas-cloud/genedex/internal/db/breaker"
	"github.com/kailas-cloud/genedex/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/genedex/internal/db/redis"
	repogene "github.com/kailas-cloud/genedex/internal/repository/gene"
	"github.com/kailas-cloud/genedex/internal/repository/lookupcache"
	geneuc "github.com/kailas-cloud/genedex/internal/usecase/gene"
)

const (
	defaultIndex            = "genedoc"
	defaultReadinessTimeout = 10 * time.Second
)

// Client is the genedex SDK entry point. It is safe for concurrent use;
// iterators it returns are not.
type Client struct {
	store db.Store
	cache db.Cache
	svc   *geneuc.Service
	obs   *observer
}

// New creates a Client and waits for the cluster to answer.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		index:            defaultIndex,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o(cfg)
	}
	if len(cfg.addrs) == 0 {
		return nil, errors.New("genedex: cluster address required (use WithElasticsearch)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("genedex: cluster not ready: %w", err)
	}

	c := &Client{store: store, obs: obs}
	if len(cfg.cacheAddrs) > 0 {
		cache, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.cacheAddrs,
			Password:  cfg.cachePassword,
			KeyPrefix: "genedex:",
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("genedex: create lookup cache: %w", err)
		}
		c.cache = cache
	}
	c.svc = wireService(store, c.cache, cfg)
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	es, err := elastic.NewStore(elastic.Config{
		Addrs:          cfg.addrs,
		Username:       cfg.username,
		Password:       cfg.password,
		APIKey:         cfg.apiKey,
		RequestTimeout: cfg.requestTimeout,
		Transport:      cfg.transport,
	})
	if err != nil {
		return nil, fmt.Errorf("genedex: create cluster client: %w", err)
	}
	if cfg.breaker {
		return breaker.New(es, breaker.Config{Name: "sdk"}, cfg.logger), nil
	}
	return es, nil
}

func wireService(store db.Store, cache db.Cache, cfg *clientConfig) *geneuc.Service {
	repo := repogene.New(store, cfg.logger)
	var opts []geneuc.Option
	if cache != nil {
		opts = append(opts, geneuc.WithLookuper(lookupcache.New(repo, cache, cfg.cacheTTL, nil, cfg.logger)))
	}
	return geneuc.New(repo, geneuc.Config{
		Targets: geneuc.Targets{
			Index:      cfg.index,
			Tier1Index: cfg.tier1Index,
			Tier1Taxa:  cfg.tier1Taxa,
		},
	}, cfg.logger, opts...)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err, nil) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Gene resolves one identifier: an Entrez id, Ensembl id, symbol or any
// field named by opts.Scope.
func (c *Client) Gene(ctx context.Context, id string, opts LookupOptions) (l Lookup, err error) {
	start := time.Now()
	defer func() { c.obs.observe("gene.get", start, err, l.Err) }()
	return c.svc.GetByID(ctx, id, opts)
}

// Genes resolves identifiers in one round trip. The result is index-aligned with ids.
func (c *Client) Genes(ctx context.Context, ids []string, opts LookupOptions) (ls []Lookup, err error) {
	start := time.Now()
	defer func() { c.obs.observe("gene.get_many", start, err, lookupsRejection(ls)) }()
	return c.svc.GetByIDs(ctx, ids, opts)
}

// Query runs a free-text search. A query the cluster rejects is reported
// in Page.Err, not as an error.
func (c *Client) Query(ctx context.Context, term string, opts SearchOptions) (p *Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err, pageRejection(p)) }()
	return c.svc.Search(ctx, term, opts)
}

// Interval finds genes overlapping a genomic range.
func (c *Client) Interval(ctx context.Context, iv Interval, opts SearchOptions) (p *Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("interval", start, err, pageRejection(p)) }()
	return c.svc.SearchInterval(ctx, iv, opts)
}

// Fetch reads documents by primary id.
func (c *Client) Fetch(ctx context.Context, ids []string, fields []string) (ls []Lookup, err error) {
	start := time.Now()
	defer func() { c.obs.observe("fetch", start, err, nil) }()
	return c.svc.FetchMany(ctx, ids, fields, "")
}

// Metadata lists the searchable fields of the default index.
func (c *Client) Metadata(ctx context.Context) (m Metadata, err error) {
	start := time.Now()
	defer func() { c.obs.observe("metadata", start, err, nil) }()
	return c.svc.Metadata(ctx, "")
}

// Scroll prepares an exhaustive walk. The caller must Close the iterator.
func (c *Client) Scroll(opts ScrollOptions) (*Iterator, error) {
	return c.svc.Scroll(opts)
}
