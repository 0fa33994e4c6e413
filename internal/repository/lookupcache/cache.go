package lookupcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/db"
	"github.com/kailas-cloud/genedex/internal/domain/gene"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	"github.com/kailas-cloud/genedex/internal/domain/result"
)

const keyPrefix = "lookup:"

// lookuper is the decorated identifier resolver.
type lookuper interface {
	Lookup(ctx context.Context, index, id string, body query.Body) (result.Lookup, error)
}

// store is the consumer interface for the cache backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type entry struct {
	Docs []gene.Document `json:"docs"`
}

// CachedLookuper caches identifier lookups in a key-value store. Backend
// rejections and failures are never cached.
type CachedLookuper struct {
	inner      lookuper
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner lookuper,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedLookuper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLookuper{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Lookup returns a cached lookup or resolves it through the inner lookuper.
func (c *CachedLookuper) Lookup(ctx context.Context, index, id string, body query.Body) (result.Lookup, error) {
	key, err := cacheKey(index, id, body)
	if err != nil {
		return c.inner.Lookup(ctx, index, id, body)
	}

	if docs, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return result.Lookup{Query: id, Docs: docs}, nil
	}
	c.incCache("miss")

	l, err := c.inner.Lookup(ctx, index, id, body)
	if err != nil {
		return result.Lookup{}, fmt.Errorf("lookup %q: %w", id, err)
	}
	if l.Err == nil {
		c.putToCache(ctx, key, l.Docs)
	}
	return l, nil
}

func (c *CachedLookuper) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(index, id string, body query.Body) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(index))
	h.Write([]byte{0})
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write(data)
	return keyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

func (c *CachedLookuper) getFromCache(ctx context.Context, key string) ([]gene.Document, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached lookup", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Failed to parse cached lookup", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return e.Docs, true
}

func (c *CachedLookuper) putToCache(ctx context.Context, key string, docs []gene.Document) {
	data, err := json.Marshal(entry{Docs: docs})
	if err != nil {
		c.logger.Warn("Failed to encode lookup for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache lookup", zap.String("key", key), zap.Error(err))
	}
}
