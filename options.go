package genedex

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs     []string
	username  string
	password  string
	apiKey    string
	transport http.RoundTripper

	index      string
	tier1Index string
	tier1Taxa  []int

	requestTimeout   time.Duration
	readinessTimeout time.Duration
	breaker          bool

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch sets the cluster addresses.
func WithElasticsearch(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = append([]string(nil), addrs...)
	}
}

// WithBasicAuth authenticates against the cluster with a username and password.
func WithBasicAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithAPIKey authenticates against the cluster with an encoded API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithTransport replaces the HTTP transport used to reach the cluster.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// WithIndex sets the default gene index. Default: "genedoc".
func WithIndex(index string) Option {
	return func(c *clientConfig) {
		c.index = index
	}
}

// WithTier1 routes queries confined to taxa (default: the reference
// organisms) to a smaller index.
func WithTier1(index string, taxa ...int) Option {
	return func(c *clientConfig) {
		c.tier1Index = index
		c.tier1Taxa = append([]int(nil), taxa...)
	}
}

// WithRequestTimeout bounds every backend request.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.requestTimeout = d
	}
}

// WithReadinessTimeout sets how long New waits for the cluster. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.readinessTimeout = d
	}
}

// WithCircuitBreaker fails fast while the cluster keeps erroring.
func WithCircuitBreaker() Option {
	return func(c *clientConfig) {
		c.breaker = true
	}
}

// WithLookupCache caches identifier lookups in Redis for ttl.
func WithLookupCache(addr, password string, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	}
}

// WithLogger enables structured logging. Default: disabled.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.metricsReg = reg
	}
}
