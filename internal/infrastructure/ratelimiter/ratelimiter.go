package ratelimiter

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultSourceKey = "X-Forwarded-For"

type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

type Config struct {
	MaxRatePerSecond int
	MaxBurst         int
	// CacheTTL is how long an idle source keeps its bucket.
	CacheTTL        time.Duration
	SourceHeaderKey string
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per source.
type RateLimiter struct {
	limit           rate.Limit
	maxBurst        int
	cacheTTL        time.Duration
	sourceHeaderKey string
	now             func() time.Time

	mu      sync.Mutex
	sources map[string]*entry
}

func New(cfg Config) *RateLimiter {
	if cfg.MaxRatePerSecond <= 0 {
		cfg.MaxRatePerSecond = 10
	}
	if cfg.MaxBurst <= 0 {
		cfg.MaxBurst = cfg.MaxRatePerSecond
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.SourceHeaderKey == "" {
		cfg.SourceHeaderKey = defaultSourceKey
	}

	return &RateLimiter{
		limit:           rate.Limit(cfg.MaxRatePerSecond),
		maxBurst:        cfg.MaxBurst,
		cacheTTL:        cfg.CacheTTL,
		sourceHeaderKey: cfg.SourceHeaderKey,
		now:             time.Now,
		sources:         make(map[string]*entry),
	}
}

func (rl *RateLimiter) Allow(sourceKey string) bool {
	return rl.bucket(sourceKey).AllowN(rl.now(), 1)
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	tokens := int(rl.bucket(sourceKey).TokensAt(rl.now()))
	if tokens < 0 {
		return 0
	}
	return tokens
}

func (rl *RateLimiter) GetMaxBurst() int { return rl.maxBurst }

// GetSourceKey prefers the first address of the configured header and falls
// back to the remote host.
func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if v := r.Header.Get(rl.sourceHeaderKey); v != "" {
		first, _, _ := strings.Cut(v, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) bucket(sourceKey string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.evictIdle(now)

	e, ok := rl.sources[sourceKey]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.limit, rl.maxBurst)}
		rl.sources[sourceKey] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	for key, e := range rl.sources {
		if now.Sub(e.lastSeen) > rl.cacheTTL {
			delete(rl.sources, key)
		}
	}
}
