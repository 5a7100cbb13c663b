package recs

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"mediapick/recservice/internal/domain"
)

var (
	ErrNoContentTypes = errors.New("at least one content type is required")
	ErrNoSources      = errors.New("no catalog sources configured")
	ErrUnknownType    = errors.New("unknown content type")

	// ErrUpstreamUnavailable is wrapped by sources when a catalog API fails to
	// respond or returns an error status. The fetch layer recovers it with
	// fallback content; it never propagates to callers.
	ErrUpstreamUnavailable = errors.New("upstream catalog unavailable")

	// ErrRateLimited marks an upstream 429. Treated exactly like
	// ErrUpstreamUnavailable: fallback content, no dedicated backoff policy.
	ErrRateLimited = errors.New("upstream catalog rate limited")

	// ErrSimilarUnsupported is returned by sources with no "similar items"
	// endpoint. The similarity chain then reuses the keyword search results.
	ErrSimilarUnsupported = errors.New("similar lookup not supported")
)

// NormalizationError reports a raw upstream record that lacks the minimum
// fields needed to build a MediaItem. Sources drop the record and continue.
type NormalizationError struct {
	Source string
	Reason string
}

func (e *NormalizationError) Error() string {
	return "cannot normalize " + e.Source + " record: " + e.Reason
}

// SourceQuery carries the per-request parameters a catalog source needs.
type SourceQuery struct {
	Genres   []string
	Language string
	Regional bool
	Page     int
}

// Source is one catalog backend for a single content type.
type Source interface {
	Type() domain.ContentType
	Info() domain.SourceInfo
	FetchPopular(ctx context.Context, query SourceQuery) ([]domain.MediaItem, error)
	SearchByKeyword(ctx context.Context, keyword string, query SourceQuery) ([]domain.MediaItem, error)
	FetchSimilar(ctx context.Context, id string, query SourceQuery) ([]domain.MediaItem, error)
}

type Service struct {
	sources  map[domain.ContentType]Source
	fallback Catalog
	timeout  time.Duration

	cacheDisabled bool
	cacheMu       sync.RWMutex
	cache         map[string]*cachedBatch
	cacheCfg      batchCacheConfig
	redisCache    *RedisCacheBackend

	healthMu sync.Mutex
	health   map[domain.ContentType]*sourceHealth

	limiterMu sync.Mutex
	limiters  map[domain.ContentType]*rate.Limiter
	sourceRPS float64

	sessions *SessionStore

	randMu sync.Mutex
	randFn func(n int) int
}

type ServiceOption func(*Service)

func WithRedisCache(backend *RedisCacheBackend) ServiceOption {
	return func(s *Service) {
		s.redisCache = backend
	}
}

func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheCfg.ttl = ttl
			s.cacheCfg.staleTTL = ttl * 3
		}
	}
}

func WithCacheDisabled(disabled bool) ServiceOption {
	return func(s *Service) {
		s.cacheDisabled = disabled
	}
}

// WithSourceRateLimit caps outbound requests per second per catalog source.
// Jikan in particular enforces ~3 rps; default pacing stays under that.
func WithSourceRateLimit(rps float64) ServiceOption {
	return func(s *Service) {
		if rps > 0 {
			s.sourceRPS = rps
		}
	}
}

// WithFallbackCatalog replaces the built-in static fallback lists.
func WithFallbackCatalog(catalog Catalog) ServiceOption {
	return func(s *Service) {
		s.fallback = catalog
	}
}

// withRandFn injects a deterministic picker for tests.
func withRandFn(fn func(n int) int) ServiceOption {
	return func(s *Service) {
		s.randFn = fn
	}
}

func NewService(sources []Source, timeout time.Duration, opts ...ServiceOption) *Service {
	registry := make(map[domain.ContentType]Source, len(sources))
	for _, source := range sources {
		if source == nil {
			continue
		}
		if _, exists := registry[source.Type()]; exists {
			continue
		}
		registry[source.Type()] = source
	}

	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	svc := &Service{
		sources:   registry,
		fallback:  DefaultCatalog(),
		timeout:   timeout,
		cache:     make(map[string]*cachedBatch),
		cacheCfg:  defaultBatchCacheConfig(),
		health:    make(map[domain.ContentType]*sourceHealth),
		limiters:  make(map[domain.ContentType]*rate.Limiter),
		sourceRPS: 2,
		sessions:  NewSessionStore(),
		randFn:    rand.IntN,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) pickIndex(n int) int {
	if n <= 1 {
		return 0
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.randFn(n)
}

func (s *Service) limiterFor(contentType domain.ContentType) *rate.Limiter {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	limiter := s.limiters[contentType]
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(s.sourceRPS), 1)
		s.limiters[contentType] = limiter
	}
	return limiter
}

// Sources lists the configured catalog sources sorted by content type.
func (s *Service) Sources() []domain.SourceInfo {
	if len(s.sources) == 0 {
		return nil
	}
	items := make([]domain.SourceInfo, 0, len(s.sources))
	for contentType, source := range s.sources {
		info := source.Info()
		if info.Type == "" {
			info.Type = contentType
		}
		if info.Label == "" {
			info.Label = info.Name
		}
		items = append(items, info)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Type < items[j].Type
	})
	return items
}
