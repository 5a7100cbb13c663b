package recs

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"mediapick/recservice/internal/domain"
	"mediapick/recservice/internal/metrics"
)

const (
	defaultBatchTTL        = 10 * time.Minute
	defaultBatchStaleTTL   = 30 * time.Minute
	defaultBatchMaxEntries = 400
)

// The batch cache sits below session personalization: it holds raw popular
// batches per (source, query, page), never assembled responses. Two sessions
// with the same filters share upstream fetches but still get their own
// dedup and pagination state.
type batchCacheConfig struct {
	ttl        time.Duration
	staleTTL   time.Duration
	maxEntries int
}

func defaultBatchCacheConfig() batchCacheConfig {
	return batchCacheConfig{
		ttl:        defaultBatchTTL,
		staleTTL:   defaultBatchStaleTTL,
		maxEntries: defaultBatchMaxEntries,
	}
}

type cachedBatch struct {
	items       []domain.MediaItem
	updatedAt   time.Time
	expiresAt   time.Time
	staleUntil  time.Time
	refreshOnce sync.Once
}

func batchCacheKey(contentType domain.ContentType, kind string, query SourceQuery) string {
	genres := append([]string(nil), query.Genres...)
	for i, genre := range genres {
		genres[i] = strings.ToLower(strings.TrimSpace(genre))
	}
	sort.Strings(genres)

	return strings.Join([]string{
		"t=" + string(contentType),
		"k=" + kind,
		"g=" + strings.Join(genres, ","),
		"lang=" + strings.ToLower(query.Language),
		"r=" + strconv.FormatBool(query.Regional),
		"p=" + strconv.Itoa(query.Page),
	}, "|")
}

// cacheLookup returns a cached batch if present. The third result asks the
// caller to kick off a background refresh: the entry is past its TTL but
// still inside the stale window, and this caller won the refreshOnce race.
func (s *Service) cacheLookup(key string, now time.Time) ([]domain.MediaItem, bool, bool) {
	if s.cacheDisabled {
		return nil, false, false
	}

	if s.redisCache != nil {
		items, found, err := s.redisCache.Get(context.Background(), key)
		if err == nil && found {
			metrics.CacheHitsTotal.Inc()
			s.cacheStoreMemoryOnly(key, items, now)
			return items, true, false
		}
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		metrics.CacheMissesTotal.Inc()
		return nil, false, false
	}

	if now.Before(entry.expiresAt) {
		metrics.CacheHitsTotal.Inc()
		return cloneItems(entry.items), true, false
	}

	if now.Before(entry.staleUntil) {
		metrics.CacheHitsTotal.Inc()
		needsRefresh := false
		entry.refreshOnce.Do(func() {
			needsRefresh = true
		})
		return cloneItems(entry.items), true, needsRefresh
	}

	metrics.CacheMissesTotal.Inc()
	delete(s.cache, key)
	return nil, false, false
}

func (s *Service) cacheStore(key string, items []domain.MediaItem, now time.Time) {
	if s.cacheDisabled {
		return
	}

	if s.redisCache != nil {
		_ = s.redisCache.Set(context.Background(), key, items, s.cacheCfg.ttl)
	}

	s.cacheStoreMemoryOnly(key, items, now)
}

func (s *Service) cacheStoreMemoryOnly(key string, items []domain.MediaItem, now time.Time) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache[key] = &cachedBatch{
		items:      cloneItems(items),
		updatedAt:  now,
		expiresAt:  now.Add(s.cacheCfg.ttl),
		staleUntil: now.Add(s.cacheCfg.staleTTL),
	}
	s.trimCacheLocked(now)
}

func (s *Service) trimCacheLocked(now time.Time) {
	for key, entry := range s.cache {
		if now.After(entry.staleUntil) {
			delete(s.cache, key)
		}
	}

	maxEntries := s.cacheCfg.maxEntries
	if maxEntries <= 0 {
		maxEntries = defaultBatchMaxEntries
	}
	if len(s.cache) <= maxEntries {
		return
	}

	type pair struct {
		key   string
		entry *cachedBatch
	}
	items := make([]pair, 0, len(s.cache))
	for key, entry := range s.cache {
		items = append(items, pair{key: key, entry: entry})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].entry.updatedAt.Before(items[j].entry.updatedAt)
	})
	for i := 0; i < len(items)-maxEntries; i++ {
		delete(s.cache, items[i].key)
	}
}

func cloneItems(items []domain.MediaItem) []domain.MediaItem {
	if items == nil {
		return nil
	}
	cloned := make([]domain.MediaItem, len(items))
	for i, item := range items {
		copied := item
		copied.Genres = append([]string(nil), item.Genres...)
		cloned[i] = copied
	}
	return cloned
}
