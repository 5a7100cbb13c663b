package recs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"mediapick/recservice/internal/domain"
)

// maxConcurrentSources bounds the fan-out. One goroutine per selected
// content type is already small, but keyword chains multiply the work.
const maxConcurrentSources = 4

const (
	// keywordSearchKeep and similarKeep bound how much each similarity chain
	// contributes to the pool, so previous-likes input cannot crowd out the
	// popular batch entirely.
	keywordSearchKeep = 2
	similarKeep       = 6
	keywordOnlyKeep   = 6
)

type typeBatch struct {
	items  []domain.MediaItem
	status domain.SourceStatus
}

// fetchAll queries every selected content type concurrently and never
// returns an error: a failed source is substituted with fallback content and
// reported through its status.
func (s *Service) fetchAll(ctx context.Context, prep preparedRequest) (map[domain.ContentType][]domain.MediaItem, []domain.SourceStatus) {
	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	statuses := make([]domain.SourceStatus, len(prep.types))
	batches := make(map[domain.ContentType][]domain.MediaItem, len(prep.types))

	var mu sync.Mutex
	sem := semaphore.NewWeighted(maxConcurrentSources)
	var wg sync.WaitGroup

	for i, contentType := range prep.types {
		wg.Add(1)
		go func(index int, ct domain.ContentType) {
			defer wg.Done()

			if err := sem.Acquire(runCtx, 1); err != nil {
				batch := s.fallbackBatch(ct, string(ct), prep.regional, "context cancelled")
				mu.Lock()
				statuses[index] = batch.status
				batches[ct] = batch.items
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			batch := s.fetchType(runCtx, prep, ct)
			mu.Lock()
			statuses[index] = batch.status
			batches[ct] = batch.items
			mu.Unlock()
		}(i, contentType)
	}
	wg.Wait()

	return batches, statuses
}

func (s *Service) fetchType(ctx context.Context, prep preparedRequest, contentType domain.ContentType) typeBatch {
	source, ok := s.sources[contentType]
	if !ok {
		return s.fallbackBatch(contentType, string(contentType), prep.regional, "no source configured")
	}

	name := strings.ToLower(strings.TrimSpace(source.Info().Name))
	if name == "" {
		name = string(contentType)
	}

	now := time.Now()
	if blocked, until, lastErr := s.isSourceBlocked(contentType, now); blocked {
		slog.Warn("source blocked, serving fallback",
			slog.String("source", name),
			slog.String("until", until.UTC().Format(time.RFC3339)),
			slog.String("lastError", lastErr),
		)
		cause := fmt.Sprintf("source temporarily unhealthy until %s: %s", until.UTC().Format(time.RFC3339), lastErr)
		return s.fallbackBatch(contentType, name, prep.regional, cause)
	}

	query := SourceQuery{
		Genres:   prep.genres,
		Language: prep.language,
		Regional: prep.regional,
		Page:     prep.pages[contentType],
	}

	items, err := s.fetchPopular(ctx, source, name, query, prep.noCache)
	if err != nil {
		slog.Warn("source fetch failed, serving fallback",
			slog.String("source", name),
			slog.String("error", err.Error()),
		)
		batch := s.fallbackBatch(contentType, name, prep.regional, err.Error())
		batch.items = append(batch.items, s.fetchKeywordChains(ctx, source, name, prep, query)...)
		return batch
	}

	items = append(items, s.fetchKeywordChains(ctx, source, name, prep, query)...)

	return typeBatch{
		items: items,
		status: domain.SourceStatus{
			Type:  contentType,
			Name:  name,
			OK:    true,
			Count: len(items),
		},
	}
}

func (s *Service) fetchPopular(ctx context.Context, source Source, name string, query SourceQuery, noCache bool) ([]domain.MediaItem, error) {
	contentType := source.Type()
	cacheKey := batchCacheKey(contentType, "popular", query)

	if !noCache {
		if cached, ok, needsRefresh := s.cacheLookup(cacheKey, time.Now()); ok {
			if needsRefresh {
				s.refreshBatchAsync(source, name, cacheKey, query)
			}
			return cached, nil
		}
	}

	items, err := s.callSource(ctx, contentType, name, func(callCtx context.Context) ([]domain.MediaItem, error) {
		return source.FetchPopular(callCtx, query)
	})
	if err != nil {
		return nil, err
	}
	s.cacheStore(cacheKey, items, time.Now())
	return items, nil
}

// refreshBatchAsync refreshes a stale cache entry in the background while
// the caller is served the stale copy.
func (s *Service) refreshBatchAsync(source Source, name string, cacheKey string, query SourceQuery) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout+2*time.Second)
		defer cancel()

		items, err := s.callSource(ctx, source.Type(), name, func(callCtx context.Context) ([]domain.MediaItem, error) {
			return source.FetchPopular(callCtx, query)
		})
		if err != nil {
			slog.Warn("background cache refresh failed",
				slog.String("source", name),
				slog.String("error", err.Error()),
			)
			return
		}
		s.cacheStore(cacheKey, items, time.Now())
	}()
}

// fetchKeywordChains runs one similarity chain per extracted keyword:
// search the catalog for the keyword, then pull items similar to the top
// hit. Chain failures degrade silently; the popular batch still stands.
func (s *Service) fetchKeywordChains(ctx context.Context, source Source, name string, prep preparedRequest, query SourceQuery) []domain.MediaItem {
	if len(prep.keywords) == 0 {
		return nil
	}

	var out []domain.MediaItem
	for _, keyword := range prep.keywords {
		chain, err := s.fetchKeywordChain(ctx, source, name, keyword, query)
		if err != nil {
			slog.Warn("similarity chain failed",
				slog.String("source", name),
				slog.String("keyword", keyword),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, chain...)
	}
	return out
}

func (s *Service) fetchKeywordChain(ctx context.Context, source Source, name, keyword string, query SourceQuery) ([]domain.MediaItem, error) {
	contentType := source.Type()

	found, err := s.callSource(ctx, contentType, name, func(callCtx context.Context) ([]domain.MediaItem, error) {
		return source.SearchByKeyword(callCtx, keyword, query)
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	for i := range found {
		found[i].FromPreviousLikes = true
	}

	top := found[0]
	similar, err := s.callSource(ctx, contentType, name, func(callCtx context.Context) ([]domain.MediaItem, error) {
		return source.FetchSimilar(callCtx, top.ID, query)
	})
	if err != nil {
		// No similar endpoint or a failed lookup: the keyword hits themselves
		// stand in for the similarity results.
		return capItems(found, keywordOnlyKeep), nil
	}

	for i := range similar {
		similar[i].FromPreviousLikes = true
		similar[i].IsSimilar = true
	}

	out := capItems(found, keywordSearchKeep)
	out = append(out, capItems(similar, similarKeep)...)
	return out, nil
}

// callSource funnels every upstream call through the per-type rate limiter,
// the retry policy and the health circuit.
func (s *Service) callSource(ctx context.Context, contentType domain.ContentType, name string, fn func(context.Context) ([]domain.MediaItem, error)) ([]domain.MediaItem, error) {
	if err := s.limiterFor(contentType).Wait(ctx); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	var items []domain.MediaItem
	callErr := RetryWithBackoff(ctx, DefaultRetryConfig(), func() error {
		var err error
		items, err = fn(ctx)
		return err
	})
	// A source without a similar endpoint is a capability gap, not a failure;
	// it must not trip the health circuit.
	if !errors.Is(callErr, ErrSimilarUnsupported) {
		s.recordSourceResult(contentType, name, callErr, time.Since(startedAt), time.Now())
	}
	if callErr != nil {
		return nil, callErr
	}
	return items, nil
}

func (s *Service) fallbackBatch(contentType domain.ContentType, name string, regional bool, cause string) typeBatch {
	items := s.fallback.Items(contentType, regional)
	s.recordFallbackServed(contentType, name)
	return typeBatch{
		items: items,
		status: domain.SourceStatus{
			Type:     contentType,
			Name:     name,
			OK:       false,
			Count:    len(items),
			Fallback: true,
			Error:    cause,
		},
	}
}

func capItems(items []domain.MediaItem, limit int) []domain.MediaItem {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}
