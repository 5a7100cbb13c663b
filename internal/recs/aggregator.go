package recs

import (
	"fmt"
	"sort"
	"strings"

	"mediapick/recservice/internal/domain"
)

const (
	// genreFilterMinPool keeps small result sets intact: strict genre
	// filtering only kicks in once there is enough material to cut from.
	genreFilterMinPool = 10

	// hasMoreThreshold is the page size below which a batch is considered
	// exhausted and "load more" stops being offered.
	hasMoreThreshold = 9

	// surprisePoolSize bounds the random pick to the best-ranked items.
	surprisePoolSize = 5
)

// preparedRequest is a validated, normalized request ready for fan-out.
// Pages are per content type: each type paginates against its own upstream.
type preparedRequest struct {
	types    []domain.ContentType
	genres   []string
	keywords []string
	language string
	yearFrom int
	yearTo   int
	regional bool
	surprise bool
	noCache  bool
	pages    map[domain.ContentType]int
}

func (s *Service) prepareRequest(request domain.RecommendationRequest) (preparedRequest, error) {
	if len(s.sources) == 0 && len(s.fallback.global) == 0 {
		return preparedRequest{}, ErrNoSources
	}
	if len(request.Filters.ContentTypes) == 0 {
		return preparedRequest{}, ErrNoContentTypes
	}

	known := make(map[domain.ContentType]struct{}, len(domain.AllContentTypes))
	for _, ct := range domain.AllContentTypes {
		known[ct] = struct{}{}
	}

	types := make([]domain.ContentType, 0, len(request.Filters.ContentTypes))
	seen := make(map[domain.ContentType]struct{}, len(request.Filters.ContentTypes))
	for _, ct := range request.Filters.ContentTypes {
		if _, ok := known[ct]; !ok {
			return preparedRequest{}, fmt.Errorf("%w: %s", ErrUnknownType, ct)
		}
		if _, dup := seen[ct]; dup {
			continue
		}
		seen[ct] = struct{}{}
		types = append(types, ct)
	}

	genres := domain.DedupGenres(request.Filters.Genres)
	if len(genres) == 0 && request.Filters.Mood != "" {
		genres = GenresForMood(request.Filters.Mood)
	}
	if len(genres) > maxSelectedGenres {
		genres = genres[:maxSelectedGenres]
	}

	yearFrom, yearTo := request.Filters.YearFrom, request.Filters.YearTo
	if yearFrom > 0 && yearTo > 0 && yearFrom > yearTo {
		yearFrom, yearTo = yearTo, yearFrom
	}

	pages := make(map[domain.ContentType]int, len(types))
	for _, ct := range types {
		pages[ct] = 1
	}

	return preparedRequest{
		types:    types,
		genres:   genres,
		keywords: ExtractKeywords(request.Filters.PreviousLikes),
		language: NormalizeLanguage(request.Filters.Language),
		yearFrom: yearFrom,
		yearTo:   yearTo,
		regional: request.Filters.Regional,
		surprise: request.Filters.SurpriseMe,
		noCache:  request.NoCache,
		pages:    pages,
	}, nil
}

// filterByYear drops items outside the selected range. Items without a known
// year pass through: missing metadata should not hide otherwise good picks.
func filterByYear(items []domain.MediaItem, yearFrom, yearTo int) []domain.MediaItem {
	if yearFrom <= 0 && yearTo <= 0 {
		return items
	}
	filtered := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		if item.Year == domain.YearUnknown {
			filtered = append(filtered, item)
			continue
		}
		if yearFrom > 0 && item.Year < yearFrom {
			continue
		}
		if yearTo > 0 && item.Year > yearTo {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// applyGenreFilter cuts items that match none of the selected genres, but
// only once the pool is large enough that upstream genre biasing alone is
// too loose.
func applyGenreFilter(items []domain.MediaItem, genres []string) []domain.MediaItem {
	if len(genres) == 0 || len(items) <= genreFilterMinPool {
		return items
	}
	filtered := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		if matchesSelectedGenres(item, genres) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// dedupeItems collapses duplicates by (type, id), keeping the richer record:
// a similarity-path hit beats a popular-list hit, then higher rating wins.
func dedupeItems(items []domain.MediaItem) []domain.MediaItem {
	byKey := make(map[string]int, len(items))
	out := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		key := item.Key()
		index, exists := byKey[key]
		if !exists {
			byKey[key] = len(out)
			out = append(out, item)
			continue
		}
		if shouldReplaceItem(out[index], item) {
			out[index] = item
		}
	}
	return out
}

func shouldReplaceItem(existing, candidate domain.MediaItem) bool {
	if existing.FromPreviousLikes != candidate.FromPreviousLikes {
		return candidate.FromPreviousLikes
	}
	if candidate.Rating != existing.Rating {
		return candidate.Rating > existing.Rating
	}
	if existing.Description == domain.PlaceholderDescription && candidate.Description != domain.PlaceholderDescription {
		return true
	}
	if existing.CoverImage == domain.PlaceholderCoverImage && candidate.CoverImage != domain.PlaceholderCoverImage {
		return true
	}
	return false
}

// rankItems orders the merged pool: similarity-path items first, then items
// whose title or author echoes a keyword, then rating. Title breaks ties so
// the order is stable across identical requests.
func rankItems(items []domain.MediaItem, keywords []string) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i], items[j]
		if left.FromPreviousLikes != right.FromPreviousLikes {
			return left.FromPreviousLikes
		}
		leftHit := matchesAnyKeyword(left, keywords)
		rightHit := matchesAnyKeyword(right, keywords)
		if leftHit != rightHit {
			return leftHit
		}
		if left.Rating != right.Rating {
			return left.Rating > right.Rating
		}
		return strings.ToLower(left.Title) < strings.ToLower(right.Title)
	})
}

func matchesAnyKeyword(item domain.MediaItem, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	title := strings.ToLower(item.Title)
	author := strings.ToLower(item.Author)
	for _, keyword := range keywords {
		needle := strings.ToLower(keyword)
		if needle == "" {
			continue
		}
		if strings.Contains(title, needle) {
			return true
		}
		if author != "" && strings.Contains(author, needle) {
			return true
		}
	}
	return false
}

// pickSurprise selects one random item from the top of an already ranked
// pool. Returns false when the pool is empty.
func (s *Service) pickSurprise(ranked []domain.MediaItem) (domain.MediaItem, bool) {
	if len(ranked) == 0 {
		return domain.MediaItem{}, false
	}
	pool := len(ranked)
	if pool > surprisePoolSize {
		pool = surprisePoolSize
	}
	return ranked[s.pickIndex(pool)], true
}
