package domain

import "strings"

type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
	ContentTypeBook   ContentType = "book"
	ContentTypeAnime  ContentType = "anime"
)

// AllContentTypes lists every supported content type in display order.
var AllContentTypes = []ContentType{
	ContentTypeMovie,
	ContentTypeSeries,
	ContentTypeBook,
	ContentTypeAnime,
}

func ParseContentType(raw string) (ContentType, bool) {
	switch ContentType(strings.ToLower(strings.TrimSpace(raw))) {
	case ContentTypeMovie:
		return ContentTypeMovie, true
	case ContentTypeSeries:
		return ContentTypeSeries, true
	case ContentTypeBook:
		return ContentTypeBook, true
	case ContentTypeAnime:
		return ContentTypeAnime, true
	default:
		return "", false
	}
}

const (
	// RatingMax is the upper bound of the normalized rating scale.
	RatingMax = 5.0

	// YearUnknown marks items whose upstream record carries no usable date.
	YearUnknown = 0

	// PlaceholderTitle and friends substitute for absent upstream fields so
	// downstream code never has to branch on missing data.
	PlaceholderTitle       = "Unknown Title"
	PlaceholderDescription = "No description available"
	PlaceholderCoverImage  = "/placeholder.svg"

	// GenreOther is the display label for unmapped upstream genre ids.
	GenreOther = "Other"
)

// MediaItem is the normalized record shared by every catalog source.
// IDs are unique only within their content type; (Type, ID) is the identity.
type MediaItem struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	CoverImage  string      `json:"coverImage"`
	Rating      float64     `json:"rating"`
	Year        int         `json:"year"`
	Genres      []string    `json:"genres,omitempty"`
	Type        ContentType `json:"type"`
	Regional    bool        `json:"regional,omitempty"`

	Director string `json:"director,omitempty"`
	Author   string `json:"author,omitempty"`
	Episodes int    `json:"episodes,omitempty"`
	Seasons  int    `json:"seasons,omitempty"`

	// FromPreviousLikes marks items surfaced through the previously-enjoyed
	// similarity path; IsSimilar marks items from a "similar to top hit"
	// lookup. Both influence ranking only.
	FromPreviousLikes bool `json:"fromPreviousLikes,omitempty"`
	IsSimilar         bool `json:"isSimilar,omitempty"`
}

// Key returns the dedup identity of the item.
func (m MediaItem) Key() string {
	return string(m.Type) + ":" + m.ID
}

// ClampRating forces a normalized score into [0, RatingMax].
func ClampRating(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > RatingMax {
		return RatingMax
	}
	return value
}

// HalveRating rescales an upstream 0-10 score onto the 0-5 domain.
func HalveRating(upstream float64) float64 {
	return ClampRating(upstream / 2)
}

// DedupGenres removes duplicate genre labels case-insensitively while keeping
// the first occurrence's spelling and order.
func DedupGenres(genres []string) []string {
	if len(genres) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, genre := range genres {
		trimmed := strings.TrimSpace(genre)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

type Mode string

const (
	ModeInitial  Mode = "initial"
	ModeRefresh  Mode = "refresh"
	ModeLoadMore Mode = "loadMore"
)

func NormalizeMode(raw string) Mode {
	switch Mode(strings.TrimSpace(raw)) {
	case ModeRefresh:
		return ModeRefresh
	case ModeLoadMore:
		return ModeLoadMore
	default:
		return ModeInitial
	}
}

// Filters carries the user-selected recommendation criteria.
type Filters struct {
	ContentTypes  []ContentType `json:"contentTypes"`
	Genres        []string      `json:"genres,omitempty"`
	Mood          string        `json:"mood,omitempty"`
	YearFrom      int           `json:"yearFrom,omitempty"`
	YearTo        int           `json:"yearTo,omitempty"`
	Language      string        `json:"language,omitempty"`
	Regional      bool          `json:"regional,omitempty"`
	PreviousLikes string        `json:"previousLikes,omitempty"`
	SurpriseMe    bool          `json:"surpriseMe,omitempty"`
}

// HasContentType reports whether t is among the selected content types.
func (f Filters) HasContentType(t ContentType) bool {
	for _, ct := range f.ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

type RecommendationRequest struct {
	SessionID string  `json:"sessionId,omitempty"`
	Mode      Mode    `json:"mode,omitempty"`
	Filters   Filters `json:"filters"`
	NoCache   bool    `json:"noCache,omitempty"`
}

// SourceInfo describes a configured catalog source.
type SourceInfo struct {
	Type    ContentType `json:"type"`
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Enabled bool        `json:"enabled"`
}

// SourceStatus records the outcome of one source's fetch within a request.
type SourceStatus struct {
	Type     ContentType `json:"type"`
	Name     string      `json:"name"`
	OK       bool        `json:"ok"`
	Count    int         `json:"count"`
	Fallback bool        `json:"fallback,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type SourceDiagnostics struct {
	Type                ContentType `json:"type"`
	Name                string      `json:"name"`
	Label               string      `json:"label"`
	Enabled             bool        `json:"enabled"`
	ConsecutiveFailures int         `json:"consecutiveFailures"`
	BlockedUntilRFC3339 string      `json:"blockedUntil,omitempty"`
	LastError           string      `json:"lastError,omitempty"`
	LastLatencyMS       int64       `json:"lastLatencyMs,omitempty"`
	TotalRequests       int64       `json:"totalRequests,omitempty"`
	TotalFailures       int64       `json:"totalFailures,omitempty"`
	FallbacksServed     int64       `json:"fallbacksServed,omitempty"`
}

type RecommendationResponse struct {
	SessionID string         `json:"sessionId"`
	Sequence  uint64         `json:"sequence"`
	Stale     bool           `json:"stale,omitempty"`
	Items     []MediaItem    `json:"items"`
	HasMore   bool           `json:"hasMore"`
	NoMatches bool           `json:"noMatches,omitempty"`
	Sources   []SourceStatus `json:"sources,omitempty"`
	ElapsedMS int64          `json:"elapsedMs"`
	Page      int            `json:"page"`
}
