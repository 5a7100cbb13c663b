package tmdb

import (
	"context"
	"net/url"
	"strconv"

	"mediapick/recservice/internal/domain"
	"mediapick/recservice/internal/metrics"
	"mediapick/recservice/internal/recs"
)

// MovieSource serves the movie content type from the TMDB discover, search
// and similar endpoints.
type MovieSource struct {
	client *Client
}

func NewMovieSource(client *Client) *MovieSource {
	return &MovieSource{client: client}
}

func (s *MovieSource) Type() domain.ContentType {
	return domain.ContentTypeMovie
}

func (s *MovieSource) Info() domain.SourceInfo {
	return domain.SourceInfo{
		Type:    domain.ContentTypeMovie,
		Name:    "tmdb-movies",
		Label:   "TMDB Movies",
		Enabled: s.client.Enabled(),
	}
}

func (s *MovieSource) FetchPopular(ctx context.Context, query recs.SourceQuery) ([]domain.MediaItem, error) {
	params := url.Values{
		"sort_by":        {"popularity.desc"},
		"vote_count.gte": {strconv.Itoa(movieMinVotes)},
		"page":           {pageParam(query.Page)},
	}
	if ids := genreIDParam(query.Genres, movieGenreIDs); ids != "" {
		params.Set("with_genres", ids)
	}
	applyLanguage(params, query)

	page, err := s.client.getPaged(ctx, "/discover/movie", params)
	if err != nil {
		return nil, err
	}
	return s.normalizeAll(page.Results, query.Regional), nil
}

func (s *MovieSource) SearchByKeyword(ctx context.Context, keyword string, query recs.SourceQuery) ([]domain.MediaItem, error) {
	params := url.Values{
		"query": {keyword},
		"page":  {"1"},
	}
	page, err := s.client.getPaged(ctx, "/search/movie", params)
	if err != nil {
		return nil, err
	}
	return s.normalizeAll(page.Results, query.Regional), nil
}

func (s *MovieSource) FetchSimilar(ctx context.Context, id string, query recs.SourceQuery) ([]domain.MediaItem, error) {
	params := url.Values{"page": {"1"}}
	page, err := s.client.getPaged(ctx, "/movie/"+url.PathEscape(id)+"/similar", params)
	if err != nil {
		return nil, err
	}
	return s.normalizeAll(page.Results, query.Regional), nil
}

func (s *MovieSource) normalizeAll(records []record, regional bool) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(records))
	for _, rec := range records {
		item, err := normalizeRecord(rec, domain.ContentTypeMovie, movieGenreNames, regional)
		if err != nil {
			metrics.ItemsDroppedTotal.WithLabelValues("tmdb-movies").Inc()
			continue
		}
		items = append(items, item)
	}
	return items
}

// normalizeRecord converts one upstream record into the shared item shape.
// A record without an id or title cannot be presented and is dropped.
func normalizeRecord(rec record, contentType domain.ContentType, names map[int]string, regional bool) (domain.MediaItem, error) {
	if rec.ID == 0 {
		return domain.MediaItem{}, &recs.NormalizationError{Source: "tmdb", Reason: "missing id"}
	}
	title := rec.displayTitle()
	if title == "" {
		return domain.MediaItem{}, &recs.NormalizationError{Source: "tmdb", Reason: "missing title"}
	}

	description := rec.Overview
	if description == "" {
		description = domain.PlaceholderDescription
	}
	cover := domain.PlaceholderCoverImage
	if rec.PosterPath != "" {
		cover = posterBaseURL + rec.PosterPath
	}

	return domain.MediaItem{
		ID:          strconv.Itoa(rec.ID),
		Title:       title,
		Description: description,
		CoverImage:  cover,
		Rating:      domain.HalveRating(rec.VoteAverage),
		Year:        rec.year(),
		Genres:      genreLabels(rec.GenreIDs, names),
		Type:        contentType,
		Regional:    regional || rec.OriginalLanguage == "hi",
	}, nil
}

func applyLanguage(params url.Values, query recs.SourceQuery) {
	if query.Regional {
		params.Set("with_original_language", "hi")
		params.Set("region", "IN")
		return
	}
	if query.Language != "" {
		params.Set("with_original_language", query.Language)
	}
}

func pageParam(page int) string {
	if page <= 0 {
		page = 1
	}
	return strconv.Itoa(page)
}
