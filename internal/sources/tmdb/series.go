package tmdb

import (
	"context"
	"net/url"
	"strconv"

	"mediapick/recservice/internal/domain"
	"mediapick/recservice/internal/metrics"
	"mediapick/recservice/internal/recs"
)

// SeriesSource serves the series content type from the TMDB television
// endpoints. Television uses a lower vote floor than movies; popular shows
// accumulate votes more slowly.
type SeriesSource struct {
	client *Client
}

func NewSeriesSource(client *Client) *SeriesSource {
	return &SeriesSource{client: client}
}

func (s *SeriesSource) Type() domain.ContentType {
	return domain.ContentTypeSeries
}

func (s *SeriesSource) Info() domain.SourceInfo {
	return domain.SourceInfo{
		Type:    domain.ContentTypeSeries,
		Name:    "tmdb-series",
		Label:   "TMDB Series",
		Enabled: s.client.Enabled(),
	}
}

func (s *SeriesSource) FetchPopular(ctx context.Context, query recs.SourceQuery) ([]domain.MediaItem, error) {
	params := url.Values{
		"sort_by":        {"popularity.desc"},
		"vote_count.gte": {strconv.Itoa(seriesMinVotes)},
		"page":           {pageParam(query.Page)},
	}
	if ids := genreIDParam(query.Genres, seriesGenreIDs); ids != "" {
		params.Set("with_genres", ids)
	}
	applyLanguage(params, query)

	page, err := s.client.getPaged(ctx, "/discover/tv", params)
	if err != nil {
		return nil, err
	}
	return s.normalizeAll(page.Results, query.Regional), nil
}

func (s *SeriesSource) SearchByKeyword(ctx context.Context, keyword string, query recs.SourceQuery) ([]domain.MediaItem, error) {
	params := url.Values{
		"query": {keyword},
		"page":  {"1"},
	}
	page, err := s.client.getPaged(ctx, "/search/tv", params)
	if err != nil {
		return nil, err
	}
	return s.normalizeAll(page.Results, query.Regional), nil
}

func (s *SeriesSource) FetchSimilar(ctx context.Context, id string, query recs.SourceQuery) ([]domain.MediaItem, error) {
	params := url.Values{"page": {"1"}}
	page, err := s.client.getPaged(ctx, "/tv/"+url.PathEscape(id)+"/similar", params)
	if err != nil {
		return nil, err
	}
	return s.normalizeAll(page.Results, query.Regional), nil
}

func (s *SeriesSource) normalizeAll(records []record, regional bool) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(records))
	for _, rec := range records {
		item, err := normalizeRecord(rec, domain.ContentTypeSeries, seriesGenreNames, regional)
		if err != nil {
			metrics.ItemsDroppedTotal.WithLabelValues("tmdb-series").Inc()
			continue
		}
		items = append(items, item)
	}
	return items
}
