package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediapick/recservice/internal/domain"
	"mediapick/recservice/internal/metrics"
	"mediapick/recservice/internal/recs"
)

const (
	defaultBaseURL   = "https://api.jikan.moe/v4"
	defaultUserAgent = "mediapick-recservice/1.0"

	pageSize = 20
)

type Config struct {
	BaseURL string
	Client  *http.Client
}

// Source serves the anime content type from the Jikan API (an unofficial
// MyAnimeList front). No key required, but the API rate limits aggressively;
// the service-level limiter paces calls below that threshold.
type Source struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewSource(cfg Config) *Source {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Source{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		http:      httpClient,
	}
}

func (s *Source) Type() domain.ContentType {
	return domain.ContentTypeAnime
}

func (s *Source) Info() domain.SourceInfo {
	return domain.SourceInfo{
		Type:    domain.ContentTypeAnime,
		Name:    "jikan",
		Label:   "Jikan (MyAnimeList)",
		Enabled: true,
	}
}

type listResponse struct {
	Data []animeRecord `json:"data"`
}

type recommendationsResponse struct {
	Data []struct {
		Entry animeRecord `json:"entry"`
	} `json:"data"`
}

type animeRecord struct {
	MalID    int     `json:"mal_id"`
	Title    string  `json:"title"`
	Synopsis string  `json:"synopsis,omitempty"`
	Score    float64 `json:"score,omitempty"`
	Year     int     `json:"year,omitempty"`
	Episodes int     `json:"episodes,omitempty"`
	Images   struct {
		JPG struct {
			ImageURL      string `json:"image_url,omitempty"`
			LargeImageURL string `json:"large_image_url,omitempty"`
		} `json:"jpg"`
	} `json:"images"`
	Aired struct {
		From string `json:"from,omitempty"`
	} `json:"aired"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres,omitempty"`
}

func (s *Source) FetchPopular(ctx context.Context, query recs.SourceQuery) ([]domain.MediaItem, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	params := url.Values{
		"filter": {"bypopularity"},
		"page":   {strconv.Itoa(page)},
		"limit":  {strconv.Itoa(pageSize)},
	}

	var payload listResponse
	if err := s.getJSON(ctx, "/top/anime", params, &payload); err != nil {
		return nil, err
	}
	return s.normalizeAll(payload.Data, query.Regional), nil
}

func (s *Source) SearchByKeyword(ctx context.Context, keyword string, query recs.SourceQuery) ([]domain.MediaItem, error) {
	params := url.Values{
		"q":        {keyword},
		"order_by": {"score"},
		"sort":     {"desc"},
		"limit":    {strconv.Itoa(pageSize)},
	}

	var payload listResponse
	if err := s.getJSON(ctx, "/anime", params, &payload); err != nil {
		return nil, err
	}
	return s.normalizeAll(payload.Data, query.Regional), nil
}

func (s *Source) FetchSimilar(ctx context.Context, id string, query recs.SourceQuery) ([]domain.MediaItem, error) {
	var payload recommendationsResponse
	if err := s.getJSON(ctx, "/anime/"+url.PathEscape(id)+"/recommendations", url.Values{}, &payload); err != nil {
		return nil, err
	}

	records := make([]animeRecord, 0, len(payload.Data))
	for _, entry := range payload.Data {
		records = append(records, entry.Entry)
	}
	return s.normalizeAll(records, query.Regional), nil
}

func (s *Source) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := s.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", recs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: jikan HTTP 429", recs.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: jikan HTTP %d: %s", recs.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return fmt.Errorf("%w: %v", recs.ErrUpstreamUnavailable, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", recs.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (s *Source) normalizeAll(records []animeRecord, regional bool) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(records))
	for _, rec := range records {
		item, err := normalizeAnime(rec, regional)
		if err != nil {
			metrics.ItemsDroppedTotal.WithLabelValues("jikan").Inc()
			continue
		}
		items = append(items, item)
	}
	return items
}

func normalizeAnime(rec animeRecord, regional bool) (domain.MediaItem, error) {
	if rec.MalID == 0 {
		return domain.MediaItem{}, &recs.NormalizationError{Source: "jikan", Reason: "missing id"}
	}
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return domain.MediaItem{}, &recs.NormalizationError{Source: "jikan", Reason: "missing title"}
	}

	description := strings.TrimSpace(rec.Synopsis)
	if description == "" {
		description = domain.PlaceholderDescription
	}

	cover := rec.Images.JPG.LargeImageURL
	if cover == "" {
		cover = rec.Images.JPG.ImageURL
	}
	if cover == "" {
		cover = domain.PlaceholderCoverImage
	}

	genres := make([]string, 0, len(rec.Genres))
	for _, genre := range rec.Genres {
		genres = append(genres, genre.Name)
	}

	year := rec.Year
	if year == 0 && len(rec.Aired.From) >= 4 {
		if parsed, err := strconv.Atoi(rec.Aired.From[:4]); err == nil && parsed > 0 {
			year = parsed
		}
	}

	return domain.MediaItem{
		ID:          strconv.Itoa(rec.MalID),
		Title:       title,
		Description: description,
		CoverImage:  cover,
		Rating:      domain.HalveRating(rec.Score),
		Year:        year,
		Genres:      domain.DedupGenres(genres),
		Type:        domain.ContentTypeAnime,
		Regional:    regional,
		Episodes:    rec.Episodes,
	}, nil
}
