package googlebooks

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
	defaultBaseURL   = "https://www.googleapis.com/books/v1"
	defaultUserAgent = "mediapick-recservice/1.0"

	pageSize = 20

	// defaultRating stands in for the many volumes without reader ratings;
	// zero would unfairly sink every unrated book in the ranking.
	defaultRating = 3.8

	// minDescriptionLength drops stub records whose description is too thin
	// to present.
	minDescriptionLength = 20
)

type Config struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// Source serves the book content type from the Google Books volumes API.
// The API has no similar-items endpoint, so FetchSimilar reports
// ErrSimilarUnsupported and the similarity chain falls back to keyword hits.
type Source struct {
	apiKey    string
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
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		http:      httpClient,
	}
}

func (s *Source) Type() domain.ContentType {
	return domain.ContentTypeBook
}

func (s *Source) Info() domain.SourceInfo {
	return domain.SourceInfo{
		Type:    domain.ContentTypeBook,
		Name:    "googlebooks",
		Label:   "Google Books",
		Enabled: true,
	}
}

type volumesResponse struct {
	Items []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors,omitempty"`
	Description   string     `json:"description,omitempty"`
	PublishedDate string     `json:"publishedDate,omitempty"`
	Categories    []string   `json:"categories,omitempty"`
	AverageRating float64    `json:"averageRating,omitempty"`
	ImageLinks    imageLinks `json:"imageLinks"`
	Language      string     `json:"language,omitempty"`
}

type imageLinks struct {
	Thumbnail string `json:"thumbnail,omitempty"`
}

func (s *Source) FetchPopular(ctx context.Context, query recs.SourceQuery) ([]domain.MediaItem, error) {
	q := "subject:fiction"
	if len(query.Genres) > 0 {
		subjects := make([]string, 0, len(query.Genres))
		for _, genre := range query.Genres {
			genre = strings.TrimSpace(genre)
			if genre != "" {
				subjects = append(subjects, "subject:"+strings.ToLower(genre))
			}
		}
		if len(subjects) > 0 {
			q = strings.Join(subjects, " OR ")
		}
	}
	return s.fetchVolumes(ctx, q, query)
}

func (s *Source) SearchByKeyword(ctx context.Context, keyword string, query recs.SourceQuery) ([]domain.MediaItem, error) {
	paged := query
	paged.Page = 1
	return s.fetchVolumes(ctx, keyword, paged)
}

func (s *Source) FetchSimilar(ctx context.Context, id string, query recs.SourceQuery) ([]domain.MediaItem, error) {
	return nil, recs.ErrSimilarUnsupported
}

func (s *Source) fetchVolumes(ctx context.Context, q string, query recs.SourceQuery) ([]domain.MediaItem, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}

	params := url.Values{
		"q":          {q},
		"orderBy":    {"relevance"},
		"maxResults": {strconv.Itoa(pageSize)},
		"startIndex": {strconv.Itoa((page - 1) * pageSize)},
		"printType":  {"books"},
	}
	if query.Regional {
		params.Set("langRestrict", "hi")
	} else if query.Language != "" {
		params.Set("langRestrict", query.Language)
	}
	if s.apiKey != "" {
		params.Set("key", s.apiKey)
	}

	reqURL := s.baseURL + "/volumes?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: googlebooks HTTP 429", recs.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: googlebooks HTTP %d: %s", recs.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recs.ErrUpstreamUnavailable, err)
	}

	var payload volumesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", recs.ErrUpstreamUnavailable, err)
	}

	items := make([]domain.MediaItem, 0, len(payload.Items))
	for _, vol := range payload.Items {
		item, normErr := normalizeVolume(vol, query)
		if normErr != nil {
			metrics.ItemsDroppedTotal.WithLabelValues("googlebooks").Inc()
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// normalizeVolume converts one volume record into the shared item shape.
// Upstream category metadata is sparse, so the user's selected genres are
// folded into the genre list; the aggregator's lenient matching does the
// rest.
func normalizeVolume(vol volume, query recs.SourceQuery) (domain.MediaItem, error) {
	if strings.TrimSpace(vol.ID) == "" {
		return domain.MediaItem{}, &recs.NormalizationError{Source: "googlebooks", Reason: "missing id"}
	}
	title := strings.TrimSpace(vol.VolumeInfo.Title)
	if title == "" {
		return domain.MediaItem{}, &recs.NormalizationError{Source: "googlebooks", Reason: "missing title"}
	}

	description := strings.TrimSpace(vol.VolumeInfo.Description)
	if len(description) < minDescriptionLength {
		description = domain.PlaceholderDescription
	}

	cover := domain.PlaceholderCoverImage
	if vol.VolumeInfo.ImageLinks.Thumbnail != "" {
		// The API hands out http links; upgrade so browsers do not block them.
		cover = strings.Replace(vol.VolumeInfo.ImageLinks.Thumbnail, "http://", "https://", 1)
	}

	rating := domain.ClampRating(vol.VolumeInfo.AverageRating)
	if rating == 0 {
		rating = defaultRating
	}

	author := ""
	if len(vol.VolumeInfo.Authors) > 0 {
		author = vol.VolumeInfo.Authors[0]
	}

	genres := append([]string(nil), vol.VolumeInfo.Categories...)
	genres = append(genres, query.Genres...)

	return domain.MediaItem{
		ID:          vol.ID,
		Title:       title,
		Description: description,
		CoverImage:  cover,
		Rating:      rating,
		Year:        parseYear(vol.VolumeInfo.PublishedDate),
		Genres:      domain.DedupGenres(genres),
		Type:        domain.ContentTypeBook,
		Regional:    query.Regional || vol.VolumeInfo.Language == "hi",
		Author:      author,
	}, nil
}

func parseYear(date string) int {
	if len(date) < 4 {
		return domain.YearUnknown
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return domain.YearUnknown
	}
	return year
}
