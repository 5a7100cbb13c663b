package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mediapick/recservice/internal/recs"
)

const (
	defaultBaseURL   = "https://api.themoviedb.org/3"
	posterBaseURL    = "https://image.tmdb.org/t/p/w500"
	defaultUserAgent = "mediapick-recservice/1.0"
	redisCachePrefix = "recs:tmdb:"

	// Popularity noise floor: discover results with fewer votes than this are
	// mostly spam entries and near-duplicates.
	movieMinVotes  = 100
	seriesMinVotes = 50
)

type Config struct {
	APIKey   string
	BaseURL  string
	Client   *http.Client
	Redis    *redis.Client
	CacheTTL time.Duration
}

// Client is the HTTP transport shared by the movie and series sources. GET
// responses are cached raw in Redis when a client is configured.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	http      *http.Client
	redis     *redis.Client
	cacheTTL  time.Duration
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 6 * time.Hour
	}
	return &Client{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		http:      httpClient,
		redis:     cfg.Redis,
		cacheTTL:  cacheTTL,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type pagedResults struct {
	Page    int      `json:"page"`
	Results []record `json:"results"`
}

type record struct {
	ID               int     `json:"id"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
}

func (r record) displayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

func (r record) year() int {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}

func (c *Client) getPaged(ctx context.Context, path string, params url.Values) (pagedResults, error) {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	cacheKey := redisCachePrefix + path + "?" + stripAPIKey(params)
	if c.redis != nil {
		if data, err := c.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached pagedResults
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return pagedResults{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pagedResults{}, fmt.Errorf("%w: %v", recs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return pagedResults{}, fmt.Errorf("%w: tmdb HTTP 429", recs.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return pagedResults{}, fmt.Errorf("%w: tmdb HTTP %d: %s", recs.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return pagedResults{}, fmt.Errorf("%w: %v", recs.ErrUpstreamUnavailable, err)
	}

	var page pagedResults
	if err := json.Unmarshal(body, &page); err != nil {
		return pagedResults{}, fmt.Errorf("%w: %v", recs.ErrUpstreamUnavailable, err)
	}

	if c.redis != nil {
		if data, err := json.Marshal(page); err == nil {
			_ = c.redis.Set(ctx, cacheKey, data, c.cacheTTL).Err()
		}
	}
	return page, nil
}

func stripAPIKey(params url.Values) string {
	clean := url.Values{}
	for key, values := range params {
		if key == "api_key" {
			continue
		}
		clean[key] = values
	}
	return clean.Encode()
}
