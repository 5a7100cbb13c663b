package apihttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediapick/recservice/internal/domain"
	"mediapick/recservice/internal/recs"
)

type fakeRecService struct {
	lastRequest domain.RecommendationRequest
	response    domain.RecommendationResponse
	err         error
}

func (f *fakeRecService) Recommend(_ context.Context, request domain.RecommendationRequest) (domain.RecommendationResponse, error) {
	f.lastRequest = request
	if f.err != nil {
		return domain.RecommendationResponse{}, f.err
	}
	return f.response, nil
}

func (f *fakeRecService) Sources() []domain.SourceInfo {
	return []domain.SourceInfo{
		{Type: domain.ContentTypeMovie, Name: "tmdb-movies", Label: "TMDB Movies", Enabled: true},
	}
}

func (f *fakeRecService) SourceDiagnostics() []domain.SourceDiagnostics {
	return []domain.SourceDiagnostics{
		{Type: domain.ContentTypeMovie, Name: "tmdb-movies", Label: "TMDB Movies", Enabled: true, TotalRequests: 7},
	}
}

func newTestHandler(service *fakeRecService) http.Handler {
	return NewServer(service).Handler()
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRecommendationsHappyPath(t *testing.T) {
	service := &fakeRecService{
		response: domain.RecommendationResponse{
			SessionID: "abc",
			Items: []domain.MediaItem{
				{ID: "1", Title: "Dune", Type: domain.ContentTypeMovie, Rating: 4.2},
			},
			HasMore: true,
			Page:    1,
		},
	}
	handler := newTestHandler(service)

	rec := postJSON(t, handler, "/recommendations", `{
		"sessionId": "abc",
		"mode": "refresh",
		"filters": {"contentTypes": ["movie", "book"], "genres": ["sci-fi"], "yearFrom": 2000}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}

	var response domain.RecommendationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.SessionID != "abc" || !response.HasMore || len(response.Items) != 1 {
		t.Fatalf("unexpected response: %+v", response)
	}

	if service.lastRequest.Mode != domain.ModeRefresh {
		t.Fatalf("mode = %q", service.lastRequest.Mode)
	}
	if len(service.lastRequest.Filters.ContentTypes) != 2 {
		t.Fatalf("content types = %v", service.lastRequest.Filters.ContentTypes)
	}
	if service.lastRequest.Filters.YearFrom != 2000 {
		t.Fatalf("yearFrom = %d", service.lastRequest.Filters.YearFrom)
	}
}

func TestRecommendationsValidation(t *testing.T) {
	handler := newTestHandler(&fakeRecService{})

	rec := postJSON(t, handler, "/recommendations", `{"filters": {"contentTypes": []}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty content types: status = %d", rec.Code)
	}

	rec = postJSON(t, handler, "/recommendations", `{"filters": {"contentTypes": ["podcast"]}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown content type: status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "podcast") {
		t.Fatalf("error should name the bad type, body %s", rec.Body.String())
	}

	rec = postJSON(t, handler, "/recommendations", `{"filters": {"contentTypes": ["movie"], "previousLikes": "`+strings.Repeat("x", 600)+`"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized previousLikes: status = %d", rec.Code)
	}

	rec = postJSON(t, handler, "/recommendations", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: status = %d", rec.Code)
	}
}

func TestRecommendationsMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&fakeRecService{})
	req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRecommendationsServiceErrors(t *testing.T) {
	service := &fakeRecService{err: recs.ErrNoSources}
	handler := newTestHandler(service)

	rec := postJSON(t, handler, "/recommendations", `{"filters": {"contentTypes": ["movie"]}}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("no sources: status = %d", rec.Code)
	}

	service.err = recs.ErrNoContentTypes
	rec = postJSON(t, handler, "/recommendations", `{"filters": {"contentTypes": ["movie"]}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("validation error: status = %d", rec.Code)
	}
}

func TestSurpriseForcesSinglePick(t *testing.T) {
	service := &fakeRecService{
		response: domain.RecommendationResponse{
			SessionID: "abc",
			Items:     []domain.MediaItem{{ID: "1", Title: "Dune", Type: domain.ContentTypeMovie}},
		},
	}
	handler := newTestHandler(service)

	rec := postJSON(t, handler, "/recommendations/surprise", `{"filters": {"contentTypes": ["movie"]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !service.lastRequest.Filters.SurpriseMe {
		t.Fatalf("surprise endpoint must set the surpriseMe flag")
	}
}

func TestSourcesEndpoints(t *testing.T) {
	handler := newTestHandler(&fakeRecService{})

	req := httptest.NewRequest(http.MethodGet, "/recommendations/sources", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sources status = %d", rec.Code)
	}
	var sources struct {
		Items []domain.SourceInfo `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sources); err != nil {
		t.Fatalf("decode sources: %v", err)
	}
	if len(sources.Items) != 1 || sources.Items[0].Name != "tmdb-movies" {
		t.Fatalf("unexpected sources: %+v", sources.Items)
	}

	req = httptest.NewRequest(http.MethodGet, "/recommendations/sources/health", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sources health status = %d", rec.Code)
	}
	var health struct {
		Items []domain.SourceDiagnostics `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if len(health.Items) != 1 || health.Items[0].TotalRequests != 7 {
		t.Fatalf("unexpected health: %+v", health.Items)
	}

	req = httptest.NewRequest(http.MethodPost, "/recommendations/sources", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("sources POST status = %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(&fakeRecService{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestUnknownPath(t *testing.T) {
	handler := newTestHandler(&fakeRecService{})
	req := httptest.NewRequest(http.MethodGet, "/recommendations/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestNormalizeRoute(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/recommendations", "/recommendations"},
		{"/recommendations/surprise", "/recommendations/surprise"},
		{"/recommendations/sources", "/recommendations/sources"},
		{"/recommendations/sources/health", "/recommendations/sources"},
		{"/favicon.ico", "/other"},
	}
	for _, tc := range cases {
		if got := normalizeRoute(tc.path); got != tc.want {
			t.Fatalf("normalizeRoute(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("clientIP = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.5" {
		t.Fatalf("clientIP with XFF = %q", got)
	}
}
