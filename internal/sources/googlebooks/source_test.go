package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediapick/recservice/internal/domain"
	"mediapick/recservice/internal/recs"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSource(Config{BaseURL: server.URL, Client: server.Client()})
}

func writeVolumes(t *testing.T, w http.ResponseWriter, vols []volume) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(volumesResponse{Items: vols}); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestFetchPopularBuildsSubjectQuery(t *testing.T) {
	var got map[string]string
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		got = map[string]string{}
		for key := range r.URL.Query() {
			got[key] = r.URL.Query().Get(key)
		}
		writeVolumes(t, w, nil)
	})

	_, err := source.FetchPopular(context.Background(), recs.SourceQuery{
		Genres: []string{"Fantasy", "Mystery"},
		Page:   3,
	})
	if err != nil {
		t.Fatalf("FetchPopular error: %v", err)
	}

	if got["q"] != "subject:fantasy OR subject:mystery" {
		t.Fatalf("q = %q", got["q"])
	}
	if got["orderBy"] != "relevance" || got["printType"] != "books" {
		t.Fatalf("unexpected params: %v", got)
	}
	if got["maxResults"] != "20" || got["startIndex"] != "40" {
		t.Fatalf("pagination params: maxResults=%q startIndex=%q", got["maxResults"], got["startIndex"])
	}
}

func TestFetchPopularDefaultsToFiction(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "subject:fiction" {
			t.Fatalf("q = %q", q)
		}
		writeVolumes(t, w, nil)
	})
	if _, err := source.FetchPopular(context.Background(), recs.SourceQuery{}); err != nil {
		t.Fatalf("FetchPopular error: %v", err)
	}
}

func TestRegionalRestrictsLanguage(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("langRestrict"); got != "hi" {
			t.Fatalf("langRestrict = %q", got)
		}
		writeVolumes(t, w, nil)
	})
	if _, err := source.FetchPopular(context.Background(), recs.SourceQuery{Regional: true, Language: "fr"}); err != nil {
		t.Fatalf("FetchPopular error: %v", err)
	}
}

func TestFetchSimilarUnsupported(t *testing.T) {
	source := NewSource(Config{})
	_, err := source.FetchSimilar(context.Background(), "abc", recs.SourceQuery{})
	if !errors.Is(err, recs.ErrSimilarUnsupported) {
		t.Fatalf("expected ErrSimilarUnsupported, got %v", err)
	}
}

func TestErrorMapping(t *testing.T) {
	status := http.StatusTooManyRequests
	source := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})

	_, err := source.FetchPopular(context.Background(), recs.SourceQuery{})
	if !errors.Is(err, recs.ErrRateLimited) {
		t.Fatalf("429 should map to ErrRateLimited, got %v", err)
	}

	status = http.StatusBadGateway
	_, err = source.FetchPopular(context.Background(), recs.SourceQuery{})
	if !errors.Is(err, recs.ErrUpstreamUnavailable) {
		t.Fatalf("502 should map to ErrUpstreamUnavailable, got %v", err)
	}
}

func TestNormalizeVolume(t *testing.T) {
	vol := volume{
		ID: "abc123",
		VolumeInfo: volumeInfo{
			Title:         "Dune",
			Authors:       []string{"Frank Herbert", "Someone Else"},
			Description:   "A sweeping tale of desert politics and prophecy.",
			PublishedDate: "1965-08-01",
			Categories:    []string{"Science Fiction"},
			AverageRating: 4.5,
			Language:      "en",
		},
	}
	vol.VolumeInfo.ImageLinks.Thumbnail = "http://books.example/cover.jpg"

	item, err := normalizeVolume(vol, recs.SourceQuery{Genres: []string{"Sci-Fi"}})
	if err != nil {
		t.Fatalf("normalizeVolume error: %v", err)
	}
	if item.Author != "Frank Herbert" {
		t.Fatalf("author = %q", item.Author)
	}
	if item.Year != 1965 {
		t.Fatalf("year = %d", item.Year)
	}
	if item.Rating != 4.5 {
		t.Fatalf("rating = %f", item.Rating)
	}
	if item.CoverImage != "https://books.example/cover.jpg" {
		t.Fatalf("thumbnail not upgraded to https: %q", item.CoverImage)
	}
	if len(item.Genres) != 2 {
		t.Fatalf("selected genres not folded in: %v", item.Genres)
	}
	if item.Type != domain.ContentTypeBook {
		t.Fatalf("type = %s", item.Type)
	}
}

func TestNormalizeVolumeDefaults(t *testing.T) {
	vol := volume{ID: "x", VolumeInfo: volumeInfo{Title: "Bare", Description: "too short"}}

	item, err := normalizeVolume(vol, recs.SourceQuery{})
	if err != nil {
		t.Fatalf("normalizeVolume error: %v", err)
	}
	if item.Rating != defaultRating {
		t.Fatalf("unrated volume rating = %f, want %f", item.Rating, defaultRating)
	}
	if item.Description != domain.PlaceholderDescription {
		t.Fatalf("thin description must be replaced, got %q", item.Description)
	}
	if item.CoverImage != domain.PlaceholderCoverImage {
		t.Fatalf("cover = %q", item.CoverImage)
	}
	if item.Year != domain.YearUnknown {
		t.Fatalf("year = %d", item.Year)
	}

	if _, err := normalizeVolume(volume{VolumeInfo: volumeInfo{Title: "no id"}}, recs.SourceQuery{}); err == nil {
		t.Fatalf("missing id must fail normalization")
	}
	if _, err := normalizeVolume(volume{ID: "y"}, recs.SourceQuery{}); err == nil {
		t.Fatalf("missing title must fail normalization")
	}
}

func TestSearchByKeywordForcesFirstPage(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("startIndex"); got != "0" {
			t.Fatalf("startIndex = %q, want 0", got)
		}
		writeVolumes(t, w, nil)
	})
	if _, err := source.SearchByKeyword(context.Background(), "dune", recs.SourceQuery{Page: 4}); err != nil {
		t.Fatalf("SearchByKeyword error: %v", err)
	}
}
