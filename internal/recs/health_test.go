package recs

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediapick/recservice/internal/domain"
)

func TestSourceCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	service := newTestService(nil)
	now := time.Now()
	failure := errors.New("boom")

	for i := 0; i < sourceFailureThreshold-1; i++ {
		service.recordSourceResult(domain.ContentTypeMovie, "tmdb-movies", failure, time.Millisecond, now)
	}
	if blocked, _, _ := service.isSourceBlocked(domain.ContentTypeMovie, now); blocked {
		t.Fatalf("circuit opened before the failure threshold")
	}

	service.recordSourceResult(domain.ContentTypeMovie, "tmdb-movies", failure, time.Millisecond, now)
	blocked, until, lastErr := service.isSourceBlocked(domain.ContentTypeMovie, now)
	if !blocked {
		t.Fatalf("circuit must open at the failure threshold")
	}
	if want := now.Add(sourceBlockBase); !until.Equal(want) {
		t.Fatalf("blockedUntil = %v, want %v", until, want)
	}
	if lastErr != "boom" {
		t.Fatalf("lastError = %q, want boom", lastErr)
	}

	if blocked, _, _ := service.isSourceBlocked(domain.ContentTypeMovie, now.Add(sourceBlockBase+time.Second)); blocked {
		t.Fatalf("circuit must close after the block window")
	}
}

func TestSourceCircuitClosesOnSuccess(t *testing.T) {
	service := newTestService(nil)
	now := time.Now()
	failure := errors.New("boom")

	for i := 0; i < sourceFailureThreshold; i++ {
		service.recordSourceResult(domain.ContentTypeAnime, "jikan", failure, time.Millisecond, now)
	}
	if blocked, _, _ := service.isSourceBlocked(domain.ContentTypeAnime, now); !blocked {
		t.Fatalf("circuit should be open")
	}

	service.recordSourceResult(domain.ContentTypeAnime, "jikan", nil, time.Millisecond, now)
	if blocked, _, _ := service.isSourceBlocked(domain.ContentTypeAnime, now); blocked {
		t.Fatalf("success must close the circuit")
	}
}

func TestExponentialBlockDuration(t *testing.T) {
	cases := []struct {
		failures int
		want     time.Duration
	}{
		{sourceFailureThreshold, sourceBlockBase},
		{sourceFailureThreshold + 1, 2 * sourceBlockBase},
		{sourceFailureThreshold + 2, 4 * sourceBlockBase},
		{sourceFailureThreshold + 10, sourceBlockMax},
	}
	for _, tc := range cases {
		if got := exponentialBlockDuration(tc.failures); got != tc.want {
			t.Fatalf("exponentialBlockDuration(%d) = %v, want %v", tc.failures, got, tc.want)
		}
	}
}

func TestBlockedSourceServesFallbackWithoutUpstreamCall(t *testing.T) {
	movies := &fakeSource{
		contentType: domain.ContentTypeMovie,
		name:        "movies",
		pages:       map[int][]domain.MediaItem{1: makeItems(domain.ContentTypeMovie, "m", 5, 4.5, "Drama")},
	}
	service := newTestService([]Source{movies})

	now := time.Now()
	for i := 0; i < sourceFailureThreshold; i++ {
		service.recordSourceResult(domain.ContentTypeMovie, "movies", errors.New("boom"), time.Millisecond, now)
	}

	response, err := service.Recommend(context.Background(), domain.RecommendationRequest{
		Filters: domain.Filters{ContentTypes: []domain.ContentType{domain.ContentTypeMovie}},
	})
	if err != nil {
		t.Fatalf("recommend error: %v", err)
	}
	if !response.Sources[0].Fallback {
		t.Fatalf("blocked source must serve fallback, got %+v", response.Sources[0])
	}
	if got := movies.calls.Load(); got != 0 {
		t.Fatalf("blocked source must not be called, got %d calls", got)
	}
}

func TestSourceDiagnosticsSnapshot(t *testing.T) {
	movies := &fakeSource{contentType: domain.ContentTypeMovie, name: "movies"}
	service := newTestService([]Source{movies})
	now := time.Now()

	service.recordSourceResult(domain.ContentTypeMovie, "movies", errors.New("boom"), 25*time.Millisecond, now)
	service.recordFallbackServed(domain.ContentTypeMovie, "movies")

	diagnostics := service.SourceDiagnostics()
	if len(diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostics entry, got %d", len(diagnostics))
	}
	entry := diagnostics[0]
	if entry.ConsecutiveFailures != 1 || entry.TotalRequests != 1 || entry.TotalFailures != 1 {
		t.Fatalf("unexpected counters: %+v", entry)
	}
	if entry.LastError != "boom" {
		t.Fatalf("lastError = %q", entry.LastError)
	}
	if entry.LastLatencyMS != 25 {
		t.Fatalf("lastLatencyMs = %d, want 25", entry.LastLatencyMS)
	}
	if entry.FallbacksServed != 1 {
		t.Fatalf("fallbacksServed = %d, want 1", entry.FallbacksServed)
	}
}
