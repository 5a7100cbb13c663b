package apihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mediapick/recservice/internal/domain"
	"mediapick/recservice/internal/recs"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RecommendationService interface {
	Recommend(ctx context.Context, request domain.RecommendationRequest) (domain.RecommendationResponse, error)
	Sources() []domain.SourceInfo
	SourceDiagnostics() []domain.SourceDiagnostics
}

type Server struct {
	recs   RecommendationService
	logger *slog.Logger
}

const maxPreviousLikesLength = 500

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(recService RecommendationService, options ...ServerOption) *Server {
	server := &Server{
		recs:   recService,
		logger: slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/recommendations/sources/health", s.handleSourcesHealth)
	mux.HandleFunc("/recommendations/sources", s.handleSources)
	mux.HandleFunc("/recommendations/surprise", s.handleSurprise)
	mux.HandleFunc("/recommendations", s.handleRecommendations)
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "media-recs",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(50, 100, metricsMiddleware(traced)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

type recommendationPayload struct {
	SessionID string `json:"sessionId"`
	Mode      string `json:"mode"`
	NoCache   bool   `json:"noCache"`
	Filters   struct {
		ContentTypes  []string `json:"contentTypes"`
		Genres        []string `json:"genres"`
		Mood          string   `json:"mood"`
		YearFrom      int      `json:"yearFrom"`
		YearTo        int      `json:"yearTo"`
		Language      string   `json:"language"`
		Regional      bool     `json:"regional"`
		PreviousLikes string   `json:"previousLikes"`
		SurpriseMe    bool     `json:"surpriseMe"`
	} `json:"filters"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/recommendations" {
		http.NotFound(w, r)
		return
	}
	s.serveRecommendations(w, r, false)
}

// handleSurprise is the single-pick variant: same request shape, but the
// response carries exactly one item regardless of the surpriseMe flag.
func (s *Server) handleSurprise(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/recommendations/surprise" {
		http.NotFound(w, r)
		return
	}
	s.serveRecommendations(w, r, true)
}

func (s *Server) serveRecommendations(w http.ResponseWriter, r *http.Request, forceSurprise bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recs == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}

	var payload recommendationPayload
	if err := decodeJSONBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	request, err := buildRequest(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if forceSurprise {
		request.Filters.SurpriseMe = true
	}

	response, err := s.recs.Recommend(r.Context(), request)
	if err != nil {
		s.logger.Warn("recommendation request failed",
			slog.String("session", request.SessionID),
			slog.String("mode", string(request.Mode)),
			slog.String("error", err.Error()),
		)
		switch {
		case errors.Is(err, recs.ErrNoContentTypes), errors.Is(err, recs.ErrUnknownType):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, recs.ErrNoSources):
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "recommendation failed")
		}
		return
	}

	fallbacks := 0
	for _, status := range response.Sources {
		if status.Fallback {
			fallbacks++
		}
	}
	s.logger.Info("recommendations served",
		slog.String("session", response.SessionID),
		slog.String("mode", string(request.Mode)),
		slog.Int("items", len(response.Items)),
		slog.Bool("hasMore", response.HasMore),
		slog.Int("fallbackSources", fallbacks),
		slog.Int64("elapsedMs", response.ElapsedMS),
	)

	writeJSON(w, http.StatusOK, response)
}

func buildRequest(payload recommendationPayload) (domain.RecommendationRequest, error) {
	if len(payload.Filters.ContentTypes) == 0 {
		return domain.RecommendationRequest{}, errors.New("at least one content type is required")
	}
	if len(payload.Filters.PreviousLikes) > maxPreviousLikesLength {
		return domain.RecommendationRequest{}, fmt.Errorf("previousLikes too long (max %d characters)", maxPreviousLikesLength)
	}

	types := make([]domain.ContentType, 0, len(payload.Filters.ContentTypes))
	for _, raw := range payload.Filters.ContentTypes {
		contentType, ok := domain.ParseContentType(raw)
		if !ok {
			return domain.RecommendationRequest{}, fmt.Errorf("unknown content type: %s", raw)
		}
		types = append(types, contentType)
	}

	return domain.RecommendationRequest{
		SessionID: payload.SessionID,
		Mode:      domain.NormalizeMode(payload.Mode),
		NoCache:   payload.NoCache,
		Filters: domain.Filters{
			ContentTypes:  types,
			Genres:        payload.Filters.Genres,
			Mood:          payload.Filters.Mood,
			YearFrom:      payload.Filters.YearFrom,
			YearTo:        payload.Filters.YearTo,
			Language:      payload.Filters.Language,
			Regional:      payload.Filters.Regional,
			PreviousLikes: payload.Filters.PreviousLikes,
			SurpriseMe:    payload.Filters.SurpriseMe,
		},
	}, nil
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/recommendations/sources" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recs == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": s.recs.Sources(),
	})
}

func (s *Server) handleSourcesHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/recommendations/sources/health" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recs == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"checkedAt": time.Now().UTC(),
		"items":     s.recs.SourceDiagnostics(),
	})
}

func decodeJSONBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
