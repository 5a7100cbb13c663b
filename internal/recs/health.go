package recs

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"mediapick/recservice/internal/domain"
	"mediapick/recservice/internal/metrics"
)

const (
	sourceFailureThreshold = 3
	sourceBlockBase        = 2 * time.Minute
	sourceBlockMax         = 15 * time.Minute
)

type sourceHealth struct {
	consecutiveFailures int
	blockedUntil        time.Time
	lastError           string
	lastSuccessAt       time.Time
	lastFailureAt       time.Time
	lastLatency         time.Duration
	lastTimeout         bool
	totalRequests       int64
	totalFailures       int64
	timeoutCount        int64
	fallbacksServed     int64
}

// isSourceBlocked reports whether a source's circuit is open. While blocked
// the fetch layer skips the upstream call and serves fallback content
// directly.
func (s *Service) isSourceBlocked(contentType domain.ContentType, now time.Time) (bool, time.Time, string) {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	state := s.health[contentType]
	if state == nil {
		return false, time.Time{}, ""
	}
	if state.blockedUntil.IsZero() || now.After(state.blockedUntil) {
		return false, time.Time{}, ""
	}
	return true, state.blockedUntil, state.lastError
}

func (s *Service) recordSourceResult(contentType domain.ContentType, sourceName string, err error, latency time.Duration, now time.Time) {
	name := strings.ToLower(strings.TrimSpace(sourceName))
	if name == "" {
		name = string(contentType)
	}

	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	state := s.health[contentType]
	if state == nil {
		state = &sourceHealth{}
		s.health[contentType] = state
	}
	state.totalRequests++
	if latency > 0 {
		state.lastLatency = latency
		metrics.SourceRequestDuration.WithLabelValues(name).Observe(latency.Seconds())
	}
	state.lastTimeout = isTimeoutLikeError(err)
	if state.lastTimeout {
		state.timeoutCount++
	}

	if err == nil {
		state.consecutiveFailures = 0
		state.blockedUntil = time.Time{}
		state.lastError = ""
		state.lastSuccessAt = now
		metrics.SourceRequestsTotal.WithLabelValues(name, "ok").Inc()
		metrics.SourceAvailable.WithLabelValues(name).Set(1)
		return
	}

	state.consecutiveFailures++
	state.totalFailures++
	state.lastFailureAt = now
	state.lastError = err.Error()

	status := "error"
	if state.lastTimeout {
		status = "timeout"
	}
	metrics.SourceRequestsTotal.WithLabelValues(name, status).Inc()

	if state.consecutiveFailures >= sourceFailureThreshold {
		state.blockedUntil = now.Add(exponentialBlockDuration(state.consecutiveFailures))
		metrics.SourceAvailable.WithLabelValues(name).Set(0)
	}
}

// recordFallbackServed counts a fallback substitution for diagnostics and
// metrics. Separate from recordSourceResult because a blocked source serves
// fallback without an upstream attempt.
func (s *Service) recordFallbackServed(contentType domain.ContentType, sourceName string) {
	name := strings.ToLower(strings.TrimSpace(sourceName))
	if name == "" {
		name = string(contentType)
	}
	metrics.FallbacksServedTotal.WithLabelValues(name).Inc()

	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	state := s.health[contentType]
	if state == nil {
		state = &sourceHealth{}
		s.health[contentType] = state
	}
	state.fallbacksServed++
}

// exponentialBlockDuration grows the block window with consecutive failures:
// base × 2^(failures - threshold), capped at sourceBlockMax.
func exponentialBlockDuration(consecutiveFailures int) time.Duration {
	exponent := consecutiveFailures - sourceFailureThreshold
	if exponent < 0 {
		exponent = 0
	}
	d := sourceBlockBase
	for i := 0; i < exponent; i++ {
		d *= 2
		if d > sourceBlockMax {
			return sourceBlockMax
		}
	}
	return d
}

func isTimeoutLikeError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "timeout") || strings.Contains(value, "deadline exceeded")
}

// SourceDiagnostics snapshots the health state of every configured source.
func (s *Service) SourceDiagnostics() []domain.SourceDiagnostics {
	infos := s.Sources()
	if len(infos) == 0 {
		return nil
	}

	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	items := make([]domain.SourceDiagnostics, 0, len(infos))
	for _, info := range infos {
		item := domain.SourceDiagnostics{
			Type:    info.Type,
			Name:    info.Name,
			Label:   info.Label,
			Enabled: info.Enabled,
		}
		if state := s.health[info.Type]; state != nil {
			item.ConsecutiveFailures = state.consecutiveFailures
			if !state.blockedUntil.IsZero() {
				item.BlockedUntilRFC3339 = state.blockedUntil.Format(time.RFC3339)
			}
			item.LastError = state.lastError
			item.LastLatencyMS = state.lastLatency.Milliseconds()
			item.TotalRequests = state.totalRequests
			item.TotalFailures = state.totalFailures
			item.FallbacksServed = state.fallbacksServed
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Type < items[j].Type
	})
	return items
}
