package recs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"log/slog"

	"mediapick/recservice/internal/domain"
	"mediapick/recservice/internal/metrics"
)

const (
	sessionTTL           = 30 * time.Minute
	sessionSweepInterval = 5 * time.Minute
)

// A session holds the per-user pagination state: which upstream page each
// content type is on, which items were already handed out, and a monotonic
// sequence number that detects responses overtaken by a newer request.
type session struct {
	id          string
	seq         uint64
	pages       map[domain.ContentType]int
	seen        map[string]struct{}
	exhausted   map[domain.ContentType]bool
	refreshFlip bool
	lastActive  time.Time
}

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// StartSweeper evicts idle sessions until ctx is cancelled.
func (st *SessionStore) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.sweep()
			}
		}
	}()
}

func (st *SessionStore) sweep() {
	st.mu.Lock()
	defer st.mu.Unlock()
	cutoff := st.now().Add(-sessionTTL)
	for id, sess := range st.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(st.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(st.sessions)))
}

// sessionSnapshot is the state a request works against while the store lock
// is released. pages already reflect the requested mode.
type sessionSnapshot struct {
	id        string
	seq       uint64
	new       bool
	pages     map[domain.ContentType]int
	seen      map[string]struct{}
	exhausted map[domain.ContentType]bool
}

func (st *SessionStore) acquire(id string, mode domain.Mode, types []domain.ContentType) sessionSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	sess, exists := st.sessions[id]
	if !exists || id == "" {
		sess = &session{
			id:        newSessionID(),
			pages:     make(map[domain.ContentType]int),
			seen:      make(map[string]struct{}),
			exhausted: make(map[domain.ContentType]bool),
		}
		st.sessions[sess.id] = sess
		metrics.ActiveSessions.Set(float64(len(st.sessions)))
		mode = domain.ModeInitial
	}
	sess.lastActive = now
	sess.seq++

	pages := make(map[domain.ContentType]int, len(types))
	switch mode {
	case domain.ModeLoadMore:
		for _, ct := range types {
			current := sess.pages[ct]
			if current <= 0 {
				current = 1
			}
			if sess.exhausted[ct] {
				pages[ct] = current
				continue
			}
			pages[ct] = current + 1
		}
	case domain.ModeRefresh:
		// Alternate between the first two upstream pages so consecutive
		// refreshes do not replay the same batch.
		sess.refreshFlip = !sess.refreshFlip
		page := 1
		if sess.refreshFlip {
			page = 2
		}
		for _, ct := range types {
			pages[ct] = page
		}
		sess.seen = make(map[string]struct{})
		sess.exhausted = make(map[domain.ContentType]bool)
	default:
		for _, ct := range types {
			pages[ct] = 1
		}
		sess.pages = make(map[domain.ContentType]int)
		sess.seen = make(map[string]struct{})
		sess.exhausted = make(map[domain.ContentType]bool)
		sess.refreshFlip = false
	}

	seen := make(map[string]struct{}, len(sess.seen))
	for key := range sess.seen {
		seen[key] = struct{}{}
	}
	exhausted := make(map[domain.ContentType]bool, len(sess.exhausted))
	for ct, done := range sess.exhausted {
		exhausted[ct] = done
	}

	return sessionSnapshot{
		id:        sess.id,
		seq:       sess.seq,
		new:       !exists,
		pages:     pages,
		seen:      seen,
		exhausted: exhausted,
	}
}

// commit records what a request handed out. It refuses when a newer request
// on the same session has already been admitted, so a slow response cannot
// clobber fresher state.
func (st *SessionStore) commit(snapshot sessionSnapshot, keys []string, exhausted []domain.ContentType) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[snapshot.id]
	if !ok {
		return false
	}
	if sess.seq != snapshot.seq {
		return false
	}
	for ct, page := range snapshot.pages {
		sess.pages[ct] = page
	}
	for _, key := range keys {
		sess.seen[key] = struct{}{}
	}
	for _, ct := range exhausted {
		sess.exhausted[ct] = true
	}
	return true
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "s-" + hex.EncodeToString([]byte(time.Now().Format("150405.000000000")))
	}
	return hex.EncodeToString(buf)
}

// Recommend is the aggregation entry point. It validates and normalizes the
// request, fans out to the selected catalog sources, and assembles one
// ranked, deduplicated batch according to the request mode.
func (s *Service) Recommend(ctx context.Context, request domain.RecommendationRequest) (domain.RecommendationResponse, error) {
	startedAt := time.Now()

	prep, err := s.prepareRequest(request)
	if err != nil {
		return domain.RecommendationResponse{}, err
	}

	mode := domain.NormalizeMode(string(request.Mode))

	// A refresh with a single content type mixes in one random other type
	// for this response only; the session keeps the user's selection.
	if mode == domain.ModeRefresh && len(prep.types) == 1 {
		if extra, ok := s.pickExtraType(prep.types[0]); ok {
			prep.types = append(prep.types, extra)
		}
	}

	snapshot := s.sessions.acquire(request.SessionID, mode, prep.types)
	if snapshot.new {
		mode = domain.ModeInitial
	}
	prep.pages = snapshot.pages

	// Exhausted types stay exhausted for the life of the session: no further
	// pages are requested for them.
	if mode == domain.ModeLoadMore {
		active := make([]domain.ContentType, 0, len(prep.types))
		for _, ct := range prep.types {
			if !snapshot.exhausted[ct] {
				active = append(active, ct)
			}
		}
		prep.types = active
	}

	batches, statuses := s.fetchAll(ctx, prep)

	merged := make([]domain.MediaItem, 0, 64)
	for _, contentType := range prep.types {
		merged = append(merged, batches[contentType]...)
	}

	merged = filterByYear(merged, prep.yearFrom, prep.yearTo)
	filtered := applyGenreFilter(merged, prep.genres)
	noMatches := len(filtered) == 0 && len(merged) > 0

	items := dedupeItems(filtered)
	if mode == domain.ModeLoadMore {
		items = dropSeen(items, snapshot.seen)
	}
	rankItems(items, prep.keywords)

	var exhaustedNow []domain.ContentType
	if mode == domain.ModeLoadMore {
		counts := make(map[domain.ContentType]int, len(prep.types))
		for _, item := range items {
			counts[item.Type]++
		}
		for _, ct := range prep.types {
			if counts[ct] == 0 {
				exhaustedNow = append(exhaustedNow, ct)
			}
		}
	}

	hasMore := false
	if prep.surprise {
		if pick, ok := s.pickSurprise(items); ok {
			items = []domain.MediaItem{pick}
		} else {
			items = nil
		}
	} else {
		hasMore = len(items) >= hasMoreThreshold
		if mode == domain.ModeLoadMore && len(items) == 0 {
			hasMore = false
		}
	}

	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key())
	}
	stale := !s.sessions.commit(snapshot, keys, exhaustedNow)

	if items == nil {
		items = []domain.MediaItem{}
	}

	page := 1
	for _, p := range snapshot.pages {
		if p > page {
			page = p
		}
	}

	slog.Info("recommendation batch assembled",
		slog.String("session", snapshot.id),
		slog.String("mode", string(mode)),
		slog.Int("items", len(items)),
		slog.Bool("hasMore", hasMore),
		slog.Bool("stale", stale),
		slog.Int64("elapsedMs", time.Since(startedAt).Milliseconds()),
	)

	return domain.RecommendationResponse{
		SessionID: snapshot.id,
		Sequence:  snapshot.seq,
		Stale:     stale,
		Items:     items,
		HasMore:   hasMore,
		NoMatches: noMatches,
		Sources:   statuses,
		ElapsedMS: time.Since(startedAt).Milliseconds(),
		Page:      page,
	}, nil
}

// pickExtraType selects a random content type other than the given one.
func (s *Service) pickExtraType(except domain.ContentType) (domain.ContentType, bool) {
	candidates := make([]domain.ContentType, 0, len(domain.AllContentTypes)-1)
	for _, ct := range domain.AllContentTypes {
		if ct != except {
			candidates = append(candidates, ct)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[s.pickIndex(len(candidates))], true
}

func dropSeen(items []domain.MediaItem, seen map[string]struct{}) []domain.MediaItem {
	if len(seen) == 0 {
		return items
	}
	out := make([]domain.MediaItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.Key()]; dup {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Sessions exposes the store so the server can run the idle sweeper.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}
