package memory

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"ai-shopassist-be/pkg/store"
)

const (
	// HistoryWindow bounds the turns kept per session.
	HistoryWindow = 12
	// ProductWindow bounds the surfaced-product log per session.
	ProductWindow = 10

	lockStripes = 64
)

// SessionRepository keeps conversation state in-process behind the injected
// store.SessionStore interface. Every mutation rewrites the cache entry,
// which restarts its expiration clock, so a session lives for the idle TTL
// past its most recent turn and then silently becomes a fresh session.
//
// Striped locks serialize mutations per session id; distinct sessions land
// on different stripes and proceed in parallel.
type SessionRepository struct {
	cache *cache.Cache
	locks [lockStripes]sync.Mutex
}

var _ store.SessionStore = &SessionRepository{}

func NewSessionRepository(idleTTL time.Duration) *SessionRepository {
	if idleTTL <= 0 {
		idleTTL = 1 * time.Hour
	}
	// Purge expired sessions every 10 minutes
	return &SessionRepository{
		cache: cache.New(idleTTL, 10*time.Minute),
	}
}

func (r *SessionRepository) Append(sessionID string, msg store.Message) *store.Session {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s := r.getOrCreate(sessionID)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.History = append(s.History, msg)
	if len(s.History) > HistoryWindow {
		s.History = s.History[len(s.History)-HistoryWindow:]
	}
	r.save(s)
	return s.Clone()
}

func (r *SessionRepository) MergePreferences(sessionID string, prefs map[string]string) *store.Session {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s := r.getOrCreate(sessionID)
	if s.Preferences == nil {
		s.Preferences = make(map[string]string, len(prefs))
	}
	// Field-additive: only fields the partial update mentions change, and
	// empty values carry no information, so they never erase anything.
	for field, value := range prefs {
		if value == "" {
			continue
		}
		s.Preferences[field] = value
	}
	r.save(s)
	return s.Clone()
}

func (r *SessionRepository) RecordProducts(sessionID string, refs []store.ProductRef) *store.Session {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s := r.getOrCreate(sessionID)
	s.RecentProducts = append(s.RecentProducts, refs...)
	if len(s.RecentProducts) > ProductWindow {
		s.RecentProducts = s.RecentProducts[len(s.RecentProducts)-ProductWindow:]
	}
	r.save(s)
	return s.Clone()
}

func (r *SessionRepository) UpdateFlow(sessionID string, flow store.FlowState) *store.Session {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s := r.getOrCreate(sessionID)
	s.Flow = flow
	r.save(s)
	return s.Clone()
}

func (r *SessionRepository) Snapshot(sessionID string) *store.Session {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session).Clone()
	}
	return nil
}

func (r *SessionRepository) Delete(sessionID string) {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	r.cache.Delete(sessionID)
}

func (r *SessionRepository) getOrCreate(sessionID string) *store.Session {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session)
	}
	now := time.Now()
	return &store.Session{
		ID:        sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *SessionRepository) save(s *store.Session) {
	s.UpdatedAt = time.Now()
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
}

func (r *SessionRepository) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &r.locks[h.Sum32()%lockStripes]
}
