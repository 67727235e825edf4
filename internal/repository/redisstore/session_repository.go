package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/repository/memory"
	"ai-shopassist-be/pkg/store"
)

const (
	keyPrefix   = "assistant:session:"
	lockStripes = 64
	opTimeout   = 2 * time.Second
)

// SessionRepository backs the session store with Redis so conversation state
// survives restarts and can be shared across instances. Writes refresh the
// key TTL, giving the same sliding idle expiry as the in-memory store.
//
// Per-session serialization uses in-process striped locks; cross-instance
// writes to the same session are last-writer-wins.
type SessionRepository struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
	locks  [lockStripes]sync.Mutex
}

var _ store.SessionStore = &SessionRepository{}

func NewSessionRepository(rdb *redis.Client, idleTTL time.Duration, log logger.ILogger) *SessionRepository {
	if idleTTL <= 0 {
		idleTTL = 1 * time.Hour
	}
	return &SessionRepository{
		rdb:    rdb,
		ttl:    idleTTL,
		logger: log,
	}
}

func (r *SessionRepository) Append(sessionID string, msg store.Message) *store.Session {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s := r.load(sessionID)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.History = append(s.History, msg)
	if len(s.History) > memory.HistoryWindow {
		s.History = s.History[len(s.History)-memory.HistoryWindow:]
	}
	r.save(s)
	return s
}

func (r *SessionRepository) MergePreferences(sessionID string, prefs map[string]string) *store.Session {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s := r.load(sessionID)
	if s.Preferences == nil {
		s.Preferences = make(map[string]string, len(prefs))
	}
	for field, value := range prefs {
		if value == "" {
			continue
		}
		s.Preferences[field] = value
	}
	r.save(s)
	return s
}

func (r *SessionRepository) RecordProducts(sessionID string, refs []store.ProductRef) *store.Session {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s := r.load(sessionID)
	s.RecentProducts = append(s.RecentProducts, refs...)
	if len(s.RecentProducts) > memory.ProductWindow {
		s.RecentProducts = s.RecentProducts[len(s.RecentProducts)-memory.ProductWindow:]
	}
	r.save(s)
	return s
}

func (r *SessionRepository) UpdateFlow(sessionID string, flow store.FlowState) *store.Session {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s := r.load(sessionID)
	s.Flow = flow
	r.save(s)
	return s
}

func (r *SessionRepository) Snapshot(sessionID string) *store.Session {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := r.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("SessionStore", "redis get failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}

	var s store.Session
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Warn("SessionStore", "corrupt session payload dropped", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return nil
	}
	return &s
}

func (r *SessionRepository) Delete(sessionID string) {
	lock := r.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := r.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		r.logger.Warn("SessionStore", "redis delete failed", map[string]interface{}{"error": err.Error()})
	}
}

// load fetches the session or starts a fresh one. A redis outage degrades to
// a fresh session rather than an error: the conversation loses continuity
// but keeps working.
func (r *SessionRepository) load(sessionID string) *store.Session {
	if s := r.Snapshot(sessionID); s != nil {
		return s
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

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("SessionStore", "session marshal failed", map[string]interface{}{"session_id": s.ID, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := r.rdb.Set(ctx, keyPrefix+s.ID, data, r.ttl).Err(); err != nil {
		r.logger.Warn("SessionStore", "redis set failed", map[string]interface{}{"session_id": s.ID, "error": err.Error()})
	}
}

func (r *SessionRepository) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &r.locks[h.Sum32()%lockStripes]
}
