package session

import (
	"log"
	"sync"
	"time"

	"content-advisor-be/pkg/store"

	gocache "github.com/patrickmn/go-cache"
)

// Config encapsulates session lifecycle parameters.
type Config struct {
	IdleTTL         time.Duration // sliding idle window before a session expires
	CleanupInterval time.Duration // janitor sweep interval
	MaxTurns        int           // turns kept per session; older turns are dropped
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		IdleTTL:         24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
		MaxTurns:        10,
	}
}

// Manager owns conversation state. It serializes all processing per session
// through per-key mutexes and expires idle sessions lazily (plus the cache
// janitor in the background).
//
// Two locks are in play: the per-session mutexes serialize whole pipeline
// runs, while stateMu guards the turn history itself so that Peek and Stats
// can read it while a run is in flight on the same session.
type Manager struct {
	cache  *gocache.Cache
	config Config
	logger *log.Logger

	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	onExpired func(session *store.Session)

	stateMu sync.RWMutex
}

// NewManager creates a new conversation state manager
func NewManager(config Config, logger *log.Logger) *Manager {
	m := &Manager{
		cache:  gocache.New(config.IdleTTL, config.CleanupInterval),
		config: config,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}

	// Eviction prunes the session's lock entry so the lock map cannot grow
	// with every session id ever seen, then notifies the registered callback.
	m.cache.OnEvicted(func(key string, value interface{}) {
		m.mu.Lock()
		delete(m.locks, key)
		fn := m.onExpired
		m.mu.Unlock()

		if fn == nil {
			return
		}
		if s, ok := value.(*store.Session); ok {
			fn(s)
		}
	})

	return m
}

// OnExpired registers a callback fired when a session is evicted.
func (m *Manager) OnExpired(fn func(session *store.Session)) {
	m.mu.Lock()
	m.onExpired = fn
	m.mu.Unlock()
}

// Acquire locks the session for one pipeline run and returns the unlock
// function. Concurrent submits for the same session queue here; different
// sessions proceed in parallel.
func (m *Manager) Acquire(sessionId string) func() {
	m.mu.Lock()
	lock, ok := m.locks[sessionId]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionId] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Load returns the session, creating a fresh one when none exists or the
// previous one expired. Access slides the idle TTL. Callers must hold the
// session lock.
func (m *Manager) Load(sessionId, tenantId string) *store.Session {
	if value, found := m.cache.Get(sessionId); found {
		s := value.(*store.Session)
		m.stateMu.Lock()
		s.LastSeen = time.Now()
		m.stateMu.Unlock()
		m.cache.Set(sessionId, s, m.config.IdleTTL)
		return s
	}

	now := time.Now()
	s := &store.Session{
		ID:        sessionId,
		TenantID:  tenantId,
		CreatedAt: now,
		LastSeen:  now,
	}
	m.cache.Set(sessionId, s, m.config.IdleTTL)
	m.logger.Printf("[SESSION] Started fresh session %s", sessionId)
	return s
}

// Peek returns a point-in-time copy of the session without creating or
// touching it. The copy is safe to read while a pipeline run appends to the
// live session.
func (m *Manager) Peek(sessionId string) (*store.Session, bool) {
	value, found := m.cache.Get(sessionId)
	if !found {
		return nil, false
	}
	s := value.(*store.Session)

	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	snapshot := *s
	snapshot.Turns = append([]store.Turn(nil), s.Turns...)
	return &snapshot, true
}

// AppendTurn records a completed turn. Only fully successful pipeline runs
// reach this; a failed turn never mutates the session. Callers must hold the
// session lock.
func (m *Manager) AppendTurn(session *store.Session, turn store.Turn) {
	m.stateMu.Lock()
	session.Turns = append(session.Turns, turn)
	if m.config.MaxTurns > 0 && len(session.Turns) > m.config.MaxTurns {
		session.Turns = session.Turns[len(session.Turns)-m.config.MaxTurns:]
	}
	session.LastSeen = time.Now()
	m.stateMu.Unlock()

	m.cache.Set(session.ID, session, m.config.IdleTTL)
}

// Delete removes a session and its lock entry.
func (m *Manager) Delete(sessionId string) {
	m.cache.Delete(sessionId)

	m.mu.Lock()
	delete(m.locks, sessionId)
	m.mu.Unlock()
}

// Stats reports active session and turn counts for the ops surface.
func (m *Manager) Stats() (sessions int, turns int) {
	items := m.cache.Items()

	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	for _, item := range items {
		if s, ok := item.Object.(*store.Session); ok {
			sessions++
			turns += len(s.Turns)
		}
	}
	return sessions, turns
}
