package session

import (
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"content-advisor-be/pkg/store"
)

func newTestManager(config Config) *Manager {
	return NewManager(config, log.New(io.Discard, "", 0))
}

func TestLoadCreatesFreshSession(t *testing.T) {
	m := newTestManager(DefaultConfig())

	s := m.Load("s1", "tenant-1")
	if s.ID != "s1" || s.TenantID != "tenant-1" {
		t.Errorf("session = %+v", s)
	}
	if len(s.Turns) != 0 {
		t.Errorf("fresh session has %d turns", len(s.Turns))
	}

	again := m.Load("s1", "tenant-1")
	if again != s {
		t.Error("second load must return the same session")
	}
}

func TestAppendTurnTrimsToMaxTurns(t *testing.T) {
	config := DefaultConfig()
	config.MaxTurns = 3
	m := newTestManager(config)

	s := m.Load("s1", "t1")
	for i := 0; i < 5; i++ {
		m.AppendTurn(s, store.Turn{Query: fmt.Sprintf("q%d", i), CreatedAt: time.Now()})
	}

	if len(s.Turns) != 3 {
		t.Fatalf("len(Turns) = %d, want 3", len(s.Turns))
	}
	if s.Turns[0].Query != "q2" || s.Turns[2].Query != "q4" {
		t.Errorf("kept turns = [%s..%s], want oldest dropped", s.Turns[0].Query, s.Turns[2].Query)
	}
}

func TestRecentTurns(t *testing.T) {
	s := &store.Session{}
	for i := 0; i < 4; i++ {
		s.Turns = append(s.Turns, store.Turn{Query: fmt.Sprintf("q%d", i)})
	}

	recent := s.RecentTurns(2)
	if len(recent) != 2 || recent[0].Query != "q2" || recent[1].Query != "q3" {
		t.Errorf("RecentTurns(2) = %v", recent)
	}
	if got := s.RecentTurns(0); got != nil {
		t.Errorf("RecentTurns(0) = %v, want nil", got)
	}
	if got := s.RecentTurns(10); len(got) != 4 {
		t.Errorf("RecentTurns(10) returned %d turns, want all 4", len(got))
	}
}

func TestPeekDoesNotCreate(t *testing.T) {
	m := newTestManager(DefaultConfig())

	if _, found := m.Peek("missing"); found {
		t.Error("Peek must not create sessions")
	}

	m.Load("s1", "t1")
	if _, found := m.Peek("s1"); !found {
		t.Error("Peek must find an existing session")
	}
}

func TestDeleteRemovesSession(t *testing.T) {
	m := newTestManager(DefaultConfig())

	m.Load("s1", "t1")
	m.Delete("s1")

	if _, found := m.Peek("s1"); found {
		t.Error("session survived Delete")
	}
}

func TestIdleExpiry(t *testing.T) {
	config := Config{IdleTTL: 20 * time.Millisecond, CleanupInterval: 5 * time.Millisecond, MaxTurns: 10}
	m := newTestManager(config)

	m.Load("s1", "t1")
	time.Sleep(40 * time.Millisecond)

	if _, found := m.Peek("s1"); found {
		t.Error("session survived past the idle TTL")
	}
}

func TestSlidingTTLOnLoad(t *testing.T) {
	config := Config{IdleTTL: 60 * time.Millisecond, CleanupInterval: time.Minute, MaxTurns: 10}
	m := newTestManager(config)

	m.Load("s1", "t1")

	// Keep touching the session; each load slides the window
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		m.Load("s1", "t1")
	}

	if _, found := m.Peek("s1"); !found {
		t.Error("activity must keep the session alive")
	}
}

func TestOnExpiredCallback(t *testing.T) {
	config := Config{IdleTTL: 15 * time.Millisecond, CleanupInterval: 5 * time.Millisecond, MaxTurns: 10}
	m := newTestManager(config)

	var mu sync.Mutex
	var expired []string
	m.OnExpired(func(s *store.Session) {
		mu.Lock()
		expired = append(expired, s.ID)
		mu.Unlock()
	})

	m.Load("s1", "t1")
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(expired) == 0 || expired[0] != "s1" {
		t.Errorf("expired = %v, want [s1]", expired)
	}
}

func TestAcquireSerializesPerSession(t *testing.T) {
	m := newTestManager(DefaultConfig())
	s := m.Load("s1", "t1")

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			unlock := m.Acquire("s1")
			defer unlock()
			// Critical section: read-modify-write is only safe if serialized
			m.AppendTurn(s, store.Turn{Query: fmt.Sprintf("q%d", n), CreatedAt: time.Now()})
		}(i)
	}
	wg.Wait()

	sessions, turns := m.Stats()
	if sessions != 1 {
		t.Errorf("sessions = %d, want 1", sessions)
	}
	if turns != DefaultConfig().MaxTurns {
		t.Errorf("turns = %d, want trimmed to %d", turns, DefaultConfig().MaxTurns)
	}
}

func TestPeekSnapshotIsolatedFromAppends(t *testing.T) {
	m := newTestManager(DefaultConfig())
	s := m.Load("s1", "t1")
	m.AppendTurn(s, store.Turn{Query: "q0", CreatedAt: time.Now()})

	peeked, found := m.Peek("s1")
	if !found {
		t.Fatal("Peek must find the session")
	}

	m.AppendTurn(s, store.Turn{Query: "q1", CreatedAt: time.Now()})

	if len(peeked.Turns) != 1 || peeked.Turns[0].Query != "q0" {
		t.Errorf("peeked turns = %v, want the pre-append snapshot", peeked.Turns)
	}
}

func TestConcurrentReadsDuringAppends(t *testing.T) {
	m := newTestManager(DefaultConfig())
	s := m.Load("s1", "t1")

	const writers, readers = 8, 8
	var wg sync.WaitGroup
	wg.Add(writers + readers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			unlock := m.Acquire("s1")
			defer unlock()
			m.AppendTurn(s, store.Turn{Query: fmt.Sprintf("q%d", n), CreatedAt: time.Now()})
		}(i)
	}
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			if peeked, found := m.Peek("s1"); found {
				_ = len(peeked.Turns)
			}
			m.Stats()
		}()
	}
	wg.Wait()

	sessions, turns := m.Stats()
	if sessions != 1 || turns != writers {
		t.Errorf("Stats() = (%d, %d), want (1, %d)", sessions, turns, writers)
	}
}

func TestExpiryPrunesLockEntry(t *testing.T) {
	config := Config{IdleTTL: 15 * time.Millisecond, CleanupInterval: 5 * time.Millisecond, MaxTurns: 10}
	m := newTestManager(config)

	unlock := m.Acquire("s1")
	m.Load("s1", "t1")
	unlock()

	time.Sleep(50 * time.Millisecond)

	m.mu.Lock()
	_, held := m.locks["s1"]
	m.mu.Unlock()
	if held {
		t.Error("lock entry survived session expiry")
	}
}

func TestStats(t *testing.T) {
	m := newTestManager(DefaultConfig())

	s1 := m.Load("s1", "t1")
	s2 := m.Load("s2", "t1")
	m.AppendTurn(s1, store.Turn{Query: "q", CreatedAt: time.Now()})
	m.AppendTurn(s1, store.Turn{Query: "q", CreatedAt: time.Now()})
	m.AppendTurn(s2, store.Turn{Query: "q", CreatedAt: time.Now()})

	sessions, turns := m.Stats()
	if sessions != 2 || turns != 3 {
		t.Errorf("Stats() = (%d, %d), want (2, 3)", sessions, turns)
	}
}
