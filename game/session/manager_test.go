package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/honeybear/game/engine"
	"github.com/wricardo/mcp-training/honeybear/game/service"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{4}$`)

// tickCounter counts observer calls per session
type tickCounter struct {
	mu    sync.Mutex
	ticks map[string]int
}

func (c *tickCounter) observe(id string, _ *engine.GameState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks[id]++
}

func (c *tickCounter) count(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks[id]
}

// newTickingManager runs clocks fast enough to see several ticks in a few milliseconds
func newTickingManager(t *testing.T) (*Manager, *tickCounter) {
	t.Helper()
	counter := &tickCounter{ticks: map[string]int{}}
	m := NewManager(WithTickInterval(time.Millisecond), WithTickObserver(counter.observe))
	t.Cleanup(m.Close)
	return m, counter
}

// waitForTicks blocks until id has ticked at least n times
func waitForTicks(t *testing.T, counter *tickCounter, id string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for counter.count(id) < n {
		if time.Now().After(deadline) {
			t.Fatalf("session %s ticked %d times, want %d", id, counter.count(id), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func assertSilent(t *testing.T, counter *tickCounter, id string) {
	t.Helper()
	before := counter.count(id)
	time.Sleep(20 * time.Millisecond)
	if after := counter.count(id); after != before {
		t.Errorf("session %s kept ticking: %d -> %d", id, before, after)
	}
}

func TestManager_GeneratedIDs(t *testing.T) {
	m := NewManager(WithTickInterval(0))
	defer m.Close()

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		s, err := m.Create("", engine.DefaultConfig())
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		if !hexID.MatchString(s.ID) {
			t.Errorf("generated ID %q is not 4 lowercase hex characters", s.ID)
		}
		if seen[s.ID] {
			t.Errorf("duplicate generated ID %s", s.ID)
		}
		seen[s.ID] = true
	}
	if m.Count() != 200 {
		t.Errorf("Expected 200 sessions, got %d", m.Count())
	}
}

func TestManager_GeneratedIDsExhausted(t *testing.T) {
	m := NewManager(WithTickInterval(0))

	m.mu.Lock()
	for i := 0; i < 1<<16; i++ {
		m.sessions[fmt.Sprintf("%04x", i)] = &service.Session{}
	}
	_, err := m.generateSessionID()
	m.sessions = make(map[string]*service.Session)
	m.mu.Unlock()
	m.Close()

	if !errors.Is(err, ErrNoSessionIDs) {
		t.Errorf("Expected ErrNoSessionIDs, got %v", err)
	}
}

func TestManager_CustomIDs(t *testing.T) {
	m := NewManager(WithTickInterval(0))
	defer m.Close()

	if _, err := m.Create("Honey", engine.DefaultConfig()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create("HONEY", engine.DefaultConfig()); !errors.Is(err, ErrSessionAlreadyExists) {
		t.Errorf("Expected case-insensitive duplicate, got %v", err)
	}
	if s, err := m.Get("honey"); err != nil || s.ID != "Honey" {
		t.Errorf("Expected lookup to ignore case and keep the original ID, got %v, %v", s, err)
	}
	if _, err := m.Create("a/b", engine.DefaultConfig()); !errors.Is(err, ErrInvalidSessionID) {
		t.Errorf("Expected ErrInvalidSessionID, got %v", err)
	}

	bad := engine.DefaultConfig()
	bad.Layout = bad.Layout[:5]
	if _, err := m.Create("broken", bad); err == nil {
		t.Error("Expected invalid board to be refused")
	}
}

func TestManager_HandsOutCopies(t *testing.T) {
	m := NewManager(WithTickInterval(0))
	defer m.Close()

	created, err := m.Create("copy", engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	created.LastAccessedAt = time.Time{}

	got, err := m.Get("copy")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastAccessedAt.IsZero() {
		t.Error("Mutating a returned session leaked into the manager")
	}
	if got.Engine != created.Engine {
		t.Error("Copies should share the session's engine")
	}

	time.Sleep(2 * time.Millisecond)
	touched, err := m.Touch("COPY")
	if err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if !touched.LastAccessedAt.After(got.LastAccessedAt) {
		t.Error("Expected Touch to advance the last access time")
	}
	if _, err := m.Touch("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ClockTicksAndNotifies(t *testing.T) {
	config := engine.DefaultConfig()
	config.TimeLimit = 2

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	manager := NewManager(
		WithTickInterval(5*time.Millisecond),
		WithTickObserver(func(id string, state *engine.GameState) {
			mu.Lock()
			defer mu.Unlock()
			if id != "clock" {
				t.Errorf("unexpected session %q", id)
			}
			got = append(got, state.SecsLeft)
			if state.Status == engine.StatusTimedOut {
				close(done)
			}
		}),
	)
	defer manager.Close()

	if _, err := manager.Create("clock", config); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session never timed out")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("Expected ticks [1 0], got %v", got)
	}
}

func TestManager_DeleteStopsClock(t *testing.T) {
	m, counter := newTickingManager(t)

	if _, err := m.Create("gone", engine.DefaultConfig()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create("kept", engine.DefaultConfig()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	waitForTicks(t, counter, "gone", 2)

	if err := m.Delete("GONE"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertSilent(t, counter, "gone")

	kept := counter.count("kept")
	waitForTicks(t, counter, "kept", kept+1)

	if err := m.Delete("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestManager_CleanupStopsExpiredClocks(t *testing.T) {
	m, counter := newTickingManager(t)

	for _, id := range []string{"stale", "fresh"} {
		if _, err := m.Create(id, engine.DefaultConfig()); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	m.mu.Lock()
	m.sessions["stale"].LastAccessedAt = time.Now().Add(-2 * time.Hour)
	m.mu.Unlock()

	if removed := m.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Fatalf("Expected 1 session removed, got %d", removed)
	}
	if _, err := m.Get("stale"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected stale session gone, got %v", err)
	}
	if _, err := m.Get("fresh"); err != nil {
		t.Errorf("Expected fresh session kept, got %v", err)
	}
	assertSilent(t, counter, "stale")
}

func TestManager_RunCleanup(t *testing.T) {
	m := NewManager(WithTickInterval(0))
	defer m.Close()

	if _, err := m.Create("idle", engine.DefaultConfig()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var removed atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.RunCleanup(ctx, time.Millisecond, 0, func(n int) { removed.Add(int32(n)) })
	}()

	deadline := time.Now().Add(2 * time.Second)
	for removed.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if removed.Load() != 1 || m.Count() != 0 {
		t.Errorf("Expected the idle session removed, got removed=%d count=%d", removed.Load(), m.Count())
	}
}

func TestManager_CloseStopsEverything(t *testing.T) {
	m, counter := newTickingManager(t)

	for _, id := range []string{"one", "two"} {
		if _, err := m.Create(id, engine.DefaultConfig()); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	waitForTicks(t, counter, "one", 1)

	m.Close()
	assertSilent(t, counter, "one")
	assertSilent(t, counter, "two")

	if m.Count() != 0 {
		t.Errorf("Expected no sessions after Close, got %d", m.Count())
	}
	if _, err := m.Create("late", engine.DefaultConfig()); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Expected ErrManagerClosed, got %v", err)
	}
	if _, err := m.Create("", engine.DefaultConfig()); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Expected ErrManagerClosed for generated ID, got %v", err)
	}
}

func TestManager_SetTickObserver(t *testing.T) {
	m := NewManager(WithTickInterval(time.Millisecond))
	defer m.Close()

	counter := &tickCounter{ticks: map[string]int{}}
	if _, err := m.Create("late-observer", engine.DefaultConfig()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	m.SetTickObserver(counter.observe)
	waitForTicks(t, counter, "late-observer", 1)
}
