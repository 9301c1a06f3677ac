package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/ashureev/stockflow/internal/assistant"
	"github.com/ashureev/stockflow/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager() (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(assistant.DefaultConfig(), nil)
	m.now = clock.Now
	return m, clock
}

var tokenPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager()
	user := domain.User{ID: 3, Username: "customer", Role: domain.RoleCustomer}

	s, err := m.Create(user)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !tokenPattern.MatchString(s.Token) {
		t.Fatalf("unexpected token format %q", s.Token)
	}
	if s.Chat == nil || s.Voice == nil {
		t.Fatal("session must own a chat and a voice assistant")
	}

	got, ok := m.Get(s.Token)
	if !ok || got != s {
		t.Fatal("expected Get to return the created session")
	}
	if _, ok := m.Get("missing"); ok {
		t.Fatal("expected unknown token to miss")
	}
}

func TestSessionsDoNotShareHistory(t *testing.T) {
	m, _ := newTestManager()
	a, _ := m.Create(domain.User{ID: 1, Role: domain.RoleAdmin})
	b, _ := m.Create(domain.User{ID: 1, Role: domain.RoleAdmin})

	a.Chat.Respond("hello", assistant.Snapshot{})
	if got := len(b.Chat.History()); got != 0 {
		t.Fatalf("second session sees %d turns from the first", got)
	}
}

func TestDelete(t *testing.T) {
	m, _ := newTestManager()
	removed := 0
	m.OnRemove(func(*Session) { removed++ })
	s, _ := m.Create(domain.User{ID: 2})
	if !m.Delete(s.Token) {
		t.Fatal("expected Delete to report an existing session")
	}
	if m.Delete(s.Token) {
		t.Fatal("expected second Delete to report false")
	}

	m.Create(domain.User{ID: 5})
	m.Create(domain.User{ID: 5})
	m.Create(domain.User{ID: 6})
	if n := m.DeleteUser(5); n != 2 {
		t.Fatalf("DeleteUser removed %d sessions, want 2", n)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 remaining session, got %d", m.Len())
	}
	if removed != 3 {
		t.Fatalf("remove callback ran %d times, want 3", removed)
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	m, clock := newTestManager()
	var expired []int64
	m.OnRemove(func(s *Session) { expired = append(expired, s.User.ID) })

	idle, _ := m.Create(domain.User{ID: 1})
	active, _ := m.Create(domain.User{ID: 2})

	clock.Advance(20 * time.Minute)
	m.Get(active.Token)
	clock.Advance(15 * time.Minute)

	if n := m.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("Sweep removed %d sessions, want 1", n)
	}
	if _, ok := m.Get(idle.Token); ok {
		t.Fatal("idle session should have been swept")
	}
	if _, ok := m.Get(active.Token); !ok {
		t.Fatal("active session should survive the sweep")
	}
	if len(expired) != 1 || expired[0] != 1 {
		t.Fatalf("unexpected expire callbacks: %v", expired)
	}
}

func TestStartSweeperStopsOnCancel(t *testing.T) {
	m := NewManager(assistant.DefaultConfig(), nil)
	s, _ := m.Create(domain.User{ID: 1})
	s.touch(time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartSweeper(ctx, time.Minute, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for m.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not expire the idle session")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
