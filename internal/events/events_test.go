package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/stockflow/internal/domain"
	"github.com/sony/gobreaker"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
	calls  int
	closed bool
	block  chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingPublisher) snapshot() ([]Event, int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...), p.calls, p.closed
}

func remaining(n int) *int { return &n }

func TestForPurchase(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		remaining *int
		wantTypes []string
		wantLevel domain.StockLevel
	}{
		{"stays in stock", 1, remaining(20), []string{TypePurchaseCompleted}, ""},
		{"crosses into low stock", 2, remaining(9), []string{TypePurchaseCompleted, TypeStockLow}, domain.LowStock},
		{"already low", 1, remaining(5), []string{TypePurchaseCompleted}, ""},
		{"sells out", 3, remaining(0), []string{TypePurchaseCompleted, TypeStockLow}, domain.OutOfStock},
		{"unknown remaining", 1, nil, []string{TypePurchaseCompleted}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.Purchase{ID: 7, UserID: 3, ProductID: 1, ProductName: "iPhone 15 Pro", Price: 129999, Quantity: tt.qty, RemainingStock: tt.remaining}
			got := ForPurchase(p)
			if len(got) != len(tt.wantTypes) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.wantTypes))
			}
			for i, e := range got {
				if e.Type != tt.wantTypes[i] || e.ID == "" || e.OccurredAt.IsZero() {
					t.Errorf("event %d = %+v", i, e)
				}
			}
			data := got[0].Data.(PurchaseData)
			if data.Total != 129999*int64(tt.qty) {
				t.Errorf("total = %d", data.Total)
			}
			if tt.wantLevel != "" {
				if lvl := got[1].Data.(StockData).Level; lvl != tt.wantLevel {
					t.Errorf("level = %s, want %s", lvl, tt.wantLevel)
				}
			}
		})
	}
}

func TestAsyncDeliversAndDrainsOnClose(t *testing.T) {
	next := &recordingPublisher{}
	a := NewAsync(next, 8, time.Second, nil)

	for i := 0; i < 3; i++ {
		if err := a.Publish(context.Background(), ForStock(TypeStockUpdated, int64(i), "Widget", i)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events, _, closed := next.snapshot()
	if len(events) != 3 || !closed {
		t.Fatalf("expected 3 delivered events and closed publisher, got %d closed=%v", len(events), closed)
	}
	if err := a.Publish(context.Background(), New(TypeProductAdded, nil)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}

func TestAsyncDropsWhenFull(t *testing.T) {
	next := &recordingPublisher{block: make(chan struct{})}
	a := NewAsync(next, 1, time.Second, nil)

	// One event is held by the blocked worker, one fills the queue.
	for i := 0; i < 10; i++ {
		_ = a.Publish(context.Background(), New(TypeProductAdded, nil))
	}
	if a.Dropped() == 0 {
		t.Fatal("expected dropped events")
	}
	close(next.block)
	_ = a.Close()
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	next := &recordingPublisher{err: errors.New("broker down")}
	b := NewBreaker(next, BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Hour}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := b.Publish(ctx, New(TypeProductAdded, nil)); err == nil || errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("publish %d: expected broker error, got %v", i, err)
		}
	}
	if err := b.Publish(ctx, New(TypeProductAdded, nil)); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if _, calls, _ := next.snapshot(); calls != 2 {
		t.Fatalf("open breaker must not reach the broker, calls = %d", calls)
	}
	if b.State() != "open" {
		t.Fatalf("state = %s", b.State())
	}
}

func TestNewRabbitMQRequiresURL(t *testing.T) {
	if _, err := NewRabbitMQ(RabbitMQConfig{}, nil); err == nil {
		t.Fatal("expected error for empty url")
	}
}
