package hub_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/mbakri/cellwatch-backend/internal/hub"
)

// fakeConn records everything written to it and can be told to fail.
type fakeConn struct {
	mu         sync.Mutex
	frames     []any
	closed     bool
	failWrites bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites || c.closed {
		return fmt.Errorf("write on broken connection")
	}
	c.frames = append(c.frames, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestBroadcastIsIsolatedPerCampaign(t *testing.T) {
	h := hub.NewHub()

	connA := &fakeConn{}
	connB := &fakeConn{}
	h.Subscribe(1, connA)
	h.Subscribe(2, connB)

	h.Broadcast(1, "hello campaign 1")

	if connA.frameCount() != 1 {
		t.Fatalf("campaign 1 subscriber got %d frames", connA.frameCount())
	}
	if connB.frameCount() != 0 {
		t.Fatal("campaign 2 subscriber observed campaign 1 broadcast")
	}
}

func TestUnsubscribeLeavesOtherSubscribersIntact(t *testing.T) {
	h := hub.NewHub()

	connA := &fakeConn{}
	connB := &fakeConn{}
	subA := h.Subscribe(1, connA)
	h.Subscribe(1, connB)

	h.Unsubscribe(subA)
	h.Unsubscribe(subA) // idempotent

	if h.Count(1) != 1 {
		t.Fatalf("expected 1 remaining subscriber, got %d", h.Count(1))
	}

	h.Broadcast(1, "still here")
	if connA.frameCount() != 0 {
		t.Fatal("unsubscribed connection still receives broadcasts")
	}
	if connB.frameCount() != 1 {
		t.Fatal("remaining connection stopped receiving broadcasts")
	}

	select {
	case <-subA.Done():
	default:
		t.Fatal("unsubscribed subscription not signalled done")
	}
}

func TestBroadcastDropsFailingConnection(t *testing.T) {
	h := hub.NewHub()

	broken := &fakeConn{failWrites: true}
	healthy := &fakeConn{}
	h.Subscribe(1, broken)
	h.Subscribe(1, healthy)

	h.Broadcast(1, "frame 1")

	if healthy.frameCount() != 1 {
		t.Fatal("failure on one connection aborted delivery to the rest")
	}
	if !broken.isClosed() {
		t.Fatal("failing connection was not closed")
	}
	if h.Count(1) != 1 {
		t.Fatalf("failing connection not dropped, %d subscribers left", h.Count(1))
	}
}

func TestCloseCampaignRemovesEveryConnection(t *testing.T) {
	h := hub.NewHub()

	conns := []*fakeConn{{}, {}, {}}
	subs := make([]*hub.Subscription, len(conns))
	for i, c := range conns {
		subs[i] = h.Subscribe(5, c)
	}
	other := &fakeConn{}
	h.Subscribe(6, other)

	h.CloseCampaign(5)

	if h.Count(5) != 0 {
		t.Fatalf("expected campaign 5 empty, got %d", h.Count(5))
	}
	for i, c := range conns {
		if !c.isClosed() {
			t.Fatalf("connection %d not closed", i)
		}
		select {
		case <-subs[i].Done():
		default:
			t.Fatalf("subscription %d not signalled done", i)
		}
	}

	// Unrelated campaign untouched.
	if h.Count(6) != 1 || other.isClosed() {
		t.Fatal("closing campaign 5 disturbed campaign 6")
	}
}

func TestConcurrentSubscribeBroadcastUnsubscribe(t *testing.T) {
	h := hub.NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := h.Subscribe(1, &fakeConn{})
			h.Broadcast(1, "ping")
			h.Unsubscribe(sub)
		}()
	}
	wg.Wait()

	if h.Count(1) != 0 {
		t.Fatalf("expected no subscribers left, got %d", h.Count(1))
	}
}
