package status

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newPollerAgainst(t *testing.T, handler http.HandlerFunc) (*Poller, *int32) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var updates int32
	p := &Poller{
		Client:    NewClient(srv.URL),
		LogOutput: io.Discard,
		OnUpdate: func(*Snapshot) {
			atomic.AddInt32(&updates, 1)
		},
	}
	return p, &updates
}

func TestPollerSuppressesUnchangedSnapshots(t *testing.T) {
	body := `{"total_listener_count": 2, "mounts": {"/stream": {"status": "up"}}}`
	p, updates := newPollerAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	})

	ctx := context.Background()
	p.cycle(ctx)
	p.cycle(ctx)
	p.cycle(ctx)

	if got := atomic.LoadInt32(updates); got != 1 {
		t.Fatalf("OnUpdate called %d times for identical snapshots, want 1", got)
	}
}

func TestPollerForwardsChangedSnapshots(t *testing.T) {
	var listeners int32
	p, updates := newPollerAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&listeners, 1)
		io.WriteString(w, `{"total_listener_count": `+string(rune('0'+n))+`, "mounts": {}}`)
	})

	ctx := context.Background()
	p.cycle(ctx)
	p.cycle(ctx)

	if got := atomic.LoadInt32(updates); got != 2 {
		t.Fatalf("OnUpdate called %d times for changing snapshots, want 2", got)
	}
}

func TestPollerFailedCycleIsSkipped(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	p, updates := newPollerAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "relay offline", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"mounts": {"/stream": {"status": "up"}}}`)
	})

	ctx := context.Background()

	p.cycle(ctx)
	if got := atomic.LoadInt32(updates); got != 0 {
		t.Fatalf("OnUpdate called %d times during failure, want 0", got)
	}

	// The failure must not poison the schedule: the next cycle succeeds.
	failing.Store(false)
	p.cycle(ctx)
	if got := atomic.LoadInt32(updates); got != 1 {
		t.Fatalf("OnUpdate called %d times after recovery, want 1", got)
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	p, updates := newPollerAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"mounts": {}}`)
	})
	p.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	if got := atomic.LoadInt32(updates); got < 1 {
		t.Fatalf("OnUpdate called %d times, want at least 1", got)
	}
}
