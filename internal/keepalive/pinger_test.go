package keepalive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"monitoring-service/internal/contextkeys"
)

func TestPingerHitsHealthEndpoint(t *testing.T) {
	var pings atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		pings.Add(1)
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	logger := contextkeys.LoggerFromContext(context.Background())
	pinger := NewPinger(srv.URL, 20*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pinger.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for pings.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pinger did not stop after context cancellation")
	}

	if pings.Load() < 2 {
		t.Errorf("pings: got %d, want at least 2", pings.Load())
	}
}

func TestNewPingerDefaultsInterval(t *testing.T) {
	logger := contextkeys.LoggerFromContext(context.Background())
	pinger := NewPinger("http://localhost:8080", 0, logger)

	if pinger.interval != defaultPingInterval {
		t.Errorf("interval: got %s, want %s", pinger.interval, defaultPingInterval)
	}
}
