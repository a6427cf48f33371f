package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// healthyServer returns a test server that always answers 200.
func healthyServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// eventuallyHealthyServer returns a test server that answers 503 for the
// first failCount requests and 200 afterwards, simulating a target that
// is still booting when polling starts.
func eventuallyHealthyServer(t *testing.T, failCount int32) *httptest.Server {
	t.Helper()
	var served int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&served, 1) <= failCount {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestWaitReady_ImmediatelyHealthy verifies a target that is already
// serving is reported healthy on the first probe.
func TestWaitReady_ImmediatelyHealthy(t *testing.T) {
	srv := healthyServer(t)

	poller := NewPoller(10 * time.Second)
	results := poller.WaitReady(context.Background(), map[string]string{
		"node": srv.URL + "/",
	})

	require.Contains(t, results, "node")
	res := results["node"]
	assert.Equal(t, model.StateHealthy, res.State)
	assert.Equal(t, 1, res.Attempts)
	assert.NoError(t, res.LastErr)
}

// TestWaitReady_BecomesHealthy verifies the backoff loop keeps probing
// through initial failures and reports success once the target answers,
// well before the cutoff.
func TestWaitReady_BecomesHealthy(t *testing.T) {
	srv := eventuallyHealthyServer(t, 2)

	poller := NewPoller(15 * time.Second)
	start := time.Now()
	results := poller.WaitReady(context.Background(), map[string]string{
		"deno": srv.URL + "/",
	})

	res := results["deno"]
	assert.Equal(t, model.StateHealthy, res.State)
	assert.Equal(t, 3, res.Attempts, "two failures then one success")
	assert.Less(t, time.Since(start), 15*time.Second,
		"polling must terminate on first success, not run out the cutoff")
}

// TestWaitReady_CutoffExpires verifies a target that never becomes
// healthy is reported unhealthy with its last probe error once the
// cutoff elapses.
func TestWaitReady_CutoffExpires(t *testing.T) {
	// A closed server gives deterministic connection-refused errors.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	poller := NewPoller(2 * time.Second)
	start := time.Now()
	results := poller.WaitReady(context.Background(), map[string]string{
		"bun": url + "/",
	})
	elapsed := time.Since(start)

	res := results["bun"]
	assert.Equal(t, model.StateUnhealthy, res.State)
	assert.Greater(t, res.Attempts, 1, "backoff should allow multiple attempts before cutoff")
	assert.Error(t, res.LastErr)
	assert.GreaterOrEqual(t, elapsed, 2*time.Second, "unhealthy verdict requires waiting out the cutoff")
	assert.Less(t, elapsed, 10*time.Second)
}

// TestWaitReady_MixedTargets verifies per-target attribution: one
// healthy and one unreachable target produce individually correct
// results in the same run.
func TestWaitReady_MixedTargets(t *testing.T) {
	healthy := healthyServer(t)
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	poller := NewPoller(2 * time.Second)
	results := poller.WaitReady(context.Background(), map[string]string{
		"node": healthy.URL + "/",
		"bun":  deadURL + "/",
	})

	require.Len(t, results, 2)
	assert.Equal(t, model.StateHealthy, results["node"].State)
	assert.Equal(t, model.StateUnhealthy, results["bun"].State)
}

// TestWaitReady_NonOKStatus verifies a reachable endpoint that answers
// non-200 is not considered healthy.
func TestWaitReady_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	poller := NewPoller(2 * time.Second)
	results := poller.WaitReady(context.Background(), map[string]string{
		"node": srv.URL + "/missing",
	})

	res := results["node"]
	assert.Equal(t, model.StateUnhealthy, res.State)
	require.Error(t, res.LastErr)
	assert.Contains(t, res.LastErr.Error(), "status 404")
}

// TestWaitReady_ContextCancelled verifies external cancellation stops
// polling promptly and reports pending targets unhealthy.
func TestWaitReady_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	poller := NewPoller(30 * time.Second)
	start := time.Now()
	results := poller.WaitReady(ctx, map[string]string{
		"node": url + "/",
	})

	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must cut the wait short")
	assert.Equal(t, model.StateUnhealthy, results["node"].State)
}

// TestProbe verifies the one-shot probe used by status and monitor.
func TestProbe(t *testing.T) {
	srv := healthyServer(t)
	assert.Equal(t, model.StateHealthy, Probe(context.Background(), srv.URL+"/"))

	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(notFound.Close)
	assert.Equal(t, model.StateUnhealthy, Probe(context.Background(), notFound.URL+"/"))

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()
	assert.Equal(t, model.StateUnhealthy, Probe(context.Background(), deadURL+"/"))
}
