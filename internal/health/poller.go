package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// Backoff schedule constants. The first probe fires after initialDelay;
// subsequent delays double up to maxDelay. A freshly built Next.js
// container typically answers within a few seconds, so the schedule is
// front-loaded.
const (
	initialDelay = 500 * time.Millisecond
	maxDelay     = 5 * time.Second

	// probeTimeout bounds each individual HTTP probe so one hung request
	// cannot eat the whole readiness budget.
	probeTimeout = 5 * time.Second
)

// Result is the outcome of polling one target's health endpoint.
type Result struct {
	// State is StateHealthy when the endpoint answered 200 before the
	// cutoff, StateUnhealthy otherwise.
	State model.HealthState

	// Attempts is the number of probes issued.
	Attempts int

	// Elapsed is the time from poll start until success or cutoff.
	Elapsed time.Duration

	// LastErr is the error from the final failed probe, nil on success.
	// A non-200 response is reported as an error here too.
	LastErr error
}

// Poller probes target health endpoints until they are ready or a cutoff
// elapses. The zero value is not usable; construct with NewPoller.
type Poller struct {
	// client is the HTTP client used for probes. Injectable for tests.
	client *http.Client

	// cutoff is the maximum total time WaitReady spends polling. This is
	// the manifest's grace period: an upper bound on readiness waiting,
	// not a fixed sleep — polling returns as soon as every target is
	// healthy.
	cutoff time.Duration
}

// NewPoller creates a Poller with the given readiness cutoff.
func NewPoller(cutoff time.Duration) *Poller {
	return &Poller{
		client: &http.Client{Timeout: probeTimeout},
		cutoff: cutoff,
	}
}

// WaitReady polls every URL in the endpoints map (target name → health
// URL) until all are healthy or the cutoff elapses. It returns a result
// for every target in the map.
//
// Each target is polled in its own goroutine with an independent backoff
// schedule, so one slow target does not delay probes against the others.
// Cancellation of ctx stops all pollers promptly; targets still pending
// at that point are reported unhealthy with the context error.
func (p *Poller) WaitReady(ctx context.Context, endpoints map[string]string) map[string]Result {
	pollCtx, cancel := context.WithTimeout(ctx, p.cutoff)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Result, len(endpoints))
		wg      sync.WaitGroup
	)

	for name, url := range endpoints {
		wg.Add(1)
		go func(name, url string) {
			defer wg.Done()
			res := p.pollOne(pollCtx, url)
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}(name, url)
	}

	wg.Wait()
	return results
}

// pollOne probes a single health URL with exponential backoff until it
// answers 200 or the context is done.
func (p *Poller) pollOne(ctx context.Context, url string) Result {
	start := time.Now()
	delay := initialDelay

	var (
		attempts int
		lastErr  error
	)

	for {
		// Respect cancellation between probes. The timer is stopped
		// explicitly because this loop can run many iterations before
		// the context expires.
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return Result{
				State:    model.StateUnhealthy,
				Attempts: attempts,
				Elapsed:  time.Since(start),
				LastErr:  lastErr,
			}
		case <-timer.C:
		}

		attempts++
		if err := p.probe(ctx, url); err != nil {
			lastErr = err
			// Double the delay up to the cap. The schedule restarts for
			// every WaitReady call; there is no state across runs.
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
			continue
		}

		return Result{
			State:    model.StateHealthy,
			Attempts: attempts,
			Elapsed:  time.Since(start),
		}
	}
}

// probe issues a single GET against the health URL. Any transport error
// or non-200 status counts as a failed probe.
func (p *Poller) probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// Probe issues one immediate health check against a URL with the default
// probe timeout, returning the observed health state. Used by the status
// command and the monitor, which want a point-in-time reading rather
// than a readiness wait.
func Probe(ctx context.Context, url string) model.HealthState {
	client := &http.Client{Timeout: probeTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.StateUnknown
	}

	resp, err := client.Do(req)
	if err != nil {
		return model.StateUnhealthy
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return model.StateUnhealthy
	}
	return model.StateHealthy
}
