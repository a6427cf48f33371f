// Package health implements active readiness polling against the runtime
// targets' HTTP health endpoints.
//
// Readiness is a bounded retry loop with exponential backoff per target:
// each target is probed until it answers 200 on its health path, the
// per-run cutoff elapses, or the context is cancelled. The result is a
// per-target health state, not an aggregate count, so an unhealthy target
// is always identifiable by name.
//
// Targets are polled concurrently; each goroutine owns its own backoff
// schedule and writes a single result, so no shared mutable state exists
// beyond the result map assembled after all pollers finish.
package health
