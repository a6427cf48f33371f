// Package monitor implements periodic resource sampling for the runtime
// targets under comparison.
//
// Each round pairs a host-wide reading (overall CPU and memory via
// gopsutil) with one reading per target: container CPU and memory via
// the Docker stats API, the container state, and a one-shot HTTP health
// probe. Rounds accumulate in memory for the lifetime of the
// run and are flushed to timestamped JSON and CSV files on shutdown, so
// a run interrupted with Ctrl-C still yields its data.
//
// Logging uses github.com/rs/zerolog: one structured info line per round
// and a warning per target that could not be sampled.
package monitor
