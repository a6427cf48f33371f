package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shinji-kodama/runtime-bench/internal/docker"
	"github.com/shinji-kodama/runtime-bench/internal/health"
	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// Reading is one target's measurements within a sampling round.
type Reading struct {
	// Target is the runtime target identifier from the manifest.
	Target string `json:"target"`

	// ContainerName is the fixed container name the reading was taken from.
	ContainerName string `json:"containerName"`

	// CPUPercent is CPU usage over the stats window, scaled by online CPUs.
	CPUPercent float64 `json:"cpuPercent"`

	// MemoryUsageMB is memory usage in mebibytes.
	MemoryUsageMB float64 `json:"memoryUsageMb"`

	// MemoryPercent is memory usage relative to the container's limit.
	MemoryPercent float64 `json:"memoryPercent"`

	// State is the Docker container state at sampling time.
	State string `json:"state"`

	// Healthy reports whether the target's HTTP health probe answered 200.
	Healthy bool `json:"healthy"`

	// Timestamp is when the reading was taken.
	Timestamp time.Time `json:"timestamp"`
}

// Round is one complete sampling pass: a host-wide reading plus one
// reading per target. Targets whose containers are missing are absent
// from Readings (and logged).
type Round struct {
	// Timestamp is when the round started.
	Timestamp time.Time `json:"timestamp"`

	// System is the host-wide CPU/memory reading for this round.
	System SystemReading `json:"system"`

	// Readings maps target name to its measurements for this round.
	Readings map[string]Reading `json:"readings"`
}

// Collector samples all manifest targets at a fixed interval and
// accumulates the rounds in memory.
type Collector struct {
	cli      *docker.Client
	manifest *model.Manifest
	interval time.Duration
	log      zerolog.Logger

	rounds []Round
}

// NewCollector creates a Collector sampling the manifest's targets at the
// given interval.
func NewCollector(cli *docker.Client, m *model.Manifest, interval time.Duration, log zerolog.Logger) *Collector {
	return &Collector{
		cli:      cli,
		manifest: m,
		interval: interval,
		log:      log,
	}
}

// Run samples until the duration elapses or the context is cancelled
// (typically by SIGINT/SIGTERM via signal.NotifyContext). A duration of
// zero means run until cancelled. The first round is taken immediately;
// collected rounds remain available through Rounds after Run returns.
func (c *Collector) Run(ctx context.Context, duration time.Duration) {
	c.log.Info().
		Dur("interval", c.interval).
		Int("targets", len(c.manifest.Targets)).
		Msg("starting performance monitoring")

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.collectRound(ctx)

		select {
		case <-ctx.Done():
			c.log.Info().Int("rounds", len(c.rounds)).Msg("monitoring stopped")
			return
		case <-ticker.C:
		}
	}
}

// Rounds returns the rounds collected so far, in collection order.
func (c *Collector) Rounds() []Round {
	return c.rounds
}

// collectRound takes one reading per target and appends the round.
// A target that cannot be sampled (container missing, daemon hiccup) is
// logged and skipped; the round is still recorded for the others.
func (c *Collector) collectRound(ctx context.Context) {
	round := Round{
		Timestamp: time.Now().UTC(),
		Readings:  make(map[string]Reading, len(c.manifest.Targets)),
	}

	// The host reading comes first so container numbers have their
	// baseline. A failed reading leaves zeros rather than dropping the
	// round; the container data is still worth keeping.
	system, err := sampleSystem(ctx, systemCPUInterval)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to read system stats")
	} else {
		round.System = system
	}

	containers, err := docker.ListManagedContainers(ctx, c.cli)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to list containers, skipping round")
		return
	}

	for i := range c.manifest.Targets {
		t := &c.manifest.Targets[i]

		info, err := docker.FindByName(containers, t.ContainerName)
		if err != nil {
			c.log.Warn().Str("target", t.Name).Str("container", t.ContainerName).
				Msg("container not found")
			continue
		}

		sample, err := docker.SampleContainer(ctx, c.cli, t.ContainerName)
		if err != nil {
			c.log.Warn().Err(err).Str("target", t.Name).Msg("failed to sample container")
			continue
		}

		reading := Reading{
			Target:        t.Name,
			ContainerName: t.ContainerName,
			CPUPercent:    sample.CPUPercent,
			MemoryUsageMB: sample.MemoryUsageMB,
			MemoryPercent: sample.MemoryPercent,
			State:         info.State,
			Healthy:       health.Probe(ctx, t.HealthURL()) == model.StateHealthy,
			Timestamp:     sample.Timestamp,
		}
		round.Readings[t.Name] = reading

		c.log.Info().
			Str("target", t.Name).
			Float64("cpu_percent", reading.CPUPercent).
			Float64("memory_mb", reading.MemoryUsageMB).
			Float64("memory_percent", reading.MemoryPercent).
			Bool("healthy", reading.Healthy).
			Msg("sampled")
	}

	c.rounds = append(c.rounds, round)
}
