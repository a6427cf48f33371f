package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/docker/docker/api/types/container"
)

// Sample is one resource-usage reading for a single container, taken via
// the Docker stats API. CPU is a percentage of total host CPU capacity;
// memory is reported both as absolute usage and as a percentage of the
// container's limit.
type Sample struct {
	// ContainerName is the fixed name the container was sampled by.
	ContainerName string `json:"containerName"`

	// CPUPercent is the CPU usage over the sampling window, scaled by the
	// number of online CPUs (the same formula "docker stats" displays).
	CPUPercent float64 `json:"cpuPercent"`

	// MemoryUsageMB is the container's memory usage in mebibytes.
	MemoryUsageMB float64 `json:"memoryUsageMb"`

	// MemoryPercent is memory usage as a percentage of the container's
	// memory limit (the host total when no limit is set).
	MemoryPercent float64 `json:"memoryPercent"`

	// Timestamp is when the sample was taken.
	Timestamp time.Time `json:"timestamp"`
}

// SampleContainer takes a one-shot resource reading for the named
// container. The non-streaming stats endpoint makes the daemon collect
// two readings about a second apart, so the pre-CPU fields are populated
// and a usage delta can be computed.
func SampleContainer(ctx context.Context, cli *Client, containerName string) (*Sample, error) {
	resp, err := cli.Inner().ContainerStats(ctx, containerName, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats for container %q: %w", containerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats for container %q: %w", containerName, err)
	}

	usage := float64(stats.MemoryStats.Usage)
	return &Sample{
		ContainerName: containerName,
		CPUPercent:    round2(calculateCPUPercent(&stats)),
		MemoryUsageMB: round2(usage / (1024 * 1024)),
		MemoryPercent: round2(calculateMemoryPercent(usage, float64(stats.MemoryStats.Limit))),
		Timestamp:     stats.Read,
	}, nil
}

// calculateCPUPercent computes CPU usage over the stats window using the
// same formula as the docker CLI:
//
//	cpuDelta / systemDelta * onlineCPUs * 100
//
// where the deltas are cumulative container CPU time and cumulative
// system CPU time between the pre and current readings. Returns 0 when
// the system delta is not positive (first reading, stopped container).
func calculateCPUPercent(stats *container.StatsResponse) float64 {
	cpuDelta := float64(stats.CPUStats.CPUUsage.TotalUsage) -
		float64(stats.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(stats.CPUStats.SystemUsage) -
		float64(stats.PreCPUStats.SystemUsage)

	if systemDelta <= 0 || cpuDelta < 0 {
		return 0
	}

	// OnlineCPUs is reported by cgroups v2 daemons; older daemons leave
	// it zero and expose the per-CPU usage slice instead.
	cpus := float64(stats.CPUStats.OnlineCPUs)
	if cpus == 0 {
		cpus = float64(len(stats.CPUStats.CPUUsage.PercpuUsage))
	}
	if cpus == 0 {
		cpus = 1
	}

	return cpuDelta / systemDelta * cpus * 100
}

// calculateMemoryPercent computes memory usage as a percentage of the
// limit. Returns 0 when the limit is not positive, which the daemon
// reports for containers that have already exited.
func calculateMemoryPercent(usage, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return usage / limit * 100
}

// round2 rounds to two decimal places for stable, readable output.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
