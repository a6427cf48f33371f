package monitor

import (
	"context"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// systemCPUInterval is the measurement window for the host CPU reading.
// The percentage is the average over this window, taken fresh each round
// rather than since the previous call, so rounds are independent.
const systemCPUInterval = 1 * time.Second

// SystemReading is the host-wide half of a sampling round: overall CPU
// and memory pressure, recorded alongside the per-container readings so
// container numbers can be judged against how loaded the host was.
type SystemReading struct {
	// CPUPercent is host CPU usage across all cores over the sampling
	// window.
	CPUPercent float64 `json:"systemCpuPercent"`

	// MemoryPercent is host memory usage as a percentage of total.
	MemoryPercent float64 `json:"systemMemoryPercent"`

	// MemoryAvailableGB is the memory available for new workloads, in
	// gibibytes.
	MemoryAvailableGB float64 `json:"systemMemoryAvailableGb"`
}

// sampleSystem takes one host-wide reading. The interval parameter is the
// CPU measurement window; callers pass systemCPUInterval.
func sampleSystem(ctx context.Context, interval time.Duration) (SystemReading, error) {
	percents, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return SystemReading{}, err
	}
	var cpuPercent float64
	if len(percents) > 0 {
		cpuPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return SystemReading{}, err
	}

	return SystemReading{
		CPUPercent:        round2(cpuPercent),
		MemoryPercent:     round2(vm.UsedPercent),
		MemoryAvailableGB: round2(float64(vm.Available) / (1024 * 1024 * 1024)),
	}, nil
}

// round2 rounds to two decimal places, matching the container readings.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
