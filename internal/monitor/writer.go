package monitor

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// csvHeader is the column layout of the flattened CSV output: one row per
// target per round. Kept as a package-level slice so the header and row
// builders cannot drift apart.
//
// The system_* columns repeat the round's host-wide reading on every row,
// so each row is self-contained for spreadsheet-style analysis.
var csvHeader = []string{
	"timestamp",
	"system_cpu_percent",
	"system_memory_percent",
	"system_memory_available_gb",
	"target",
	"container_name",
	"cpu_percent",
	"memory_usage_mb",
	"memory_percent",
	"state",
	"healthy",
}

// Save writes the collected rounds as both JSON (the full nested series)
// and CSV (flattened rows) into dir, creating it if needed. File names
// are timestamped, e.g. performance_data_20260824_153000.json, so
// repeated runs never clobber each other.
//
// Returns the written paths. Nothing is written when rounds is empty.
func Save(dir string, rounds []Round, now time.Time) (jsonPath, csvPath string, err error) {
	if len(rounds) == 0 {
		return "", "", fmt.Errorf("no data collected")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	base := "performance_data_" + now.Format("20060102_150405")

	jsonPath = filepath.Join(dir, base+".json")
	if err := writeJSON(jsonPath, rounds); err != nil {
		return "", "", err
	}

	csvPath = filepath.Join(dir, base+".csv")
	if err := writeCSV(csvPath, rounds); err != nil {
		return "", "", err
	}

	return jsonPath, csvPath, nil
}

// writeJSON serializes the full round series with indentation, matching
// the shape of the in-memory data for downstream tooling.
func writeJSON(path string, rounds []Round) error {
	data, err := json.MarshalIndent(rounds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize monitoring data: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeCSV flattens rounds into one row per target reading. Rows within
// a round are sorted by target name for deterministic output.
func writeCSV(path string, rounds []Round) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, round := range rounds {
		names := make([]string, 0, len(round.Readings))
		for name := range round.Readings {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			r := round.Readings[name]
			row := []string{
				r.Timestamp.Format(time.RFC3339),
				strconv.FormatFloat(round.System.CPUPercent, 'f', 2, 64),
				strconv.FormatFloat(round.System.MemoryPercent, 'f', 2, 64),
				strconv.FormatFloat(round.System.MemoryAvailableGB, 'f', 2, 64),
				r.Target,
				r.ContainerName,
				strconv.FormatFloat(r.CPUPercent, 'f', 2, 64),
				strconv.FormatFloat(r.MemoryUsageMB, 'f', 2, 64),
				strconv.FormatFloat(r.MemoryPercent, 'f', 2, 64),
				r.State,
				strconv.FormatBool(r.Healthy),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
