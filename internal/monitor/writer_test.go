package monitor

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleRounds returns two rounds of readings for the node and deno
// targets, with deno missing from the second round as happens when a
// container disappears mid-run.
func sampleRounds() []Round {
	ts := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)
	return []Round{
		{
			Timestamp: ts,
			System: SystemReading{
				CPUPercent:        35.5,
				MemoryPercent:     61.2,
				MemoryAvailableGB: 5.75,
			},
			Readings: map[string]Reading{
				"node": {
					Target:        "node",
					ContainerName: "node-nextjs-app",
					CPUPercent:    12.34,
					MemoryUsageMB: 256.5,
					MemoryPercent: 3.13,
					State:         "running",
					Healthy:       true,
					Timestamp:     ts,
				},
				"deno": {
					Target:        "deno",
					ContainerName: "deno-nextjs-app",
					CPUPercent:    8.1,
					MemoryUsageMB: 198.25,
					MemoryPercent: 2.42,
					State:         "running",
					Healthy:       true,
					Timestamp:     ts,
				},
			},
		},
		{
			Timestamp: ts.Add(10 * time.Second),
			System: SystemReading{
				CPUPercent:        42.0,
				MemoryPercent:     63.8,
				MemoryAvailableGB: 5.4,
			},
			Readings: map[string]Reading{
				"node": {
					Target:        "node",
					ContainerName: "node-nextjs-app",
					CPUPercent:    14.0,
					MemoryUsageMB: 260.0,
					MemoryPercent: 3.17,
					State:         "running",
					Healthy:       false,
					Timestamp:     ts.Add(10 * time.Second),
				},
			},
		},
	}
}

// TestSave verifies both output files are written with timestamped names
// and that the JSON round-trips back to the original series.
func TestSave(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)

	jsonPath, csvPath, err := Save(dir, sampleRounds(), now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "performance_data_20260824_153000.json"), jsonPath)
	assert.Equal(t, filepath.Join(dir, "performance_data_20260824_153000.csv"), csvPath)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var decoded []Round
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, 12.34, decoded[0].Readings["node"].CPUPercent)
	assert.Equal(t, 35.5, decoded[0].System.CPUPercent)
	assert.Equal(t, 5.75, decoded[0].System.MemoryAvailableGB)
	assert.False(t, decoded[1].Readings["node"].Healthy)
}

// TestSave_CSVLayout verifies the flattened CSV: header row, one row per
// target per round, targets sorted within a round, the round's system
// reading repeated on each of its rows, and two-decimal formatting.
func TestSave_CSVLayout(t *testing.T) {
	dir := t.TempDir()
	_, csvPath, err := Save(dir, sampleRounds(), time.Now())
	require.NoError(t, err)

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// Header + 2 readings in round one + 1 reading in round two.
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])

	// Round one is sorted by target name: deno before node.
	assert.Equal(t, "deno", rows[1][4])
	assert.Equal(t, "node", rows[2][4])
	assert.Equal(t, "node", rows[3][4])

	// Both round-one rows carry the same system reading; round two has
	// its own.
	assert.Equal(t, "35.50", rows[1][1])
	assert.Equal(t, "35.50", rows[2][1])
	assert.Equal(t, "61.20", rows[1][2])
	assert.Equal(t, "5.75", rows[1][3])
	assert.Equal(t, "42.00", rows[3][1])

	assert.Equal(t, "8.10", rows[1][6])
	assert.Equal(t, "256.50", rows[2][7])
	assert.Equal(t, "running", rows[2][9])
	assert.Equal(t, "true", rows[2][10])
	assert.Equal(t, "false", rows[3][10])
}

// TestSave_CreatesDirectory verifies the output directory is created when
// missing.
func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "nested")

	jsonPath, _, err := Save(dir, sampleRounds(), time.Now())
	require.NoError(t, err)
	assert.FileExists(t, jsonPath)
}

// TestSave_EmptyRounds verifies saving nothing is an error rather than a
// pair of empty files.
func TestSave_EmptyRounds(t *testing.T) {
	_, _, err := Save(t.TempDir(), nil, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data collected")
}
