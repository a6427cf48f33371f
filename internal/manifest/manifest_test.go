package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// writeManifest writes manifest content to a temp directory under the
// given file name and returns the full path.
func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fullYAML is a manifest exercising every recognized field.
const fullYAML = `version: 1
project: runtime-comparison
gracePeriod: 45s
targets:
  - name: node
    title: Node.js
    build: ./node-app
    image: node-nextjs-app
    containerName: node-nextjs-app
    port: 3001
    containerPort: 3000
    healthPath: /
    healthInterval: 20s
  - name: deno
    title: Deno
    build: ./deno-app
    image: deno-nextjs-app
    containerName: deno-nextjs-app
    port: 3002
    containerPort: 3000
  - name: bun
    title: Bun
    build: ./bun-app
    image: bun-nextjs-app
    containerName: bun-nextjs-app
    port: 3003
    containerPort: 3000
`

// TestLoad_FullYAML verifies a complete YAML manifest parses with all
// fields mapped onto the domain types.
func TestLoad_FullYAML(t *testing.T) {
	path := writeManifest(t, "runtime-bench.yaml", fullYAML)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, m.Version)
	assert.Equal(t, "runtime-comparison", m.Project)
	assert.Equal(t, 45*time.Second, m.GracePeriod)
	assert.Equal(t, filepath.Dir(path), m.Dir)
	require.Len(t, m.Targets, 3)

	node := m.Targets[0]
	assert.Equal(t, "node", node.Name)
	assert.Equal(t, "Node.js", node.Title)
	assert.Equal(t, "./node-app", node.BuildContext)
	assert.Equal(t, "node-nextjs-app", node.Image)
	assert.Equal(t, "node-nextjs-app", node.ContainerName)
	assert.Equal(t, 3001, node.Port)
	assert.Equal(t, 3000, node.ContainerPort)
	assert.Equal(t, "/", node.HealthPath)
	assert.Equal(t, 20*time.Second, node.HealthInterval)

	// deno omitted healthInterval and healthPath; defaults apply.
	deno := m.Targets[1]
	assert.Equal(t, DefaultHealthPath, deno.HealthPath)
	assert.Equal(t, DefaultHealthInterval, deno.HealthInterval)
}

// TestLoad_Defaults verifies a minimal manifest gets every default
// applied: version, project name, grace period, and the per-target
// title/containerName/containerPort/healthPath defaults.
func TestLoad_Defaults(t *testing.T) {
	path := writeManifest(t, "runtime-bench.yaml", `targets:
  - name: node
    build: ./node-app
    port: 3001
`)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, m.Version, "missing version should default to current")
	assert.Equal(t, "runtime-bench", m.Project)
	assert.Equal(t, DefaultGracePeriod, m.GracePeriod)

	require.Len(t, m.Targets, 1)
	target := m.Targets[0]
	assert.Equal(t, "node", target.Title, "title should default to name")
	assert.Equal(t, "node-app", target.ContainerName, "container name should default to <name>-app")
	assert.Equal(t, 3001, target.ContainerPort, "container port should default to host port")
	assert.Equal(t, "/", target.HealthPath)
}

// TestLoad_JSONC verifies a JSONC manifest parses with comments and
// trailing commas stripped.
func TestLoad_JSONC(t *testing.T) {
	path := writeManifest(t, "runtime-bench.jsonc", `{
  // Comparison manifest in commented JSON.
  "version": 1,
  "project": "runtime-comparison",
  "targets": [
    {
      "name": "node",
      "build": "./node-app",
      "port": 3001, // trailing comma below is fine too
    },
  ],
}`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "runtime-comparison", m.Project)
	require.Len(t, m.Targets, 1)
	assert.Equal(t, "node", m.Targets[0].Name)
}

// TestLoad_UnknownFieldsTolerated verifies the forward-compatibility
// policy: fields this build does not recognize are ignored, not errors.
func TestLoad_UnknownFieldsTolerated(t *testing.T) {
	path := writeManifest(t, "runtime-bench.yaml", `version: 1
project: runtime-comparison
futureSetting: enabled
targets:
  - name: node
    build: ./node-app
    port: 3001
    futureTargetSetting: 42
`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "runtime-comparison", m.Project)
}

// TestLoad_UnsupportedVersion verifies an explicit future version is
// rejected with a message naming both versions.
func TestLoad_UnsupportedVersion(t *testing.T) {
	path := writeManifest(t, "runtime-bench.yaml", `version: 2
targets:
  - name: node
    build: ./node-app
    port: 3001
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported manifest version 2")
}

// TestLoad_DuplicatePorts verifies the construction-time port uniqueness
// invariant is enforced during load, before anything could be started.
func TestLoad_DuplicatePorts(t *testing.T) {
	path := writeManifest(t, "runtime-bench.yaml", `targets:
  - name: node
    build: ./node-app
    port: 3001
  - name: deno
    build: ./deno-app
    port: 3001
`)

	_, err := Load(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitManifestError, cliErr.Code)
	assert.Contains(t, err.Error(), "3001")
}

// TestLoad_InvalidYAML verifies syntax errors surface as manifest errors.
func TestLoad_InvalidYAML(t *testing.T) {
	path := writeManifest(t, "runtime-bench.yaml", "targets: [}")

	_, err := Load(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitManifestError, cliErr.Code)
}

// TestLoad_InvalidGracePeriod verifies unit-less durations are rejected:
// "30" is ambiguous, "30s" is not.
func TestLoad_InvalidGracePeriod(t *testing.T) {
	path := writeManifest(t, "runtime-bench.yaml", `gracePeriod: "30"
targets:
  - name: node
    build: ./node-app
    port: 3001
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gracePeriod")
}

// TestFind_PriorityOrder verifies the search prefers the .yaml name when
// several manifest files exist in the same directory.
func TestFind_PriorityOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "runtime-bench.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "runtime-bench.yaml"), []byte(""), 0o644))

	path, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, "runtime-bench.yaml", filepath.Base(path))
}

// TestFind_Missing verifies the not-found error carries the manifest
// exit code and points the user at init.
func TestFind_Missing(t *testing.T) {
	_, err := Find(t.TempDir())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitManifestError, cliErr.Code)
	assert.Contains(t, err.Error(), "runtime-bench init")
}

// TestWriteStarter verifies the starter manifest round-trips through the
// loader: it parses, validates, and declares the canonical three targets
// with unique ports and the fixed container names the monitoring tool
// expects.
func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime-bench.yaml")
	require.NoError(t, WriteStarter(path))

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "runtime-comparison", m.Project)
	require.Len(t, m.Targets, 3)

	names := []string{m.Targets[0].Name, m.Targets[1].Name, m.Targets[2].Name}
	assert.Equal(t, []string{"node", "deno", "bun"}, names)

	assert.Equal(t, "node-nextjs-app", m.Targets[0].ContainerName)
	assert.Equal(t, 3001, m.Targets[0].Port)
	assert.Equal(t, 3002, m.Targets[1].Port)
	assert.Equal(t, 3003, m.Targets[2].Port)
}

// TestWriteStarter_RefusesOverwrite verifies init never clobbers an
// existing manifest.
func TestWriteStarter_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime-bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project: mine"), 0o644))

	err := WriteStarter(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "project: mine", string(data), "existing file must be untouched")
}
