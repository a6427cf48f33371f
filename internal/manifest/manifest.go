package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// Default values applied to manifests that omit optional fields.
// They match the behavior of the original comparison setup: a Next.js
// app listening on 3000 inside the container, probed at its root path.
const (
	// DefaultGracePeriod is the readiness cutoff when the manifest does
	// not set one. Polling stops earlier on first full success.
	DefaultGracePeriod = 30 * time.Second

	// DefaultHealthInterval is the container-level health check interval
	// written into the generated Compose file.
	DefaultHealthInterval = 30 * time.Second

	// DefaultHealthPath is the HTTP route probed for readiness.
	DefaultHealthPath = "/"

	// currentVersion is the only manifest schema version this build
	// understands. A missing version field is treated as currentVersion.
	currentVersion = 1
)

// searchNames lists the file names probed by Find, in priority order.
// YAML is the canonical format; JSON/JSONC are accepted for users who
// prefer commented JSON configuration.
var searchNames = []string{
	"runtime-bench.yaml",
	"runtime-bench.yml",
	"runtime-bench.json",
	"runtime-bench.jsonc",
}

// rawManifest is the on-disk schema of the manifest file. It is kept
// separate from model.Manifest so that file-format concerns (string
// durations, defaulting, version handling) stay out of the domain type.
//
// Both YAML and JSON tags are declared because the same struct backs
// both parsers. Unknown fields in the file are silently ignored by both,
// which is the forward-compatibility policy: additive fields only.
type rawManifest struct {
	// Version is the schema version. Zero means the field was omitted
	// and is treated as the current version.
	Version int `yaml:"version" json:"version"`

	// Project is the Compose project name.
	Project string `yaml:"project" json:"project"`

	// GracePeriod is the readiness cutoff as a Go duration string
	// (e.g., "30s", "1m").
	GracePeriod string `yaml:"gracePeriod" json:"gracePeriod"`

	// Targets is the ordered list of runtime target definitions.
	Targets []rawTarget `yaml:"targets" json:"targets"`
}

// rawTarget is the on-disk schema of a single runtime target.
type rawTarget struct {
	Name           string `yaml:"name" json:"name"`
	Title          string `yaml:"title" json:"title"`
	Build          string `yaml:"build" json:"build"`
	Image          string `yaml:"image" json:"image"`
	ContainerName  string `yaml:"containerName" json:"containerName"`
	Port           int    `yaml:"port" json:"port"`
	ContainerPort  int    `yaml:"containerPort" json:"containerPort"`
	HealthPath     string `yaml:"healthPath" json:"healthPath"`
	HealthInterval string `yaml:"healthInterval" json:"healthInterval"`
}

// Find locates the manifest file starting from the given directory.
// It probes the standard file names (runtime-bench.yaml/.yml/.json/.jsonc)
// and returns the absolute path of the first one that exists.
//
// Returns a CLIError with ExitManifestError if no manifest is found,
// with a message naming the probed files so the user knows what to create.
func Find(dir string) (string, error) {
	for _, name := range searchNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", model.WrapCLIError(model.ExitManifestError,
					"failed to resolve manifest path", err)
			}
			return abs, nil
		}
	}
	return "", model.NewCLIError(model.ExitManifestError, fmt.Sprintf(
		"no manifest found in %s (looked for %s) — run \"runtime-bench init\" to create one",
		dir, strings.Join(searchNames, ", ")))
}

// Load reads, parses, defaults, and validates the manifest at the given
// path. The format is chosen by file extension: .json/.jsonc are parsed
// as JSONC, everything else as YAML.
//
// The returned manifest has all defaults applied and has passed
// model.Manifest.Validate, so callers can rely on its invariants
// (unique names, unique host ports).
func Load(path string) (*model.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitManifestError,
			fmt.Sprintf("failed to read manifest %s", path), err)
	}

	var raw rawManifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// jsonc.ToJSON rewrites comments and trailing commas into valid
		// JSON in place, preserving byte offsets for error reporting.
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, model.WrapCLIError(model.ExitManifestError,
				fmt.Sprintf("invalid JSON in manifest %s", path), err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, model.WrapCLIError(model.ExitManifestError,
				fmt.Sprintf("invalid YAML in manifest %s", path), err)
		}
	}

	m, err := fromRaw(&raw, filepath.Dir(path))
	if err != nil {
		return nil, model.WrapCLIError(model.ExitManifestError,
			fmt.Sprintf("invalid manifest %s", path), err)
	}
	return m, nil
}

// fromRaw converts the file schema into the domain manifest, applying
// defaults and running validation. Split out from Load so tests can
// exercise defaulting without touching the filesystem.
func fromRaw(raw *rawManifest, dir string) (*model.Manifest, error) {
	// A missing version means the file predates versioning; treat it as
	// the current version. Anything else must match exactly.
	version := raw.Version
	if version == 0 {
		version = currentVersion
	}
	if version != currentVersion {
		return nil, fmt.Errorf("unsupported manifest version %d (this build understands version %d)",
			raw.Version, currentVersion)
	}

	grace, err := parseDuration(raw.GracePeriod, DefaultGracePeriod)
	if err != nil {
		return nil, fmt.Errorf("invalid gracePeriod: %w", err)
	}

	m := &model.Manifest{
		Version:     version,
		Project:     raw.Project,
		GracePeriod: grace,
		Dir:         dir,
		Targets:     make([]model.Target, 0, len(raw.Targets)),
	}
	if m.Project == "" {
		m.Project = "runtime-bench"
	}

	for i := range raw.Targets {
		t, err := targetFromRaw(&raw.Targets[i])
		if err != nil {
			return nil, err
		}
		m.Targets = append(m.Targets, *t)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// targetFromRaw converts a single raw target, applying per-target defaults:
// title ← name, container name ← "<name>-app", container port ← host port,
// health path ← "/", health interval ← DefaultHealthInterval.
func targetFromRaw(raw *rawTarget) (*model.Target, error) {
	interval, err := parseDuration(raw.HealthInterval, DefaultHealthInterval)
	if err != nil {
		return nil, fmt.Errorf("target %q: invalid healthInterval: %w", raw.Name, err)
	}

	t := &model.Target{
		Name:           raw.Name,
		Title:          raw.Title,
		BuildContext:   raw.Build,
		Image:          raw.Image,
		ContainerName:  raw.ContainerName,
		Port:           raw.Port,
		ContainerPort:  raw.ContainerPort,
		HealthPath:     raw.HealthPath,
		HealthInterval: interval,
	}

	if t.Title == "" {
		t.Title = t.Name
	}
	if t.ContainerName == "" {
		t.ContainerName = t.Name + "-app"
	}
	if t.ContainerPort == 0 {
		t.ContainerPort = t.Port
	}
	if t.HealthPath == "" {
		t.HealthPath = DefaultHealthPath
	}
	return t, nil
}

// parseDuration parses a Go duration string, returning the fallback when
// the string is empty. Bare strings without a unit are rejected by
// time.ParseDuration, which is intentional: "30" is ambiguous, "30s" is not.
func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", s)
	}
	return d, nil
}
