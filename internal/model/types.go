package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// HealthState represents the last observed health of a runtime target,
// as determined by probing its HTTP health path.
//
// Health is tracked per target (not as an aggregate count) so that a
// failure is always attributable to a specific target.
type HealthState string

const (
	// StateHealthy indicates the target answered its health path with 200.
	StateHealthy HealthState = "healthy"

	// StateUnhealthy indicates the target was probed but never answered
	// successfully before the readiness cutoff (connection refused,
	// timeout, or a non-200 status).
	StateUnhealthy HealthState = "unhealthy"

	// StateUnknown indicates the target was never probed, typically
	// because its build or start failed and there is nothing to probe.
	StateUnknown HealthState = "unknown"
)

// String returns the string representation of HealthState.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (s HealthState) String() string {
	return string(s)
}

// IsValid checks whether the HealthState value is one of the
// predefined valid states.
func (s HealthState) IsValid() bool {
	switch s {
	case StateHealthy, StateUnhealthy, StateUnknown:
		return true
	default:
		return false
	}
}

// ParseHealthState converts a string to a HealthState.
// Returns an error if the string does not match any valid state.
func ParseHealthState(s string) (HealthState, error) {
	state := HealthState(strings.ToLower(s))
	if !state.IsValid() {
		return "", fmt.Errorf("invalid health state: %q (valid: healthy, unhealthy, unknown)", s)
	}
	return state, nil
}

// Target describes one runtime backend under comparison: an independently
// buildable container image exposing a single HTTP health endpoint.
//
// Targets are declared in the manifest file and are immutable for the
// duration of a run. Identity (Name) and the host Port must be unique
// across all targets in a manifest — see Manifest.Validate.
type Target struct {
	// Name is the unique identifier for this target (e.g., "node", "deno").
	// Must contain only alphanumeric characters and hyphens.
	Name string `json:"name"`

	// Title is the human-readable display name (e.g., "Node.js").
	// Used in status output and stored as a container label for the
	// external monitoring tool. Defaults to Name when empty.
	Title string `json:"title,omitempty"`

	// BuildContext is the path to the Docker build context for this
	// target, relative to the manifest file. Empty when Image refers to
	// a pre-built image.
	BuildContext string `json:"buildContext,omitempty"`

	// Image is the image tag to build or pull (e.g., "node-nextjs-app").
	Image string `json:"image,omitempty"`

	// ContainerName is the fixed container name. Fixed names are part of
	// the contract with the external monitoring tool, which samples
	// containers by name. Defaults to "<name>-app" when empty.
	ContainerName string `json:"containerName"`

	// Port is the host port the target is published on (1024-65535).
	// Must be unique across all targets.
	Port int `json:"port"`

	// ContainerPort is the port the workload listens on inside the
	// container. Defaults to Port when zero.
	ContainerPort int `json:"containerPort"`

	// HealthPath is the HTTP route used to decide whether the target is
	// serving traffic. Must start with "/". Defaults to "/".
	HealthPath string `json:"healthPath"`

	// HealthInterval is the interval for the container-level health check
	// written into the generated Compose file. Defaults to 30s.
	HealthInterval time.Duration `json:"healthInterval"`
}

// URL returns the host-side base URL for the target's published port.
// All targets serve plain HTTP in this harness.
func (t *Target) URL() string {
	return fmt.Sprintf("http://localhost:%d", t.Port)
}

// HealthURL returns the full URL of the target's health endpoint.
func (t *Target) HealthURL() string {
	return t.URL() + t.HealthPath
}

// Validate checks a single target's field values. Cross-target invariants
// (name/port uniqueness) are enforced by Manifest.Validate.
func (t *Target) Validate() error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if t.BuildContext == "" && t.Image == "" {
		return fmt.Errorf("target %q: either a build context or an image is required", t.Name)
	}
	if t.Port < 1024 || t.Port > 65535 {
		return fmt.Errorf("target %q: host port %d out of range (1024-65535)", t.Name, t.Port)
	}
	if t.ContainerPort < 1 || t.ContainerPort > 65535 {
		return fmt.Errorf("target %q: container port %d out of range (1-65535)", t.Name, t.ContainerPort)
	}
	if !strings.HasPrefix(t.HealthPath, "/") {
		return fmt.Errorf("target %q: health path %q must start with %q", t.Name, t.HealthPath, "/")
	}
	if t.HealthInterval <= 0 {
		return fmt.Errorf("target %q: health interval must be positive", t.Name)
	}
	return nil
}

// nameRegex validates target and project names: alphanumeric + hyphens only,
// must start and end with alphanumeric.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)

// ValidateName checks if the given name is a valid target or project name.
// Valid names contain only alphanumeric characters and hyphens,
// and must start/end with an alphanumeric character.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid name %q: must contain only alphanumeric characters and hyphens, and start/end with alphanumeric", name)
	}
	return nil
}

// Manifest is the declarative description of a comparison run: the Compose
// project identity, the readiness budget, and the ordered set of runtime
// targets. Loaded once per invocation and immutable afterwards.
type Manifest struct {
	// Version is the manifest schema version. Missing is treated as 1
	// by the loader; only version 1 is currently accepted. Unknown fields
	// in the file are ignored for forward compatibility.
	Version int `json:"version"`

	// Project is the Compose project name, which namespaces container,
	// network, and volume names.
	Project string `json:"project"`

	// GracePeriod is the maximum time the launcher waits for all targets
	// to become healthy before reporting. Readiness polling terminates
	// early on first full success.
	GracePeriod time.Duration `json:"gracePeriod"`

	// Targets is the ordered list of runtime targets to build and run.
	Targets []Target `json:"targets"`

	// Dir is the absolute directory containing the manifest file.
	// Build context paths and generated files resolve relative to it.
	Dir string `json:"-"`
}

// Validate checks the manifest-wide invariants:
//   - a valid project name,
//   - at least one target,
//   - every target individually valid,
//   - target names unique,
//   - host ports unique across targets.
//
// These are construction-time invariants: a manifest that fails validation
// is rejected before anything is built or started.
func (m *Manifest) Validate() error {
	if err := ValidateName(m.Project); err != nil {
		return fmt.Errorf("invalid project name: %w", err)
	}
	if len(m.Targets) == 0 {
		return fmt.Errorf("manifest declares no targets")
	}
	if m.GracePeriod <= 0 {
		return fmt.Errorf("grace period must be positive")
	}

	// Track seen names and ports to detect duplicates. The port check is
	// the "port collision zero" invariant: each target owns its host port
	// binding exclusively.
	seenNames := make(map[string]bool, len(m.Targets))
	seenPorts := make(map[int]string, len(m.Targets))

	for i := range m.Targets {
		t := &m.Targets[i]
		if err := t.Validate(); err != nil {
			return err
		}
		if seenNames[t.Name] {
			return fmt.Errorf("duplicate target name %q", t.Name)
		}
		seenNames[t.Name] = true

		if owner, exists := seenPorts[t.Port]; exists {
			return fmt.Errorf("host port %d is declared by both %q and %q", t.Port, owner, t.Name)
		}
		seenPorts[t.Port] = t.Name
	}
	return nil
}

// TargetByName returns the target with the given name, or nil if the
// manifest does not declare it.
func (m *Manifest) TargetByName(name string) *Target {
	for i := range m.Targets {
		if m.Targets[i].Name == name {
			return &m.Targets[i]
		}
	}
	return nil
}

// ContainerInfo holds runtime information about a Docker container.
// This data is fetched dynamically from the Docker API, not persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// TargetName is the runtime target this container belongs to,
	// read from the "runbench.target" label.
	TargetName string `json:"targetName"`

	// State is the Docker container state (e.g., "running", "exited").
	State string `json:"state"`

	// Labels is the full set of Docker labels on the container,
	// including runtime-bench management labels (runbench.* prefix).
	Labels map[string]string `json:"labels,omitempty"`
}

// TargetStatus combines a target's declared identity with its last
// observed container state and health. This is the per-target record the
// launcher and status command report, replacing the aggregate
// "N containers reported" check with attributable state.
type TargetStatus struct {
	// Name is the target identifier from the manifest.
	Name string `json:"name"`

	// Title is the target's display name.
	Title string `json:"title"`

	// URL is the host-side base URL of the target.
	URL string `json:"url"`

	// ContainerState is the Docker state of the target's container,
	// or "absent" when no managed container exists for the target.
	ContainerState string `json:"containerState"`

	// Health is the last observed health of the target's HTTP endpoint.
	Health HealthState `json:"health"`

	// Error holds the orchestration error message for this target, if
	// its build or start failed. Empty on success. A failed target does
	// not prevent the remaining targets from starting.
	Error string `json:"error,omitempty"`
}

// ContainerStateAbsent is the ContainerState value used when no managed
// container exists for a declared target.
const ContainerStateAbsent = "absent"

// LaunchReport summarizes one launcher invocation. It is produced once
// per "up" run, printed, and discarded — never persisted.
type LaunchReport struct {
	// Expected is the number of targets declared in the manifest.
	Expected int `json:"expected"`

	// Started is the number of targets whose orchestration invocation
	// succeeded (build + start accepted by Compose).
	Started int `json:"started"`

	// Healthy is the number of targets observed healthy before the
	// readiness cutoff.
	Healthy int `json:"healthy"`

	// Targets holds the per-target outcome rows, in manifest order.
	Targets []TargetStatus `json:"targets"`
}

// AllHealthy reports whether every expected target reached the healthy
// state. This is the success branch of the launcher's status report.
func (r *LaunchReport) AllHealthy() bool {
	return r.Expected > 0 && r.Healthy == r.Expected
}

// Unhealthy returns the names of targets that did not reach the healthy
// state, in manifest order. Used by the warning branch so failures are
// named rather than counted.
func (r *LaunchReport) Unhealthy() []string {
	var names []string
	for _, ts := range r.Targets {
		if ts.Health != StateHealthy {
			names = append(names, ts.Name)
		}
	}
	return names
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
//
// The launcher contract is deliberately narrow: prerequisite failures are
// the only fatal launch path (exit 1); degraded orchestration is reported
// but still exits 0.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully. For the
	// "up" command this means prerequisites were satisfied and
	// orchestration was triggered, regardless of eventual target health.
	ExitSuccess ExitCode = 0

	// ExitPrereqFailed indicates a prerequisite check failed: the Docker
	// daemon is unreachable or the Compose plugin is missing. Also used
	// for unspecified errors.
	ExitPrereqFailed ExitCode = 1

	// ExitManifestError indicates the manifest file was not found or
	// failed validation.
	ExitManifestError ExitCode = 2

	// ExitDockerError indicates a Docker operation failed outside the
	// prerequisite phase (e.g., listing or stopping containers).
	ExitDockerError ExitCode = 3
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError that wraps an underlying error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
