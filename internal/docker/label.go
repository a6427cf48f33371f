package docker

import (
	"strconv"

	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// Label key constants define the Docker label keys applied to every
// container started by the harness. The labels serve two purposes:
// they are the discovery mechanism for the harness itself (no external
// state file), and they are the contract with the external monitoring
// tool, which expects consistently labeled containers to sample from.
//
// All keys share the "runbench." prefix to namespace them and avoid
// collisions with labels set by other tools (Docker Compose, VS Code, etc.).
const (
	// LabelPrefix is the common prefix for all runtime-bench labels.
	LabelPrefix = "runbench."

	// LabelManagedBy identifies containers managed by runtime-bench.
	// This is the primary label used for filtering and discovery.
	// Key: "runbench.managed-by", Value: always "runtime-bench".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelTarget stores the runtime target identifier this container
	// implements. Key: "runbench.target", Value: target name (e.g., "node").
	LabelTarget = LabelPrefix + "target"

	// LabelTitle stores the target's human-readable display name.
	// Key: "runbench.title", Value: e.g., "Node.js".
	LabelTitle = LabelPrefix + "title"

	// LabelPort stores the host port the target is published on.
	// Key: "runbench.port", Value: decimal port number.
	LabelPort = LabelPrefix + "port"

	// LabelHealthPath stores the HTTP route used for readiness probing.
	// Key: "runbench.health-path", Value: absolute path (e.g., "/").
	LabelHealthPath = LabelPrefix + "health-path"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
// All containers created by this CLI are tagged with this value,
// enabling discovery via Docker API label filters.
const ManagedByValue = "runtime-bench"

// BuildLabels constructs the Docker label map for a runtime target.
// These labels are written into the generated Compose file so Docker
// applies them to the target's container, allowing the target identity
// to be reconstructed from container inspection alone.
func BuildLabels(t *model.Target) map[string]string {
	return map[string]string{
		LabelManagedBy:  ManagedByValue,
		LabelTarget:     t.Name,
		LabelTitle:      t.Title,
		LabelPort:       strconv.Itoa(t.Port),
		LabelHealthPath: t.HealthPath,
	}
}
