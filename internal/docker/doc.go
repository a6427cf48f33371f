// Package docker provides Docker Engine API wrappers and container
// lifecycle queries for the runtime-bench CLI.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Container label management: every container started by the harness
//     carries runbench.* labels, which are the sole state storage
//     mechanism and the naming contract the external monitoring tool
//     relies on
//   - Label-based container discovery and per-target state mapping
//   - One-shot resource sampling (CPU and memory) per container
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
// Compose invocations live in the sibling compose package.
package docker
