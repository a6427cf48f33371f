// Package compose bridges the manifest to Docker Compose, the external
// orchestrator that owns building, starting, and tearing down the runtime
// targets.
//
// The package has two halves:
//   - generate.go turns the manifest into a Compose project file
//     (.runtime-bench/docker-compose.yaml next to the manifest), with one
//     service per runtime target carrying its port mapping, health check,
//     and runbench.* management labels.
//   - runner.go invokes the "docker compose" plugin as a child process:
//     plugin detection (the second prerequisite check), per-target up,
//     stop, and down.
//
// Targets are brought up one service at a time with --no-deps so a failed
// build for one target never prevents the others from starting; the
// caller collects a per-target result rather than an all-or-nothing one.
// Compose's own semantics make re-invocation idempotent: images are
// rebuilt only when their context changed and stopped services are
// restarted in place.
package compose
