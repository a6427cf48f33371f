// Package model defines the domain types and value objects for the
// runtime-bench CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Target, Manifest, TargetStatus, LaunchReport) are transient
// representations: target definitions come from the manifest file, and
// runtime state is reconstructed from Docker container labels and the
// Docker API on every invocation — there are no persistent state files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
