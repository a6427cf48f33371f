// Package cli — stop.go implements the "runtime-bench stop" command.
//
// Stop halts all target containers without removing them, preserving
// state so a later "up" resumes the same containers.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/runtime-bench/internal/compose"
)

// NewStopCommand creates the "stop" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop all runtime targets without removing them",
		Long: `Stop every container of the comparison project. Containers, images, and
networks are kept, so "runtime-bench up" restarts them quickly.

Examples:
  runtime-bench stop`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.Context())
		},
	}
}

// runStop delegates to docker compose stop for the generated project.
func runStop(ctx context.Context) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	// The generated file is rewritten here too, so stop works even when
	// the manifest changed since the last up.
	composeFile, err := compose.WriteProjectFile(m)
	if err != nil {
		return err
	}

	if err := compose.Stop(ctx, m.Dir, composeFile); err != nil {
		return err
	}

	fmt.Printf("Stopped project %q (%s)\n", m.Project, filepath.Base(composeFile))
	return nil
}
