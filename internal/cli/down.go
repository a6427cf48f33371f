// Package cli — down.go implements the "runtime-bench down" command.
//
// Down is the teardown operation: containers and networks are removed
// through the orchestrator, which is solely responsible for reclaiming
// the resources it created. With --volumes, data volumes go too.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/runtime-bench/internal/compose"
)

// downFlags holds the flag values for the down command.
type downFlags struct {
	volumes bool // --volumes: also remove named and anonymous volumes
}

// NewDownCommand creates the "down" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDownCommand() *cobra.Command {
	flags := &downFlags{}

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop and remove all runtime targets",
		Long: `Stop and remove every container and network of the comparison project.

Examples:
  runtime-bench down
  runtime-bench down --volumes`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.volumes, "volumes", false,
		"Also remove named and anonymous volumes")

	return cmd
}

// runDown delegates to docker compose down for the generated project.
func runDown(ctx context.Context, flags *downFlags) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	composeFile, err := compose.WriteProjectFile(m)
	if err != nil {
		return err
	}

	if err := compose.Down(ctx, m.Dir, composeFile, flags.volumes); err != nil {
		return err
	}

	fmt.Printf("Removed project %q\n", m.Project)
	return nil
}
