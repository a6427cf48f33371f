// Package cli — init.go implements the "runtime-bench init" command.
//
// Init writes a starter manifest declaring the three canonical runtime
// targets (Node.js, Deno, Bun) with the port layout and container names
// the external monitoring tool expects.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/runtime-bench/internal/manifest"
	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// NewInitCommand creates the "init" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter manifest to the working directory",
		Long: `Write a starter runtime-bench.yaml declaring the canonical Node.js, Deno,
and Bun targets on ports 3001-3003. Refuses to overwrite an existing
manifest.

Examples:
  runtime-bench init
  runtime-bench init -f ./custom-name.yaml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

// runInit writes the starter manifest, honoring -f for a custom path.
func runInit() error {
	path := manifestFile
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return model.WrapCLIError(model.ExitPrereqFailed,
				"failed to get current directory", err)
		}
		path = filepath.Join(cwd, "runtime-bench.yaml")
	}

	if err := manifest.WriteStarter(path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Add a build context per target (e.g., ./node-app with a Dockerfile), then run \"runtime-bench up\".")
	return nil
}
