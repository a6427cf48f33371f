// Package cli — status.go implements the "runtime-bench status" command.
//
// The status command answers "which specific target is unhealthy": it
// combines the manifest's declared targets with the current Docker
// container states (discovered via runbench.* labels) and a one-shot
// health probe per target, then prints a per-target table or JSON.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/runtime-bench/internal/docker"
	"github.com/shinji-kodama/runtime-bench/internal/health"
	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// NewStatusCommand creates the "status" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-target container state and health",
		Long: `Show the current state of every runtime target declared in the manifest:
its container state (running, exited, absent), an immediate health probe
of its HTTP endpoint, and its URL.

Examples:
  runtime-bench status
  runtime-bench status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

// runStatus gathers and prints the per-target status rows.
func runStatus(ctx context.Context) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return err
	}
	byTarget := docker.MapByTarget(containers)
	VerboseLog("Found %d managed container(s)", len(containers))

	statuses := make([]model.TargetStatus, 0, len(m.Targets))
	for i := range m.Targets {
		t := &m.Targets[i]
		ts := model.TargetStatus{
			Name:           t.Name,
			Title:          t.Title,
			URL:            t.URL(),
			ContainerState: docker.StateForTarget(byTarget, t.Name),
			Health:         model.StateUnknown,
		}

		// Probing a target without a running container would only
		// measure connection-refused latency.
		if ts.ContainerState == "running" {
			ts.Health = health.Probe(ctx, t.HealthURL())
		}

		statuses = append(statuses, ts)
	}

	printStatusResult(statuses)
	return nil
}

// printStatusResult outputs the status rows in text or JSON format.
func printStatusResult(statuses []model.TargetStatus) {
	if IsJSONOutput() {
		type resultJSON struct {
			Targets []model.TargetStatus `json:"targets"`
		}
		data, _ := json.MarshalIndent(resultJSON{Targets: statuses}, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(statuses) == 0 {
		fmt.Println("No targets declared.")
		return
	}

	fmt.Printf("%-10s %-12s %-10s %s\n", "TARGET", "CONTAINER", "HEALTH", "URL")
	for _, ts := range statuses {
		fmt.Printf("%-10s %-12s %-10s %s\n",
			ts.Name, ts.ContainerState, ts.Health, ts.URL)
	}
}
