// Package cli — up.go implements the "runtime-bench up" command.
//
// The up command is the launcher: a strictly linear sequence with no
// branching loops.
//
//	CheckingPrerequisites → Building → WaitingForReadiness → ReportingStatus → Done
//
// Aborted is reachable from CheckingPrerequisites only: a missing Docker
// daemon or Compose plugin prints a remediation message and exits 1, and
// that is the sole fatal path. Everything after the prerequisite checks
// degrades to warnings — the process exits 0 even when some targets never
// became healthy, because partial results are still comparable results.
//
// Readiness is active polling (bounded exponential backoff per target up
// to the manifest's grace period), and the report is per-target, so an
// unhealthy target is named rather than inferred from a count.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/runtime-bench/internal/compose"
	"github.com/shinji-kodama/runtime-bench/internal/docker"
	"github.com/shinji-kodama/runtime-bench/internal/health"
	"github.com/shinji-kodama/runtime-bench/internal/model"
	"github.com/shinji-kodama/runtime-bench/internal/port"
)

// NewUpCommand creates the "up" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Build and start all runtime targets, then report their health",
		Long: `Build and start every runtime target declared in the manifest, wait for
them to become healthy, and print a per-target summary with URLs.

Prerequisite failures (Docker daemon unreachable, Compose plugin missing)
abort with exit code 1. A target that fails to build or never becomes
healthy is reported as a warning; the command still exits 0.

Examples:
  runtime-bench up
  runtime-bench up -f ./runtime-bench.yaml
  runtime-bench up --json`,

		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context())
		},
	}
}

// runUp is the launcher's linear sequence.
func runUp(ctx context.Context) error {
	// Phase 1: CheckingPrerequisites. Engine check first, then the
	// orchestration tool; both gate the Building phase and either
	// failure aborts with a remediation message.
	cli, err := docker.NewClient()
	if err != nil {
		return err // NewClient already returns CLIError with ExitPrereqFailed
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	VerboseLog("Docker daemon is reachable")

	if err := compose.Detect(ctx); err != nil {
		return err
	}
	VerboseLog("Docker Compose plugin is installed")

	m, err := loadManifest()
	if err != nil {
		return err
	}
	VerboseLog("Manifest: project %q, %d target(s)", m.Project, len(m.Targets))

	warnOccupiedPorts(ctx, cli, m)

	// Phase 2: Building. The Compose project file is regenerated from
	// the manifest, then each target is brought up individually so one
	// failed build does not prevent the others from starting.
	composeFile, err := compose.WriteProjectFile(m)
	if err != nil {
		return model.WrapCLIError(model.ExitPrereqFailed,
			"failed to write Compose project file", err)
	}
	VerboseLog("Compose project file: %s", composeFile)

	upErrs := make(map[string]error, len(m.Targets))
	for i := range m.Targets {
		t := &m.Targets[i]
		VerboseLog("Starting target %q...", t.Name)
		if upErr := compose.UpTarget(ctx, m.Dir, composeFile, t.Name); upErr != nil {
			upErrs[t.Name] = upErr
			fmt.Fprintf(os.Stderr, "Warning: target %q failed to start: %v\n", t.Name, upErr)
		}
	}

	// Phase 3: WaitingForReadiness. Only targets whose orchestration
	// invocation succeeded are polled; a target that never started has
	// nothing to probe and stays "unknown".
	endpoints := make(map[string]string, len(m.Targets))
	for i := range m.Targets {
		t := &m.Targets[i]
		if upErrs[t.Name] == nil {
			endpoints[t.Name] = t.HealthURL()
		}
	}

	var results map[string]health.Result
	if len(endpoints) > 0 {
		VerboseLog("Waiting up to %s for %d target(s) to become healthy...",
			m.GracePeriod, len(endpoints))
		poller := health.NewPoller(m.GracePeriod)
		results = poller.WaitReady(ctx, endpoints)
	}

	// Phase 4: ReportingStatus.
	report := buildLaunchReport(ctx, cli, m, upErrs, results)
	printLaunchReport(m, composeFile, report)

	// Done: exit 0 regardless of the readiness outcome. Only the
	// prerequisite checks above are fatal.
	return nil
}

// warnOccupiedPorts is a pre-flight nicety: any declared host port that
// is already bound, and whose target is not itself running, will make the
// Compose publish fail — warn about it before the build starts.
func warnOccupiedPorts(ctx context.Context, cli *docker.Client, m *model.Manifest) {
	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		VerboseLog("Could not list containers for the port pre-flight check: %v", err)
		return
	}
	byTarget := docker.MapByTarget(containers)

	var candidates []int
	owner := make(map[int]string)
	for i := range m.Targets {
		t := &m.Targets[i]
		// A running target legitimately holds its own port; Compose will
		// reconcile it rather than re-publish.
		if docker.StateForTarget(byTarget, t.Name) == "running" {
			continue
		}
		candidates = append(candidates, t.Port)
		owner[t.Port] = t.Name
	}

	scanner := port.NewScanner()
	for _, p := range scanner.OccupiedPorts(candidates) {
		fmt.Fprintf(os.Stderr, "Warning: host port %d (target %q) is already in use\n",
			p, owner[p])
	}
}

// buildLaunchReport assembles the per-target outcome rows in manifest
// order, combining orchestration errors, poll results, and a fresh
// container state listing.
func buildLaunchReport(ctx context.Context, cli *docker.Client, m *model.Manifest,
	upErrs map[string]error, results map[string]health.Result) *model.LaunchReport {

	// Re-list containers after the wait so the reported state reflects
	// what actually happened (a target can start and crash within the
	// grace period).
	byTarget := map[string]model.ContainerInfo{}
	if containers, err := docker.ListManagedContainers(ctx, cli); err == nil {
		byTarget = docker.MapByTarget(containers)
	} else {
		VerboseLog("Could not list containers for the report: %v", err)
	}

	report := &model.LaunchReport{
		Expected: len(m.Targets),
		Targets:  make([]model.TargetStatus, 0, len(m.Targets)),
	}

	for i := range m.Targets {
		t := &m.Targets[i]
		ts := model.TargetStatus{
			Name:           t.Name,
			Title:          t.Title,
			URL:            t.URL(),
			ContainerState: docker.StateForTarget(byTarget, t.Name),
			Health:         model.StateUnknown,
		}

		if upErr := upErrs[t.Name]; upErr != nil {
			ts.Error = upErr.Error()
		} else {
			report.Started++
			if res, ok := results[t.Name]; ok {
				ts.Health = res.State
				if res.LastErr != nil {
					ts.Error = res.LastErr.Error()
				}
				VerboseLog("Target %q: %s after %d attempt(s) in %s",
					t.Name, res.State, res.Attempts, res.Elapsed.Round(10*time.Millisecond))
			}
		}

		if ts.Health == model.StateHealthy {
			report.Healthy++
		}
		report.Targets = append(report.Targets, ts)
	}

	return report
}

// printLaunchReport outputs the launch report in text or JSON format.
func printLaunchReport(m *model.Manifest, composeFile string, report *model.LaunchReport) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	if report.AllHealthy() {
		fmt.Printf("All %d targets are up and healthy:\n\n", report.Expected)
	} else {
		fmt.Printf("Warning: %d of %d targets healthy\n\n", report.Healthy, report.Expected)
	}

	for _, ts := range report.Targets {
		marker := "✓"
		if ts.Health != model.StateHealthy {
			marker = "✗"
		}
		fmt.Printf("  %s %-8s %-10s %s  (%s)\n",
			marker, ts.Name, ts.Health, ts.URL, ts.Title)
		if ts.Error != "" {
			fmt.Printf("      %s\n", ts.Error)
		}
	}

	if !report.AllHealthy() {
		unhealthy := strings.Join(report.Unhealthy(), ", ")
		fmt.Printf("\nUnhealthy targets: %s\n", unhealthy)
		fmt.Printf("Inspect logs with: docker compose -f %s logs <target>\n", composeFile)
	}
}
