package compose

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// Detect verifies that the Docker Compose plugin is installed by running
// "docker compose version". This is the orchestration-tool half of the
// launcher's prerequisite check; the daemon half is docker.Client.Ping.
//
// A missing plugin is a prerequisite failure: the returned CLIError
// carries ExitPrereqFailed and a remediation message.
func Detect(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "compose", "version")
	if output, err := cmd.CombinedOutput(); err != nil {
		return model.WrapCLIError(
			model.ExitPrereqFailed,
			fmt.Sprintf("Docker Compose plugin not found — install docker-compose-plugin and try again: %s",
				strings.TrimSpace(string(output))),
			err,
		)
	}
	return nil
}

// UpTarget builds and starts a single target's service:
//
//	docker compose -f <file> up -d --build --no-deps <service>
//
// Targets are started one service at a time so a failed build or start
// for one target does not prevent the others from coming up; the caller
// records the per-target error. --build rebuilds the image when its
// context changed, and Compose restarts a stopped service in place, which
// together make repeated invocations idempotent.
func UpTarget(ctx context.Context, projectDir, composeFile, serviceName string) error {
	args := buildArgs(projectDir, composeFile)
	args = append(args, "up", "-d", "--build", "--no-deps", serviceName)

	return run(ctx, projectDir, args)
}

// Stop stops all services of the project without removing them:
//
//	docker compose -f <file> stop
//
// Container state and data are preserved, so a later UpTarget resumes
// the same containers.
func Stop(ctx context.Context, projectDir, composeFile string) error {
	args := buildArgs(projectDir, composeFile)
	args = append(args, "stop")

	return run(ctx, projectDir, args)
}

// Down stops and removes the project's containers and networks:
//
//	docker compose -f <file> down [-v]
//
// When removeVolumes is true, named and anonymous volumes are removed as
// well, leaving no leftover data. The orchestrator is solely responsible
// for reclaiming these resources; the harness never deletes containers
// through the Engine API directly.
func Down(ctx context.Context, projectDir, composeFile string, removeVolumes bool) error {
	args := buildArgs(projectDir, composeFile)
	args = append(args, "down")
	if removeVolumes {
		args = append(args, "-v")
	}

	return run(ctx, projectDir, args)
}

// buildArgs constructs the common arguments for docker compose commands.
// --project-directory pins relative path resolution (build contexts) to
// the manifest directory rather than the generated file's directory,
// because the generated Compose file lives in a subdirectory.
func buildArgs(projectDir, composeFile string) []string {
	rel := composeFile
	if r, err := filepath.Rel(projectDir, composeFile); err == nil {
		rel = r
	}
	return []string{"compose", "-f", rel, "--project-directory", "."}
}

// run executes a docker compose command as a child process in the given
// working directory, capturing combined output for error reporting.
//
// "docker" with "compose" as the first argument is used rather than the
// legacy standalone docker-compose binary, because modern Docker ships
// Compose as a plugin subcommand.
func run(ctx context.Context, projectDir string, args []string) error {
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = projectDir
	cmd.Env = os.Environ()

	output, err := cmd.CombinedOutput()
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerError,
			fmt.Sprintf("docker compose failed: %s", strings.TrimSpace(string(output))),
			err,
		)
	}

	return nil
}
