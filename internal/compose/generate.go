package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/runtime-bench/internal/docker"
	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// GeneratedDir is the directory (relative to the manifest) that holds the
// generated Compose project file. Kept out of the way of user files and
// safe to delete at any time.
const GeneratedDir = ".runtime-bench"

// GeneratedFile is the name of the generated Compose project file.
const GeneratedFile = "docker-compose.yaml"

// project is the YAML structure of the generated Compose file. Only the
// fields the harness needs are modeled; this struct is for serialization
// via the yaml.v3 library, never for parsing user files.
type project struct {
	// Name sets the Compose project name. Docker Compose uses this to
	// namespace network and volume names, isolating the comparison run
	// from anything else on the host.
	Name string `yaml:"name"`

	// Services maps service names (target names) to their definitions.
	Services map[string]service `yaml:"services"`
}

// service is the Compose definition generated for one runtime target.
type service struct {
	// Build is the build context path, relative to the manifest
	// directory. Omitted for image-only targets.
	Build string `yaml:"build,omitempty"`

	// Image is the tag the built image is stored under, or the pre-built
	// image to run when no build context is declared.
	Image string `yaml:"image,omitempty"`

	// ContainerName fixes the container name, which is part of the
	// contract with the external monitoring tool.
	ContainerName string `yaml:"container_name"`

	// Ports lists the port mappings in "hostPort:containerPort" format.
	Ports []string `yaml:"ports"`

	// Labels carries the runbench.* management labels.
	Labels map[string]string `yaml:"labels"`

	// Restart is the container restart policy. "unless-stopped" keeps a
	// crashed target restarting without resurrecting targets the user
	// stopped deliberately.
	Restart string `yaml:"restart,omitempty"`

	// Healthcheck is the container-level health check definition.
	Healthcheck *healthcheck `yaml:"healthcheck,omitempty"`
}

// healthcheck mirrors the Compose healthcheck block.
type healthcheck struct {
	Test     []string `yaml:"test"`
	Interval string   `yaml:"interval,omitempty"`
	Timeout  string   `yaml:"timeout,omitempty"`
	Retries  int      `yaml:"retries,omitempty"`
}

// Generate renders the Compose project file for the manifest. Service
// iteration is sorted by target name so the output is deterministic and
// diffs cleanly across regenerations.
func Generate(m *model.Manifest) ([]byte, error) {
	p := project{
		Name:     m.Project,
		Services: make(map[string]service, len(m.Targets)),
	}

	names := make([]string, 0, len(m.Targets))
	for i := range m.Targets {
		names = append(names, m.Targets[i].Name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := m.TargetByName(name)
		p.Services[name] = serviceFor(t)
	}

	data, err := yaml.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize Compose project: %w", err)
	}

	// A header comment marks the file as generated so nobody edits it
	// expecting the edits to survive the next run.
	header := "# Generated by runtime-bench from the manifest. Do not edit;\n" +
		"# changes are overwritten on every \"runtime-bench up\".\n"
	return append([]byte(header), data...), nil
}

// serviceFor builds the Compose service definition for one target.
func serviceFor(t *model.Target) service {
	svc := service{
		Image:         t.Image,
		ContainerName: t.ContainerName,
		Ports:         []string{fmt.Sprintf("%d:%d", t.Port, t.ContainerPort)},
		Labels:        docker.BuildLabels(t),
		Restart:       "unless-stopped",
		Healthcheck: &healthcheck{
			// wget is used rather than curl because the comparison images
			// are alpine-based and ship wget via busybox.
			Test: []string{"CMD-SHELL", fmt.Sprintf(
				"wget -qO- http://localhost:%d%s >/dev/null 2>&1 || exit 1",
				t.ContainerPort, t.HealthPath)},
			Interval: t.HealthInterval.String(),
			Timeout:  "10s",
			Retries:  3,
		},
	}

	if t.BuildContext != "" {
		svc.Build = t.BuildContext
	}
	return svc
}

// WriteProjectFile generates the Compose file and writes it under the
// manifest directory. Returns the absolute path of the written file.
//
// The generated directory is created on demand; rewriting the file on
// every invocation keeps it in lockstep with the manifest.
func WriteProjectFile(m *model.Manifest) (string, error) {
	data, err := Generate(m)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(m.Dir, GeneratedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, GeneratedFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
