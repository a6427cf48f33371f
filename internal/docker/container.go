package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// ListManagedContainers queries the Docker daemon for all containers that
// carry the "runbench.managed-by=runtime-bench" label. It returns a slice
// of ContainerInfo representing each managed container, including stopped
// ones.
//
// This function is the primary entry point for discovering what runtime
// targets currently exist on the host. All state is derived from Docker
// labels rather than any external database.
func ListManagedContainers(ctx context.Context, cli *Client) ([]model.ContainerInfo, error) {
	// A server-side label filter is more efficient than listing all
	// containers and filtering in Go.
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	// The All flag includes stopped/exited containers, not just running
	// ones. A crashed target still needs to show up in status output.
	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerError,
			"failed to list Docker containers",
			err,
		)
	}

	// Convert Docker API types.Container structs to our domain model
	// ContainerInfo structs, decoupling the rest of the application from
	// the Docker SDK types.
	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}

	return result, nil
}

// containerToInfo converts a Docker API Container struct to our domain
// model ContainerInfo. This is a pure mapping function with no side effects.
func containerToInfo(c types.Container) model.ContainerInfo {
	// Docker returns container names as a slice, each with a leading "/"
	// that is an artifact of the API and not meaningful to users.
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		TargetName:    c.Labels[LabelTarget],
		State:         c.State,
		Labels:        c.Labels,
	}
}

// MapByTarget indexes managed containers by their target label. Containers
// without a target label are skipped; this should not happen in practice
// because ListManagedContainers already filters for managed containers.
//
// When several containers claim the same target (e.g., leftovers from a
// renamed project), the running one wins, so status output reflects the
// container actually bound to the target's port.
func MapByTarget(containers []model.ContainerInfo) map[string]model.ContainerInfo {
	byTarget := make(map[string]model.ContainerInfo, len(containers))

	for _, c := range containers {
		if c.TargetName == "" {
			continue
		}
		if existing, ok := byTarget[c.TargetName]; ok && existing.State == "running" {
			continue
		}
		byTarget[c.TargetName] = c
	}

	return byTarget
}

// StateForTarget returns the Docker container state for a declared target,
// or model.ContainerStateAbsent when no managed container exists for it.
func StateForTarget(byTarget map[string]model.ContainerInfo, targetName string) string {
	if c, ok := byTarget[targetName]; ok {
		return c.State
	}
	return model.ContainerStateAbsent
}

// FindByName returns the managed container with the given container name,
// or an error when it does not exist. Used by the monitor, whose contract
// with the original tool is sampling containers by their fixed names.
func FindByName(containers []model.ContainerInfo, containerName string) (*model.ContainerInfo, error) {
	for i := range containers {
		if containers[i].ContainerName == containerName {
			return &containers[i], nil
		}
	}
	return nil, fmt.Errorf("container %q not found", containerName)
}
