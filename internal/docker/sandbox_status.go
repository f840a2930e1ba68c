package docker

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// SandboxStatus is a read-only snapshot of a sandboxed session's container
// state. Container lifecycle (create/start/stop/remove) stays with the
// external process orchestrator; this is only the inspect-and-report path
// behind the periodic sandbox refresh. group_has_containers and the
// delete-option dialogs do not use it: they look only at SandboxInfo.Enabled.
type SandboxStatus struct {
	ContainerID string
	Running     bool
	Image       string
}

// InspectSandbox reports the current state of a session's container by name,
// by shelling out to `docker inspect`, the same CLI idiom Container.Remove uses.
// A not-found container is not an error: it returns a zero SandboxStatus.
func InspectSandbox(ctx context.Context, containerName string) (SandboxStatus, error) {
	out, err := exec.CommandContext(ctx,
		"docker", "inspect",
		"--format", "{{.Id}}\t{{.State.Running}}\t{{.Config.Image}}",
		containerName,
	).CombinedOutput()
	if err != nil {
		if isExitError(err) {
			return SandboxStatus{}, nil
		}
		return SandboxStatus{}, fmt.Errorf("inspecting sandbox %s: %s: %w", containerName, strings.TrimSpace(string(out)), err)
	}

	fields := strings.SplitN(strings.TrimSpace(string(out)), "\t", 3)
	if len(fields) != 3 {
		return SandboxStatus{}, fmt.Errorf("inspecting sandbox %s: unexpected inspect output %q", containerName, out)
	}

	return SandboxStatus{
		ContainerID: fields[0],
		Running:     fields[1] == "true",
		Image:       fields[2],
	}, nil
}

// InspectSandboxes batches InspectSandbox over several container names,
// skipping any that no longer exist rather than failing the whole batch.
// Used by the periodic refresh to copy each container's image into
// SandboxInfo and to mark instances whose container is stopped as idle.
func InspectSandboxes(ctx context.Context, containerNames []string) (map[string]SandboxStatus, error) {
	result := make(map[string]SandboxStatus, len(containerNames))
	for _, name := range containerNames {
		if name == "" {
			continue
		}
		status, err := InspectSandbox(ctx, name)
		if err != nil {
			return result, err
		}
		if status.ContainerID != "" {
			result[name] = status
		}
	}
	return result, nil
}
