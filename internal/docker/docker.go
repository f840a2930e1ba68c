// Package docker manages the lifecycle tail of a sandboxed agent session's
// container: inspecting its live status and removing it on teardown.
// Building and starting the container is owned by the external process
// orchestrator, the same boundary that keeps worktree creation out of
// internal/git — this package only reaches backward to report on and clean
// up what that orchestrator left behind.
//
// Security: the Docker socket is intentionally NOT mounted into containers.
// Agents run inside a sandbox with no access to the host Docker daemon.
package docker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Container is a handle to an existing sandbox container, identified by name.
type Container struct {
	name string
}

// FromName creates a container handle for an existing container by name.
func FromName(name string) *Container {
	return &Container{name: name}
}

// Name returns the container name.
func (c *Container) Name() string {
	return c.name
}

// Remove removes the container and its anonymous volumes.
// If force is true, a running container is killed first.
// If the container does not exist, this is a no-op.
func (c *Container) Remove(ctx context.Context, force bool) error {
	args := []string{"rm", "-v"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, c.name)

	out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput()
	if err != nil {
		outStr := strings.TrimSpace(string(out))
		// Idempotent: container already gone is not an error.
		if isExitError(err) && strings.Contains(strings.ToLower(outStr), "no such container") {
			return nil
		}
		return fmt.Errorf("removing container %s: %s: %w", c.name, outStr, err)
	}
	return nil
}

// isExitError returns true if the error is an exec.ExitError (non-zero exit code).
func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
