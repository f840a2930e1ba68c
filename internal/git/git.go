// Package git provides the git operations the session core needs to tear
// down a managed worktree and its branch when a session is deleted.
// Worktree/branch creation is owned by the external process orchestrator
// (spec: checkout mechanics are outside the core); this package only
// reaches backward to clean up what that orchestrator left behind.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// isGitRepo checks if the given directory is inside a git repository.
func isGitRepo(dir string) bool {
	cmd := exec.Command("git", "-C", dir, "rev-parse", "--git-dir")
	err := cmd.Run()
	return err == nil
}

// RemoveWorktree removes a worktree from the repository.
// If force is true, it will remove even if there are uncommitted changes.
func RemoveWorktree(repoDir, worktreePath string, force bool) error {
	if !isGitRepo(repoDir) {
		return errors.New("not a git repository")
	}

	args := []string{"-C", repoDir, "worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, worktreePath)

	cmd := exec.Command("git", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove worktree: %s: %w", strings.TrimSpace(string(output)), err)
	}

	return nil
}

// DeleteBranch deletes a local branch. If force is true, uses -D (force delete).
func DeleteBranch(repoDir, branchName string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	cmd := exec.Command("git", "-C", repoDir, "branch", flag, branchName)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to delete branch: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}
