package git

import (
	"context"
	"os/exec"

	"github.com/wtstatus/wtstatus/internal/cmd"
)

// runCmd executes a command and returns stderr in the error message if it fails
func runCmd(c *exec.Cmd) error {
	return cmd.Run(c)
}

// outputCmd executes a command and returns stdout, with stderr in error if it fails
func outputCmd(c *exec.Cmd) ([]byte, error) {
	return cmd.Output(c)
}

// nonInteractiveEnv disables pagers, prompts, and credential helper
// network roundtrips for every git subprocess this package runs — a probe
// must never block on a terminal prompt or a pager.
var nonInteractiveEnv = []string{
	"GIT_PAGER=cat",
	"GIT_TERMINAL_PROMPT=0",
	"GIT_ASKPASS=",
	"GCM_INTERACTIVE=never",
}

// runGit executes a git command with context support and verbose logging.
func runGit(ctx context.Context, dir string, args ...string) error {
	return cmd.RunContextEnv(ctx, dir, nonInteractiveEnv, "git", args...)
}

// outputGit executes a git command with context support and verbose logging,
// returning stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return cmd.OutputContextEnv(ctx, dir, nonInteractiveEnv, "git", args...)
}
