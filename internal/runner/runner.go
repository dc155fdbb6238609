// runner.go implements command execution for pipeline invocations.
//
// ExecRunner is the real thing: it spawns the tool via os/exec with the
// crate directory as working directory and the invocation's output wired
// straight to the CLI's own streams, so cargo/cross progress and compiler
// diagnostics appear exactly as they would when run by hand.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/mmr-tortoise/crateci/internal/model"
)

// Runner executes a single pipeline invocation and reports its outcome.
// A nil return means the command exited with status zero. Any non-zero
// exit is returned as a *model.CommandError.
type Runner interface {
	Run(ctx context.Context, inv model.Invocation) error
}

// ExecRunner runs invocations as real child processes.
type ExecRunner struct {
	// Dir is the working directory for every invocation (the crate root).
	Dir string

	// Env holds extra environment variables appended to the inherited
	// environment, in sorted key order for deterministic command setup.
	Env map[string]string

	// Stdout and Stderr receive the child's output. They default to the
	// process's own streams; tests may substitute buffers.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates an ExecRunner that runs commands in dir with the
// given extra environment, streaming output to the process's own
// stdout/stderr.
func NewExecRunner(dir string, env map[string]string) *ExecRunner {
	return &ExecRunner{
		Dir:    dir,
		Env:    env,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the invocation and blocks until its exit status is
// collected. The context cancels the child process via exec.CommandContext;
// no timeout is imposed here — a hanging tool hangs the run, and the
// surrounding CI system's job timeout is the backstop.
func (r *ExecRunner) Run(ctx context.Context, inv model.Invocation) error {
	// #nosec G204 — the argv is assembled from a fixed plan, not user input
	cmd := exec.CommandContext(ctx, string(inv.Tool), inv.Args...)
	cmd.Dir = r.Dir
	cmd.Env = mergeEnv(os.Environ(), r.Env)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return &model.CommandError{
			Invocation: inv,
			Status:     exitStatus(err),
			Err:        err,
		}
	}
	return nil
}

// exitStatus extracts the child's exit status from a cmd.Run error.
// Returns -1 when the command never ran (binary missing, permission
// denied) or was killed by a signal.
func exitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// mergeEnv appends extra variables to a base environment. Keys are sorted
// so repeated runs build identical argv/env, which keeps verbose logs and
// test expectations stable.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := make([]string, len(base), len(base)+len(extra))
	copy(merged, base)
	for _, k := range keys {
		merged = append(merged, fmt.Sprintf("%s=%s", k, extra[k]))
	}
	return merged
}
