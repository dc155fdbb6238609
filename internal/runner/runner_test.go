// runner_test.go contains unit tests for the exec-backed runner and the
// in-memory recorder. ExecRunner tests use tiny POSIX utilities (true,
// false, sh) so they run anywhere but Windows without a Rust toolchain.
package runner

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/crateci/internal/model"
)

// skipOnWindows skips tests that depend on POSIX shell utilities.
func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires POSIX shell utilities")
	}
}

// TestExecRunnerSuccess verifies that a zero exit status yields no error.
func TestExecRunnerSuccess(t *testing.T) {
	skipOnWindows(t)

	r := NewExecRunner(t.TempDir(), nil)
	err := r.Run(context.Background(), model.Invocation{
		Step: model.StepBuildDebug,
		Tool: model.Tool("true"),
	})
	assert.NoError(t, err)
}

// TestExecRunnerFailure verifies that a non-zero exit status surfaces as
// a CommandError carrying the child's exit status.
func TestExecRunnerFailure(t *testing.T) {
	skipOnWindows(t)

	r := NewExecRunner(t.TempDir(), nil)
	inv := model.Invocation{
		Step: model.StepTestDebug,
		Tool: model.Tool("sh"),
		Args: []string{"-c", "exit 42"},
	}

	err := r.Run(context.Background(), inv)
	require.Error(t, err)

	var cmdErr *model.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 42, cmdErr.Status)
	assert.Equal(t, model.StepTestDebug, cmdErr.Invocation.Step)
}

// TestExecRunnerMissingBinary verifies that an unstartable command reports
// status -1 rather than a fabricated exit code.
func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner(t.TempDir(), nil)
	err := r.Run(context.Background(), model.Invocation{
		Step: model.StepBuildDebug,
		Tool: model.Tool("crateci-no-such-binary"),
	})
	require.Error(t, err)

	var cmdErr *model.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, -1, cmdErr.Status)
}

// TestExecRunnerWorkingDirAndEnv verifies that commands run in the crate
// directory with the extra environment applied on top of the inherited one.
func TestExecRunnerWorkingDirAndEnv(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	var out strings.Builder

	r := NewExecRunner(dir, map[string]string{"CRATECI_PROBE": "probe-value"})
	r.Stdout = &out
	r.Stderr = &out

	err := r.Run(context.Background(), model.Invocation{
		Step: model.StepBuildDebug,
		Tool: model.Tool("sh"),
		Args: []string{"-c", "pwd && printf '%s' \"$CRATECI_PROBE\""},
	})
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "probe-value")
	// pwd may report a symlink-resolved variant of the temp dir, so match
	// on the unique final path element instead of the full path.
	parts := strings.Split(dir, "/")
	assert.Contains(t, output, parts[len(parts)-1])
}

// TestMergeEnv verifies deterministic environment merging.
func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/usr/bin", "HOME=/home/ci"}

	t.Run("no extras returns base", func(t *testing.T) {
		assert.Equal(t, base, mergeEnv(base, nil))
	})

	t.Run("extras appended in sorted key order", func(t *testing.T) {
		got := mergeEnv(base, map[string]string{"ZED": "z", "ALPHA": "a"})
		assert.Equal(t, []string{
			"PATH=/usr/bin", "HOME=/home/ci", "ALPHA=a", "ZED=z",
		}, got)
	})
}

// TestRecorder verifies the scripted failure and sequence capture used by
// the pipeline tests.
func TestRecorder(t *testing.T) {
	invs := []model.Invocation{
		{Step: model.StepBuildDebug, Tool: model.ToolCargo, Args: []string{"build"}},
		{Step: model.StepBuildRelease, Tool: model.ToolCargo, Args: []string{"build", "--release"}},
		{Step: model.StepClippy, Tool: model.ToolCargo, Args: []string{"clippy"}},
	}

	t.Run("records every invocation in order", func(t *testing.T) {
		rec := &Recorder{}
		for _, inv := range invs {
			require.NoError(t, rec.Run(context.Background(), inv))
		}
		assert.Equal(t, invs, rec.Invocations)
		assert.Equal(t, []string{
			"cargo build",
			"cargo build --release",
			"cargo clippy",
		}, rec.CommandLines())
	})

	t.Run("fails at the scripted position", func(t *testing.T) {
		rec := &Recorder{FailAt: 2, FailStatus: 101}

		require.NoError(t, rec.Run(context.Background(), invs[0]))
		err := rec.Run(context.Background(), invs[1])
		require.Error(t, err)

		var cmdErr *model.CommandError
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, 101, cmdErr.Status)
		assert.Equal(t, model.StepBuildRelease, cmdErr.Invocation.Step)
	})

	t.Run("default failure status is 1", func(t *testing.T) {
		rec := &Recorder{FailAt: 1}
		err := rec.Run(context.Background(), invs[0])

		var cmdErr *model.CommandError
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, 1, cmdErr.Status)
	})
}
