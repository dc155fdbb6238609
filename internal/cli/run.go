// run.go implements the "crateci run" command, the orchestration entry
// point. It resolves the configuration, optionally preflights the
// toolchain, and executes the verification pipeline with fail-fast
// semantics. The process exit status is zero if and only if every
// executed step succeeded (or the deploy path skipped them all).
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/crateci/internal/config"
	"github.com/mmr-tortoise/crateci/internal/docker"
	"github.com/mmr-tortoise/crateci/internal/model"
	"github.com/mmr-tortoise/crateci/internal/pipeline"
	"github.com/mmr-tortoise/crateci/internal/runner"
)

// NewRunCommand creates the "run" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewRunCommand() *cobra.Command {
	flags := &configFlags{}
	var preflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the CI verification pipeline",
		Long: `Run the full verification pipeline for the crate: debug build, release
build, formatting check, clippy lint pass, and the test suite in both
profiles. The first failing command aborts the run and its exit status
becomes crateci's own exit status.

A release tag (--release-tag or $TRAVIS_TAG) skips the pipeline entirely;
--skip-tests or $DISABLE_TESTS stops after the two build steps.

Examples:
  crateci run --target x86_64-unknown-linux-gnu --os linux
  crateci run --target x86_64-apple-darwin --skip-tests
  TRAVIS_OS_NAME=linux TARGET=aarch64-unknown-linux-gnu crateci run`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), flags, preflight)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&preflight, "preflight", false,
		"Verify the toolchain (and Docker, for cross) before running")

	return cmd
}

// runRun is the main logic function for the run command.
func runRun(ctx context.Context, flags *configFlags, preflight bool) error {
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger()

	// The deploy path never touches the toolchain, so preflight is only
	// meaningful on the main path.
	if preflight && !cfg.IsDeploy() {
		if err := preflightCheck(ctx, cfg); err != nil {
			return err
		}
		log.Debug().Msg("preflight passed")
	}

	orch := pipeline.New(runner.NewExecRunner(cfg.ProjectDir, cfg.Env), log)
	results, err := orch.Run(ctx, cfg)
	if err != nil {
		return commandFailure(err)
	}

	printRunResult(cfg, results)
	return nil
}

// preflightCheck verifies the selected tool is invocable before any
// pipeline step runs. For cross this includes a Docker daemon ping, since
// cross cannot do anything without it.
func preflightCheck(ctx context.Context, cfg config.Config) error {
	tool := cfg.Tool()
	if check := checkBinary(tool.String()); !check.OK {
		return model.NewCLIError(model.ExitEnvError,
			fmt.Sprintf("build tool %q not found on PATH", tool))
	}

	if tool == model.ToolCross {
		cli, err := docker.NewClient()
		if err != nil {
			return err
		}
		defer func() { _ = cli.Close() }()
		if err := cli.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// commandFailure translates a pipeline failure into a CLIError whose exit
// code propagates the failed command's own exit status. A command that
// never ran (missing binary, signal) maps to the general error code.
func commandFailure(err error) error {
	var cmdErr *model.CommandError
	if errors.As(err, &cmdErr) {
		code := model.ExitCode(cmdErr.Status)
		if cmdErr.Status <= 0 {
			code = model.ExitGeneralError
		}
		return model.WrapCLIError(code,
			fmt.Sprintf("step %s failed", cmdErr.Invocation.Step), err)
	}
	return err
}

// runResultJSON is the JSON shape emitted by "run --json".
type runResultJSON struct {
	Status  string        `json:"status"`
	Deploy  bool          `json:"deploy,omitempty"`
	Tool    string        `json:"tool,omitempty"`
	Target  string        `json:"target,omitempty"`
	Skipped bool          `json:"testsSkipped,omitempty"`
	Steps   []runStepJSON `json:"steps"`
}

// runStepJSON describes one executed step in JSON output.
type runStepJSON struct {
	Step       string `json:"step"`
	Command    string `json:"command"`
	DurationMS int64  `json:"durationMs"`
}

// printRunResult outputs the run result in text or JSON format.
// It is only called for successful runs; failures exit through Execute.
func printRunResult(cfg config.Config, results []model.StepResult) {
	if IsJSONOutput() {
		printRunResultJSON(cfg, results)
		return
	}

	if cfg.IsDeploy() {
		fmt.Printf("Nothing to do: release tag %q set (deploy run)\n", cfg.ReleaseTag)
		return
	}

	suffix := ""
	if cfg.SkipTests {
		suffix = ", tests skipped"
	}
	fmt.Printf("Pipeline passed: %d steps (tool %s, target %s%s)\n",
		len(results), cfg.Tool(), cfg.Target, suffix)
}

// printRunResultJSON outputs the run result as structured JSON.
func printRunResultJSON(cfg config.Config, results []model.StepResult) {
	out := runResultJSON{
		Status: "passed",
		Deploy: cfg.IsDeploy(),
		Steps:  make([]runStepJSON, 0, len(results)),
	}
	if !cfg.IsDeploy() {
		out.Tool = cfg.Tool().String()
		out.Target = cfg.Target
		out.Skipped = cfg.SkipTests
	}
	for _, res := range results {
		out.Steps = append(out.Steps, runStepJSON{
			Step:       res.Invocation.Step.String(),
			Command:    res.Invocation.CommandLine(),
			DurationMS: res.Duration.Milliseconds(),
		})
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}
