// types.go defines the core domain types: tool selection, pipeline steps,
// the Invocation value object, and the error types carrying exit codes.
//
// The entities here are deliberately small: the orchestrator's whole job is
// resolving a configuration into a fixed sequence of external command
// invocations and propagating the first failure. Nothing in this file is
// persisted — an Invocation exists only for the lifetime of a single run.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Tool identifies the build tool used for every invocation in a run.
//
// CI jobs targeting Linux use cross, which wraps cargo and executes builds
// inside Docker containers so that foreign target triples can be compiled
// and tested on a stock CI host. All other jobs use cargo directly.
type Tool string

const (
	// ToolCargo is the native Rust build tool. Selected for every operating
	// system except the Linux cross-compilation environment.
	ToolCargo Tool = "cargo"

	// ToolCross is the Docker-backed cross-compilation wrapper around cargo.
	// It accepts the same subcommands and flags as cargo.
	ToolCross Tool = "cross"
)

// String returns the tool's binary name. This satisfies fmt.Stringer and is
// the exact argv[0] used when the tool is invoked.
func (t Tool) String() string {
	return string(t)
}

// IsValid checks whether the Tool value is one of the known build tools.
func (t Tool) IsValid() bool {
	return t == ToolCargo || t == ToolCross
}

// ParseTool converts a string to a Tool.
// Returns an error if the string does not name a known build tool.
func ParseTool(s string) (Tool, error) {
	tool := Tool(strings.ToLower(s))
	if !tool.IsValid() {
		return "", fmt.Errorf("invalid build tool: %q (valid: cargo, cross)", s)
	}
	return tool, nil
}

// ToolForOS selects the build tool for the given operating system name.
//
// This is a pure two-way choice: the Linux CI environment gets the
// Docker-backed cross tool, everything else (macOS, Windows, unknown values)
// gets native cargo. The osName value comes from the CI environment
// (TRAVIS_OS_NAME) and is compared verbatim.
func ToolForOS(osName string) Tool {
	if osName == "linux" {
		return ToolCross
	}
	return ToolCargo
}

// Step identifies one stage of the verification pipeline.
//
// The pipeline is a fixed linear sequence; Step values exist so that results
// and failures can name the stage they belong to, not to enable reordering.
type Step string

const (
	// StepBuildDebug compiles the crate in the debug profile.
	StepBuildDebug Step = "build-debug"

	// StepBuildRelease compiles the crate in the release profile.
	StepBuildRelease Step = "build-release"

	// StepFmtCheck verifies formatting without modifying any files.
	StepFmtCheck Step = "fmt-check"

	// StepClippy runs the clippy static-analysis lint pass.
	StepClippy Step = "clippy"

	// StepTestDebug runs the test suite against the debug build.
	StepTestDebug Step = "test-debug"

	// StepTestRelease runs the test suite against the release build.
	StepTestRelease Step = "test-release"
)

// String returns the string representation of the Step.
func (s Step) String() string {
	return string(s)
}

// IsValid checks whether the Step value is one of the predefined
// pipeline stages.
func (s Step) IsValid() bool {
	switch s {
	case StepBuildDebug, StepBuildRelease, StepFmtCheck, StepClippy,
		StepTestDebug, StepTestRelease:
		return true
	default:
		return false
	}
}

// Invocation describes a single external command execution: which pipeline
// step it implements, the tool binary to run, and its argument list.
//
// Invocations are value objects — they carry no process state. The runner
// package executes them; the pipeline package produces them.
type Invocation struct {
	// Step is the pipeline stage this command implements.
	Step Step `json:"step"`

	// Tool is the binary to execute (argv[0]).
	Tool Tool `json:"tool"`

	// Args is the argument list passed to the tool, excluding argv[0].
	Args []string `json:"args"`
}

// CommandLine returns the full command as a single space-joined string,
// suitable for logging and display. Arguments are not shell-quoted; target
// triples and subcommand flags never contain whitespace.
func (i Invocation) CommandLine() string {
	return strings.Join(append([]string{string(i.Tool)}, i.Args...), " ")
}

// StepResult records the outcome of one executed pipeline step.
// A failed run contains results up to and including the failing step;
// later steps never execute and therefore have no result.
type StepResult struct {
	// Invocation is the command that was executed.
	Invocation Invocation `json:"invocation"`

	// Duration is the wall-clock time the command took.
	Duration time.Duration `json:"duration"`

	// Err is non-nil if the command exited with a non-zero status.
	Err error `json:"-"`
}

// CommandError is the single failure kind produced by the pipeline. The
// orchestrator does not distinguish build failures from lint or test
// failures — any non-zero exit status is fatal and surfaced identically.
type CommandError struct {
	// Invocation is the command that failed.
	Invocation Invocation

	// Status is the command's exit status. -1 when the command could not
	// be started or was terminated by a signal.
	Status int

	// Err is the underlying error from the process runner.
	Err error
}

// Error satisfies the error interface.
func (e *CommandError) Error() string {
	if e.Status >= 0 {
		return fmt.Sprintf("command %q failed with exit status %d", e.Invocation.CommandLine(), e.Status)
	}
	return fmt.Sprintf("command %q failed: %v", e.Invocation.CommandLine(), e.Err)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode defines the CLI process exit codes. These allow CI systems and
// scripts to determine the outcome of a crateci run programmatically.
//
// A failing pipeline command propagates its own exit status as the process
// exit code, so the codes below only cover crateci's own failure modes.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the resolved configuration is invalid
	// (e.g., no target triple on the main path, malformed project file).
	ExitConfigError ExitCode = 2

	// ExitEnvError indicates the execution environment is not usable:
	// the selected build tool is not installed, or the Docker daemon
	// required by cross is not reachable.
	ExitEnvError ExitCode = 3
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
