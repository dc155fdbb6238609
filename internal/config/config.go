// config.go defines the Config struct and its resolution from the process
// environment. The environment variable surface mirrors the Travis CI
// convention the tool grew up in: TRAVIS_OS_NAME drives tool selection,
// TARGET names the triple, and DISABLE_TESTS / TRAVIS_TAG are presence
// flags (any non-empty value activates them).
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mmr-tortoise/crateci/internal/model"
)

// Environment variable names read by FromEnv. These match the variables a
// Travis-style CI runner exports, so a crateci binary can be dropped into
// an existing job definition without rewiring the configuration.
const (
	// EnvOSName selects the build tool: "linux" picks cross, anything
	// else picks cargo.
	EnvOSName = "TRAVIS_OS_NAME"

	// EnvTarget is the compilation target triple, passed through opaquely
	// to every build and test invocation.
	EnvTarget = "TARGET"

	// EnvDisableTests skips all post-build verification steps when set to
	// any non-empty value.
	EnvDisableTests = "DISABLE_TESTS"

	// EnvReleaseTag marks the run as a release deploy when set to any
	// non-empty value. Deploy runs perform no work at all.
	EnvReleaseTag = "TRAVIS_TAG"
)

// Config is the fully resolved configuration for a single run.
// It is read once at startup and never mutated afterwards.
type Config struct {
	// OSName is the operating system identifier driving tool selection.
	OSName string

	// Target is the compilation target triple (e.g., "x86_64-unknown-linux-gnu").
	// Required on the main path; unused on the deploy path.
	Target string

	// SkipTests stops the pipeline after the two build steps.
	SkipTests bool

	// ReleaseTag is non-empty when the run was triggered by a tag push.
	// A non-empty value short-circuits the entire pipeline (deploy path).
	ReleaseTag string

	// ProjectDir is the directory the crate lives in. All invocations run
	// with this as their working directory. Defaults to ".".
	ProjectDir string

	// ToolOverride forces a specific build tool regardless of OSName.
	// Empty means derive the tool from OSName.
	ToolOverride model.Tool

	// Env holds extra environment variables appended to every invocation,
	// typically sourced from the project config file.
	Env map[string]string
}

// FromEnv builds a Config from the process environment.
//
// DISABLE_TESTS and TRAVIS_TAG are presence flags: their value is never
// interpreted, only checked for non-emptiness. This matches the shell
// convention `[ -n "$VAR" ]` used by the CI scripts this tool replaces.
func FromEnv() Config {
	return Config{
		OSName:     os.Getenv(EnvOSName),
		Target:     os.Getenv(EnvTarget),
		SkipTests:  os.Getenv(EnvDisableTests) != "",
		ReleaseTag: os.Getenv(EnvReleaseTag),
		ProjectDir: ".",
	}
}

// Tool returns the build tool for this configuration: the explicit override
// when one is set, otherwise the pure OS-based selection.
func (c Config) Tool() model.Tool {
	if c.ToolOverride != "" {
		return c.ToolOverride
	}
	return model.ToolForOS(c.OSName)
}

// IsDeploy reports whether this run was triggered by a release tag push.
// Deploy runs skip the entire pipeline: the tag build exists to produce
// artifacts, and re-running the verification matrix there would only
// duplicate the work already done on the branch build.
func (c Config) IsDeploy() bool {
	return c.ReleaseTag != ""
}

// Validate checks that the configuration can drive a run.
//
// The deploy path is valid unconditionally — it performs no invocations, so
// a missing target cannot hurt it. On the main path an empty target is a
// configuration error: every build and test invocation passes --target.
func (c Config) Validate() error {
	if c.IsDeploy() {
		return nil
	}
	if c.Target == "" {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("no target triple configured: set %s or pass --target", EnvTarget))
	}
	return nil
}

// LoadEnvFile loads environment variables from a dotenv file before the
// environment is read. Variables already present in the environment are
// NOT overwritten — godotenv.Load only fills in missing keys, so the real
// CI environment always wins over a checked-in .env file.
//
// When explicit is false (the default ".env" lookup), a missing file is
// not an error. When the user named a file with --env-file, a missing file
// is a configuration error.
func LoadEnvFile(path string, explicit bool) error {
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to load env file %q", path), err)
	}
	return nil
}
