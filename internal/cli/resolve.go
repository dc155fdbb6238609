// resolve.go implements the shared configuration resolution used by the
// run, plan, and doctor commands. The layers, from weakest to strongest:
//
//	project file (.crateci.json / .crateci.yml)
//	process environment (after the optional dotenv load)
//	command-line flags
//
// The environment is read first and the file only fills gaps; flags are
// applied last and win unconditionally.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/crateci/internal/config"
	"github.com/mmr-tortoise/crateci/internal/model"
)

// configFlags holds the per-command flag values that feed configuration
// resolution. Each subcommand registers its own copy so that flag state
// never leaks between commands in tests.
type configFlags struct {
	osName     string
	target     string
	skipTests  bool
	releaseTag string
	projectDir string
	tool       string
}

// register binds the configuration flags to cmd.
func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.osName, "os", "",
		"Operating system name; \"linux\" selects cross (default: $"+config.EnvOSName+")")
	cmd.Flags().StringVar(&f.target, "target", "",
		"Compilation target triple (default: $"+config.EnvTarget+")")
	cmd.Flags().BoolVar(&f.skipTests, "skip-tests", false,
		"Stop after the build steps (also: $"+config.EnvDisableTests+")")
	cmd.Flags().StringVar(&f.releaseTag, "release-tag", "",
		"Release tag marking a deploy run (also: $"+config.EnvReleaseTag+")")
	cmd.Flags().StringVar(&f.projectDir, "project-dir", "",
		"Crate directory (default: current directory)")
	cmd.Flags().StringVar(&f.tool, "tool", "",
		"Force the build tool: cargo or cross")
}

// resolveConfig builds the run configuration from all layers.
// It does not validate the result; the caller decides whether an
// incomplete configuration matters (doctor tolerates a missing target,
// run and plan do not).
func resolveConfig(flags *configFlags) (config.Config, error) {
	// Layer 0: dotenv. An explicit --env-file must exist; the implicit
	// .env lookup is best-effort.
	path := envFile
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := config.LoadEnvFile(path, explicit); err != nil {
		return config.Config{}, err
	}

	// Layer 1: environment.
	cfg := config.FromEnv()
	if flags.projectDir != "" {
		cfg.ProjectDir = flags.projectDir
	}

	// Layer 2: project file, filling only what the environment left unset.
	fileCfg, err := config.LoadFile(cfg.ProjectDir)
	if err != nil {
		return config.Config{}, err
	}
	if fileCfg != nil {
		fileCfg.ApplyTo(&cfg)
	}

	// Layer 3: flags override everything.
	if flags.osName != "" {
		cfg.OSName = flags.osName
	}
	if flags.target != "" {
		cfg.Target = flags.target
	}
	if flags.skipTests {
		cfg.SkipTests = true
	}
	if flags.releaseTag != "" {
		cfg.ReleaseTag = flags.releaseTag
	}
	if flags.tool != "" {
		tool, err := model.ParseTool(flags.tool)
		if err != nil {
			return config.Config{}, model.WrapCLIError(model.ExitConfigError, "invalid --tool value", err)
		}
		cfg.ToolOverride = tool
	}

	return cfg, nil
}
