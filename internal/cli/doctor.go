// doctor.go implements the "crateci doctor" command: environment checks
// for the toolchain a run would use. It looks up the build tool binaries
// on PATH and, when the cross tool is selected, verifies the Docker
// daemon answers, since cross executes every build inside a container.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/crateci/internal/docker"
	"github.com/mmr-tortoise/crateci/internal/model"
)

// doctorCheck is the outcome of a single environment check.
type doctorCheck struct {
	// Name identifies the check (binary name or "docker").
	Name string `json:"name"`

	// OK reports whether the check passed.
	OK bool `json:"ok"`

	// Detail carries the resolved binary path on success or the failure
	// reason otherwise.
	Detail string `json:"detail,omitempty"`
}

// NewDoctorCommand creates the "doctor" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDoctorCommand() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the build environment is usable",
		Long: `Check the environment a run would use: the selected build tool must be
on PATH, and when the cross tool is selected the Docker daemon must be
reachable. Exits non-zero when any check fails.

Examples:
  crateci doctor
  crateci doctor --os linux --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), flags)
		},
	}

	flags.register(cmd)

	return cmd
}

// runDoctor is the main logic function for the doctor command.
// Unlike run and plan it skips Config.Validate: a missing target triple
// does not prevent checking whether the toolchain exists.
func runDoctor(ctx context.Context, flags *configFlags) error {
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}

	tool := cfg.Tool()

	// cargo is always needed: cross is a wrapper that shells back out to
	// the cargo-managed toolchain for fmt and clippy.
	checks := []doctorCheck{checkBinary(model.ToolCargo.String())}
	if tool == model.ToolCross {
		checks = append(checks,
			checkBinary(model.ToolCross.String()),
			checkDocker(ctx),
		)
	}

	printDoctorReport(tool, checks)

	for _, c := range checks {
		if !c.OK {
			return model.NewCLIError(model.ExitEnvError, "build environment is not ready")
		}
	}
	return nil
}

// checkBinary looks up a binary on PATH.
func checkBinary(name string) doctorCheck {
	path, err := exec.LookPath(name)
	if err != nil {
		return doctorCheck{Name: name, OK: false, Detail: fmt.Sprintf("not found on PATH: %v", err)}
	}
	return doctorCheck{Name: name, OK: true, Detail: path}
}

// checkDocker verifies the Docker daemon is reachable and responsive.
func checkDocker(ctx context.Context) doctorCheck {
	cli, err := docker.NewClient()
	if err != nil {
		return doctorCheck{Name: "docker", OK: false, Detail: err.Error()}
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return doctorCheck{Name: "docker", OK: false, Detail: err.Error()}
	}
	return doctorCheck{Name: "docker", OK: true, Detail: "daemon responding"}
}

// printDoctorReport outputs the check results in text or JSON format.
func printDoctorReport(tool model.Tool, checks []doctorCheck) {
	if IsJSONOutput() {
		ready := true
		for _, c := range checks {
			if !c.OK {
				ready = false
			}
		}
		out := map[string]interface{}{
			"tool":   tool.String(),
			"ready":  ready,
			"checks": checks,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Selected tool: %s\n", tool)
	for _, c := range checks {
		status := "ok  "
		if !c.OK {
			status = "FAIL"
		}
		fmt.Printf("  %s %-6s %s\n", status, c.Name, c.Detail)
	}
}
