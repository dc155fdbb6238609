// plan.go implements the "crateci plan" command, which prints the
// invocation sequence the current configuration would execute, without
// running anything. Useful for debugging CI job definitions and for
// eyeballing what a matrix entry will actually do.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/crateci/internal/model"
	"github.com/mmr-tortoise/crateci/internal/pipeline"
)

// NewPlanCommand creates the "plan" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewPlanCommand() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the invocation sequence without executing it",
		Long: `Resolve the configuration and print the external commands the run
command would execute, in order. Nothing is executed.

Examples:
  crateci plan --target x86_64-unknown-linux-gnu --os linux
  crateci plan --target x86_64-apple-darwin --skip-tests --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(flags)
		},
	}

	flags.register(cmd)

	return cmd
}

// runPlan is the main logic function for the plan command.
func runPlan(flags *configFlags) error {
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	plan := pipeline.Plan(cfg)

	if IsJSONOutput() {
		return printPlanJSON(plan)
	}

	if len(plan) == 0 {
		fmt.Printf("No invocations: release tag %q set (deploy run)\n", cfg.ReleaseTag)
		return nil
	}

	for _, line := range formatPlanLines(plan) {
		fmt.Println(line)
	}
	return nil
}

// planStepJSON describes one planned invocation in JSON output.
type planStepJSON struct {
	Step    string   `json:"step"`
	Tool    string   `json:"tool"`
	Args    []string `json:"args"`
	Command string   `json:"command"`
}

// printPlanJSON emits the plan as a JSON array. An empty plan (deploy
// path) prints as [] rather than null so consumers always get an array.
func printPlanJSON(plan []model.Invocation) error {
	steps := make([]planStepJSON, 0, len(plan))
	for _, inv := range plan {
		steps = append(steps, planStepJSON{
			Step:    inv.Step.String(),
			Tool:    inv.Tool.String(),
			Args:    inv.Args,
			Command: inv.CommandLine(),
		})
	}

	data, err := json.MarshalIndent(steps, "", "  ")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to encode plan", err)
	}
	fmt.Println(string(data))
	return nil
}

// formatPlanLines renders a plan as numbered command lines for text output.
func formatPlanLines(plan []model.Invocation) []string {
	lines := make([]string, len(plan))
	for i, inv := range plan {
		lines[i] = fmt.Sprintf("%d. [%s] %s", i+1, inv.Step, inv.CommandLine())
	}
	return lines
}
