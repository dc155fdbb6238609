// plan.go computes the invocation sequence for a run. Plan is a pure
// function of the configuration: no filesystem access, no environment
// reads, no side effects. Everything the CLI prints for `crateci plan`
// and everything the orchestrator executes comes from this one place.
package pipeline

import (
	"github.com/mmr-tortoise/crateci/internal/config"
	"github.com/mmr-tortoise/crateci/internal/model"
)

// Plan resolves the configuration into the ordered invocation sequence.
//
// The sequence is fixed:
//
//	build --target T
//	build --target T --release
//	fmt -- --check          (unless tests are skipped)
//	clippy                  (unless tests are skipped)
//	test --target T         (unless tests are skipped)
//	test --target T --release (unless tests are skipped)
//
// A deploy run (release tag set) produces an empty plan: the tag build
// exists to publish artifacts and must not re-run verification.
func Plan(cfg config.Config) []model.Invocation {
	if cfg.IsDeploy() {
		return nil
	}

	tool := cfg.Tool()

	plan := []model.Invocation{
		{
			Step: model.StepBuildDebug,
			Tool: tool,
			Args: []string{"build", "--target", cfg.Target},
		},
		{
			Step: model.StepBuildRelease,
			Tool: tool,
			Args: []string{"build", "--target", cfg.Target, "--release"},
		},
	}

	if cfg.SkipTests {
		return plan
	}

	return append(plan,
		model.Invocation{
			Step: model.StepFmtCheck,
			Tool: tool,
			// The `--` separates cargo's own flags from rustfmt's; --check
			// makes rustfmt report violations instead of rewriting files.
			Args: []string{"fmt", "--", "--check"},
		},
		model.Invocation{
			Step: model.StepClippy,
			Tool: tool,
			Args: []string{"clippy"},
		},
		model.Invocation{
			Step: model.StepTestDebug,
			Tool: tool,
			Args: []string{"test", "--target", cfg.Target},
		},
		model.Invocation{
			Step: model.StepTestRelease,
			Tool: tool,
			Args: []string{"test", "--target", cfg.Target, "--release"},
		},
	)
}
