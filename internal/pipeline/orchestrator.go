// orchestrator.go executes a plan: strictly sequential, fail-fast, no
// retries. Each command line is logged before it runs (the structured
// equivalent of a shell script's `set -x`), and the first non-zero exit
// status ends the run with the failure surfaced as-is — the orchestrator
// never interprets why a command failed.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/crateci/internal/config"
	"github.com/mmr-tortoise/crateci/internal/model"
	"github.com/mmr-tortoise/crateci/internal/runner"
)

// Orchestrator drives a pipeline run. It owns no state beyond its
// collaborators; all per-run state lives in local variables of Run.
type Orchestrator struct {
	runner runner.Runner
	log    zerolog.Logger
}

// New creates an Orchestrator that executes invocations with r and logs
// progress to log.
func New(r runner.Runner, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{runner: r, log: log}
}

// Run executes the plan for cfg, in order, stopping at the first failure.
//
// The returned slice holds a result for every step that was started — on
// failure it ends with the failing step, and the steps after it never ran.
// The error is nil only when every planned step succeeded (which includes
// the deploy and skip-tests paths, where the untaken steps simply do not
// exist in the plan).
func (o *Orchestrator) Run(ctx context.Context, cfg config.Config) ([]model.StepResult, error) {
	plan := Plan(cfg)

	if len(plan) == 0 {
		o.log.Info().Str("tag", cfg.ReleaseTag).
			Msg("release tag set, skipping verification pipeline")
		return nil, nil
	}

	o.log.Debug().
		Str("tool", cfg.Tool().String()).
		Str("target", cfg.Target).
		Int("steps", len(plan)).
		Msg("pipeline resolved")

	results := make([]model.StepResult, 0, len(plan))
	for _, inv := range plan {
		o.log.Info().Str("step", inv.Step.String()).Msg("+ " + inv.CommandLine())

		start := time.Now()
		err := o.runner.Run(ctx, inv)
		res := model.StepResult{
			Invocation: inv,
			Duration:   time.Since(start),
			Err:        err,
		}
		results = append(results, res)

		if err != nil {
			o.log.Error().
				Str("step", inv.Step.String()).
				Dur("elapsed", res.Duration).
				Err(err).
				Msg("step failed, aborting pipeline")
			return results, err
		}

		o.log.Debug().
			Str("step", inv.Step.String()).
			Dur("elapsed", res.Duration).
			Msg("step completed")
	}

	o.log.Info().Int("steps", len(results)).Msg("pipeline passed")
	return results, nil
}
