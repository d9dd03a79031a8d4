package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/pipeline"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// Implement is the interface for the implement command.
type Implement interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ImplementOptions) (*entities.PipelineExecution, error)
}

// ImplementOptions selects the evaluation to implement.
type ImplementOptions struct {
	EvaluationID string
	DryRun       bool
}

// ImplementCommand runs the implementation pipeline for one evaluation.
type ImplementCommand struct {
	environments repositories.EnvironmentRepository
	metrics      repositories.MetricsRepository
}

// NewImplementCommand creates a new ImplementCommand.
func NewImplementCommand(
	environments repositories.EnvironmentRepository,
	metrics repositories.MetricsRepository,
) *ImplementCommand {
	return &ImplementCommand{environments: environments, metrics: metrics}
}

// Execute loads the evaluation, resolves the porte it belongs to and runs the
// pipeline. The returned execution is non-nil whenever the pipeline started.
func (it *ImplementCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ImplementOptions,
) (*entities.PipelineExecution, error) {
	if opts.EvaluationID == "" {
		return nil, &entities.ConfigurationError{Err: fmt.Errorf("an evaluation id is required")}
	}

	env, err := it.environments.Open(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer closeEnvironment(env)

	ev, err := env.Store.GetEvaluation(ctx, opts.EvaluationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation %s: %w", opts.EvaluationID, err)
	}
	porte, found := settings.Porte(ev.ComponentName)
	if !found {
		return nil, &entities.ConfigurationError{Err: fmt.Errorf("component %q is not configured", ev.ComponentName)}
	}

	logger.Infof("[%s] Implementing %s -> %s (decision %s)", ev.ComponentName, ev.CurrentVersion, ev.UpstreamVersion, ev.Decision)
	runner := pipeline.NewImplementationPipeline(env, it.metrics, settings.Pipeline)
	execution, err := runner.Run(ctx, pipeline.Request{EvaluationID: ev.ID, Porte: porte, DryRun: opts.DryRun})
	if execution != nil {
		logger.Infof("[%s] Pipeline %s finished as %s", ev.ComponentName, execution.ID, execution.Status)
	}
	return execution, err
}
