package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// Approve is the interface for the approve command.
type Approve interface {
	Execute(ctx context.Context, settings *entities.Settings, evaluationID string) (*entities.VersionEvaluation, error)
}

// ApproveCommand records the human acknowledgment a decision requires before
// it can be implemented.
type ApproveCommand struct {
	environments repositories.EnvironmentRepository
}

// NewApproveCommand creates a new ApproveCommand.
func NewApproveCommand(environments repositories.EnvironmentRepository) *ApproveCommand {
	return &ApproveCommand{environments: environments}
}

func (it *ApproveCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	evaluationID string,
) (*entities.VersionEvaluation, error) {
	env, err := it.environments.Open(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer closeEnvironment(env)

	ev, err := env.Store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation %s: %w", evaluationID, err)
	}
	if err = ev.Approve(); err != nil {
		return nil, err
	}
	if err = env.Store.UpdateEvaluationStatus(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to approve evaluation %s: %w", evaluationID, err)
	}
	if err = env.Store.CloseTasks(ctx, ev.ID, entities.TaskStatusDone); err != nil {
		logger.Warnf("[%s] Failed to close tasks of %s: %v", ev.ComponentName, ev.ID, err)
	}

	logger.Infof("[%s] Approved %s (%s)", ev.ComponentName, ev.UpstreamVersion, ev.Decision)
	return ev, nil
}
