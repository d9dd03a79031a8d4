package steps

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// RollbackRepository runs the configured rollback command, then removes the
// upgrade branch from the workspace.
type RollbackRepository struct {
	commands *CommandStepRepository
	git      *GitStepRepository
}

// NewRollbackRepository combines the command and git handlers.
func NewRollbackRepository(commands *CommandStepRepository, git *GitStepRepository) *RollbackRepository {
	return &RollbackRepository{commands: commands, git: git}
}

func (it *RollbackRepository) Rollback(ctx context.Context, sc entities.StepContext) ([]string, error) {
	var taken []string

	if it.commands != nil && it.commands.HasRollback() {
		sc.StepType = RollbackCommand
		if err := it.commands.RunRollback(ctx, sc); err != nil {
			return taken, fmt.Errorf("rollback command: %w", err)
		}
		taken = append(taken, "rollback_command")
	}

	if it.git != nil && sc.Porte.Workspace != "" {
		if err := it.git.DeleteBranch(ctx, sc); err != nil {
			return taken, fmt.Errorf("delete branch: %w", err)
		}
		taken = append(taken, "delete_branch")
	}

	logger.Infof("[rollback] %s: %v", sc.Porte.ComponentName, taken)
	return taken, nil
}
