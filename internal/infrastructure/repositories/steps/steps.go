package steps

import (
	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// Build returns every step handler and the rollback handler for the given
// pipeline settings.
func Build(
	settings entities.PipelineSettings,
	pullRequests repositories.PullRequestRepository,
) ([]repositories.StepRepository, repositories.RollbackRepository, error) {
	commands, err := NewCommandStepRepository(settings)
	if err != nil {
		return nil, nil, err
	}
	git := NewGitStepRepository()

	handlers := []repositories.StepRepository{
		NewValidateStepRepository(),
		git,
		NewChangelogStepRepository(),
		commands,
	}
	if pullRequests != nil {
		handlers = append(handlers, NewPullRequestStepRepository(pullRequests))
	}
	return handlers, NewRollbackRepository(commands, git), nil
}
