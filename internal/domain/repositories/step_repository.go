package repositories

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// StepRepository executes one or more pipeline step types. Implementations
// must not mutate anything when StepContext.DryRun is set.
type StepRepository interface {
	// StepTypes returns the step types this handler executes.
	StepTypes() []string

	Execute(ctx context.Context, sc entities.StepContext) (entities.StepOutput, error)
}

// RollbackRepository undoes the effects of a failed pipeline.
type RollbackRepository interface {
	Rollback(ctx context.Context, sc entities.StepContext) ([]string, error)
}
