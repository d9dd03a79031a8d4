//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// StubApproveCommand is a stub implementation of commands.Approve.
type StubApproveCommand struct {
	Evaluation       *entities.VersionEvaluation
	ExecuteErr       error
	ExecuteCallCount int
	LastEvaluationID string
}

var _ commands.Approve = (*StubApproveCommand)(nil)

func (s *StubApproveCommand) Execute(
	_ context.Context,
	_ *entities.Settings,
	evaluationID string,
) (*entities.VersionEvaluation, error) {
	s.ExecuteCallCount++
	s.LastEvaluationID = evaluationID
	return s.Evaluation, s.ExecuteErr
}
