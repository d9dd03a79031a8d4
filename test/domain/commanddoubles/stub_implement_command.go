//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// StubImplementCommand is a stub implementation of commands.Implement.
type StubImplementCommand struct {
	Execution        *entities.PipelineExecution
	ExecuteErr       error
	ExecuteCallCount int
	LastOpts         commands.ImplementOptions
}

var _ commands.Implement = (*StubImplementCommand)(nil)

func (s *StubImplementCommand) Execute(
	_ context.Context,
	_ *entities.Settings,
	opts commands.ImplementOptions,
) (*entities.PipelineExecution, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Execution, s.ExecuteErr
}
