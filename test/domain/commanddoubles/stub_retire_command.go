//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// StubRetireCommand is a stub implementation of commands.Retire.
type StubRetireCommand struct {
	ExecuteErr       error
	ExecuteCallCount int
	LastComponent    string
}

var _ commands.Retire = (*StubRetireCommand)(nil)

func (s *StubRetireCommand) Execute(_ context.Context, _ *entities.Settings, componentName string) error {
	s.ExecuteCallCount++
	s.LastComponent = componentName
	return s.ExecuteErr
}
