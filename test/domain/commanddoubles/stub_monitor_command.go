//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// StubMonitorCommand is a stub implementation of commands.Monitor.
type StubMonitorCommand struct {
	Report           *commands.MonitorReport
	ExecuteErr       error
	ExecuteCallCount int
	LastSettings     *entities.Settings
	LastOpts         commands.MonitorOptions
}

var _ commands.Monitor = (*StubMonitorCommand)(nil)

func (s *StubMonitorCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.MonitorOptions,
) (*commands.MonitorReport, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	if s.Report != nil {
		return s.Report, nil
	}
	return &commands.MonitorReport{DryRun: opts.DryRun}, nil
}
