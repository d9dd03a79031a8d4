//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// StubStepRepository executes the step types it is configured with.
// Steps without a canned output succeed with an empty result.
type StubStepRepository struct {
	mu sync.Mutex

	Types   []string
	Outputs map[string]entities.StepOutput
	Errors  map[string]error
	// FailTimes makes a step fail that many times before succeeding.
	FailTimes map[string]int
	// Hooks run before the step type returns, e.g. to change the store mid-pipeline.
	Hooks map[string]func()

	// spy
	Calls        []string
	DryRunCalls  int
	LastContexts map[string]entities.StepContext
}

var _ repositories.StepRepository = (*StubStepRepository)(nil)

func (s *StubStepRepository) StepTypes() []string { return s.Types }

func (s *StubStepRepository) Execute(_ context.Context, sc entities.StepContext) (entities.StepOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, sc.StepType)
	if sc.DryRun {
		s.DryRunCalls++
	}
	if s.LastContexts == nil {
		s.LastContexts = map[string]entities.StepContext{}
	}
	s.LastContexts[sc.StepType] = sc
	if hook := s.Hooks[sc.StepType]; hook != nil {
		hook()
	}

	if remaining, retried := s.FailTimes[sc.StepType]; retried {
		if remaining > 0 {
			s.FailTimes[sc.StepType] = remaining - 1
			return entities.StepOutput{}, s.Errors[sc.StepType]
		}
	} else if err := s.Errors[sc.StepType]; err != nil {
		return entities.StepOutput{}, err
	}
	if out, ok := s.Outputs[sc.StepType]; ok {
		return out, nil
	}
	return entities.StepOutput{Result: map[string]any{"ok": true}}, nil
}

// CallCount returns how many times the step type ran.
func (s *StubStepRepository) CallCount(stepType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c == stepType {
			n++
		}
	}
	return n
}

// StubRollbackRepository records rollback attempts.
type StubRollbackRepository struct {
	Steps       []string
	RollbackErr error
	Calls       int
}

var _ repositories.RollbackRepository = (*StubRollbackRepository)(nil)

func (s *StubRollbackRepository) Rollback(_ context.Context, _ entities.StepContext) ([]string, error) {
	s.Calls++
	return s.Steps, s.RollbackErr
}
