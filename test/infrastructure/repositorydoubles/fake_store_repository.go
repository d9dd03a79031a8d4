//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// FakeStoreRepository is an in-memory repositories.StoreRepository with the
// same guards as the database store (one ACTIVE porte per component, one-shot
// decisions, CAS on the ported version, write-once terminal pipeline status).
type FakeStoreRepository struct {
	mu sync.Mutex

	Portes      []entities.PorteVersion
	Evaluations map[string]entities.VersionEvaluation
	Executions  map[string]entities.PipelineExecution
	Tasks       []entities.ImplementationTask

	// error injection
	CreateEvaluationErr error
	SaveDecisionErr     error

	// spy
	Writes int
}

var _ repositories.StoreRepository = (*FakeStoreRepository)(nil)

// NewFakeStoreRepository creates an empty store.
func NewFakeStoreRepository() *FakeStoreRepository {
	return &FakeStoreRepository{
		Evaluations: map[string]entities.VersionEvaluation{},
		Executions:  map[string]entities.PipelineExecution{},
	}
}

// --- PorteVersionRepository ---

func (s *FakeStoreRepository) RegisterPorte(_ context.Context, porte *entities.PorteVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeIndex(porte.ComponentName) >= 0 {
		return fmt.Errorf("component %q already has an ACTIVE porte", porte.ComponentName)
	}
	s.Writes++
	s.Portes = append(s.Portes, *porte)
	return nil
}

func (s *FakeStoreRepository) GetActivePorte(_ context.Context, componentName string) (*entities.PorteVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.activeIndex(componentName)
	if i < 0 {
		return nil, entities.ErrNotFound
	}
	porte := s.Portes[i]
	return &porte, nil
}

func (s *FakeStoreRepository) GetCurrentVersion(_ context.Context, componentName string) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.activeIndex(componentName)
	if i < 0 {
		return nil, nil //nolint:nilnil // unknown component has no version
	}
	version := s.Portes[i].PortedVersion
	return &version, nil
}

func (s *FakeStoreRepository) UpdatePortedVersion(
	_ context.Context,
	componentName, expected, next, upstreamVersion string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.activeIndex(componentName)
	if i < 0 || s.Portes[i].PortedVersion != expected {
		return entities.ErrVersionConflict
	}
	s.Writes++
	s.Portes[i].PortedVersion = next
	s.Portes[i].UpstreamVersion = upstreamVersion
	s.Portes[i].PortDate = time.Now().UTC()
	return nil
}

func (s *FakeStoreRepository) RetirePorte(_ context.Context, componentName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.activeIndex(componentName)
	if i < 0 {
		return entities.ErrNotFound
	}
	s.Writes++
	s.Portes[i].Status = entities.PorteStatusRetired
	return nil
}

func (s *FakeStoreRepository) activeIndex(componentName string) int {
	for i, p := range s.Portes {
		if p.ComponentName == componentName && p.IsActive() {
			return i
		}
	}
	return -1
}

// --- EvaluationRepository ---

func (s *FakeStoreRepository) CreateEvaluation(_ context.Context, evaluation *entities.VersionEvaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateEvaluationErr != nil {
		return s.CreateEvaluationErr
	}
	s.Writes++
	s.Evaluations[evaluation.ID] = *evaluation
	return nil
}

func (s *FakeStoreRepository) GetEvaluation(_ context.Context, id string) (*entities.VersionEvaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evaluation, ok := s.Evaluations[id]
	if !ok {
		return nil, entities.ErrNotFound
	}
	out := evaluation
	return &out, nil
}

func (s *FakeStoreRepository) FindEvaluation(
	_ context.Context,
	porteVersionID, upstreamVersion string,
) (*entities.VersionEvaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.Evaluations {
		if e.PorteVersionID == porteVersionID && e.UpstreamVersion == upstreamVersion {
			out := e
			return &out, nil
		}
	}
	return nil, entities.ErrNotFound
}

func (s *FakeStoreRepository) SaveDecision(_ context.Context, evaluation *entities.VersionEvaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveDecisionErr != nil {
		return s.SaveDecisionErr
	}
	stored, ok := s.Evaluations[evaluation.ID]
	if !ok {
		return entities.ErrNotFound
	}
	if stored.Decision != entities.DecisionPending {
		return entities.ErrDecisionAlreadyMade
	}
	s.Writes++
	s.Evaluations[evaluation.ID] = *evaluation
	return nil
}

func (s *FakeStoreRepository) UpdateEvaluationStatus(_ context.Context, evaluation *entities.VersionEvaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.Evaluations[evaluation.ID]
	if !ok {
		return entities.ErrNotFound
	}
	s.Writes++
	stored.Status = evaluation.Status
	stored.ErrorMessage = evaluation.ErrorMessage
	stored.UpdatedAt = evaluation.UpdatedAt
	s.Evaluations[evaluation.ID] = stored
	return nil
}

func (s *FakeStoreRepository) MarkEvaluationAsImplemented(_ context.Context, evaluationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.Evaluations[evaluationID]
	if !ok {
		return entities.ErrNotFound
	}
	s.Writes++
	stored.Implemented = true
	stored.Status = entities.EvaluationStatusImplemented
	s.Evaluations[evaluationID] = stored
	return nil
}

// --- PipelineExecutionRepository ---

func (s *FakeStoreRepository) CreateExecution(_ context.Context, execution *entities.PipelineExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes++
	s.Executions[execution.ID] = copyExecution(*execution)
	return nil
}

func (s *FakeStoreRepository) SaveStages(_ context.Context, execution *entities.PipelineExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.Executions[execution.ID]
	if !ok {
		return entities.ErrNotFound
	}
	if stored.Status.IsTerminal() {
		return entities.ErrExecutionFinished
	}
	s.Writes++
	stored.Stages = append([]entities.StageResult(nil), execution.Stages...)
	s.Executions[execution.ID] = stored
	return nil
}

func (s *FakeStoreRepository) FinishExecution(_ context.Context, execution *entities.PipelineExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.Executions[execution.ID]
	if !ok {
		return entities.ErrNotFound
	}
	if stored.Status.IsTerminal() {
		return entities.ErrExecutionFinished
	}
	s.Writes++
	s.Executions[execution.ID] = copyExecution(*execution)
	return nil
}

func (s *FakeStoreRepository) GetExecution(_ context.Context, id string) (*entities.PipelineExecution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	execution, ok := s.Executions[id]
	if !ok {
		return nil, entities.ErrNotFound
	}
	out := copyExecution(execution)
	return &out, nil
}

// --- TaskRepository ---

func (s *FakeStoreRepository) EnqueueTask(_ context.Context, task *entities.ImplementationTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes++
	s.Tasks = append(s.Tasks, *task)
	return nil
}

func (s *FakeStoreRepository) ListTasks(_ context.Context, evaluationID string) ([]entities.ImplementationTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.ImplementationTask
	for _, t := range s.Tasks {
		if t.EvaluationID == evaluationID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (s *FakeStoreRepository) CloseTasks(_ context.Context, evaluationID string, status entities.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Tasks {
		if s.Tasks[i].EvaluationID == evaluationID && s.Tasks[i].Status == entities.TaskStatusQueued {
			s.Writes++
			s.Tasks[i].Status = status
		}
	}
	return nil
}

// EvaluationCount returns how many evaluations are stored.
func (s *FakeStoreRepository) EvaluationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Evaluations)
}

// ExecutionCount returns how many pipeline executions are stored.
func (s *FakeStoreRepository) ExecutionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Executions)
}

// WriteCount returns how many mutating calls succeeded.
func (s *FakeStoreRepository) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Writes
}

func copyExecution(p entities.PipelineExecution) entities.PipelineExecution {
	p.Stages = append([]entities.StageResult(nil), p.Stages...)
	return p
}
