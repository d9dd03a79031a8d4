package repositories

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// PorteVersionRepository persists the version registry.
type PorteVersionRepository interface {
	// RegisterPorte creates the ACTIVE record of a component. It fails when an
	// ACTIVE record already exists.
	RegisterPorte(ctx context.Context, porte *entities.PorteVersion) error

	// GetActivePorte returns the ACTIVE record or entities.ErrNotFound.
	GetActivePorte(ctx context.Context, componentName string) (*entities.PorteVersion, error)

	// GetCurrentVersion returns the ported version, or nil for unknown components.
	GetCurrentVersion(ctx context.Context, componentName string) (*string, error)

	// UpdatePortedVersion moves the ACTIVE record from expected to next. It
	// returns entities.ErrVersionConflict when the stored version is not expected.
	UpdatePortedVersion(ctx context.Context, componentName, expected, next, upstreamVersion string) error

	// RetirePorte releases the ACTIVE slot of a component, keeping the record.
	RetirePorte(ctx context.Context, componentName string) error
}

// EvaluationRepository persists version evaluations.
type EvaluationRepository interface {
	CreateEvaluation(ctx context.Context, evaluation *entities.VersionEvaluation) error
	GetEvaluation(ctx context.Context, id string) (*entities.VersionEvaluation, error)

	// FindEvaluation returns the evaluation of an upstream version, or entities.ErrNotFound.
	FindEvaluation(ctx context.Context, porteVersionID, upstreamVersion string) (*entities.VersionEvaluation, error)

	// SaveDecision persists a decided evaluation; only a PENDING row is updated.
	SaveDecision(ctx context.Context, evaluation *entities.VersionEvaluation) error

	// UpdateEvaluationStatus stores status and error message.
	UpdateEvaluationStatus(ctx context.Context, evaluation *entities.VersionEvaluation) error

	MarkEvaluationAsImplemented(ctx context.Context, evaluationID string) error
}

// PipelineExecutionRepository persists implementation attempts.
type PipelineExecutionRepository interface {
	CreateExecution(ctx context.Context, execution *entities.PipelineExecution) error

	// SaveStages stores the stages of a running execution.
	SaveStages(ctx context.Context, execution *entities.PipelineExecution) error

	// FinishExecution stores the terminal status; only a running row is updated.
	FinishExecution(ctx context.Context, execution *entities.PipelineExecution) error

	GetExecution(ctx context.Context, id string) (*entities.PipelineExecution, error)
}

// TaskRepository persists deferred implementation tasks.
type TaskRepository interface {
	EnqueueTask(ctx context.Context, task *entities.ImplementationTask) error
	ListTasks(ctx context.Context, evaluationID string) ([]entities.ImplementationTask, error)
	CloseTasks(ctx context.Context, evaluationID string, status entities.TaskStatus) error
}

// StoreRepository is the whole persistence boundary.
type StoreRepository interface {
	PorteVersionRepository
	EvaluationRepository
	PipelineExecutionRepository
	TaskRepository
}
