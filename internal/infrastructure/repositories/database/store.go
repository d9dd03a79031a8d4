// Package database persists the registry, evaluations, pipeline executions
// and tasks with GORM.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// Store implements repositories.StoreRepository. Every guarded update is a
// single conditional UPDATE; RowsAffected tells whether the guard held.
type Store struct {
	db *gorm.DB
}

var _ repositories.StoreRepository = (*Store)(nil)

// Open connects with the given dialector and migrates the schema. GORM logs
// are silenced unless debug logging is on.
func Open(dialector gorm.Dialector) (*Store, error) {
	level := gormLogger.Silent
	if logger.IsLevelEnabled(logger.DebugLevel) {
		level = gormLogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := NewStore(db)
	if err = store.AutoMigrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// NewStore creates a Store on an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates every table.
func (it *Store) AutoMigrate() error {
	if err := it.db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (it *Store) Close() error {
	sqlDB, err := it.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.ErrNotFound
	}
	return err
}

// --- PorteVersionRepository ---

func (it *Store) RegisterPorte(ctx context.Context, porte *entities.PorteVersion) error {
	return it.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&PorteVersionModel{}).
			Where("active_slot = ?", porte.ComponentName).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check active porte: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("component %q already has an ACTIVE porte", porte.ComponentName)
		}
		if err := tx.Create(porteFromEntity(porte)).Error; err != nil {
			return fmt.Errorf("register porte: %w", err)
		}
		return nil
	})
}

func (it *Store) GetActivePorte(ctx context.Context, componentName string) (*entities.PorteVersion, error) {
	var model PorteVersionModel
	if err := it.db.WithContext(ctx).First(&model, "active_slot = ?", componentName).Error; err != nil {
		return nil, notFound(err)
	}
	return model.toEntity(), nil
}

func (it *Store) GetCurrentVersion(ctx context.Context, componentName string) (*string, error) {
	porte, err := it.GetActivePorte(ctx, componentName)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, nil //nolint:nilnil // unknown component has no version
	}
	if err != nil {
		return nil, err
	}
	return &porte.PortedVersion, nil
}

func (it *Store) UpdatePortedVersion(
	ctx context.Context,
	componentName, expected, next, upstreamVersion string,
) error {
	result := it.db.WithContext(ctx).Model(&PorteVersionModel{}).
		Where("active_slot = ? AND ported_version = ?", componentName, expected).
		Updates(map[string]any{
			"ported_version":   next,
			"upstream_version": upstreamVersion,
			"port_date":        time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("update ported version: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	current, err := it.GetCurrentVersion(ctx, componentName)
	if err != nil {
		return err
	}
	if current == nil {
		return entities.ErrNotFound
	}
	return fmt.Errorf("%w: %s is at %s, expected %s", entities.ErrVersionConflict, componentName, *current, expected)
}

func (it *Store) RetirePorte(ctx context.Context, componentName string) error {
	result := it.db.WithContext(ctx).Model(&PorteVersionModel{}).
		Where("active_slot = ?", componentName).
		Updates(map[string]any{
			"status":      string(entities.PorteStatusRetired),
			"active_slot": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("retire porte: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// --- EvaluationRepository ---

func (it *Store) CreateEvaluation(ctx context.Context, evaluation *entities.VersionEvaluation) error {
	if err := it.db.WithContext(ctx).Create(evaluationFromEntity(evaluation)).Error; err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

func (it *Store) GetEvaluation(ctx context.Context, id string) (*entities.VersionEvaluation, error) {
	var model VersionEvaluationModel
	if err := it.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.toEntity(), nil
}

func (it *Store) FindEvaluation(
	ctx context.Context,
	porteVersionID, upstreamVersion string,
) (*entities.VersionEvaluation, error) {
	var model VersionEvaluationModel
	if err := it.db.WithContext(ctx).
		Where("porte_version_id = ? AND upstream_version = ?", porteVersionID, upstreamVersion).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.toEntity(), nil
}

func (it *Store) SaveDecision(ctx context.Context, evaluation *entities.VersionEvaluation) error {
	result := it.db.WithContext(ctx).Model(&VersionEvaluationModel{}).
		Where("id = ? AND decision = ?", evaluation.ID, string(entities.DecisionPending)).
		Select("current_version", "decision", "decision_reason", "confidence_score", "change_analysis",
			"risk_assessment", "status", "error_message", "updated_at").
		Updates(evaluationFromEntity(evaluation))
	if result.Error != nil {
		return fmt.Errorf("save decision: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if _, err := it.GetEvaluation(ctx, evaluation.ID); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", entities.ErrDecisionAlreadyMade, evaluation.ID)
}

func (it *Store) UpdateEvaluationStatus(ctx context.Context, evaluation *entities.VersionEvaluation) error {
	result := it.db.WithContext(ctx).Model(&VersionEvaluationModel{}).
		Where("id = ?", evaluation.ID).
		Select("status", "error_message", "updated_at").
		Updates(evaluationFromEntity(evaluation))
	if result.Error != nil {
		return fmt.Errorf("update evaluation status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func (it *Store) MarkEvaluationAsImplemented(ctx context.Context, evaluationID string) error {
	result := it.db.WithContext(ctx).Model(&VersionEvaluationModel{}).
		Where("id = ?", evaluationID).
		Updates(map[string]any{
			"implemented": true,
			"status":      string(entities.EvaluationStatusImplemented),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("mark evaluation as implemented: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// --- PipelineExecutionRepository ---

func (it *Store) CreateExecution(ctx context.Context, execution *entities.PipelineExecution) error {
	if err := it.db.WithContext(ctx).Create(executionFromEntity(execution)).Error; err != nil {
		return fmt.Errorf("create execution: %w", err)
	}
	return nil
}

func (it *Store) SaveStages(ctx context.Context, execution *entities.PipelineExecution) error {
	return it.updateRunning(ctx, execution, "stages")
}

func (it *Store) FinishExecution(ctx context.Context, execution *entities.PipelineExecution) error {
	return it.updateRunning(ctx, execution, "status", "stages", "error_message", "rollback", "completed_at")
}

// updateRunning writes the given columns while the stored row is still running.
func (it *Store) updateRunning(ctx context.Context, execution *entities.PipelineExecution, columns ...string) error {
	result := it.db.WithContext(ctx).Model(&PipelineExecutionModel{}).
		Where("id = ? AND status = ?", execution.ID, string(entities.PipelineStatusRunning)).
		Select(columns).
		Updates(executionFromEntity(execution))
	if result.Error != nil {
		return fmt.Errorf("update execution: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if _, err := it.GetExecution(ctx, execution.ID); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", entities.ErrExecutionFinished, execution.ID)
}

func (it *Store) GetExecution(ctx context.Context, id string) (*entities.PipelineExecution, error) {
	var model PipelineExecutionModel
	if err := it.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.toEntity(), nil
}

// --- TaskRepository ---

func (it *Store) EnqueueTask(ctx context.Context, task *entities.ImplementationTask) error {
	if err := it.db.WithContext(ctx).Create(taskFromEntity(task)).Error; err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

func (it *Store) ListTasks(ctx context.Context, evaluationID string) ([]entities.ImplementationTask, error) {
	var models []ImplementationTaskModel
	if err := it.db.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("priority ASC, scheduled_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]entities.ImplementationTask, 0, len(models))
	for i := range models {
		tasks = append(tasks, models[i].toEntity())
	}
	return tasks, nil
}

func (it *Store) CloseTasks(ctx context.Context, evaluationID string, status entities.TaskStatus) error {
	if err := it.db.WithContext(ctx).Model(&ImplementationTaskModel{}).
		Where("evaluation_id = ? AND status = ?", evaluationID, string(entities.TaskStatusQueued)).
		Update("status", string(status)).Error; err != nil {
		return fmt.Errorf("close tasks: %w", err)
	}
	return nil
}
