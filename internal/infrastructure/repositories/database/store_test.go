//go:build unit

package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/database"
	builders "github.com/rios0rios0/portetrack/test/domain/entitybuilders"
)

func setupTestStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := database.NewStore(db)
	require.NoError(t, store.AutoMigrate())
	return store
}

func TestStorePorteVersions(t *testing.T) {
	t.Parallel()

	t.Run("should keep a single ACTIVE porte per component", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		require.NoError(t, store.RegisterPorte(ctx, builders.NewPorteVersionBuilder().BuildPorteVersion()))

		// when
		err := store.RegisterPorte(ctx, builders.NewPorteVersionBuilder().WithID("porte-2").BuildPorteVersion())

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already has an ACTIVE porte")
	})

	t.Run("should allow registering again after the component was retired", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		require.NoError(t, store.RegisterPorte(ctx, builders.NewPorteVersionBuilder().BuildPorteVersion()))
		require.NoError(t, store.RetirePorte(ctx, "widget"))

		// when
		err := store.RegisterPorte(ctx, builders.NewPorteVersionBuilder().
			WithID("porte-2").WithPortedVersion("2.0.0").BuildPorteVersion())

		// then
		require.NoError(t, err)
		active, getErr := store.GetActivePorte(ctx, "widget")
		require.NoError(t, getErr)
		assert.Equal(t, "porte-2", active.ID)
		assert.Equal(t, "2.0.0", active.PortedVersion)
	})

	t.Run("should return nil as the current version of an unknown component", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)

		// when
		version, err := store.GetCurrentVersion(context.Background(), "unknown")

		// then
		require.NoError(t, err)
		assert.Nil(t, version)
	})

	t.Run("should move the ported version only from the expected version", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		require.NoError(t, store.RegisterPorte(ctx, builders.NewPorteVersionBuilder().BuildPorteVersion()))
		require.NoError(t, store.UpdatePortedVersion(ctx, "widget", "1.2.0", "1.3.0", "v1.3.0"))

		// when
		err := store.UpdatePortedVersion(ctx, "widget", "1.2.0", "1.4.0", "v1.4.0")

		// then
		require.ErrorIs(t, err, entities.ErrVersionConflict)
		version, getErr := store.GetCurrentVersion(ctx, "widget")
		require.NoError(t, getErr)
		assert.Equal(t, "1.3.0", *version)
	})

	t.Run("should let exactly one of two concurrent updates from the same version win", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		require.NoError(t, store.RegisterPorte(ctx, builders.NewPorteVersionBuilder().BuildPorteVersion()))
		errs := make(chan error, 2)

		// when
		for _, next := range []string{"1.3.0", "1.4.0"} {
			go func() { errs <- store.UpdatePortedVersion(ctx, "widget", "1.2.0", next, "v"+next) }()
		}
		first, second := <-errs, <-errs

		// then
		conflicts := 0
		for _, err := range []error{first, second} {
			if errors.Is(err, entities.ErrVersionConflict) {
				conflicts++
			} else {
				require.NoError(t, err)
			}
		}
		assert.Equal(t, 1, conflicts)
	})

	t.Run("should report not found when retiring an unknown component", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)

		// when
		err := store.RetirePorte(context.Background(), "unknown")

		// then
		require.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestStoreEvaluations(t *testing.T) {
	t.Parallel()

	t.Run("should persist the decision once together with analysis and risk", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		evaluation := builders.NewVersionEvaluationBuilder().Pending().BuildEvaluation()
		require.NoError(t, store.CreateEvaluation(ctx, evaluation))
		evaluation.ChangeAnalysis = &entities.ChangeAnalysis{ChangeType: entities.ChangeTypeMinor, FilesAffected: 3}
		evaluation.RiskAssessment = &entities.RiskAssessment{TotalRisk: 1.5, Flags: []string{}}
		require.NoError(t, evaluation.Decide(entities.DecisionAutoApprove, "low risk", 0.85))

		// when
		err := store.SaveDecision(ctx, evaluation)
		again := store.SaveDecision(ctx, evaluation)

		// then
		require.NoError(t, err)
		require.ErrorIs(t, again, entities.ErrDecisionAlreadyMade)
		stored, getErr := store.GetEvaluation(ctx, evaluation.ID)
		require.NoError(t, getErr)
		assert.Equal(t, entities.DecisionAutoApprove, stored.Decision)
		assert.Equal(t, entities.EvaluationStatusEvaluated, stored.Status)
		assert.InDelta(t, 0.85, stored.ConfidenceScore, 1e-9)
		require.NotNil(t, stored.ChangeAnalysis)
		assert.Equal(t, 3, stored.ChangeAnalysis.FilesAffected)
		require.NotNil(t, stored.RiskAssessment)
		assert.InDelta(t, 1.5, stored.RiskAssessment.TotalRisk, 1e-9)
	})

	t.Run("should decide a failed evaluation that was reopened", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		evaluation := builders.NewVersionEvaluationBuilder().Pending().BuildEvaluation()
		require.NoError(t, store.CreateEvaluation(ctx, evaluation))
		evaluation.Fail(errors.New("context canceled"))
		require.NoError(t, store.UpdateEvaluationStatus(ctx, evaluation))
		require.NoError(t, evaluation.Reopen("1.2.1"))
		require.NoError(t, evaluation.Decide(entities.DecisionManualReview, "breaking changes", 0.6))

		// when
		err := store.SaveDecision(ctx, evaluation)

		// then
		require.NoError(t, err)
		stored, getErr := store.GetEvaluation(ctx, evaluation.ID)
		require.NoError(t, getErr)
		assert.Equal(t, entities.DecisionManualReview, stored.Decision)
		assert.Equal(t, entities.EvaluationStatusEvaluated, stored.Status)
		assert.Equal(t, "1.2.1", stored.CurrentVersion)
		assert.Empty(t, stored.ErrorMessage)
	})

	t.Run("should find an evaluation by porte and upstream version and refuse duplicates", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		evaluation := builders.NewVersionEvaluationBuilder().BuildEvaluation()
		require.NoError(t, store.CreateEvaluation(ctx, evaluation))

		// when
		found, err := store.FindEvaluation(ctx, evaluation.PorteVersionID, evaluation.UpstreamVersion)
		duplicate := store.CreateEvaluation(ctx, builders.NewVersionEvaluationBuilder().WithID("eval-2").BuildEvaluation())

		// then
		require.NoError(t, err)
		assert.Equal(t, evaluation.ID, found.ID)
		require.Error(t, duplicate)
	})

	t.Run("should mark an evaluation as implemented", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		evaluation := builders.NewVersionEvaluationBuilder().BuildEvaluation()
		require.NoError(t, store.CreateEvaluation(ctx, evaluation))

		// when
		err := store.MarkEvaluationAsImplemented(ctx, evaluation.ID)

		// then
		require.NoError(t, err)
		stored, getErr := store.GetEvaluation(ctx, evaluation.ID)
		require.NoError(t, getErr)
		assert.True(t, stored.Implemented)
		assert.Equal(t, entities.EvaluationStatusImplemented, stored.Status)
	})

	t.Run("should return not found for an unknown evaluation", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)

		// when
		_, err := store.GetEvaluation(context.Background(), "missing")

		// then
		require.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestStoreExecutions(t *testing.T) {
	t.Parallel()

	t.Run("should store stages while running and refuse changes once finished", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		execution := &entities.PipelineExecution{
			ID: "exec-1", EvaluationID: "eval-1", ComponentName: "widget",
			Status: entities.PipelineStatusRunning, StartedAt: time.Now().UTC(),
		}
		require.NoError(t, store.CreateExecution(ctx, execution))
		require.NoError(t, execution.AppendStage(entities.StageResult{
			Name: entities.StagePreparation, Status: entities.ResultCompleted,
			StepResults: []entities.StepResult{{StepType: "validate_evaluation", Required: true, Status: entities.ResultCompleted}},
		}))
		require.NoError(t, store.SaveStages(ctx, execution))
		require.NoError(t, execution.Finish(entities.PipelineStatusCompleted, ""))
		require.NoError(t, store.FinishExecution(ctx, execution))

		// when
		execution.Status = entities.PipelineStatusFailed
		err := store.FinishExecution(ctx, execution)

		// then
		require.ErrorIs(t, err, entities.ErrExecutionFinished)
		stored, getErr := store.GetExecution(ctx, "exec-1")
		require.NoError(t, getErr)
		assert.Equal(t, entities.PipelineStatusCompleted, stored.Status)
		require.Len(t, stored.Stages, 1)
		assert.Equal(t, "validate_evaluation", stored.Stages[0].StepResults[0].StepType)
		assert.NotNil(t, stored.CompletedAt)
	})
}

func TestStoreTasks(t *testing.T) {
	t.Parallel()

	t.Run("should list tasks by priority and close the queued ones", func(t *testing.T) {
		t.Parallel()

		// given
		store := setupTestStore(t)
		ctx := context.Background()
		now := time.Now().UTC()
		require.NoError(t, store.EnqueueTask(ctx, &entities.ImplementationTask{
			ID: "task-2", EvaluationID: "eval-1", TaskType: entities.TaskTypeManualReview,
			Status: entities.TaskStatusQueued, Priority: 2, ScheduledAt: now,
		}))
		require.NoError(t, store.EnqueueTask(ctx, &entities.ImplementationTask{
			ID: "task-1", EvaluationID: "eval-1", TaskType: entities.TaskTypeSecurityPatch,
			Status: entities.TaskStatusQueued, Priority: 1, ScheduledAt: now,
		}))

		// when
		err := store.CloseTasks(ctx, "eval-1", entities.TaskStatusDone)

		// then
		require.NoError(t, err)
		tasks, listErr := store.ListTasks(ctx, "eval-1")
		require.NoError(t, listErr)
		require.Len(t, tasks, 2)
		assert.Equal(t, "task-1", tasks[0].ID)
		assert.Equal(t, entities.TaskStatusDone, tasks[0].Status)
		assert.Equal(t, entities.TaskStatusDone, tasks[1].Status)
	})
}
