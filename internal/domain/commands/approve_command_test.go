//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
	builders "github.com/rios0rios0/portetrack/test/domain/entitybuilders"
)

func TestApproveCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should approve a conditional decision and close its tasks", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMonitorFixture()
		evaluation := builders.NewVersionEvaluationBuilder().
			WithDecision(entities.DecisionConditionalApprove).
			BuildEvaluation()
		require.NoError(t, f.store.CreateEvaluation(context.Background(), evaluation))
		require.NoError(t, f.store.EnqueueTask(context.Background(), &entities.ImplementationTask{
			ID: "task-1", EvaluationID: evaluation.ID, Status: entities.TaskStatusQueued,
		}))

		// when
		approved, err := commands.NewApproveCommand(f.envs).Execute(context.Background(), widgetSettings(), evaluation.ID)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.EvaluationStatusApproved, approved.Status)
		stored, getErr := f.store.GetEvaluation(context.Background(), evaluation.ID)
		require.NoError(t, getErr)
		assert.True(t, stored.CanImplement())
		tasks, listErr := f.store.ListTasks(context.Background(), evaluation.ID)
		require.NoError(t, listErr)
		assert.Equal(t, entities.TaskStatusDone, tasks[0].Status)
	})

	t.Run("should refuse to approve a rejected evaluation", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMonitorFixture()
		evaluation := builders.NewVersionEvaluationBuilder().WithDecision(entities.DecisionReject).BuildEvaluation()
		require.NoError(t, f.store.CreateEvaluation(context.Background(), evaluation))

		// when
		_, err := commands.NewApproveCommand(f.envs).Execute(context.Background(), widgetSettings(), evaluation.ID)

		// then
		require.ErrorIs(t, err, entities.ErrNotApproved)
	})

	t.Run("should return not found for an unknown evaluation", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMonitorFixture()

		// when
		_, err := commands.NewApproveCommand(f.envs).Execute(context.Background(), widgetSettings(), "missing")

		// then
		require.ErrorIs(t, err, entities.ErrNotFound)
	})
}
