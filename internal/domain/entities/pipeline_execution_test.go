//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

func TestPipelineExecutionAppendStage(t *testing.T) {
	t.Parallel()

	t.Run("should accept stages in the fixed order", func(t *testing.T) {
		t.Parallel()

		// given
		execution := &entities.PipelineExecution{ID: "exec-1", Status: entities.PipelineStatusRunning}

		// when
		for _, name := range entities.StageOrder() {
			require.NoError(t, execution.AppendStage(entities.StageResult{Name: name, Status: entities.ResultCompleted}))
		}

		// then
		names := make([]string, 0, len(execution.Stages))
		for _, s := range execution.Stages {
			names = append(names, s.Name)
		}
		assert.Equal(t, []string{"preparation", "application", "validation", "deployment"}, names)
	})

	t.Run("should reject a stage out of order", func(t *testing.T) {
		t.Parallel()

		// given
		execution := &entities.PipelineExecution{ID: "exec-1", Status: entities.PipelineStatusRunning}

		// when
		err := execution.AppendStage(entities.StageResult{Name: entities.StageValidation})

		// then
		require.Error(t, err)
		assert.Empty(t, execution.Stages)
	})

	t.Run("should not change after the terminal status is set", func(t *testing.T) {
		t.Parallel()

		// given
		execution := &entities.PipelineExecution{ID: "exec-1", Status: entities.PipelineStatusRunning}
		require.NoError(t, execution.Finish(entities.PipelineStatusFailed, "boom"))

		// when
		appendErr := execution.AppendStage(entities.StageResult{Name: entities.StagePreparation})
		finishErr := execution.Finish(entities.PipelineStatusCompleted, "")

		// then
		require.ErrorIs(t, appendErr, entities.ErrExecutionFinished)
		require.ErrorIs(t, finishErr, entities.ErrExecutionFinished)
		assert.Equal(t, entities.PipelineStatusFailed, execution.Status)
		assert.NotNil(t, execution.CompletedAt)
	})
}
