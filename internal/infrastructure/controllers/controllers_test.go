//go:build unit

package controllers_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/infrastructure/controllers"
	commanddoubles "github.com/rios0rios0/portetrack/test/domain/commanddoubles"
	builders "github.com/rios0rios0/portetrack/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/portetrack/test/infrastructure/repositorydoubles"
)

const minimalConfig = `
portes:
  widget:
    upstream_repo: acme/widget
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portetrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0o600))
	return path
}

// run executes the controller the way the root command wires it.
func run(t *testing.T, ctrl entities.Controller, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:           ctrl.GetBind().Use,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          ctrl.Execute,
	}
	cmd.Flags().String("config", "", "")
	cmd.Flags().Bool("verbose", false, "")
	ctrl.AddFlags(cmd)
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMonitorController(t *testing.T) {
	t.Parallel()

	t.Run("should pass the flags to the command and print the report", func(t *testing.T) {
		t.Parallel()

		// given
		command := &commanddoubles.StubMonitorCommand{Report: &commands.MonitorReport{
			UpToDate: 1,
			Components: []commands.ComponentReport{
				{ComponentName: "widget", CurrentVersion: "1.2.0", Outcome: commands.OutcomeUpToDate},
			},
		}}
		ctrl := controllers.NewMonitorController(command, doubles.NewSpyMetricsRepository())

		// when
		out, err := run(t, ctrl, "--config", writeConfig(t), "--dry-run", "--security-check", "--component", "widget")

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, command.ExecuteCallCount)
		assert.True(t, command.LastOpts.DryRun)
		assert.True(t, command.LastOpts.SecurityCheck)
		assert.Equal(t, "widget", command.LastOpts.Component)
		assert.Equal(t, "acme/widget", command.LastSettings.Portes["widget"].UpstreamRepo)
		assert.Contains(t, out, "widget")
		assert.Contains(t, out, "1 up to date")
	})

	t.Run("should write the metrics file when requested", func(t *testing.T) {
		t.Parallel()

		// given
		metrics := doubles.NewSpyMetricsRepository()
		ctrl := controllers.NewMonitorController(&commanddoubles.StubMonitorCommand{}, metrics)
		path := filepath.Join(t.TempDir(), "portetrack.prom")

		// when
		_, err := run(t, ctrl, "--config", writeConfig(t), "--metrics-file", path)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{path}, metrics.Written)
	})

	t.Run("should fail on a missing config file", func(t *testing.T) {
		t.Parallel()

		// given
		command := &commanddoubles.StubMonitorCommand{}
		ctrl := controllers.NewMonitorController(command, doubles.NewSpyMetricsRepository())

		// when
		_, err := run(t, ctrl, "--config", filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		var configErr *entities.ConfigurationError
		require.True(t, errors.As(err, &configErr))
		assert.Zero(t, command.ExecuteCallCount)
	})

	t.Run("should return the command error", func(t *testing.T) {
		t.Parallel()

		// given
		command := &commanddoubles.StubMonitorCommand{
			ExecuteErr: &entities.ConfigurationError{Err: errors.New("no porte tracks component \"x\"")},
		}
		ctrl := controllers.NewMonitorController(command, doubles.NewSpyMetricsRepository())

		// when
		_, err := run(t, ctrl, "--config", writeConfig(t))

		// then
		require.Error(t, err)
	})
}

func TestImplementController(t *testing.T) {
	t.Parallel()

	t.Run("should run the pipeline of the evaluation", func(t *testing.T) {
		t.Parallel()

		// given
		command := &commanddoubles.StubImplementCommand{Execution: &entities.PipelineExecution{
			ID: "exec-1", ComponentName: "widget", Status: entities.PipelineStatusCompleted,
		}}
		ctrl := controllers.NewImplementController(command)

		// when
		out, err := run(t, ctrl, "--config", writeConfig(t), "--evaluation-id", "eval-1", "--dry-run")

		// then
		require.NoError(t, err)
		assert.Equal(t, "eval-1", command.LastOpts.EvaluationID)
		assert.True(t, command.LastOpts.DryRun)
		assert.Contains(t, out, "Pipeline exec-1")
	})

	t.Run("should return a stage failure and still print the execution", func(t *testing.T) {
		t.Parallel()

		// given
		command := &commanddoubles.StubImplementCommand{
			Execution: &entities.PipelineExecution{
				ID: "exec-2", ComponentName: "widget", Status: entities.PipelineStatusFailed,
			},
			ExecuteErr: &entities.StageExecutionError{
				Stage: entities.StageValidation, Step: "run_unit_tests", Err: errors.New("coverage gate"),
			},
		}
		ctrl := controllers.NewImplementController(command)

		// when
		out, err := run(t, ctrl, "--config", writeConfig(t), "--evaluation-id", "eval-1")

		// then
		var stageErr *entities.StageExecutionError
		require.True(t, errors.As(err, &stageErr))
		assert.Contains(t, out, "Pipeline exec-2")
	})

	t.Run("should require the evaluation id", func(t *testing.T) {
		t.Parallel()

		// given
		command := &commanddoubles.StubImplementCommand{}
		ctrl := controllers.NewImplementController(command)

		// when
		_, err := run(t, ctrl, "--config", writeConfig(t))

		// then
		require.Error(t, err)
		assert.Zero(t, command.ExecuteCallCount)
	})
}

func TestApproveController(t *testing.T) {
	t.Parallel()

	t.Run("should approve the evaluation", func(t *testing.T) {
		t.Parallel()

		// given
		ev := builders.NewVersionEvaluationBuilder().
			WithDecision(entities.DecisionManualReview).
			WithStatus(entities.EvaluationStatusApproved).
			BuildEvaluation()
		command := &commanddoubles.StubApproveCommand{Evaluation: ev}
		ctrl := controllers.NewApproveController(command)

		// when
		out, err := run(t, ctrl, "--config", writeConfig(t), "--evaluation-id", "eval-1")

		// then
		require.NoError(t, err)
		assert.Equal(t, "eval-1", command.LastEvaluationID)
		assert.Contains(t, out, "Evaluation eval-1")
	})

	t.Run("should return the approval error", func(t *testing.T) {
		t.Parallel()

		// given
		command := &commanddoubles.StubApproveCommand{ExecuteErr: entities.ErrNotApproved}
		ctrl := controllers.NewApproveController(command)

		// when
		_, err := run(t, ctrl, "--config", writeConfig(t), "--evaluation-id", "eval-1")

		// then
		require.ErrorIs(t, err, entities.ErrNotApproved)
	})
}

func TestRetireController(t *testing.T) {
	t.Parallel()

	t.Run("should retire the component", func(t *testing.T) {
		t.Parallel()

		// given
		command := &commanddoubles.StubRetireCommand{}
		ctrl := controllers.NewRetireController(command)

		// when
		out, err := run(t, ctrl, "--config", writeConfig(t), "--component", "widget")

		// then
		require.NoError(t, err)
		assert.Equal(t, "widget", command.LastComponent)
		assert.Contains(t, out, "Retired the ACTIVE porte of widget")
	})

	t.Run("should return an unknown component as an error", func(t *testing.T) {
		t.Parallel()

		// given
		command := &commanddoubles.StubRetireCommand{ExecuteErr: entities.ErrNotFound}
		ctrl := controllers.NewRetireController(command)

		// when
		_, err := run(t, ctrl, "--config", writeConfig(t), "--component", "gadget")

		// then
		require.ErrorIs(t, err, entities.ErrNotFound)
	})
}
