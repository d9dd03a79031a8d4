//go:build unit

package steps_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/pipeline"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/steps"
)

func commandSettings(commands map[string]string) entities.PipelineSettings {
	settings := entities.DefaultPipelineSettings()
	settings.Commands = commands
	return settings
}

func TestCommandStepRepository(t *testing.T) {
	t.Parallel()

	t.Run("should only claim the steps that have a command", func(t *testing.T) {
		t.Parallel()

		// given
		repo, err := steps.NewCommandStepRepository(commandSettings(map[string]string{
			pipeline.StepRunUnitTests: "echo ok",
			pipeline.StepDeploy:       "echo deployed",
			steps.RollbackCommand:     "echo undo",
			"unknown_step":            "echo nope",
			pipeline.StepHealthCheck:  "   ",
		}))
		require.NoError(t, err)

		// when
		types := repo.StepTypes()

		// then
		assert.Equal(t, []string{pipeline.StepDeploy, pipeline.StepRunUnitTests}, types)
		assert.True(t, repo.HasRollback())
	})

	t.Run("should run the command in the workspace and extract metrics", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "report.txt"), []byte("coverage: 91.5%\n"), 0o644))
		repo, err := steps.NewCommandStepRepository(commandSettings(map[string]string{
			pipeline.StepRunUnitTests: `cat report.txt && echo "component $PORTETRACK_COMPONENT -> $PORTETRACK_TO_VERSION"`,
		}))
		require.NoError(t, err)
		sc := stepContext(dir, pipeline.StepRunUnitTests)

		// when
		out, err := repo.Execute(context.Background(), sc)

		// then
		require.NoError(t, err)
		assert.InDelta(t, 91.5, out.Metrics[entities.MetricCoverage], 0.001)
	})

	t.Run("should include the output when the command fails", func(t *testing.T) {
		t.Parallel()

		// given
		repo, err := steps.NewCommandStepRepository(commandSettings(map[string]string{
			pipeline.StepDeploy: "echo 'deployment failed: cluster unreachable' && exit 3",
		}))
		require.NoError(t, err)

		// when
		_, err = repo.Execute(context.Background(), stepContext(t.TempDir(), pipeline.StepDeploy))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deployment failed: cluster unreachable")
	})

	t.Run("should not run anything in dry-run", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		repo, err := steps.NewCommandStepRepository(commandSettings(map[string]string{
			pipeline.StepApplyChanges: "touch applied",
		}))
		require.NoError(t, err)
		sc := stepContext(dir, pipeline.StepApplyChanges)
		sc.DryRun = true

		// when
		out, err := repo.Execute(context.Background(), sc)

		// then
		require.NoError(t, err)
		assert.Equal(t, true, out.Result["dry_run"])
		_, statErr := os.Stat(filepath.Join(dir, "applied"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("should reject an invalid metric pattern", func(t *testing.T) {
		t.Parallel()

		// given
		settings := commandSettings(nil)
		settings.MetricPatterns = map[string]string{entities.MetricCoverage: "("}

		// when
		_, err := steps.NewCommandStepRepository(settings)

		// then
		require.Error(t, err)
	})
}

func TestCommandStepRepositoryExtractMetrics(t *testing.T) {
	t.Parallel()

	t.Run("should read every gate metric with the default patterns", func(t *testing.T) {
		t.Parallel()

		// given
		repo, err := steps.NewCommandStepRepository(commandSettings(nil))
		require.NoError(t, err)
		output := "scan done\nCritical: 0\nHigh: 2\nperformance regression: 1.25%\ncoverage: 80%\ncoverage: 86.4%\n"

		// when
		metrics := repo.ExtractMetrics(output)

		// then
		assert.InDelta(t, 0, metrics[entities.MetricCriticalVulnerabilities], 0.001)
		assert.InDelta(t, 2, metrics[entities.MetricHighVulnerabilities], 0.001)
		assert.InDelta(t, 1.25, metrics[entities.MetricPerformanceRegression], 0.001)
		assert.InDelta(t, 86.4, metrics[entities.MetricCoverage], 0.001)
	})

	t.Run("should let configured patterns override the defaults", func(t *testing.T) {
		t.Parallel()

		// given
		settings := commandSettings(nil)
		settings.MetricPatterns = map[string]string{entities.MetricCoverage: `total:\s+\(statements\)\s+([0-9.]+)%`}
		repo, err := steps.NewCommandStepRepository(settings)
		require.NoError(t, err)

		// when
		metrics := repo.ExtractMetrics("total:\t(statements)\t88.0%\n")

		// then
		assert.InDelta(t, 88.0, metrics[entities.MetricCoverage], 0.001)
	})
}
