//go:build unit

package steps_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/pipeline"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/steps"
	doubles "github.com/rios0rios0/portetrack/test/infrastructure/repositorydoubles"
)

func TestPullRequestStepRepository(t *testing.T) {
	t.Parallel()

	t.Run("should open the pull request from the upgrade branch", func(t *testing.T) {
		t.Parallel()

		// given
		prs := &doubles.StubPullRequestRepository{}
		repo := steps.NewPullRequestStepRepository(prs)
		sc := stepContext("", pipeline.StepOpenPullRequest)
		sc.Porte.Repository = "acme/widget-port"

		// when
		out, err := repo.Execute(context.Background(), sc)

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/pr/1", out.Result["url"])
		require.Len(t, prs.Inputs, 1)
		assert.Equal(t, "acme/widget-port", prs.Inputs[0].Repository)
		assert.Equal(t, "chore/porte-widget-1.3.0", prs.Inputs[0].SourceBranch)
		assert.Equal(t, "main", prs.Inputs[0].TargetBranch)
		assert.Equal(t, "chore(porte): upgrade `widget` to `1.3.0`", prs.Inputs[0].Title)
		assert.Contains(t, prs.Inputs[0].Description, "AUTO_APPROVE")
	})

	t.Run("should list breaking changes in the description", func(t *testing.T) {
		t.Parallel()

		// given
		sc := stepContext("", pipeline.StepOpenPullRequest)
		sc.Evaluation.ChangeAnalysis.BreakingChanges = []string{"BREAKING CHANGE: removed Foo"}

		// when
		input := steps.BuildPullRequestInput(sc)

		// then
		assert.Contains(t, input.Description, "### Breaking changes\n\n- BREAKING CHANGE: removed Foo")
	})

	t.Run("should skip without a porte repository", func(t *testing.T) {
		t.Parallel()

		// given
		prs := &doubles.StubPullRequestRepository{}
		repo := steps.NewPullRequestStepRepository(prs)

		// when
		out, err := repo.Execute(context.Background(), stepContext("", pipeline.StepOpenPullRequest))

		// then
		require.NoError(t, err)
		assert.True(t, out.Skipped)
		assert.Empty(t, prs.Inputs)
	})

	t.Run("should not call the forge in dry-run", func(t *testing.T) {
		t.Parallel()

		// given
		prs := &doubles.StubPullRequestRepository{}
		repo := steps.NewPullRequestStepRepository(prs)
		sc := stepContext("", pipeline.StepOpenPullRequest)
		sc.Porte.Repository = "acme/widget-port"
		sc.DryRun = true

		// when
		out, err := repo.Execute(context.Background(), sc)

		// then
		require.NoError(t, err)
		assert.Equal(t, true, out.Result["dry_run"])
		assert.Empty(t, prs.Inputs)
	})

	t.Run("should return the forge error", func(t *testing.T) {
		t.Parallel()

		// given
		prs := &doubles.StubPullRequestRepository{CreateErr: errors.New("422 branch not found")}
		repo := steps.NewPullRequestStepRepository(prs)
		sc := stepContext("", pipeline.StepOpenPullRequest)
		sc.Porte.Repository = "acme/widget-port"

		// when
		_, err := repo.Execute(context.Background(), sc)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "422 branch not found")
	})
}

func TestValidateStepRepository(t *testing.T) {
	t.Parallel()

	t.Run("should accept an approved evaluation", func(t *testing.T) {
		t.Parallel()

		// given
		repo := steps.NewValidateStepRepository()

		// when
		out, err := repo.Execute(context.Background(), stepContext("", pipeline.StepValidateEvaluation))

		// then
		require.NoError(t, err)
		assert.Equal(t, "eval-1", out.Result["evaluation_id"])
	})

	t.Run("should refuse an evaluation that is not approved", func(t *testing.T) {
		t.Parallel()

		// given
		repo := steps.NewValidateStepRepository()
		sc := stepContext("", pipeline.StepValidateEvaluation)
		sc.Evaluation.Decision = entities.DecisionReject

		// when
		_, err := repo.Execute(context.Background(), sc)

		// then
		require.ErrorIs(t, err, entities.ErrNotApproved)
	})
}

func TestRollbackRepository(t *testing.T) {
	t.Parallel()

	t.Run("should run the rollback command and delete the branch", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initWorkspace(t)
		git := steps.NewGitStepRepository()
		_, err := git.Execute(context.Background(), stepContext(dir, pipeline.StepCreateBranch))
		require.NoError(t, err)
		commands, err := steps.NewCommandStepRepository(commandSettings(map[string]string{
			steps.RollbackCommand: "echo rolled back",
		}))
		require.NoError(t, err)
		repo := steps.NewRollbackRepository(commands, git)

		// when
		taken, err := repo.Rollback(context.Background(), stepContext(dir, pipeline.StepDeploy))

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"rollback_command", "delete_branch"}, taken)
	})

	t.Run("should stop when the rollback command fails", func(t *testing.T) {
		t.Parallel()

		// given
		commands, err := steps.NewCommandStepRepository(commandSettings(map[string]string{
			steps.RollbackCommand: "exit 1",
		}))
		require.NoError(t, err)
		repo := steps.NewRollbackRepository(commands, steps.NewGitStepRepository())

		// when
		taken, err := repo.Rollback(context.Background(), stepContext(t.TempDir(), pipeline.StepDeploy))

		// then
		require.Error(t, err)
		assert.Empty(t, taken)
	})
}
