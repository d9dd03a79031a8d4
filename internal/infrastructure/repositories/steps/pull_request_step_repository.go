package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/evaluation"
	"github.com/rios0rios0/portetrack/internal/domain/pipeline"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// PullRequestStepRepository opens the pull request of the upgrade branch.
type PullRequestStepRepository struct {
	pullRequests repositories.PullRequestRepository
}

// NewPullRequestStepRepository creates the pull request step.
func NewPullRequestStepRepository(pullRequests repositories.PullRequestRepository) *PullRequestStepRepository {
	return &PullRequestStepRepository{pullRequests: pullRequests}
}

func (it *PullRequestStepRepository) StepTypes() []string {
	return []string{pipeline.StepOpenPullRequest}
}

func (it *PullRequestStepRepository) Execute(ctx context.Context, sc entities.StepContext) (entities.StepOutput, error) {
	if sc.Porte.Repository == "" {
		return skipped("no porte repository configured"), nil
	}
	if sc.Evaluation == nil {
		return entities.StepOutput{}, errors.New("no evaluation in step context")
	}

	input := BuildPullRequestInput(sc)
	if sc.DryRun {
		return entities.StepOutput{Result: map[string]any{
			"title": input.Title, "source_branch": input.SourceBranch, "dry_run": true,
		}}, nil
	}

	pr, err := it.pullRequests.CreatePullRequest(ctx, input)
	if err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to open pull request on %s: %w", sc.Porte.Repository, err)
	}
	logger.Infof("[pull-request] Opened #%d: %s", pr.ID, pr.URL)
	return entities.StepOutput{Result: map[string]any{
		"url": pr.URL, "number": pr.ID, "title": pr.Title,
	}}, nil
}

// BuildPullRequestInput renders title and description from the evaluation.
func BuildPullRequestInput(sc entities.StepContext) entities.PullRequestInput {
	ev := sc.Evaluation
	to := evaluation.PortedVersion(ev.UpstreamVersion)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Upgrades the ported `%s` from upstream `%s` to `%s` (%s).\n\n",
		ev.ComponentName, evaluation.PortedVersion(ev.CurrentVersion), to, sc.Porte.UpstreamRepo)
	fmt.Fprintf(&sb, "- **Decision:** %s\n", ev.Decision)
	fmt.Fprintf(&sb, "- **Reason:** %s\n", ev.DecisionReason)
	fmt.Fprintf(&sb, "- **Confidence:** %.2f\n", ev.ConfidenceScore)
	if risk := ev.RiskAssessment; risk != nil {
		fmt.Fprintf(&sb, "- **Total risk:** %.2f\n", risk.TotalRisk)
	}
	if analysis := ev.ChangeAnalysis; analysis != nil {
		fmt.Fprintf(&sb, "- **Change:** %s, %d files, +%d/-%d lines\n",
			analysis.ChangeType, analysis.FilesAffected, analysis.LinesAdded, analysis.LinesDeleted)
		if len(analysis.BreakingChanges) > 0 {
			sb.WriteString("\n### Breaking changes\n\n")
			for _, change := range analysis.BreakingChanges {
				fmt.Fprintf(&sb, "- %s\n", change)
			}
		}
		if len(analysis.Advisories) > 0 {
			sb.WriteString("\n### Security advisories\n\n")
			for _, id := range analysis.Advisories {
				fmt.Fprintf(&sb, "- %s\n", id)
			}
		}
	}
	fmt.Fprintf(&sb, "\nEvaluation `%s`, pipeline execution `%s`.\n", ev.ID, sc.ExecutionID)

	return entities.PullRequestInput{
		Repository:   sc.Porte.Repository,
		SourceBranch: sc.BranchName,
		TargetBranch: sc.BaseBranch,
		Title:        fmt.Sprintf("chore(porte): upgrade `%s` to `%s`", ev.ComponentName, to),
		Description:  sb.String(),
	}
}
