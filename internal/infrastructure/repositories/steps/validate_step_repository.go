package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/pipeline"
)

// ValidateStepRepository re-checks the evaluation right before anything is touched.
type ValidateStepRepository struct{}

// NewValidateStepRepository creates the built-in validation step.
func NewValidateStepRepository() *ValidateStepRepository {
	return &ValidateStepRepository{}
}

func (it *ValidateStepRepository) StepTypes() []string {
	return []string{pipeline.StepValidateEvaluation}
}

func (it *ValidateStepRepository) Execute(_ context.Context, sc entities.StepContext) (entities.StepOutput, error) {
	ev := sc.Evaluation
	if ev == nil {
		return entities.StepOutput{}, errors.New("no evaluation in step context")
	}
	if ev.UpstreamVersion == "" {
		return entities.StepOutput{}, fmt.Errorf("evaluation %s has no upstream version", ev.ID)
	}
	if !sc.DryRun && !ev.CanImplement() {
		return entities.StepOutput{}, fmt.Errorf("%w: decision %s, status %s", entities.ErrNotApproved, ev.Decision, ev.Status)
	}

	result := map[string]any{
		"evaluation_id":    ev.ID,
		"decision":         string(ev.Decision),
		"upstream_version": ev.UpstreamVersion,
	}
	if ev.RiskAssessment != nil {
		result["total_risk"] = ev.RiskAssessment.TotalRisk
	}
	return entities.StepOutput{Result: result}, nil
}
