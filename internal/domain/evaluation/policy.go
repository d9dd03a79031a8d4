package evaluation

import (
	"fmt"
	"strings"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

const (
	confidencePerFlag        = 0.10
	confidencePerUncertainty = 0.15
	minConfidence            = 0.1
)

// PolicyResult is the outcome of the decision policy.
type PolicyResult struct {
	Decision   entities.Decision
	Reason     string
	Confidence float64
}

// Decide applies the approval policy to a risk assessment. The first rule
// that matches wins:
//
//  1. critical security impact or a security_advisory flag: SECURITY_PATCH
//  2. manual review required for the component: MANUAL_REVIEW
//  3. risk within autoApproveMax: AUTO_APPROVE
//  4. risk within conditionalApproveMax: CONDITIONAL_APPROVE
//  5. risk above rejectAbove: REJECT, otherwise MANUAL_REVIEW
//
// Uncertainties (fallbacks hit while analysing) only lower the confidence.
func Decide(
	risk *entities.RiskAssessment,
	thresholds entities.ApprovalThresholds,
	uncertainties []string,
) PolicyResult {
	result := PolicyResult{Confidence: confidence(len(risk.Flags), len(uncertainties))}

	switch {
	case risk.SecurityImpact == entities.SecurityImpactCritical || risk.HasFlag(entities.FlagSecurityAdvisory):
		result.Decision = entities.DecisionSecurityPatch
		result.Reason = fmt.Sprintf("security fix (impact %s), surfaced regardless of risk %.2f", risk.SecurityImpact, risk.TotalRisk)
	case thresholds.ManualReviewRequired:
		result.Decision = entities.DecisionManualReview
		result.Reason = "manual review required for this component"
	case risk.TotalRisk <= thresholds.AutoApproveMax:
		result.Decision = entities.DecisionAutoApprove
		result.Reason = fmt.Sprintf("risk %.2f within auto-approve threshold %.2f", risk.TotalRisk, thresholds.AutoApproveMax)
	case risk.TotalRisk <= thresholds.ConditionalApproveMax:
		result.Decision = entities.DecisionConditionalApprove
		result.Reason = fmt.Sprintf("risk %.2f within conditional-approve threshold %.2f", risk.TotalRisk, thresholds.ConditionalApproveMax)
	case risk.TotalRisk > thresholds.RejectAbove:
		result.Decision = entities.DecisionReject
		result.Reason = fmt.Sprintf("risk %.2f above rejection ceiling %.2f", risk.TotalRisk, thresholds.RejectAbove)
	default:
		result.Decision = entities.DecisionManualReview
		result.Reason = fmt.Sprintf("risk %.2f above conditional-approve threshold %.2f", risk.TotalRisk, thresholds.ConditionalApproveMax)
	}

	if len(risk.Flags) > 0 {
		result.Reason += " [flags: " + strings.Join(risk.Flags, ", ") + "]"
	}
	return result
}

func confidence(flags, uncertainties int) float64 {
	c := 1.0 - confidencePerFlag*float64(flags) - confidencePerUncertainty*float64(uncertainties)
	return clamp(round2(c), minConfidence, 1.0)
}
