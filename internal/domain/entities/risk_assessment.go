package entities

// Sub-score names used as keys of RiskAssessment.ComponentScores.
const (
	ScoreBreaking           = "breaking"
	ScoreSecurity           = "security"
	ScoreMagnitude          = "magnitude"
	ScoreDependencyChurn    = "dependency_churn"
	ScoreCoverageRegression = "coverage_regression"
)

// Flags raised when a single sub-score crosses its alarm threshold.
const (
	FlagBreakingChange   = "breaking_change"
	FlagSecurityAdvisory = "security_advisory"
	FlagLowCoverage      = "low_coverage"
)

// RiskAssessment is the normalised risk of adopting a change.
type RiskAssessment struct {
	TotalRisk       float64            `json:"totalRisk"`
	ComponentScores map[string]float64 `json:"componentScores"`
	Flags           []string           `json:"flags"`
	SecurityImpact  SecurityImpact     `json:"securityImpact"`
}

// HasFlag reports whether the named flag was raised.
func (r *RiskAssessment) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
