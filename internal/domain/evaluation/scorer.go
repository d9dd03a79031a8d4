package evaluation

import (
	"math"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// Sub-score weights; they sum to 1 so the total stays within [0,10].
const (
	weightBreaking           = 0.35
	weightSecurity           = 0.30
	weightMagnitude          = 0.15
	weightDependencyChurn    = 0.10
	weightCoverageRegression = 0.10
)

// Alarm thresholds that raise a flag on a single sub-score.
const (
	alarmBreaking           = 5.0
	alarmSecurity           = 8.0
	alarmCoverageRegression = 5.0
)

const (
	maxScore              = 10.0
	defaultSizeNormalizer = 200.0
)

//nolint:gochecknoglobals // severity to score table
var securityScores = map[entities.SecurityImpact]float64{
	entities.SecurityImpactNone:     0,
	entities.SecurityImpactLow:      2,
	entities.SecurityImpactMedium:   5,
	entities.SecurityImpactHigh:     8,
	entities.SecurityImpactCritical: 10,
}

// RiskScorer turns a ChangeAnalysis into a RiskAssessment. It is a pure
// function of its input and the size normalizer.
type RiskScorer struct {
	sizeNormalizer float64
}

// NewRiskScorer creates a scorer; a non-positive normalizer means the default of 200.
func NewRiskScorer(sizeNormalizer float64) *RiskScorer {
	if sizeNormalizer <= 0 {
		sizeNormalizer = defaultSizeNormalizer
	}
	return &RiskScorer{sizeNormalizer: sizeNormalizer}
}

// Score computes the weighted risk and the alarm flags.
func (it *RiskScorer) Score(analysis *entities.ChangeAnalysis) *entities.RiskAssessment {
	impact := analysis.SecurityImpact
	if impact == "" {
		impact = entities.SecurityImpactNone
	}

	breaking := 0.0
	if n := len(analysis.BreakingChanges); n > 0 {
		breaking = math.Min(maxScore, 3+2*float64(n))
	}
	security := securityScores[impact]
	magnitude := math.Min(maxScore, float64(analysis.LinesAdded+analysis.LinesDeleted)/it.sizeNormalizer)
	churn := math.Min(maxScore, 2*float64(len(analysis.DependenciesAdded)+len(analysis.DependenciesRemoved)))
	coverage := math.Min(maxScore, math.Max(0, -analysis.TestCoverageDelta))

	total := weightBreaking*breaking +
		weightSecurity*security +
		weightMagnitude*magnitude +
		weightDependencyChurn*churn +
		weightCoverageRegression*coverage

	flags := []string{}
	if breaking >= alarmBreaking {
		flags = append(flags, entities.FlagBreakingChange)
	}
	if security >= alarmSecurity {
		flags = append(flags, entities.FlagSecurityAdvisory)
	}
	if coverage >= alarmCoverageRegression {
		flags = append(flags, entities.FlagLowCoverage)
	}

	return &entities.RiskAssessment{
		TotalRisk: clamp(round2(total), 0, maxScore),
		ComponentScores: map[string]float64{
			entities.ScoreBreaking:           round2(breaking),
			entities.ScoreSecurity:           round2(security),
			entities.ScoreMagnitude:          round2(magnitude),
			entities.ScoreDependencyChurn:    round2(churn),
			entities.ScoreCoverageRegression: round2(coverage),
		},
		Flags:          flags,
		SecurityImpact: impact,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
