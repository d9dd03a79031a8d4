//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// VersionEvaluationBuilder helps create evaluations with a fluent interface.
type VersionEvaluationBuilder struct {
	*testkit.BaseBuilder
	id              string
	porteVersionID  string
	componentName   string
	upstreamVersion string
	currentVersion  string
	decision        entities.Decision
	status          entities.EvaluationStatus
	implemented     bool
	totalRisk       float64
}

// NewVersionEvaluationBuilder creates an AUTO_APPROVE evaluation of widget 1.2.0 -> v1.3.0.
func NewVersionEvaluationBuilder() *VersionEvaluationBuilder {
	return &VersionEvaluationBuilder{
		BaseBuilder:     testkit.NewBaseBuilder(),
		id:              "eval-1",
		porteVersionID:  "porte-1",
		componentName:   "widget",
		upstreamVersion: "v1.3.0",
		currentVersion:  "1.2.0",
		decision:        entities.DecisionAutoApprove,
		status:          entities.EvaluationStatusEvaluated,
		totalRisk:       1.5,
	}
}

// WithID sets the evaluation id.
func (b *VersionEvaluationBuilder) WithID(id string) *VersionEvaluationBuilder {
	b.id = id
	return b
}

// WithPorteVersionID sets the registry record the evaluation belongs to.
func (b *VersionEvaluationBuilder) WithPorteVersionID(id string) *VersionEvaluationBuilder {
	b.porteVersionID = id
	return b
}

// WithComponentName sets the component name.
func (b *VersionEvaluationBuilder) WithComponentName(name string) *VersionEvaluationBuilder {
	b.componentName = name
	return b
}

// WithVersions sets the current and upstream versions.
func (b *VersionEvaluationBuilder) WithVersions(current, upstream string) *VersionEvaluationBuilder {
	b.currentVersion = current
	b.upstreamVersion = upstream
	return b
}

// WithDecision sets the decision.
func (b *VersionEvaluationBuilder) WithDecision(decision entities.Decision) *VersionEvaluationBuilder {
	b.decision = decision
	return b
}

// WithStatus sets the lifecycle status.
func (b *VersionEvaluationBuilder) WithStatus(status entities.EvaluationStatus) *VersionEvaluationBuilder {
	b.status = status
	return b
}

// Pending resets the evaluation to an undecided state.
func (b *VersionEvaluationBuilder) Pending() *VersionEvaluationBuilder {
	b.decision = entities.DecisionPending
	b.status = entities.EvaluationStatusPending
	return b
}

// Implemented marks the evaluation as already implemented.
func (b *VersionEvaluationBuilder) Implemented() *VersionEvaluationBuilder {
	b.implemented = true
	b.status = entities.EvaluationStatusImplemented
	return b
}

// Build creates the evaluation (satisfies testkit.Builder interface).
func (b *VersionEvaluationBuilder) Build() interface{} {
	return b.BuildEvaluation()
}

// BuildEvaluation creates the evaluation with a concrete return type.
func (b *VersionEvaluationBuilder) BuildEvaluation() *entities.VersionEvaluation {
	created := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return &entities.VersionEvaluation{
		ID:              b.id,
		PorteVersionID:  b.porteVersionID,
		ComponentName:   b.componentName,
		UpstreamVersion: b.upstreamVersion,
		CurrentVersion:  b.currentVersion,
		Decision:        b.decision,
		DecisionReason:  "test",
		ConfidenceScore: 1,
		ChangeAnalysis: &entities.ChangeAnalysis{
			ChangeType:     entities.ChangeTypeMinor,
			SecurityImpact: entities.SecurityImpactNone,
		},
		RiskAssessment: &entities.RiskAssessment{
			TotalRisk:       b.totalRisk,
			ComponentScores: map[string]float64{},
			Flags:           []string{},
			SecurityImpact:  entities.SecurityImpactNone,
		},
		Implemented: b.implemented,
		Status:      b.status,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *VersionEvaluationBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	fresh := NewVersionEvaluationBuilder()
	fresh.BaseBuilder = b.BaseBuilder
	*b = *fresh
	return b
}

// Clone creates a deep copy of the VersionEvaluationBuilder.
func (b *VersionEvaluationBuilder) Clone() testkit.Builder {
	clone := *b
	clone.BaseBuilder = b.BaseBuilder.Clone().(*testkit.BaseBuilder)
	return &clone
}
