package entities

// ChangeType classifies an upstream version bump.
type ChangeType string

const (
	ChangeTypeMajor      ChangeType = "major"
	ChangeTypeMinor      ChangeType = "minor"
	ChangeTypePatch      ChangeType = "patch"
	ChangeTypePrerelease ChangeType = "prerelease"
	ChangeTypeUnknown    ChangeType = "unknown"
)

// SecurityImpact is the highest advisory severity fixed within a version range.
type SecurityImpact string

const (
	SecurityImpactNone     SecurityImpact = "none"
	SecurityImpactLow      SecurityImpact = "low"
	SecurityImpactMedium   SecurityImpact = "medium"
	SecurityImpactHigh     SecurityImpact = "high"
	SecurityImpactCritical SecurityImpact = "critical"
)

// Uncertainties recorded while building an analysis. Each one lowers the
// confidence of the resulting decision without changing it.
const (
	UncertaintySemverFallback        = "semver_fallback"
	UncertaintyMissingCoverage       = "missing_coverage"
	UncertaintyDiffUnavailable       = "diff_unavailable"
	UncertaintyManifestsUnavailable  = "manifests_unavailable"
	UncertaintyAdvisoriesUnavailable = "advisories_unavailable"
)

//nolint:gochecknoglobals // severity lookup table
var securityImpactRank = map[SecurityImpact]int{
	SecurityImpactNone:     0,
	SecurityImpactLow:      1,
	SecurityImpactMedium:   2,
	SecurityImpactHigh:     3,
	SecurityImpactCritical: 4,
}

// ParseSecurityImpact maps an advisory severity string ("HIGH", "moderate", ...)
// to a SecurityImpact. Unknown values map to none.
func ParseSecurityImpact(severity string) SecurityImpact {
	switch normalizeSeverity(severity) {
	case "critical":
		return SecurityImpactCritical
	case "high":
		return SecurityImpactHigh
	case "medium", "moderate":
		return SecurityImpactMedium
	case "low":
		return SecurityImpactLow
	default:
		return SecurityImpactNone
	}
}

// HigherThan reports whether s is strictly more severe than other.
func (s SecurityImpact) HigherThan(other SecurityImpact) bool {
	return securityImpactRank[s] > securityImpactRank[other]
}

// ChangeAnalysis summarises what changed upstream between two versions.
// It is immutable once produced and owned by the evaluation that requested it.
type ChangeAnalysis struct {
	ChangeType          ChangeType     `json:"changeType"`
	FilesAffected       int            `json:"filesAffected"`
	LinesAdded          int            `json:"linesAdded"`
	LinesDeleted        int            `json:"linesDeleted"`
	ComplexityDelta     float64        `json:"complexityDelta"`
	TestCoverageDelta   float64        `json:"testCoverageDelta"`
	DependenciesAdded   []string       `json:"dependenciesAdded"`
	DependenciesRemoved []string       `json:"dependenciesRemoved"`
	BreakingChanges     []string       `json:"breakingChanges"`
	SecurityImpact      SecurityImpact `json:"securityImpact"`
	Advisories          []string       `json:"advisories,omitempty"`
	Uncertainties       []string       `json:"uncertainties,omitempty"`
}

// HasUncertainty reports whether the given fallback was hit while analysing.
func (a *ChangeAnalysis) HasUncertainty(name string) bool {
	for _, u := range a.Uncertainties {
		if u == name {
			return true
		}
	}
	return false
}
