package pipeline

import (
	"errors"
	"fmt"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

var errMetricMissing = errors.New("metric not reported")

// IsGate reports whether the step is a quality gate.
func IsGate(stepType string) bool {
	switch stepType {
	case StepRunUnitTests, StepSecurityScan, StepPerformanceCheck:
		return true
	default:
		return false
	}
}

// CheckGate evaluates the quality gate of a validation step against the
// metrics it reported. Non-gate steps always pass.
func CheckGate(stepType string, metrics map[string]float64, settings entities.PipelineSettings) error {
	switch stepType {
	case StepRunUnitTests:
		coverage, ok := metrics[entities.MetricCoverage]
		if !ok {
			return fmt.Errorf("coverage gate: %w", errMetricMissing)
		}
		if coverage < settings.TestCoverageThreshold {
			return fmt.Errorf("coverage gate: %.2f%% is below %.2f%%", coverage, settings.TestCoverageThreshold)
		}
	case StepSecurityScan:
		critical, criticalOK := metrics[entities.MetricCriticalVulnerabilities]
		high, highOK := metrics[entities.MetricHighVulnerabilities]
		if !criticalOK && !highOK {
			return fmt.Errorf("vulnerability gate: %w", errMetricMissing)
		}
		if critical+high > 0 {
			return fmt.Errorf("vulnerability gate: %.0f critical and %.0f high vulnerabilities", critical, high)
		}
	case StepPerformanceCheck:
		regression, ok := metrics[entities.MetricPerformanceRegression]
		if !ok {
			return fmt.Errorf("performance gate: %w", errMetricMissing)
		}
		if regression > settings.PerformanceRegressionThreshold {
			return fmt.Errorf("performance gate: %.2f%% regression exceeds %.2f%%",
				regression, settings.PerformanceRegressionThreshold)
		}
	}
	return nil
}
