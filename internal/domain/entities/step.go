package entities

// Metric keys reported by validation steps and checked by the quality gates.
const (
	MetricCoverage                = "coverage"
	MetricCriticalVulnerabilities = "critical_vulnerabilities"
	MetricHighVulnerabilities     = "high_vulnerabilities"
	MetricPerformanceRegression   = "performance_regression"
)

// StepContext is what a step handler sees of the running pipeline.
type StepContext struct {
	ExecutionID string
	Stage       string
	StepType    string
	Evaluation  *VersionEvaluation
	Porte       PorteSettings
	BranchName  string
	BaseBranch  string
	DryRun      bool
	// Outputs holds the results of earlier steps of the same execution, keyed
	// by step type.
	Outputs map[string]map[string]any
}

// StepOutput is the successful result of a step.
type StepOutput struct {
	Result  map[string]any
	Metrics map[string]float64
	Skipped bool
}
