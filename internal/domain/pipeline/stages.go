package pipeline

import "github.com/rios0rios0/portetrack/internal/domain/entities"

// Step types, grouped by stage.
const (
	StepValidateEvaluation  = "validate_evaluation"
	StepCreateBackup        = "create_backup"
	StepCreateBranch        = "create_branch"
	StepApplyChanges        = "apply_changes"
	StepUpdateChangelog     = "update_changelog"
	StepCommitChanges       = "commit_changes"
	StepRunUnitTests        = "run_unit_tests"
	StepSecurityScan        = "security_scan"
	StepPerformanceCheck    = "performance_check"
	StepRunIntegrationTests = "run_integration_tests"
	StepOpenPullRequest     = "open_pull_request"
	StepDeploy              = "deploy"
	StepHealthCheck         = "health_check"

	// StepRecordImplementation is not a planned step: it names the registry
	// update that follows the deployment stage.
	StepRecordImplementation = "record_implementation"
)

// StepSpec is one step of a stage.
type StepSpec struct {
	Type     string
	Required bool
}

// StageSpec is a named, ordered list of steps.
type StageSpec struct {
	Name  string
	Steps []StepSpec
}

// Stages returns the fixed stage plan in execution order.
func Stages() []StageSpec {
	return []StageSpec{
		{Name: entities.StagePreparation, Steps: []StepSpec{
			{Type: StepValidateEvaluation, Required: true},
			{Type: StepCreateBackup},
			{Type: StepCreateBranch, Required: true},
		}},
		{Name: entities.StageApplication, Steps: []StepSpec{
			{Type: StepApplyChanges, Required: true},
			{Type: StepUpdateChangelog},
			{Type: StepCommitChanges, Required: true},
		}},
		{Name: entities.StageValidation, Steps: []StepSpec{
			{Type: StepRunUnitTests, Required: true},
			{Type: StepSecurityScan, Required: true},
			{Type: StepPerformanceCheck, Required: true},
			{Type: StepRunIntegrationTests},
		}},
		{Name: entities.StageDeployment, Steps: []StepSpec{
			{Type: StepOpenPullRequest, Required: true},
			{Type: StepDeploy, Required: true},
			{Type: StepHealthCheck, Required: true},
		}},
	}
}
