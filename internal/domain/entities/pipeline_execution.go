package entities

import (
	"fmt"
	"time"
)

// PipelineStatus is the state of one implementation attempt.
type PipelineStatus string

const (
	PipelineStatusRunning    PipelineStatus = "running"
	PipelineStatusCompleted  PipelineStatus = "completed"
	PipelineStatusFailed     PipelineStatus = "failed"
	PipelineStatusRolledBack PipelineStatus = "rolled_back"
)

// IsTerminal reports whether no further mutation is allowed.
func (s PipelineStatus) IsTerminal() bool {
	return s != PipelineStatusRunning
}

// Stage names, in execution order.
const (
	StagePreparation = "preparation"
	StageApplication = "application"
	StageValidation  = "validation"
	StageDeployment  = "deployment"
)

// StageOrder returns the fixed order in which stages run.
func StageOrder() []string {
	return []string{StagePreparation, StageApplication, StageValidation, StageDeployment}
}

// Stage and step outcomes.
const (
	ResultCompleted = "completed"
	ResultFailed    = "failed"
	ResultSkipped   = "skipped"
)

// StepResult is the tagged outcome of a single step.
type StepResult struct {
	StepType string         `json:"stepType"`
	Required bool           `json:"required"`
	Status   string         `json:"status"`
	Result   map[string]any `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// StageResult is the outcome of one stage and its steps, in step order.
type StageResult struct {
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	StartedAt   time.Time    `json:"startedAt"`
	CompletedAt time.Time    `json:"completedAt"`
	DurationMs  int64        `json:"durationMs"`
	StepResults []StepResult `json:"stepResults"`
}

// Step returns the result of the named step, if it ran.
func (s *StageResult) Step(stepType string) (StepResult, bool) {
	for _, r := range s.StepResults {
		if r.StepType == stepType {
			return r, true
		}
	}
	return StepResult{}, false
}

// RollbackSummary records an automatic rollback attempt.
type RollbackSummary struct {
	Attempted  bool     `json:"attempted"`
	Succeeded  bool     `json:"succeeded"`
	Reason     string   `json:"reason"`
	Attempts   int      `json:"attempts"`
	Error      string   `json:"error,omitempty"`
	StepsTaken []string `json:"stepsTaken,omitempty"`
}

// PipelineExecution is one attempt at implementing an evaluation.
type PipelineExecution struct {
	ID            string
	EvaluationID  string
	ComponentName string
	FromVersion   string
	ToVersion     string
	Status        PipelineStatus
	Stages        []StageResult
	DryRun        bool
	ErrorMessage  string
	Rollback      *RollbackSummary
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// AppendStage records a finished stage. Stages must arrive in StageOrder and
// only while the execution is running.
func (p *PipelineExecution) AppendStage(result StageResult) error {
	if p.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrExecutionFinished, p.ID, p.Status)
	}
	order := StageOrder()
	if len(p.Stages) >= len(order) || order[len(p.Stages)] != result.Name {
		return fmt.Errorf("pipeline %s: stage %q out of order after %d stage(s)", p.ID, result.Name, len(p.Stages))
	}
	p.Stages = append(p.Stages, result)
	return nil
}

// Stage returns the named stage result, if that stage ran.
func (p *PipelineExecution) Stage(name string) (StageResult, bool) {
	for _, s := range p.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// Finish sets the terminal status exactly once.
func (p *PipelineExecution) Finish(status PipelineStatus, errMsg string) error {
	if p.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrExecutionFinished, p.ID, p.Status)
	}
	if !status.IsTerminal() {
		return fmt.Errorf("pipeline %s: %s is not a terminal status", p.ID, status)
	}
	now := time.Now().UTC()
	p.Status = status
	p.ErrorMessage = errMsg
	p.CompletedAt = &now
	return nil
}
