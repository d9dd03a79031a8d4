package entities

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrVersionConflict     = errors.New("ported version was changed concurrently")
	ErrDecisionAlreadyMade = errors.New("evaluation decision already made")
	ErrExecutionFinished   = errors.New("pipeline execution already finished")
	ErrNotApproved         = errors.New("evaluation is not approved for implementation")
)

// ConfigurationError aborts the whole run.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ReleaseFetchError is raised when the release source cannot be read for one component.
type ReleaseFetchError struct {
	Repo string
	Err  error
}

func (e *ReleaseFetchError) Error() string {
	return fmt.Sprintf("failed to fetch releases of %s: %v", e.Repo, e.Err)
}

func (e *ReleaseFetchError) Unwrap() error { return e.Err }

// AnalysisError is raised when a change analysis cannot be produced.
type AnalysisError struct {
	Component string
	Err       error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of %s failed: %v", e.Component, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// StageExecutionError is a required-step failure; it aborts the pipeline.
type StageExecutionError struct {
	Stage string
	Step  string
	Err   error
}

func (e *StageExecutionError) Error() string {
	return fmt.Sprintf("stage %s: required step %s failed: %v", e.Stage, e.Step, e.Err)
}

func (e *StageExecutionError) Unwrap() error { return e.Err }

// RollbackError means the automatic rollback did not complete and an operator
// has to intervene.
type RollbackError struct {
	ExecutionID string
	Err         error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback of pipeline %s failed, manual intervention required: %v", e.ExecutionID, e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }
