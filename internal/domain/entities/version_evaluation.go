package entities

import (
	"fmt"
	"time"
)

// Decision is the policy outcome for an upstream version.
type Decision string

const (
	DecisionPending            Decision = "PENDING"
	DecisionAutoApprove        Decision = "AUTO_APPROVE"
	DecisionConditionalApprove Decision = "CONDITIONAL_APPROVE"
	DecisionManualReview       Decision = "MANUAL_REVIEW"
	DecisionReject             Decision = "REJECT"
	DecisionSecurityPatch      Decision = "SECURITY_PATCH"
)

// EvaluationStatus tracks where an evaluation is in its lifecycle.
type EvaluationStatus string

const (
	EvaluationStatusPending     EvaluationStatus = "pending"
	EvaluationStatusEvaluated   EvaluationStatus = "evaluated"
	EvaluationStatusApproved    EvaluationStatus = "approved"
	EvaluationStatusImplemented EvaluationStatus = "implemented"
	EvaluationStatusFailed      EvaluationStatus = "failed"
)

// RequiresApproval reports whether a human must approve the decision before
// the implementation pipeline may run.
func (d Decision) RequiresApproval() bool {
	switch d {
	case DecisionConditionalApprove, DecisionManualReview, DecisionSecurityPatch:
		return true
	default:
		return false
	}
}

// VersionEvaluation records the analysis and decision for one upstream
// version of one porte.
type VersionEvaluation struct {
	ID              string
	PorteVersionID  string
	ComponentName   string
	UpstreamVersion string
	CurrentVersion  string
	Decision        Decision
	DecisionReason  string
	ConfidenceScore float64
	ChangeAnalysis  *ChangeAnalysis
	RiskAssessment  *RiskAssessment
	Implemented     bool
	Status          EvaluationStatus
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewVersionEvaluation creates a pending evaluation for an ACTIVE porte.
func NewVersionEvaluation(id string, porte *PorteVersion, upstreamVersion string) (*VersionEvaluation, error) {
	if !porte.IsActive() {
		return nil, fmt.Errorf("porte %q is %s, evaluations need an ACTIVE porte", porte.ComponentName, porte.Status)
	}
	now := time.Now().UTC()
	return &VersionEvaluation{
		ID:              id,
		PorteVersionID:  porte.ID,
		ComponentName:   porte.ComponentName,
		UpstreamVersion: upstreamVersion,
		CurrentVersion:  porte.PortedVersion,
		Decision:        DecisionPending,
		Status:          EvaluationStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Decide records the one-shot transition out of PENDING.
func (e *VersionEvaluation) Decide(decision Decision, reason string, confidence float64) error {
	if e.Decision != DecisionPending {
		return fmt.Errorf("%w: %s is already %s", ErrDecisionAlreadyMade, e.ID, e.Decision)
	}
	if decision == DecisionPending {
		return fmt.Errorf("evaluation %s: decision must leave %s", e.ID, DecisionPending)
	}
	e.Decision = decision
	e.DecisionReason = reason
	e.ConfidenceScore = confidence
	e.Status = EvaluationStatusEvaluated
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Reopen puts an undecided evaluation back to pending so it can be analysed
// and decided again, starting from the given ported version.
func (e *VersionEvaluation) Reopen(currentVersion string) error {
	if e.Decision != DecisionPending {
		return fmt.Errorf("%w: %s is already %s", ErrDecisionAlreadyMade, e.ID, e.Decision)
	}
	e.CurrentVersion = currentVersion
	e.Status = EvaluationStatusPending
	e.ErrorMessage = ""
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail marks the evaluation as failed with the given cause.
func (e *VersionEvaluation) Fail(cause error) {
	e.Status = EvaluationStatusFailed
	e.ErrorMessage = cause.Error()
	e.UpdatedAt = time.Now().UTC()
}

// Approve records a human acknowledgment of a decision that requires one.
func (e *VersionEvaluation) Approve() error {
	if !e.Decision.RequiresApproval() {
		return fmt.Errorf("%w: decision %s cannot be approved", ErrNotApproved, e.Decision)
	}
	if e.Status != EvaluationStatusEvaluated {
		return fmt.Errorf("%w: evaluation %s is %s", ErrNotApproved, e.ID, e.Status)
	}
	e.Status = EvaluationStatusApproved
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// CanImplement reports whether the pipeline may run for this evaluation.
func (e *VersionEvaluation) CanImplement() bool {
	if e.Implemented {
		return false
	}
	if e.Decision == DecisionAutoApprove {
		return e.Status == EvaluationStatusEvaluated || e.Status == EvaluationStatusApproved
	}
	return e.Decision.RequiresApproval() && e.Status == EvaluationStatusApproved
}

// MarkImplemented flips the implemented flag once the pipeline has completed.
func (e *VersionEvaluation) MarkImplemented() error {
	if !e.CanImplement() {
		return fmt.Errorf("%w: %s (decision %s, status %s)", ErrNotApproved, e.ID, e.Decision, e.Status)
	}
	e.Implemented = true
	e.Status = EvaluationStatusImplemented
	e.UpdatedAt = time.Now().UTC()
	return nil
}
