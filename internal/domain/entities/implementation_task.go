package entities

import "time"

// TaskType identifies deferred follow-up work created by a decision.
type TaskType string

const (
	TaskTypeManualReview              TaskType = "manual_review"
	TaskTypeConditionalAcknowledgment TaskType = "conditional_acknowledgment"
	TaskTypeSecurityPatch             TaskType = "security_patch"
)

// TaskStatus is the state of a queued task.
type TaskStatus string

const (
	TaskStatusQueued   TaskStatus = "queued"
	TaskStatusDone     TaskStatus = "done"
	TaskStatusCanceled TaskStatus = "canceled"
)

// ImplementationTask is a queued work item for a decision that cannot be
// executed automatically.
type ImplementationTask struct {
	ID            string
	EvaluationID  string
	ComponentName string
	TaskType      TaskType
	Status        TaskStatus
	Priority      int // lower runs first
	ScheduledAt   time.Time
}

// TaskForDecision returns the task type and priority a decision requires, or
// false when the decision needs no follow-up.
func TaskForDecision(decision Decision) (TaskType, int, bool) {
	switch decision {
	case DecisionSecurityPatch:
		return TaskTypeSecurityPatch, 1, true
	case DecisionManualReview:
		return TaskTypeManualReview, 2, true
	case DecisionConditionalApprove:
		return TaskTypeConditionalAcknowledgment, 3, true
	default:
		return "", 0, false
	}
}
