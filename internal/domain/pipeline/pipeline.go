package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/evaluation"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// Request identifies the evaluation to implement and how.
type Request struct {
	EvaluationID string
	Porte        entities.PorteSettings
	DryRun       bool
}

// ImplementationPipeline drives an approved evaluation through the
// preparation, application, validation and deployment stages. Steps run one
// at a time; a required-step failure stops the pipeline.
type ImplementationPipeline struct {
	store    repositories.StoreRepository
	notifier repositories.NotifierRepository
	metrics  repositories.MetricsRepository
	rollback repositories.RollbackRepository
	handlers map[string]repositories.StepRepository
	settings entities.PipelineSettings
}

// NewImplementationPipeline indexes the step handlers of the environment by step type.
func NewImplementationPipeline(
	env *repositories.Environment,
	metrics repositories.MetricsRepository,
	settings entities.PipelineSettings,
) *ImplementationPipeline {
	handlers := make(map[string]repositories.StepRepository)
	for _, h := range env.Steps {
		for _, stepType := range h.StepTypes() {
			handlers[stepType] = h
		}
	}
	return &ImplementationPipeline{
		store:    env.Store,
		notifier: env.Notifier,
		metrics:  metrics,
		rollback: env.Rollback,
		handlers: handlers,
		settings: settings,
	}
}

// Run executes the pipeline. In dry-run mode nothing is persisted, no
// notification is sent and every handler is asked for its would-be result.
func (it *ImplementationPipeline) Run(ctx context.Context, req Request) (*entities.PipelineExecution, error) {
	ev, err := it.store.GetEvaluation(ctx, req.EvaluationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation %s: %w", req.EvaluationID, err)
	}
	if !req.DryRun && !ev.CanImplement() {
		return nil, fmt.Errorf("%w: %s (decision %s, status %s)", entities.ErrNotApproved, ev.ID, ev.Decision, ev.Status)
	}
	if err = it.checkSlot(ctx, ev); err != nil {
		return nil, err
	}

	execution := &entities.PipelineExecution{
		ID:            uuid.NewString(),
		EvaluationID:  ev.ID,
		ComponentName: ev.ComponentName,
		FromVersion:   ev.CurrentVersion,
		ToVersion:     ev.UpstreamVersion,
		Status:        entities.PipelineStatusRunning,
		DryRun:        req.DryRun,
		StartedAt:     time.Now().UTC(),
	}
	if !req.DryRun {
		if createErr := it.store.CreateExecution(ctx, execution); createErr != nil {
			return nil, fmt.Errorf("failed to record pipeline execution: %w", createErr)
		}
	}

	logger.Infof("[pipeline] %s: %s -> %s (execution %s, dry-run=%t)",
		ev.ComponentName, ev.CurrentVersion, ev.UpstreamVersion, execution.ID, req.DryRun)

	sc := entities.StepContext{
		ExecutionID: execution.ID,
		Evaluation:  ev,
		Porte:       req.Porte,
		BranchName:  it.settings.BranchPrefix + ev.ComponentName + "-" + evaluation.PortedVersion(ev.UpstreamVersion),
		BaseBranch:  it.settings.BaseBranch,
		DryRun:      req.DryRun,
		Outputs:     map[string]map[string]any{},
	}

	for _, stage := range Stages() {
		result, failure := it.runStage(ctx, stage, sc)
		if appendErr := execution.AppendStage(result); appendErr != nil {
			return execution, appendErr
		}
		if !req.DryRun {
			if saveErr := it.store.SaveStages(ctx, execution); saveErr != nil {
				logger.Warnf("[pipeline] Failed to persist stage %s of %s: %v", stage.Name, execution.ID, saveErr)
			}
		}
		it.metrics.ObserveStage(stage.Name, result.Status, time.Duration(result.DurationMs)*time.Millisecond)

		if failure != nil {
			return execution, it.fail(ctx, execution, sc, failure)
		}
	}

	return execution, it.complete(ctx, execution, ev, sc)
}

// checkSlot refuses an evaluation whose starting version is no longer the
// ported version of the component.
func (it *ImplementationPipeline) checkSlot(ctx context.Context, ev *entities.VersionEvaluation) error {
	current, err := it.store.GetCurrentVersion(ctx, ev.ComponentName)
	if err != nil {
		return fmt.Errorf("failed to read ported version of %s: %w", ev.ComponentName, err)
	}
	if current == nil {
		return fmt.Errorf("%w: %s has no active porte", entities.ErrVersionConflict, ev.ComponentName)
	}
	if *current != ev.CurrentVersion {
		return fmt.Errorf("%w: evaluation %s starts from %s but %s is at %s",
			entities.ErrVersionConflict, ev.ID, ev.CurrentVersion, ev.ComponentName, *current)
	}
	return nil
}

func (it *ImplementationPipeline) runStage(
	ctx context.Context,
	stage StageSpec,
	sc entities.StepContext,
) (entities.StageResult, *entities.StageExecutionError) {
	stageCtx, cancel := context.WithTimeout(ctx, it.settings.StageTimeout(stage.Name))
	defer cancel()

	started := time.Now().UTC()
	result := entities.StageResult{Name: stage.Name, StartedAt: started, Status: entities.ResultCompleted}
	sc.Stage = stage.Name

	var failure *entities.StageExecutionError
	for _, step := range stage.Steps {
		stepResult, err := it.runStep(stageCtx, step, sc)
		result.StepResults = append(result.StepResults, stepResult)
		if err == nil {
			continue
		}
		if !step.Required {
			logger.Warnf("[pipeline] Optional step %s/%s failed, continuing: %v", stage.Name, step.Type, err)
			continue
		}
		failure = &entities.StageExecutionError{Stage: stage.Name, Step: step.Type, Err: err}
		result.Status = entities.ResultFailed
		break
	}

	result.CompletedAt = time.Now().UTC()
	result.DurationMs = result.CompletedAt.Sub(started).Milliseconds()
	logger.Debugf("[pipeline] Stage %s %s in %dms", stage.Name, result.Status, result.DurationMs)
	return result, failure
}

func (it *ImplementationPipeline) runStep(
	ctx context.Context,
	step StepSpec,
	sc entities.StepContext,
) (entities.StepResult, error) {
	sc.StepType = step.Type
	stepResult := entities.StepResult{StepType: step.Type, Required: step.Required}

	handler, ok := it.handlers[step.Type]
	if !ok {
		if IsGate(step.Type) && !sc.DryRun {
			err := CheckGate(step.Type, nil, it.settings)
			stepResult.Status = entities.ResultFailed
			stepResult.Error = err.Error()
			return stepResult, err
		}
		stepResult.Status = entities.ResultSkipped
		stepResult.Result = map[string]any{"reason": "no handler configured"}
		return stepResult, nil
	}

	attempts := 1
	if step.Type == StepHealthCheck && !sc.DryRun && it.settings.HealthCheckRetries > 1 {
		attempts = it.settings.HealthCheckRetries
	}

	var out entities.StepOutput
	var err error
	attempt := 0
	for attempt < attempts {
		attempt++
		out, err = handler.Execute(ctx, sc)
		if err == nil || ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			logger.Warnf("[pipeline] %s attempt %d/%d failed: %v", step.Type, attempt, attempts, err)
		}
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("stage %s timed out: %w", sc.Stage, err)
	}
	if err == nil && IsGate(step.Type) && !sc.DryRun {
		err = CheckGate(step.Type, out.Metrics, it.settings)
	}

	stepResult.Result = mergeResult(out)
	if attempts > 1 {
		stepResult.Result["attempts"] = attempt
	}
	switch {
	case err != nil:
		stepResult.Status = entities.ResultFailed
		stepResult.Error = err.Error()
	case out.Skipped:
		stepResult.Status = entities.ResultSkipped
	default:
		stepResult.Status = entities.ResultCompleted
	}
	sc.Outputs[step.Type] = stepResult.Result
	return stepResult, err
}

func mergeResult(out entities.StepOutput) map[string]any {
	merged := make(map[string]any, len(out.Result)+len(out.Metrics))
	for k, v := range out.Result {
		merged[k] = v
	}
	for k, v := range out.Metrics {
		merged[k] = v
	}
	return merged
}

func (it *ImplementationPipeline) fail(
	ctx context.Context,
	execution *entities.PipelineExecution,
	sc entities.StepContext,
	failure *entities.StageExecutionError,
) error {
	logger.Errorf("[pipeline] %s: %v", execution.ComponentName, failure)

	var result error = failure
	status := entities.PipelineStatusFailed

	if ShouldRollback(failure.Stage, failure, it.settings.RollbackKeywords) {
		if sc.DryRun {
			execution.Rollback = &entities.RollbackSummary{Reason: "dry-run: rollback would be attempted"}
		} else {
			execution.Rollback = it.rollbackExecution(ctx, sc, failure)
			if execution.Rollback.Succeeded {
				status = entities.PipelineStatusRolledBack
			} else {
				result = &entities.RollbackError{ExecutionID: execution.ID, Err: errors.New(execution.Rollback.Error)}
			}
		}
	}

	if finishErr := execution.Finish(status, failure.Error()); finishErr != nil {
		return errors.Join(result, finishErr)
	}
	it.metrics.ObservePipeline(string(status))
	if sc.DryRun {
		return result
	}

	if finishErr := it.store.FinishExecution(ctx, execution); finishErr != nil {
		logger.Warnf("[pipeline] Failed to persist status of %s: %v", execution.ID, finishErr)
	}
	it.notify(ctx, failedAlert(execution, failure))

	var rollbackErr *entities.RollbackError
	if errors.As(result, &rollbackErr) {
		logger.Errorf("[pipeline] %v", rollbackErr)
		it.notify(ctx, rollbackFailedAlert(execution, rollbackErr))
	}
	return result
}

// rollbackExecution runs the rollback handler and verifies health, both
// within the rollback timeout.
func (it *ImplementationPipeline) rollbackExecution(
	ctx context.Context,
	sc entities.StepContext,
	failure error,
) *entities.RollbackSummary {
	summary := &entities.RollbackSummary{Attempted: true, Reason: failure.Error()}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), it.settings.RollbackTimeout)
	defer cancel()

	if it.rollback == nil {
		summary.Error = "no rollback handler configured"
		return summary
	}

	logger.Warnf("[pipeline] Rolling back %s: %v", sc.Evaluation.ComponentName, failure)
	steps, err := it.rollback.Rollback(rctx, sc)
	summary.StepsTaken = steps
	if err != nil {
		summary.Error = err.Error()
		return summary
	}

	health, ok := it.handlers[StepHealthCheck]
	if !ok {
		summary.Succeeded = true
		return summary
	}

	retries := max(1, it.settings.HealthCheckRetries)
	sc.Stage = entities.StageDeployment
	sc.StepType = StepHealthCheck
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if rctx.Err() != nil {
			lastErr = fmt.Errorf("rollback timed out after %s: %w", it.settings.RollbackTimeout, rctx.Err())
			break
		}
		summary.Attempts = attempt
		if _, lastErr = health.Execute(rctx, sc); lastErr == nil {
			summary.Succeeded = true
			return summary
		}
	}
	summary.Error = fmt.Sprintf("health check after rollback failed: %v", lastErr)
	return summary
}

func (it *ImplementationPipeline) complete(
	ctx context.Context,
	execution *entities.PipelineExecution,
	ev *entities.VersionEvaluation,
	sc entities.StepContext,
) error {
	if sc.DryRun {
		it.metrics.ObservePipeline(string(entities.PipelineStatusCompleted))
		logger.Infof("[pipeline] Dry-run of %s completed, nothing was changed", execution.ComponentName)
		return execution.Finish(entities.PipelineStatusCompleted, "")
	}

	ported := evaluation.PortedVersion(ev.UpstreamVersion)
	err := it.store.UpdatePortedVersion(ctx, ev.ComponentName, ev.CurrentVersion, ported, ev.UpstreamVersion)
	if errors.Is(err, entities.ErrVersionConflict) {
		// the deployment already happened, so a lost slot is a deployment failure
		return it.fail(ctx, execution, sc, &entities.StageExecutionError{
			Stage: entities.StageDeployment,
			Step:  StepRecordImplementation,
			Err:   fmt.Errorf("failed to record implementation of %s: %w", ev.ID, err),
		})
	}
	if err == nil {
		err = ev.MarkImplemented()
	}
	if err == nil {
		err = it.store.MarkEvaluationAsImplemented(ctx, ev.ID)
	}
	if err != nil {
		err = fmt.Errorf("failed to record implementation of %s: %w", ev.ID, err)
		if finishErr := execution.Finish(entities.PipelineStatusFailed, err.Error()); finishErr == nil {
			if storeErr := it.store.FinishExecution(ctx, execution); storeErr != nil {
				logger.Warnf("[pipeline] Failed to persist status of %s: %v", execution.ID, storeErr)
			}
		}
		it.metrics.ObservePipeline(string(entities.PipelineStatusFailed))
		it.notify(ctx, failedAlert(execution, err))
		return err
	}

	if closeErr := it.store.CloseTasks(ctx, ev.ID, entities.TaskStatusDone); closeErr != nil {
		logger.Warnf("[pipeline] Failed to close tasks of %s: %v", ev.ID, closeErr)
	}
	if finishErr := execution.Finish(entities.PipelineStatusCompleted, ""); finishErr != nil {
		return finishErr
	}
	if storeErr := it.store.FinishExecution(ctx, execution); storeErr != nil {
		logger.Warnf("[pipeline] Failed to persist status of %s: %v", execution.ID, storeErr)
	}
	it.metrics.ObservePipeline(string(entities.PipelineStatusCompleted))

	prURL, _ := sc.Outputs[StepOpenPullRequest]["url"].(string)
	it.notify(ctx, completedAlert(execution, prURL))
	logger.Infof("[pipeline] %s is now at %s", ev.ComponentName, ported)
	return nil
}

func (it *ImplementationPipeline) notify(ctx context.Context, alert entities.Alert) {
	if it.notifier == nil {
		return
	}
	if err := it.notifier.Send(ctx, alert); err != nil {
		logger.Warnf("[pipeline] Failed to send %s notification: %v", alert.Type, err)
	}
}
