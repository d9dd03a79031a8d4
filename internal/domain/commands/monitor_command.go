package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/evaluation"
	"github.com/rios0rios0/portetrack/internal/domain/pipeline"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// Monitor is the interface for the monitor command (one scheduled run).
type Monitor interface {
	Execute(ctx context.Context, settings *entities.Settings, opts MonitorOptions) (*MonitorReport, error)
}

// MonitorOptions holds runtime options for a single monitoring run.
type MonitorOptions struct {
	DryRun        bool
	SecurityCheck bool
	Verbose       bool
	Component     string // If set, only monitor this component
}

// Outcome is the result of monitoring one component.
type Outcome string

const (
	OutcomeUpToDate         Outcome = "up_to_date"
	OutcomeNewVersion       Outcome = "new_version"
	OutcomeAlreadyEvaluated Outcome = "already_evaluated"
	OutcomeError            Outcome = "error"
)

// ComponentReport is the per-component line of a run report.
type ComponentReport struct {
	ComponentName   string
	CurrentVersion  string
	LatestVersion   string
	Outcome         Outcome
	EvaluationID    string
	Decision        entities.Decision
	DecisionReason  string
	TotalRisk       float64
	ConfidenceScore float64
	PipelineStatus  entities.PipelineStatus
	PipelineError   string
	SecurityAlerts  int
	Error           string
}

// MonitorReport summarises a monitoring run.
type MonitorReport struct {
	DryRun               bool
	UpToDate             int
	NewVersionsProcessed int
	AlreadyEvaluated     int
	Errors               int
	SecurityAlerts       int
	Components           []ComponentReport
}

// MonitorCommand checks every configured porte for a newer upstream release
// and drives new versions through analysis, scoring and the decision policy.
type MonitorCommand struct {
	environments repositories.EnvironmentRepository
	metrics      repositories.MetricsRepository
	inflight     singleflight.Group
}

// NewMonitorCommand creates a new MonitorCommand.
func NewMonitorCommand(
	environments repositories.EnvironmentRepository,
	metrics repositories.MetricsRepository,
) *MonitorCommand {
	return &MonitorCommand{environments: environments, metrics: metrics}
}

// monitorRun carries the collaborators of one Execute call.
type monitorRun struct {
	env      *repositories.Environment
	settings *entities.Settings
	opts     MonitorOptions
	analyzer *evaluation.ChangeAnalyzer
	scorer   *evaluation.RiskScorer
	pipeline *pipeline.ImplementationPipeline
	metrics  repositories.MetricsRepository
}

// Execute runs one monitoring pass. Per-component failures are reported, not
// returned; only a failure to set the run up is an error.
func (it *MonitorCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts MonitorOptions,
) (*MonitorReport, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	env, err := it.environments.Open(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer closeEnvironment(env)

	analyzer, err := evaluation.NewChangeAnalyzer(env.Upstream, env.Manifests, settings.Analysis)
	if err != nil {
		return nil, &entities.ConfigurationError{Err: err}
	}
	run := &monitorRun{
		env:      env,
		settings: settings,
		opts:     opts,
		analyzer: analyzer,
		scorer:   evaluation.NewRiskScorer(settings.Analysis.SizeNormalizer),
		pipeline: pipeline.NewImplementationPipeline(env, it.metrics, settings.Pipeline),
		metrics:  it.metrics,
	}

	portes := selectPortes(settings, opts.Component)
	if len(portes) == 0 {
		return nil, &entities.ConfigurationError{Err: fmt.Errorf("no porte tracks component %q", opts.Component)}
	}

	reports := make([]ComponentReport, len(portes))
	var group errgroup.Group
	group.SetLimit(max(1, settings.Monitoring.Concurrency))
	for i, porte := range portes {
		group.Go(func() error {
			shared, _, _ := it.inflight.Do(porte.ComponentName, func() (any, error) {
				return run.process(ctx, porte), nil
			})
			reports[i] = shared.(ComponentReport)
			return nil
		})
	}
	_ = group.Wait()

	report := &MonitorReport{DryRun: opts.DryRun, Components: reports}
	for _, r := range reports {
		switch r.Outcome {
		case OutcomeUpToDate:
			report.UpToDate++
		case OutcomeNewVersion:
			report.NewVersionsProcessed++
		case OutcomeAlreadyEvaluated:
			report.AlreadyEvaluated++
		case OutcomeError:
			report.Errors++
		}
		report.SecurityAlerts += r.SecurityAlerts
		it.metrics.ObserveComponent(string(r.Outcome))
	}

	logger.Infof(
		"Run complete: %d up to date, %d new versions processed, %d already evaluated, %d errors",
		report.UpToDate, report.NewVersionsProcessed, report.AlreadyEvaluated, report.Errors,
	)
	return report, nil
}

// selectPortes returns the configured portes sorted by component name.
func selectPortes(settings *entities.Settings, component string) []entities.PorteSettings {
	portes := make([]entities.PorteSettings, 0, len(settings.Portes))
	for _, p := range settings.Portes {
		if component != "" && p.ComponentName != component {
			continue
		}
		portes = append(portes, p)
	}
	sort.Slice(portes, func(i, j int) bool { return portes[i].ComponentName < portes[j].ComponentName })
	return portes
}

func (r *monitorRun) process(ctx context.Context, porte entities.PorteSettings) ComponentReport {
	report := ComponentReport{ComponentName: porte.ComponentName}
	name := porte.ComponentName

	releases, err := r.env.Upstream.ListReleases(ctx, porte.UpstreamRepo)
	if err != nil {
		return r.failed(report, &entities.ReleaseFetchError{Repo: porte.UpstreamRepo, Err: err})
	}
	latest, found := evaluation.LatestRelease(releases, r.settings.Monitoring.IncludePrereleases)

	record, err := r.env.Store.GetActivePorte(ctx, name)
	if errors.Is(err, entities.ErrNotFound) {
		return r.register(ctx, porte, latest, found, report)
	}
	if err != nil {
		return r.failed(report, fmt.Errorf("failed to read registry: %w", err))
	}

	report.CurrentVersion = record.PortedVersion
	if r.opts.SecurityCheck {
		report.SecurityAlerts = r.checkAdvisories(ctx, porte, record.PortedVersion)
	}

	if !found {
		logger.Debugf("[%s] No eligible release in %s", name, porte.UpstreamRepo)
		report.Outcome = OutcomeUpToDate
		return report
	}
	report.LatestVersion = latest.TagName

	newer, fallback := evaluation.IsNewerVersion(record.PortedVersion, latest.TagName)
	if fallback {
		logger.Warnf("[%s] %q or %q is not a semantic version, compared as strings", name, record.PortedVersion, latest.TagName)
	}
	if !newer {
		logger.Infof("[%s] Up to date at %s", name, record.PortedVersion)
		report.Outcome = OutcomeUpToDate
		return report
	}

	existing, err := r.env.Store.FindEvaluation(ctx, record.ID, latest.TagName)
	switch {
	case err == nil && existing.Decision != entities.DecisionPending:
		logger.Infof("[%s] %s was already evaluated (%s)", name, latest.TagName, existing.Decision)
		report.Outcome = OutcomeAlreadyEvaluated
		report.EvaluationID = existing.ID
		report.Decision = existing.Decision
		return report
	case err == nil:
		// a previous run failed or stopped before the decision was saved
		logger.Warnf("[%s] Re-evaluating undecided evaluation %s of %s (status %s)",
			name, existing.ID, latest.TagName, existing.Status)
		return r.evaluate(ctx, porte, record, latest, releases, existing, report)
	case !errors.Is(err, entities.ErrNotFound):
		return r.failed(report, fmt.Errorf("failed to look up evaluations: %w", err))
	}

	return r.evaluate(ctx, porte, record, latest, releases, nil, report)
}

// register creates the registry record of a component seen for the first time.
func (r *monitorRun) register(
	ctx context.Context,
	porte entities.PorteSettings,
	latest entities.Release,
	found bool,
	report ComponentReport,
) ComponentReport {
	version := porte.CurrentVersion
	if version == "" && found {
		version = evaluation.PortedVersion(latest.TagName)
	}
	if version == "" {
		return r.failed(report, fmt.Errorf("no current_version configured and no release found in %s", porte.UpstreamRepo))
	}

	record := &entities.PorteVersion{
		ID:              uuid.NewString(),
		ComponentName:   porte.ComponentName,
		UpstreamRepo:    porte.UpstreamRepo,
		UpstreamVersion: version,
		PortedVersion:   version,
		Status:          entities.PorteStatusActive,
		PortDate:        nowUTC(),
		Author:          porte.Author,
	}
	if !r.opts.DryRun {
		if err := r.env.Store.RegisterPorte(ctx, record); err != nil {
			return r.failed(report, fmt.Errorf("failed to register porte: %w", err))
		}
	}
	logger.Infof("[%s] Registered at %s", porte.ComponentName, version)

	report.CurrentVersion = version
	if found {
		report.LatestVersion = latest.TagName
	}
	report.Outcome = OutcomeUpToDate
	return report
}

// evaluate runs analysis, scoring and the policy for a new upstream version.
// A non-nil existing evaluation is an undecided row left by an earlier run
// and is decided in place instead of creating a new one.
func (r *monitorRun) evaluate(
	ctx context.Context,
	porte entities.PorteSettings,
	record *entities.PorteVersion,
	latest entities.Release,
	releases []entities.Release,
	existing *entities.VersionEvaluation,
	report ComponentReport,
) ComponentReport {
	name := porte.ComponentName
	logger.Infof("[%s] New upstream version %s (current %s)", name, latest.TagName, record.PortedVersion)

	ev, err := r.openEvaluation(ctx, record, latest, existing)
	if err != nil {
		return r.failed(report, err)
	}
	report.EvaluationID = ev.ID

	analysis, err := r.analyzer.Analyze(ctx, name, porte.UpstreamRepo, record.PortedVersion, latest.TagName, releases)
	if err != nil {
		return r.failEvaluation(ctx, ev, report, err)
	}
	risk := r.scorer.Score(analysis)
	decision := evaluation.Decide(risk, porte.AutoApproval, analysis.Uncertainties)

	ev.ChangeAnalysis = analysis
	ev.RiskAssessment = risk
	if err = ev.Decide(decision.Decision, decision.Reason, decision.Confidence); err != nil {
		return r.failEvaluation(ctx, ev, report, err)
	}
	if !r.opts.DryRun {
		if err = r.env.Store.SaveDecision(ctx, ev); err != nil {
			return r.failEvaluation(ctx, ev, report, fmt.Errorf("failed to save decision: %w", err))
		}
		r.enqueueTask(ctx, ev)
		r.notify(ctx, newVersionAlert(ev, latest))
	}
	r.metrics.ObserveDecision(string(ev.Decision))

	logger.Infof("[%s] %s: %s (risk %.2f, confidence %.2f)",
		name, latest.TagName, ev.Decision, risk.TotalRisk, ev.ConfidenceScore)

	report.Outcome = OutcomeNewVersion
	report.Decision = ev.Decision
	report.DecisionReason = ev.DecisionReason
	report.TotalRisk = risk.TotalRisk
	report.ConfidenceScore = ev.ConfidenceScore

	if ev.Decision == entities.DecisionAutoApprove && !r.opts.DryRun {
		execution, runErr := r.pipeline.Run(ctx, pipeline.Request{EvaluationID: ev.ID, Porte: porte})
		if execution != nil {
			report.PipelineStatus = execution.Status
		}
		if runErr != nil {
			logger.Errorf("[%s] Pipeline failed: %v", name, runErr)
			report.PipelineError = runErr.Error()
		}
	}
	return report
}

func (r *monitorRun) openEvaluation(
	ctx context.Context,
	record *entities.PorteVersion,
	latest entities.Release,
	existing *entities.VersionEvaluation,
) (*entities.VersionEvaluation, error) {
	if existing != nil {
		if err := existing.Reopen(record.PortedVersion); err != nil {
			return nil, err
		}
		return existing, nil
	}

	ev, err := entities.NewVersionEvaluation(uuid.NewString(), record, latest.TagName)
	if err != nil {
		return nil, err
	}
	if !r.opts.DryRun {
		if err = r.env.Store.CreateEvaluation(ctx, ev); err != nil {
			return nil, fmt.Errorf("failed to create evaluation: %w", err)
		}
	}
	return ev, nil
}

func (r *monitorRun) enqueueTask(ctx context.Context, ev *entities.VersionEvaluation) {
	taskType, priority, needed := entities.TaskForDecision(ev.Decision)
	if !needed {
		return
	}
	task := &entities.ImplementationTask{
		ID:            uuid.NewString(),
		EvaluationID:  ev.ID,
		ComponentName: ev.ComponentName,
		TaskType:      taskType,
		Status:        entities.TaskStatusQueued,
		Priority:      priority,
		ScheduledAt:   nowUTC(),
	}
	if err := r.env.Store.EnqueueTask(ctx, task); err != nil {
		logger.Warnf("[%s] Failed to queue %s task: %v", ev.ComponentName, taskType, err)
	}
}

// checkAdvisories alerts on published advisories that affect the current version.
func (r *monitorRun) checkAdvisories(ctx context.Context, porte entities.PorteSettings, current string) int {
	advisories, err := r.env.Upstream.ListAdvisories(ctx, porte.UpstreamRepo)
	if err != nil {
		logger.Warnf("[%s] Security check skipped: %v", porte.ComponentName, err)
		return 0
	}

	alerts := 0
	for _, adv := range advisories {
		if !affects(adv, current) {
			continue
		}
		alerts++
		logger.Warnf("[%s] %s (%s) affects %s", porte.ComponentName, adv.ID, adv.Severity, current)
		if !r.opts.DryRun {
			r.notify(ctx, securityAlert(porte, current, adv))
		}
	}
	return alerts
}

func affects(adv entities.Advisory, version string) bool {
	for _, expr := range adv.VulnerableRanges {
		if evaluation.MatchesRange(version, expr) {
			return true
		}
	}
	return false
}

func (r *monitorRun) failEvaluation(
	ctx context.Context,
	ev *entities.VersionEvaluation,
	report ComponentReport,
	cause error,
) ComponentReport {
	ev.Fail(cause)
	if !r.opts.DryRun {
		if err := r.env.Store.UpdateEvaluationStatus(ctx, ev); err != nil {
			logger.Warnf("[%s] Failed to mark evaluation %s as failed: %v", ev.ComponentName, ev.ID, err)
		}
	}
	return r.failed(report, cause)
}

func (r *monitorRun) failed(report ComponentReport, cause error) ComponentReport {
	logger.Errorf("[%s] %v", report.ComponentName, cause)
	report.Outcome = OutcomeError
	report.Error = cause.Error()
	return report
}

func (r *monitorRun) notify(ctx context.Context, alert entities.Alert) {
	if err := r.env.Notifier.Send(ctx, alert); err != nil {
		logger.Warnf("Failed to send %s notification: %v", alert.Type, err)
	}
}

func closeEnvironment(env *repositories.Environment) {
	if env.Close == nil {
		return
	}
	if err := env.Close(); err != nil {
		logger.Warnf("Failed to close environment: %v", err)
	}
}
