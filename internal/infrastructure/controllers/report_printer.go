package controllers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

func outcomeColor(outcome commands.Outcome) *color.Color {
	switch outcome {
	case commands.OutcomeUpToDate:
		return color.New(color.FgGreen)
	case commands.OutcomeNewVersion:
		return color.New(color.FgHiCyan)
	case commands.OutcomeAlreadyEvaluated:
		return color.New(color.FgHiBlack)
	default:
		return color.New(color.FgRed)
	}
}

func decisionColor(decision entities.Decision) *color.Color {
	switch decision {
	case entities.DecisionAutoApprove:
		return color.New(color.FgHiGreen)
	case entities.DecisionConditionalApprove:
		return color.New(color.FgYellow)
	case entities.DecisionManualReview:
		return color.New(color.FgHiYellow)
	case entities.DecisionSecurityPatch:
		return color.New(color.FgHiMagenta)
	case entities.DecisionReject:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case entities.ResultCompleted:
		return color.New(color.FgGreen)
	case string(entities.PipelineStatusRolledBack), entities.ResultSkipped:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// printMonitorReport renders one line per component followed by the totals.
func printMonitorReport(w io.Writer, report *commands.MonitorReport) {
	if report.DryRun {
		fmt.Fprintln(w, color.New(color.FgHiYellow).Sprint("[dry-run] nothing was written"))
	}
	for _, c := range report.Components {
		line := fmt.Sprintf("%-24s %s", c.ComponentName, outcomeColor(c.Outcome).Sprintf("%-17s", c.Outcome))
		switch {
		case c.Error != "":
			line += " " + color.New(color.FgRed).Sprint(c.Error)
		case c.Outcome == commands.OutcomeNewVersion:
			line += fmt.Sprintf(" %s -> %s %s risk=%.2f confidence=%.2f",
				c.CurrentVersion, c.LatestVersion,
				decisionColor(c.Decision).Sprint(c.Decision), c.TotalRisk, c.ConfidenceScore)
			if c.PipelineStatus != "" {
				line += " pipeline=" + statusColor(string(c.PipelineStatus)).Sprint(c.PipelineStatus)
			}
		default:
			line += " " + c.CurrentVersion
		}
		if c.SecurityAlerts > 0 {
			line += color.New(color.FgHiMagenta).Sprintf(" [%d security alert(s)]", c.SecurityAlerts)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d up to date, %d new versions processed, %d already evaluated, %s",
		report.UpToDate, report.NewVersionsProcessed, report.AlreadyEvaluated,
		errorCount(report.Errors))
	if report.SecurityAlerts > 0 {
		fmt.Fprintf(w, ", %d security alert(s)", report.SecurityAlerts)
	}
	fmt.Fprintln(w)
}

func errorCount(n int) string {
	text := fmt.Sprintf("%d errors", n)
	if n == 0 {
		return text
	}
	return color.New(color.FgRed).Sprint(text)
}

// printExecution renders the stages and steps of a pipeline execution.
func printExecution(w io.Writer, execution *entities.PipelineExecution) {
	header := fmt.Sprintf("Pipeline %s: %s %s -> %s", execution.ID, execution.ComponentName,
		execution.FromVersion, execution.ToVersion)
	if execution.DryRun {
		header += color.New(color.FgHiYellow).Sprint(" [dry-run]")
	}
	fmt.Fprintln(w, header)

	for _, stage := range execution.Stages {
		fmt.Fprintf(w, "  %-12s %s (%dms)\n", stage.Name, statusColor(stage.Status).Sprint(stage.Status), stage.DurationMs)
		for _, step := range stage.StepResults {
			line := fmt.Sprintf("    %-22s %s", step.StepType, statusColor(step.Status).Sprint(step.Status))
			if step.Error != "" {
				line += " " + firstLine(step.Error)
			}
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintf(w, "Status: %s\n", statusColor(string(execution.Status)).Sprint(execution.Status))
	if execution.ErrorMessage != "" {
		fmt.Fprintf(w, "Error: %s\n", execution.ErrorMessage)
	}
	if rb := execution.Rollback; rb != nil && rb.Attempted {
		fmt.Fprintf(w, "Rollback: succeeded=%t steps=%s\n", rb.Succeeded, strings.Join(rb.StepsTaken, ","))
	}
}

// printEvaluation renders the state of an evaluation after a decision.
func printEvaluation(w io.Writer, ev *entities.VersionEvaluation) {
	fmt.Fprintf(w, "Evaluation %s: %s %s -> %s %s (%s)\n", ev.ID, ev.ComponentName,
		ev.CurrentVersion, ev.UpstreamVersion, decisionColor(ev.Decision).Sprint(ev.Decision), ev.Status)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
