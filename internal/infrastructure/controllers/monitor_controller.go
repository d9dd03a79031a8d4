package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// MonitorController handles the "monitor" subcommand (batch mode).
type MonitorController struct {
	command commands.Monitor
	metrics repositories.MetricsRepository
}

// NewMonitorController creates a new MonitorController.
func NewMonitorController(command commands.Monitor, metrics repositories.MetricsRepository) *MonitorController {
	return &MonitorController{command: command, metrics: metrics}
}

// GetBind returns the Cobra command metadata for the monitor controller.
func (it *MonitorController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "monitor",
		Short: "Check every porte for new upstream releases",
		Long: `Check the upstream repository of every configured porte for a newer
release, analyse what changed, score the risk and decide whether the upgrade
can be applied automatically.

This is the main command intended to be used in a cronjob. Approved
upgrades are implemented right away; the others are queued for review.`,
	}
}

// Execute runs one monitoring pass. Failures of single components are part
// of the report; only configuration errors make the command fail.
func (it *MonitorController) Execute(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	securityCheck, _ := cmd.Flags().GetBool("security-check")
	component, _ := cmd.Flags().GetString("component")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger.Info("Starting portetrack monitor run...")

	report, err := it.command.Execute(ctx, settings, commands.MonitorOptions{
		DryRun:        dryRun,
		SecurityCheck: securityCheck,
		Verbose:       verbose,
		Component:     component,
	})
	if err != nil {
		logger.Errorf("Monitor failed: %v", err)
		return err
	}
	printMonitorReport(cmd.OutOrStdout(), report)

	if metricsFile != "" {
		if writeErr := it.metrics.WriteTextfile(metricsFile); writeErr != nil {
			logger.Warnf("Failed to write metrics: %v", writeErr)
		} else {
			logger.Debugf("Metrics written to %s", metricsFile)
		}
	}
	return nil
}

// AddFlags adds the monitor-specific flags to the given Cobra command.
func (it *MonitorController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Analyse and decide without writing, notifying or implementing")
	cmd.Flags().Bool("security-check", false, "Also alert on published advisories affecting the ported versions")
	cmd.Flags().String("component", "", "Only monitor this component")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile after the run")
}
