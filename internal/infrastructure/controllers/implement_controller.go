package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// ImplementController handles the "implement" subcommand.
type ImplementController struct {
	command commands.Implement
}

// NewImplementController creates a new ImplementController.
func NewImplementController(command commands.Implement) *ImplementController {
	return &ImplementController{command: command}
}

// GetBind returns the Cobra command metadata for the implement controller.
func (it *ImplementController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "implement",
		Short: "Run the implementation pipeline for an evaluation",
		Long: `Run the preparation, application, validation and deployment stages
for an approved evaluation. A failure in the deployment stage, or one that
matches a rollback keyword, rolls the change back.`,
	}
}

// Execute runs the pipeline and prints the stage results. Stage and rollback
// failures are returned so that the process exits non-zero.
func (it *ImplementController) Execute(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	applyVerbose(cmd)

	evaluationID, _ := cmd.Flags().GetString("evaluation-id")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	execution, err := it.command.Execute(ctx, settings, commands.ImplementOptions{
		EvaluationID: evaluationID,
		DryRun:       dryRun,
	})
	if execution != nil {
		printExecution(cmd.OutOrStdout(), execution)
	}
	if err != nil {
		logger.Errorf("Implementation failed: %v", err)
		return err
	}
	return nil
}

// AddFlags adds the implement-specific flags to the given Cobra command.
func (it *ImplementController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("evaluation-id", "", "Evaluation to implement")
	cmd.Flags().Bool("dry-run", false, "Report what every stage would do without changing anything")
	_ = cmd.MarkFlagRequired("evaluation-id")
}
