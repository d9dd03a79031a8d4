package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// ApproveController handles the "approve" subcommand.
type ApproveController struct {
	command commands.Approve
}

// NewApproveController creates a new ApproveController.
func NewApproveController(command commands.Approve) *ApproveController {
	return &ApproveController{command: command}
}

// GetBind returns the Cobra command metadata for the approve controller.
func (it *ApproveController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "approve",
		Short: "Approve an evaluation that is waiting for review",
	}
}

// Execute approves the evaluation so that "implement" can run it.
func (it *ApproveController) Execute(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	applyVerbose(cmd)

	evaluationID, _ := cmd.Flags().GetString("evaluation-id")

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ev, err := it.command.Execute(ctx, settings, evaluationID)
	if err != nil {
		logger.Errorf("Approval failed: %v", err)
		return err
	}
	printEvaluation(cmd.OutOrStdout(), ev)
	return nil
}

// AddFlags adds the approve-specific flags to the given Cobra command.
func (it *ApproveController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("evaluation-id", "", "Evaluation to approve")
	_ = cmd.MarkFlagRequired("evaluation-id")
}
