package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// RetireController handles the "retire" subcommand.
type RetireController struct {
	command commands.Retire
}

// NewRetireController creates a new RetireController.
func NewRetireController(command commands.Retire) *RetireController {
	return &RetireController{command: command}
}

// GetBind returns the Cobra command metadata for the retire controller.
func (it *RetireController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "retire",
		Short: "Stop tracking the ACTIVE porte of a component",
		Long: `Mark the ACTIVE porte of a component as RETIRED. The history is kept;
the next monitor run registers the component again.`,
	}
}

// Execute retires the porte.
func (it *RetireController) Execute(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	applyVerbose(cmd)

	component, _ := cmd.Flags().GetString("component")

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if err = it.command.Execute(ctx, settings, component); err != nil {
		logger.Errorf("Retire failed: %v", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Retired the ACTIVE porte of %s\n", component)
	return nil
}

// AddFlags adds the retire-specific flags to the given Cobra command.
func (it *RetireController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("component", "", "Component whose porte is retired")
	_ = cmd.MarkFlagRequired("component")
}
