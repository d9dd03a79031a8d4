package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewMonitorController); err != nil {
		return err
	}
	if err := container.Provide(NewImplementController); err != nil {
		return err
	}
	if err := container.Provide(NewApproveController); err != nil {
		return err
	}
	if err := container.Provide(NewRetireController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	monitorController *MonitorController,
	implementController *ImplementController,
	approveController *ApproveController,
	retireController *RetireController,
) *[]entities.Controller {
	return &[]entities.Controller{
		monitorController,
		implementController,
		approveController,
		retireController,
	}
}
