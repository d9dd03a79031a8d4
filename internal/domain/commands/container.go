package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	constructors := []any{
		NewMonitorCommand,
		NewImplementCommand,
		NewApproveCommand,
		NewRetireCommand,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *MonitorCommand) Monitor {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ImplementCommand) Implement {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ApproveCommand) Approve {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *RetireCommand) Retire {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
