package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// Retire is the interface for the retire command.
type Retire interface {
	Execute(ctx context.Context, settings *entities.Settings, componentName string) error
}

// RetireCommand releases the ACTIVE registry slot of a component so that it
// can be registered again from a fresh port.
type RetireCommand struct {
	environments repositories.EnvironmentRepository
}

// NewRetireCommand creates a new RetireCommand.
func NewRetireCommand(environments repositories.EnvironmentRepository) *RetireCommand {
	return &RetireCommand{environments: environments}
}

func (it *RetireCommand) Execute(ctx context.Context, settings *entities.Settings, componentName string) error {
	env, err := it.environments.Open(ctx, settings)
	if err != nil {
		return err
	}
	defer closeEnvironment(env)

	if err = env.Store.RetirePorte(ctx, componentName); err != nil {
		return err
	}
	logger.Infof("[%s] Retired", componentName)
	return nil
}
