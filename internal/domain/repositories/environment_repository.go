package repositories

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// Environment groups the collaborators of a run that depend on the loaded
// settings (database DSN, tokens, webhook, pipeline commands).
type Environment struct {
	Store        StoreRepository
	Upstream     UpstreamRepository
	PullRequests PullRequestRepository
	Notifier     NotifierRepository
	Manifests    []ManifestRepository
	Steps        []StepRepository
	Rollback     RollbackRepository
	// Close releases the resources opened for the run (database pool).
	Close func() error
}

// EnvironmentRepository opens the Environment for a configuration.
type EnvironmentRepository interface {
	Open(ctx context.Context, settings *entities.Settings) (*Environment, error)
}
