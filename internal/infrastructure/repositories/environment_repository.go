package repositories

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	domainRepos "github.com/rios0rios0/portetrack/internal/domain/repositories"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/database"
	ghRepo "github.com/rios0rios0/portetrack/internal/infrastructure/repositories/github"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/notification"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/steps"
)

// EnvironmentRepository wires the settings-dependent collaborators of a run:
// the GitHub client, the database store, the notifier, the manifest parsers
// and the pipeline step handlers.
type EnvironmentRepository struct {
	dialectors *DialectorRegistry
	manifests  *ManifestRegistry
}

// NewEnvironmentRepository creates the environment factory.
func NewEnvironmentRepository(dialectors *DialectorRegistry, manifests *ManifestRegistry) *EnvironmentRepository {
	return &EnvironmentRepository{dialectors: dialectors, manifests: manifests}
}

func (it *EnvironmentRepository) Open(ctx context.Context, settings *entities.Settings) (*domainRepos.Environment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifests, err := it.manifests.Select(settings.Analysis.Manifests)
	if err != nil {
		return nil, &entities.ConfigurationError{Path: "analysis.manifests", Err: err}
	}

	client, err := ghRepo.NewClient(settings.GitHub)
	if err != nil {
		return nil, &entities.ConfigurationError{Path: "github", Err: err}
	}
	pullRequests := ghRepo.NewPullRequestRepository(client)

	handlers, rollback, err := steps.Build(settings.Pipeline, pullRequests)
	if err != nil {
		return nil, &entities.ConfigurationError{Path: "pipeline", Err: err}
	}

	dialector, err := it.dialectors.Get(settings.Database.Driver, settings.Database.DSN)
	if err != nil {
		return nil, &entities.ConfigurationError{Path: "database.driver", Err: err}
	}
	store, err := database.Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", settings.Database.Driver, err)
	}
	logger.Debugf("Opened %s database, %d manifest parser(s), %d step handler(s)",
		settings.Database.Driver, len(manifests), len(handlers))

	return &domainRepos.Environment{
		Store:        store,
		Upstream:     ghRepo.NewUpstreamRepository(client),
		PullRequests: pullRequests,
		Notifier:     notification.NewNotifierRepository(settings.Notifications),
		Manifests:    manifests,
		Steps:        handlers,
		Rollback:     rollback,
		Close:        store.Close,
	}, nil
}
