package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/portetrack/internal/domain/repositories"
	goRepo "github.com/rios0rios0/portetrack/internal/infrastructure/repositories/golang"
	jsRepo "github.com/rios0rios0/portetrack/internal/infrastructure/repositories/javascript"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/metrics"
	pyRepo "github.com/rios0rios0/portetrack/internal/infrastructure/repositories/python"
	tfRepo "github.com/rios0rios0/portetrack/internal/infrastructure/repositories/terraform"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register dialector registry with all database drivers
	if err := container.Provide(NewDefaultDialectorRegistry); err != nil {
		return err
	}

	// Register manifest registry with all manifest parsers
	if err := container.Provide(func() *ManifestRegistry {
		reg := NewManifestRegistry()
		reg.Register(tfRepo.NewManifestRepository())
		reg.Register(goRepo.NewManifestRepository())
		reg.Register(pyRepo.NewManifestRepository())
		reg.Register(jsRepo.NewManifestRepository())
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(NewEnvironmentRepository); err != nil {
		return err
	}
	if err := container.Provide(func(impl *EnvironmentRepository) domainRepos.EnvironmentRepository {
		return impl
	}); err != nil {
		return err
	}

	if err := container.Provide(metrics.NewPrometheusMetricsRepository); err != nil {
		return err
	}
	return container.Provide(func(impl *metrics.PrometheusMetricsRepository) domainRepos.MetricsRepository {
		return impl
	})
}
