//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// StubEnvironmentRepository hands out a fixed Environment.
type StubEnvironmentRepository struct {
	Environment *repositories.Environment
	OpenErr     error

	// spy
	OpenCalls  int
	CloseCalls int
}

var _ repositories.EnvironmentRepository = (*StubEnvironmentRepository)(nil)

// NewStubEnvironmentRepository wires an Environment around the given store and
// upstream, with a spy notifier and no step handlers.
func NewStubEnvironmentRepository(
	store *FakeStoreRepository,
	upstream *StubUpstreamRepository,
	notifier *SpyNotifierRepository,
) *StubEnvironmentRepository {
	return &StubEnvironmentRepository{
		Environment: &repositories.Environment{
			Store:        store,
			Upstream:     upstream,
			PullRequests: &StubPullRequestRepository{},
			Notifier:     notifier,
			Rollback:     &StubRollbackRepository{},
		},
	}
}

func (s *StubEnvironmentRepository) Open(_ context.Context, _ *entities.Settings) (*repositories.Environment, error) {
	s.OpenCalls++
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	env := *s.Environment
	env.Close = func() error {
		s.CloseCalls++
		return nil
	}
	return &env, nil
}
