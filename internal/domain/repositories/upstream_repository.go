package repositories

import (
	"context"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// UpstreamRepository abstracts the hosting service of the upstream projects
// (GitHub today). Repositories are addressed as "owner/name".
type UpstreamRepository interface {
	// ListReleases returns every release of the repository, newest first.
	ListReleases(ctx context.Context, repo string) ([]entities.Release, error)

	// ListAdvisories returns the published security advisories of the repository.
	ListAdvisories(ctx context.Context, repo string) ([]entities.Advisory, error)

	// CompareDiff returns the unified diff between two tags.
	CompareDiff(ctx context.Context, repo, fromTag, toTag string) (string, error)

	// GetFileAtRef reads a file at the given tag. The boolean is false when the
	// file does not exist at that ref.
	GetFileAtRef(ctx context.Context, repo, path, ref string) (string, bool, error)
}

// PullRequestRepository opens pull requests on the porte repository.
type PullRequestRepository interface {
	CreatePullRequest(ctx context.Context, input entities.PullRequestInput) (*entities.PullRequest, error)
}
