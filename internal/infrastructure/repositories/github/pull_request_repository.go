package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// PullRequestRepository opens upgrade pull requests on the porte repository.
type PullRequestRepository struct {
	client *Client
}

var _ repositories.PullRequestRepository = (*PullRequestRepository)(nil)

// NewPullRequestRepository creates a new PullRequestRepository.
func NewPullRequestRepository(client *Client) *PullRequestRepository {
	return &PullRequestRepository{client: client}
}

func (it *PullRequestRepository) CreatePullRequest(
	ctx context.Context,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	owner, name, err := splitRepo(input.Repository)
	if err != nil {
		return nil, err
	}
	if err = it.client.wait(ctx); err != nil {
		return nil, err
	}

	sourceBranch := strings.TrimPrefix(input.SourceBranch, "refs/heads/")
	targetBranch := strings.TrimPrefix(input.TargetBranch, "refs/heads/")

	maintainerCanModify := true
	pr, _, err := it.client.api.PullRequests.Create(
		ctx, owner, name,
		&gh.NewPullRequest{
			Title:               &input.Title,
			Head:                &sourceBranch,
			Base:                &targetBranch,
			Body:                &input.Description,
			MaintainerCanModify: &maintainerCanModify,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	return &entities.PullRequest{
		ID:     pr.GetNumber(),
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		Status: pr.GetState(),
	}, nil
}
