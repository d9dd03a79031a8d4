package entities

import (
	gitforgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
)

// PullRequest is re-exported from gitforge.
type PullRequest = gitforgeEntities.PullRequest

// PullRequestInput describes the pull request opened for an upgrade branch.
type PullRequestInput struct {
	Repository   string // "owner/name"
	SourceBranch string
	TargetBranch string
	Title        string
	Description  string
}
