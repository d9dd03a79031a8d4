//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, fakes) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// StubUpstreamRepository implements repositories.UpstreamRepository with canned data.
type StubUpstreamRepository struct {
	mu sync.Mutex

	// --- ListReleases ---
	Releases     map[string][]entities.Release // repo -> releases
	ReleasesErr  error
	ReleasesErrs map[string]error // repo -> error

	// --- ListAdvisories ---
	Advisories    map[string][]entities.Advisory
	AdvisoriesErr error

	// --- CompareDiff ---
	Diff    string
	DiffErr error

	// --- GetFileAtRef ---
	Files   map[string]string // "path@ref" -> content
	FileErr error

	// spy
	ListReleasesCalls int
	CompareCalls      []string // "repo:from...to"
}

var _ repositories.UpstreamRepository = (*StubUpstreamRepository)(nil)

func (s *StubUpstreamRepository) ListReleases(_ context.Context, repo string) ([]entities.Release, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListReleasesCalls++
	if s.ReleasesErr != nil {
		return nil, s.ReleasesErr
	}
	if err := s.ReleasesErrs[repo]; err != nil {
		return nil, err
	}
	return s.Releases[repo], nil
}

func (s *StubUpstreamRepository) ListAdvisories(_ context.Context, repo string) ([]entities.Advisory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AdvisoriesErr != nil {
		return nil, s.AdvisoriesErr
	}
	return s.Advisories[repo], nil
}

func (s *StubUpstreamRepository) CompareDiff(_ context.Context, repo, fromTag, toTag string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CompareCalls = append(s.CompareCalls, repo+":"+fromTag+"..."+toTag)
	if s.DiffErr != nil {
		return "", s.DiffErr
	}
	return s.Diff, nil
}

func (s *StubUpstreamRepository) GetFileAtRef(_ context.Context, _ string, path, ref string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FileErr != nil {
		return "", false, s.FileErr
	}
	content, ok := s.Files[path+"@"+ref]
	return content, ok, nil
}

// StubPullRequestRepository implements repositories.PullRequestRepository.
type StubPullRequestRepository struct {
	PullRequest *entities.PullRequest
	CreateErr   error
	Inputs      []entities.PullRequestInput
}

var _ repositories.PullRequestRepository = (*StubPullRequestRepository)(nil)

func (s *StubPullRequestRepository) CreatePullRequest(
	_ context.Context,
	input entities.PullRequestInput,
) (*entities.PullRequest, error) {
	s.Inputs = append(s.Inputs, input)
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if s.PullRequest != nil {
		return s.PullRequest, nil
	}
	return &entities.PullRequest{ID: 1, Title: input.Title, URL: "https://example.com/pr/1"}, nil
}
