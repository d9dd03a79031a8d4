package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// UpstreamRepository implements repositories.UpstreamRepository on the GitHub REST API.
type UpstreamRepository struct {
	client *Client
}

var _ repositories.UpstreamRepository = (*UpstreamRepository)(nil)

// NewUpstreamRepository creates a new GitHub release source.
func NewUpstreamRepository(client *Client) *UpstreamRepository {
	return &UpstreamRepository{client: client}
}

// ListReleases returns every release of the repository, newest first as
// GitHub orders them.
func (it *UpstreamRepository) ListReleases(ctx context.Context, repo string) ([]entities.Release, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var releases []entities.Release
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		if err = it.client.wait(ctx); err != nil {
			return nil, err
		}
		page, resp, listErr := it.client.api.Repositories.ListReleases(ctx, owner, name, opts)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list releases: %w", listErr)
		}

		for _, r := range page {
			releases = append(releases, entities.Release{
				TagName:     r.GetTagName(),
				Name:        r.GetName(),
				Body:        r.GetBody(),
				Prerelease:  r.GetPrerelease(),
				Draft:       r.GetDraft(),
				PublishedAt: r.GetPublishedAt().Time,
				URL:         r.GetHTMLURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return releases, nil
}

// ListAdvisories returns every published repository security advisory.
// The endpoint pages with cursors, numbered pages are followed as well.
func (it *UpstreamRepository) ListAdvisories(ctx context.Context, repo string) ([]entities.Advisory, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var advisories []entities.Advisory
	opts := &gh.ListRepositorySecurityAdvisoriesOptions{
		ListCursorOptions: gh.ListCursorOptions{PerPage: perPage},
		State:             "published",
	}
	for {
		if err = it.client.wait(ctx); err != nil {
			return nil, err
		}
		found, resp, listErr := it.client.api.SecurityAdvisories.ListRepositorySecurityAdvisories(ctx, owner, name, opts)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list security advisories: %w", listErr)
		}

		for _, a := range found {
			advisories = append(advisories, toAdvisory(a))
		}

		switch {
		case resp.After != "":
			opts.After = resp.After
		case resp.NextPage != 0:
			opts.Page = strconv.Itoa(resp.NextPage)
		default:
			return advisories, nil
		}
	}
}

func toAdvisory(a *gh.SecurityAdvisory) entities.Advisory {
	advisory := entities.Advisory{
		ID:       a.GetGHSAID(),
		Severity: a.GetSeverity(),
		Summary:  a.GetSummary(),
		URL:      a.GetHTMLURL(),
	}
	for _, v := range a.Vulnerabilities {
		if r := v.GetVulnerableVersionRange(); r != "" {
			advisory.VulnerableRanges = append(advisory.VulnerableRanges, r)
		}
		advisory.PatchedVersions = append(advisory.PatchedVersions, splitVersions(v.GetPatchedVersions())...)
		if first := v.GetFirstPatchedVersion().GetIdentifier(); first != "" {
			advisory.PatchedVersions = append(advisory.PatchedVersions, first)
		}
	}
	return advisory
}

// CompareDiff returns the unified diff between two refs.
func (it *UpstreamRepository) CompareDiff(ctx context.Context, repo, fromTag, toTag string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}
	if err = it.client.wait(ctx); err != nil {
		return "", err
	}

	raw, _, err := it.client.api.Repositories.CompareCommitsRaw(
		ctx, owner, name, fromTag, toTag, gh.RawOptions{Type: gh.Diff},
	)
	if err != nil {
		return "", fmt.Errorf("failed to compare %s...%s: %w", fromTag, toTag, err)
	}
	return raw, nil
}

// GetFileAtRef returns the content of a file at a ref; a missing file is not an error.
func (it *UpstreamRepository) GetFileAtRef(ctx context.Context, repo, path, ref string) (string, bool, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", false, err
	}
	if err = it.client.wait(ctx); err != nil {
		return "", false, err
	}

	fileContent, _, resp, err := it.client.api.Repositories.GetContents(
		ctx, owner, name, path,
		&gh.RepositoryContentGetOptions{Ref: ref},
	)
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get file %q: %w", path, err)
	}
	if fileContent == nil {
		return "", false, fmt.Errorf("path %q is a directory, not a file", path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", false, fmt.Errorf("failed to decode file content: %w", err)
	}
	return content, true, nil
}

func splitVersions(raw string) []string {
	var versions []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			versions = append(versions, v)
		}
	}
	return versions
}
