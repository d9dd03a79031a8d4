//go:build unit

package github_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/github"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *github.Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := github.NewClient(entities.GitHubSettings{Token: "test-token", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestUpstreamRepositoryListReleases(t *testing.T) {
	t.Parallel()

	t.Run("should follow pagination and map release fields", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/releases", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprint(w, `[{"tag_name":"v1.2.0","draft":false,"prerelease":false}]`)
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/acme/widget/releases?page=2>; rel="next"`, r.Host))
			fmt.Fprint(w, `[{"tag_name":"v1.3.0","name":"1.3.0","body":"notes","prerelease":true,`+
				`"html_url":"https://github.com/acme/widget/releases/tag/v1.3.0","published_at":"2026-03-01T12:00:00Z"}]`)
		})
		repo := github.NewUpstreamRepository(newTestClient(t, mux))

		// when
		releases, err := repo.ListReleases(context.Background(), "acme/widget")

		// then
		require.NoError(t, err)
		require.Len(t, releases, 2)
		assert.Equal(t, "v1.3.0", releases[0].TagName)
		assert.Equal(t, "notes", releases[0].Body)
		assert.True(t, releases[0].Prerelease)
		assert.Equal(t, 2026, releases[0].PublishedAt.Year())
		assert.Equal(t, "v1.2.0", releases[1].TagName)
	})

	t.Run("should reject a repository that is not owner/name", func(t *testing.T) {
		t.Parallel()

		// given
		repo := github.NewUpstreamRepository(newTestClient(t, http.NewServeMux()))

		// when
		_, err := repo.ListReleases(context.Background(), "widget")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "owner/name")
	})

	t.Run("should return an error when the API refuses the request", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/releases", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Bad credentials"}`)
		})
		repo := github.NewUpstreamRepository(newTestClient(t, mux))

		// when
		_, err := repo.ListReleases(context.Background(), "acme/widget")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list releases")
	})
}

func TestUpstreamRepositoryListAdvisories(t *testing.T) {
	t.Parallel()

	t.Run("should map vulnerable ranges and patched versions", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/security-advisories", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "published", r.URL.Query().Get("state"))
			fmt.Fprint(w, `[{"ghsa_id":"GHSA-aaaa-bbbb-cccc","severity":"critical","summary":"RCE",`+
				`"html_url":"https://github.com/advisories/GHSA-aaaa-bbbb-cccc",`+
				`"vulnerabilities":[{"vulnerable_version_range":">= 1.0.0, < 1.2.1","patched_versions":"1.2.1"}]}]`)
		})
		repo := github.NewUpstreamRepository(newTestClient(t, mux))

		// when
		advisories, err := repo.ListAdvisories(context.Background(), "acme/widget")

		// then
		require.NoError(t, err)
		require.Len(t, advisories, 1)
		assert.Equal(t, "GHSA-aaaa-bbbb-cccc", advisories[0].ID)
		assert.Equal(t, entities.SecurityImpactCritical, advisories[0].Impact())
		assert.Equal(t, []string{">= 1.0.0, < 1.2.1"}, advisories[0].VulnerableRanges)
		assert.Equal(t, []string{"1.2.1"}, advisories[0].PatchedVersions)
	})

	t.Run("should follow pagination across every advisory page", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/security-advisories", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("after") {
			case "cursor-2":
				fmt.Fprint(w, `[{"ghsa_id":"GHSA-3333","severity":"critical"}]`)
				return
			case "":
			default:
				http.Error(w, "unexpected cursor", http.StatusBadRequest)
				return
			}
			if r.URL.Query().Get("page") == "2" {
				w.Header().Set("Link",
					fmt.Sprintf(`<http://%s/repos/acme/widget/security-advisories?after=cursor-2>; rel="next"`, r.Host))
				fmt.Fprint(w, `[{"ghsa_id":"GHSA-2222","severity":"high"}]`)
				return
			}
			w.Header().Set("Link",
				fmt.Sprintf(`<http://%s/repos/acme/widget/security-advisories?page=2>; rel="next"`, r.Host))
			fmt.Fprint(w, `[{"ghsa_id":"GHSA-1111","severity":"low"}]`)
		})
		repo := github.NewUpstreamRepository(newTestClient(t, mux))

		// when
		advisories, err := repo.ListAdvisories(context.Background(), "acme/widget")

		// then
		require.NoError(t, err)
		require.Len(t, advisories, 3)
		assert.Equal(t, "GHSA-1111", advisories[0].ID)
		assert.Equal(t, "GHSA-2222", advisories[1].ID)
		assert.Equal(t, "GHSA-3333", advisories[2].ID)
		assert.Equal(t, entities.SecurityImpactCritical, advisories[2].Impact())
	})
}

func TestUpstreamRepositoryCompareDiff(t *testing.T) {
	t.Parallel()

	t.Run("should request the raw diff between two tags", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/compare/v1.2.0...v1.3.0", func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("Accept"), "diff")
			fmt.Fprint(w, "diff --git a/a.go b/a.go\n")
		})
		repo := github.NewUpstreamRepository(newTestClient(t, mux))

		// when
		raw, err := repo.CompareDiff(context.Background(), "acme/widget", "v1.2.0", "v1.3.0")

		// then
		require.NoError(t, err)
		assert.Equal(t, "diff --git a/a.go b/a.go\n", raw)
	})
}

func TestUpstreamRepositoryGetFileAtRef(t *testing.T) {
	t.Parallel()

	t.Run("should decode the file content at the ref", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/contents/go.mod", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "v1.3.0", r.URL.Query().Get("ref"))
			// "module x\n" in base64
			fmt.Fprint(w, `{"type":"file","encoding":"base64","content":"bW9kdWxlIHgK","path":"go.mod"}`)
		})
		repo := github.NewUpstreamRepository(newTestClient(t, mux))

		// when
		content, exists, err := repo.GetFileAtRef(context.Background(), "acme/widget", "go.mod", "v1.3.0")

		// then
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "module x\n", content)
	})

	t.Run("should report a missing file without an error", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget/contents/package.json", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		})
		repo := github.NewUpstreamRepository(newTestClient(t, mux))

		// when
		content, exists, err := repo.GetFileAtRef(context.Background(), "acme/widget", "package.json", "v1.3.0")

		// then
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Empty(t, content)
	})
}
