//go:build unit

package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/github"
)

func TestPullRequestRepositoryCreatePullRequest(t *testing.T) {
	t.Parallel()

	t.Run("should open the pull request from the upgrade branch", func(t *testing.T) {
		t.Parallel()

		// given
		var received map[string]any
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/acme/widget-port/pulls", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"number":42,"title":"Upgrade widget to v1.3.0","state":"open",`+
				`"html_url":"https://github.com/acme/widget-port/pull/42"}`)
		})
		repo := github.NewPullRequestRepository(newTestClient(t, mux))

		// when
		pr, err := repo.CreatePullRequest(context.Background(), entities.PullRequestInput{
			Repository:   "acme/widget-port",
			SourceBranch: "refs/heads/porte/upgrade-widget-1.3.0",
			TargetBranch: "main",
			Title:        "Upgrade widget to v1.3.0",
			Description:  "body",
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, 42, pr.ID)
		assert.Equal(t, "https://github.com/acme/widget-port/pull/42", pr.URL)
		assert.Equal(t, "porte/upgrade-widget-1.3.0", received["head"])
		assert.Equal(t, "main", received["base"])
	})
}
