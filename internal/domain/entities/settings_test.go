//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

const minimalConfig = `
github:
  token: inline-token
portes:
  widget:
    upstream_repo: acme/widget
`

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestResolveToken(t *testing.T) {
	t.Run("should return inline token unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "ghp_abc123xyz"

		// when
		result := entities.ResolveToken(raw)

		// then
		assert.Equal(t, "ghp_abc123xyz", result)
	})

	t.Run("should expand environment variable reference", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("PORTETRACK_TEST_TOKEN", "my-secret-token")

		// when
		result := entities.ResolveToken("${PORTETRACK_TEST_TOKEN}")

		// then
		assert.Equal(t, "my-secret-token", result)
	})

	t.Run("should read token from file path", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("  file-token\n"), 0o600))

		// when
		result := entities.ResolveToken(path)

		// then
		assert.Equal(t, "file-token", result)
	})

	t.Run("should not read a directory", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()

		// when
		result := entities.ResolveToken(dir)

		// then
		assert.Equal(t, dir, result)
	})
}

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestParseSettings(t *testing.T) {
	t.Run("should apply defaults to a minimal configuration", func(t *testing.T) {
		t.Parallel()

		// when
		settings, err := entities.ParseSettings([]byte(minimalConfig))

		// then
		require.NoError(t, err)
		porte, ok := settings.Porte("widget")
		require.True(t, ok)
		assert.Equal(t, "acme/widget", porte.UpstreamRepo)
		assert.Equal(t, entities.DefaultApprovalThresholds(), porte.AutoApproval)
		assert.Equal(t, "sqlite", settings.Database.Driver)
		assert.Equal(t, 4, settings.Monitoring.Concurrency)
		assert.InDelta(t, 200.0, settings.Analysis.SizeNormalizer, 0.001)
		assert.InDelta(t, 85.0, settings.Pipeline.TestCoverageThreshold, 0.001)
		assert.InDelta(t, 5.0, settings.Pipeline.PerformanceRegressionThreshold, 0.001)
		assert.Equal(t, 3, settings.Pipeline.HealthCheckRetries)
		assert.Equal(t, 30*time.Minute, settings.Pipeline.StageTimeout(entities.StageValidation))
		assert.Equal(t, entities.DefaultBreakingPatterns(), settings.Analysis.BreakingPatterns)
	})

	t.Run("should fill omitted thresholds from the defaults", func(t *testing.T) {
		t.Parallel()

		// given
		data := []byte(`
portes:
  widget:
    component_name: widget-core
    upstream_repo: acme/widget
    auto_approval_settings:
      autoApproveMax: 2
      manualReviewRequired: true
pipeline:
  stage_timeouts:
    deployment: 2m
`)

		// when
		settings, err := entities.ParseSettings(data)

		// then
		require.NoError(t, err)
		porte, ok := settings.Porte("widget-core")
		require.True(t, ok)
		assert.InDelta(t, 2.0, porte.AutoApproval.AutoApproveMax, 0.001)
		assert.InDelta(t, 6.0, porte.AutoApproval.ConditionalApproveMax, 0.001)
		assert.InDelta(t, 8.0, porte.AutoApproval.RejectAbove, 0.001)
		assert.True(t, porte.AutoApproval.ManualReviewRequired)
		assert.Equal(t, 2*time.Minute, settings.Pipeline.StageTimeout(entities.StageDeployment))
		assert.Equal(t, 5*time.Minute, settings.Pipeline.StageTimeout(entities.StagePreparation))
	})

	t.Run("should expand environment references in the database DSN", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("PORTETRACK_TEST_DSN", "host=db user=porte")
		data := []byte(minimalConfig + "database:\n  driver: postgres\n  dsn: ${PORTETRACK_TEST_DSN}\n")

		// when
		settings, err := entities.ParseSettings(data)

		// then
		require.NoError(t, err)
		assert.Equal(t, "host=db user=porte", settings.Database.DSN)
	})

	t.Run("should reject a configuration without portes", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.ParseSettings([]byte("github:\n  token: x\n"))

		// then
		require.Error(t, err)
	})

	t.Run("should reject an upstream repo without owner", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.ParseSettings([]byte("portes:\n  widget:\n    upstream_repo: widget\n"))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UpstreamRepo")
	})

	t.Run("should reject an unknown database driver", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.ParseSettings([]byte(minimalConfig + "database:\n  driver: oracle\n"))

		// then
		require.Error(t, err)
	})

	t.Run("should reject two portes tracking the same component", func(t *testing.T) {
		t.Parallel()

		// given
		data := []byte(`
portes:
  a:
    component_name: widget
    upstream_repo: acme/widget
  b:
    component_name: widget
    upstream_repo: acme/widget-fork
`)

		// when
		_, err := entities.ParseSettings(data)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "same component")
	})

	t.Run("should reject an invalid breaking pattern", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.ParseSettings([]byte(minimalConfig + "analysis:\n  breaking_patterns: ['(unclosed']\n"))

		// then
		require.Error(t, err)
	})
}

func TestNewSettings(t *testing.T) {
	t.Parallel()

	t.Run("should wrap a missing file in a ConfigurationError", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "missing.yaml")

		// when
		_, err := entities.NewSettings(path)

		// then
		var cfgErr *entities.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, path, cfgErr.Path)
	})

	t.Run("should wrap a validation failure in a ConfigurationError", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "portetrack.yaml")
		require.NoError(t, os.WriteFile(path, []byte("portes: {}\n"), 0o600))

		// when
		_, err := entities.NewSettings(path)

		// then
		var cfgErr *entities.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("should load a valid file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "portetrack.yaml")
		require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0o600))

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "inline-token", settings.GitHub.Token)
	})
}
