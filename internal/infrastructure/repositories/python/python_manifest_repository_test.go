//go:build unit

package python_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/python"
)

func TestManifestRepositoryParse(t *testing.T) {
	t.Parallel()

	t.Run("should skip comments and options and normalize names", func(t *testing.T) {
		t.Parallel()

		// given
		content := `# runtime
-r base.txt
Requests[security] >= 2.31.0  # http
Django_Rest.Framework==3.14.0
uvloop; sys_platform != "win32"
git+https://github.com/acme/lib.git#egg=lib
`
		repo := python.NewManifestRepository()

		// when
		deps, err := repo.Parse("requirements.txt", content)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 3)
		assert.Equal(t, "requests", deps[0].Name)
		assert.Equal(t, ">=2.31.0", deps[0].Version)
		assert.Equal(t, "django-rest-framework", deps[1].Name)
		assert.Equal(t, "==3.14.0", deps[1].Version)
		assert.Equal(t, "uvloop", deps[2].Name)
		assert.Empty(t, deps[2].Version)
	})
}
