//go:build unit

package golang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/golang"
)

func TestManifestRepositoryParse(t *testing.T) {
	t.Parallel()

	t.Run("should return every required module with its version", func(t *testing.T) {
		t.Parallel()

		// given
		content := `module github.com/acme/widget

go 1.22

require (
	github.com/sirupsen/logrus v1.9.3
	golang.org/x/sync v0.7.0 // indirect
)

replace github.com/sirupsen/logrus => ../logrus
`
		repo := golang.NewManifestRepository()

		// when
		deps, err := repo.Parse("go.mod", content)

		// then
		require.NoError(t, err)
		require.Len(t, deps, 2)
		assert.Equal(t, "github.com/sirupsen/logrus", deps[0].Name)
		assert.Equal(t, "v1.9.3", deps[0].Version)
		assert.Equal(t, "golang:golang.org/x/sync", deps[1].Key())
	})

	t.Run("should return an error for a malformed go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		repo := golang.NewManifestRepository()

		// when
		_, err := repo.Parse("go.mod", "module x\n\nrequire github.com/acme/lib\n")

		// then
		require.Error(t, err)
	})
}
