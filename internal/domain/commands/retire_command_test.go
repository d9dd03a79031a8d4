//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/commands"
	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

func TestRetireCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should release the active slot so the component can be registered again", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMonitorFixture()
		f.register(t, "widget", "acme/widget", "1.2.0")

		// when
		err := commands.NewRetireCommand(f.envs).Execute(context.Background(), widgetSettings(), "widget")

		// then
		require.NoError(t, err)
		_, getErr := f.store.GetActivePorte(context.Background(), "widget")
		require.ErrorIs(t, getErr, entities.ErrNotFound)
		version, versionErr := f.store.GetCurrentVersion(context.Background(), "widget")
		require.NoError(t, versionErr)
		assert.Nil(t, version)
	})
}
