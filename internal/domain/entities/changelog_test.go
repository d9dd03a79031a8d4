//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

const changelogFixture = `# Changelog

## [Unreleased]

### Added

- added the retry budget

## [1.0.0] - 2026-01-01

### Changed

- initial port`

func TestInsertChangelogEntry(t *testing.T) {
	t.Parallel()

	t.Run("should create the subsection right after the unreleased heading", func(t *testing.T) {
		t.Parallel()

		// given
		entry := entities.UpgradeChangelogEntry("widget", "1.2.0", "v1.3.0")

		// when
		result := entities.InsertChangelogEntry(changelogFixture, entities.ChangelogSectionChanged, []string{entry})

		// then
		expected := `# Changelog

## [Unreleased]

### Changed

- changed the ported ` + "`widget`" + ` from upstream ` + "`1.2.0`" + ` to ` + "`v1.3.0`" + `

### Added

- added the retry budget

## [1.0.0] - 2026-01-01

### Changed

- initial port`
		assert.Equal(t, expected, result)
	})

	t.Run("should append after the last bullet of an existing subsection", func(t *testing.T) {
		t.Parallel()

		// when
		result := entities.InsertChangelogEntry(changelogFixture, "Added", []string{"- added the upgrade pipeline"})

		// then
		assert.Contains(t, result, "- added the retry budget\n- added the upgrade pipeline\n\n## [1.0.0]")
	})

	t.Run("should not repeat an entry already present", func(t *testing.T) {
		t.Parallel()

		// when
		result := entities.InsertChangelogEntry(changelogFixture, "Added", []string{"- added the retry budget"})

		// then
		assert.Equal(t, changelogFixture, result)
	})

	t.Run("should leave content without an unreleased section untouched", func(t *testing.T) {
		t.Parallel()

		// given
		content := "# Changelog\n\n## [1.0.0] - 2026-01-01\n"

		// when
		result := entities.InsertChangelogEntry(content, entities.ChangelogSectionSecurity, []string{"- fixed GHSA-1"})

		// then
		assert.Equal(t, content, result)
	})
}
