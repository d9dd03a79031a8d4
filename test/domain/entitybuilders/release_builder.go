//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// ReleaseBuilder helps create upstream releases with a fluent interface.
type ReleaseBuilder struct {
	*testkit.BaseBuilder
	tag        string
	body       string
	prerelease bool
	draft      bool
}

// NewReleaseBuilder creates a stable v1.3.0 release with empty notes.
func NewReleaseBuilder() *ReleaseBuilder {
	return &ReleaseBuilder{BaseBuilder: testkit.NewBaseBuilder(), tag: "v1.3.0"}
}

// WithTag sets the tag name.
func (b *ReleaseBuilder) WithTag(tag string) *ReleaseBuilder {
	b.tag = tag
	return b
}

// WithNotes sets the release notes.
func (b *ReleaseBuilder) WithNotes(body string) *ReleaseBuilder {
	b.body = body
	return b
}

// AsPrerelease flags the release as a prerelease.
func (b *ReleaseBuilder) AsPrerelease() *ReleaseBuilder {
	b.prerelease = true
	return b
}

// AsDraft flags the release as a draft.
func (b *ReleaseBuilder) AsDraft() *ReleaseBuilder {
	b.draft = true
	return b
}

// Build creates the release (satisfies testkit.Builder interface).
func (b *ReleaseBuilder) Build() interface{} {
	return b.BuildRelease()
}

// BuildRelease creates the release with a concrete return type.
func (b *ReleaseBuilder) BuildRelease() entities.Release {
	return entities.Release{
		TagName:     b.tag,
		Name:        b.tag,
		Body:        b.body,
		Prerelease:  b.prerelease,
		Draft:       b.draft,
		PublishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		URL:         "https://github.com/acme/widget/releases/tag/" + b.tag,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ReleaseBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.tag = "v1.3.0"
	b.body = ""
	b.prerelease = false
	b.draft = false
	return b
}

// Clone creates a deep copy of the ReleaseBuilder.
func (b *ReleaseBuilder) Clone() testkit.Builder {
	return &ReleaseBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		tag:         b.tag,
		body:        b.body,
		prerelease:  b.prerelease,
		draft:       b.draft,
	}
}
