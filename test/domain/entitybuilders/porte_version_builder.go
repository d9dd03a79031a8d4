//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// PorteVersionBuilder helps create registry records with a fluent interface.
type PorteVersionBuilder struct {
	*testkit.BaseBuilder
	id              string
	componentName   string
	upstreamRepo    string
	upstreamVersion string
	portedVersion   string
	status          entities.PorteStatus
	author          string
}

// NewPorteVersionBuilder creates an ACTIVE porte at 1.2.0.
func NewPorteVersionBuilder() *PorteVersionBuilder {
	return &PorteVersionBuilder{
		BaseBuilder:     testkit.NewBaseBuilder(),
		id:              "porte-1",
		componentName:   "widget",
		upstreamRepo:    "acme/widget",
		upstreamVersion: "v1.2.0",
		portedVersion:   "1.2.0",
		status:          entities.PorteStatusActive,
		author:          "platform-team",
	}
}

// WithID sets the record id.
func (b *PorteVersionBuilder) WithID(id string) *PorteVersionBuilder {
	b.id = id
	return b
}

// WithComponentName sets the component name.
func (b *PorteVersionBuilder) WithComponentName(name string) *PorteVersionBuilder {
	b.componentName = name
	return b
}

// WithUpstreamRepo sets the upstream "owner/name".
func (b *PorteVersionBuilder) WithUpstreamRepo(repo string) *PorteVersionBuilder {
	b.upstreamRepo = repo
	return b
}

// WithPortedVersion sets the version currently in use.
func (b *PorteVersionBuilder) WithPortedVersion(version string) *PorteVersionBuilder {
	b.portedVersion = version
	return b
}

// Retired marks the record as RETIRED.
func (b *PorteVersionBuilder) Retired() *PorteVersionBuilder {
	b.status = entities.PorteStatusRetired
	return b
}

// Build creates the record (satisfies testkit.Builder interface).
func (b *PorteVersionBuilder) Build() interface{} {
	return b.BuildPorteVersion()
}

// BuildPorteVersion creates the record with a concrete return type.
func (b *PorteVersionBuilder) BuildPorteVersion() *entities.PorteVersion {
	return &entities.PorteVersion{
		ID:              b.id,
		ComponentName:   b.componentName,
		UpstreamRepo:    b.upstreamRepo,
		UpstreamVersion: b.upstreamVersion,
		PortedVersion:   b.portedVersion,
		Status:          b.status,
		PortDate:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Author:          b.author,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *PorteVersionBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	fresh := NewPorteVersionBuilder()
	fresh.BaseBuilder = b.BaseBuilder
	*b = *fresh
	return b
}

// Clone creates a deep copy of the PorteVersionBuilder.
func (b *PorteVersionBuilder) Clone() testkit.Builder {
	clone := *b
	clone.BaseBuilder = b.BaseBuilder.Clone().(*testkit.BaseBuilder)
	return &clone
}
