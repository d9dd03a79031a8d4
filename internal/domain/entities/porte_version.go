package entities

import "time"

// PorteStatus is the lifecycle state of a tracked porte.
type PorteStatus string

const (
	PorteStatusActive  PorteStatus = "ACTIVE"
	PorteStatusRetired PorteStatus = "RETIRED"
)

// PorteVersion is the registry record of a ported component: which upstream
// release it was forked from and which version is currently in use.
type PorteVersion struct {
	ID              string
	ComponentName   string
	UpstreamRepo    string // "owner/name"
	UpstreamVersion string // upstream tag the port was taken from
	PortedVersion   string // version currently shipped
	Status          PorteStatus
	PortDate        time.Time
	Author          string
}

// IsActive reports whether the record currently owns the component slot.
func (p *PorteVersion) IsActive() bool {
	return p.Status == PorteStatusActive
}
