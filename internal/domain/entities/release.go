package entities

import (
	"strings"
	"time"
)

// Release is a tagged upstream release.
type Release struct {
	TagName     string
	Name        string
	Body        string // release notes
	Prerelease  bool
	Draft       bool
	PublishedAt time.Time
	URL         string
}

// Advisory is a published security advisory of an upstream repository.
type Advisory struct {
	ID               string
	Severity         string
	Summary          string
	URL              string
	PatchedVersions  []string
	VulnerableRanges []string // e.g. "< 1.4.2", ">= 2.0.0, < 2.1.3"
}

// Impact maps the advisory severity to a SecurityImpact.
func (a *Advisory) Impact() SecurityImpact {
	return ParseSecurityImpact(a.Severity)
}

func normalizeSeverity(severity string) string {
	return strings.ToLower(strings.TrimSpace(severity))
}
