package evaluation

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// NormalizeVersion ensures the version carries the "v" prefix semver expects.
func NormalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// IsValidVersion reports whether the tag parses as a semantic version.
func IsValidVersion(version string) bool {
	return semver.IsValid(NormalizeVersion(version))
}

// IsNewerVersion reports whether candidate is strictly newer than current.
// When either side is not a semantic version it falls back to a plain
// string-inequality check and reports fallback=true.
func IsNewerVersion(current, candidate string) (newer bool, fallback bool) {
	cur := NormalizeVersion(current)
	cand := NormalizeVersion(candidate)

	if semver.IsValid(cur) && semver.IsValid(cand) {
		return semver.Compare(cand, cur) > 0, false
	}
	return strings.TrimSpace(current) != strings.TrimSpace(candidate), true
}

// IsPrerelease reports whether the tag has a semver prerelease suffix.
func IsPrerelease(version string) bool {
	v := NormalizeVersion(version)
	return semver.IsValid(v) && semver.Prerelease(v) != ""
}

// ClassifyChange determines the kind of bump from one version to another.
func ClassifyChange(from, to string) entities.ChangeType {
	fromNorm := NormalizeVersion(from)
	toNorm := NormalizeVersion(to)

	if !semver.IsValid(fromNorm) || !semver.IsValid(toNorm) {
		return entities.ChangeTypeUnknown
	}
	if semver.Prerelease(toNorm) != "" {
		return entities.ChangeTypePrerelease
	}
	if semver.Major(fromNorm) != semver.Major(toNorm) {
		return entities.ChangeTypeMajor
	}
	// semver has no Minor helper; MajorMinor keeps "vX.Y"
	if semver.MajorMinor(fromNorm) != semver.MajorMinor(toNorm) {
		return entities.ChangeTypeMinor
	}
	return entities.ChangeTypePatch
}

// InRange reports whether from < version <= to. Non-semver input is never in range.
func InRange(version, from, to string) bool {
	v := NormalizeVersion(version)
	lo := NormalizeVersion(from)
	hi := NormalizeVersion(to)
	if !semver.IsValid(v) || !semver.IsValid(lo) || !semver.IsValid(hi) {
		return false
	}
	return semver.Compare(v, lo) > 0 && semver.Compare(v, hi) <= 0
}

// MatchesRange evaluates an advisory range expression such as "< 1.4.2" or
// ">= 2.0.0, < 2.1.3" against a version. Constraints are joined with AND.
func MatchesRange(version, expression string) bool {
	v := NormalizeVersion(version)
	if !semver.IsValid(v) || strings.TrimSpace(expression) == "" {
		return false
	}

	for _, constraint := range strings.Split(expression, ",") {
		constraint = strings.TrimSpace(constraint)
		if constraint == "" {
			continue
		}
		op, bound := splitConstraint(constraint)
		b := NormalizeVersion(bound)
		if !semver.IsValid(b) {
			return false
		}
		cmp := semver.Compare(v, b)
		var ok bool
		switch op {
		case "<":
			ok = cmp < 0
		case "<=":
			ok = cmp <= 0
		case ">":
			ok = cmp > 0
		case ">=":
			ok = cmp >= 0
		default:
			ok = cmp == 0
		}
		if !ok {
			return false
		}
	}
	return true
}

func splitConstraint(constraint string) (string, string) {
	for _, op := range []string{"<=", ">=", "<", ">", "="} {
		if strings.HasPrefix(constraint, op) {
			return op, strings.TrimSpace(strings.TrimPrefix(constraint, op))
		}
	}
	return "=", constraint
}

// LatestRelease picks the highest release by semver, skipping drafts and,
// unless includePrereleases is set, prereleases (by flag or by tag suffix).
// Non-semver tags only win when no semver tag is left, in which case the
// first one in source order (newest first) is returned.
func LatestRelease(releases []entities.Release, includePrereleases bool) (entities.Release, bool) {
	var best *entities.Release
	var fallback *entities.Release

	for i := range releases {
		r := &releases[i]
		if r.Draft {
			continue
		}
		if !includePrereleases && (r.Prerelease || IsPrerelease(r.TagName)) {
			continue
		}
		if !IsValidVersion(r.TagName) {
			if fallback == nil {
				fallback = r
			}
			continue
		}
		if best == nil || semver.Compare(NormalizeVersion(r.TagName), NormalizeVersion(best.TagName)) > 0 {
			best = r
		}
	}

	switch {
	case best != nil:
		return *best, true
	case fallback != nil:
		return *fallback, true
	default:
		return entities.Release{}, false
	}
}

// ReleasesBetween returns the releases with from < tag <= to, in source order.
func ReleasesBetween(releases []entities.Release, from, to string) []entities.Release {
	var out []entities.Release
	for _, r := range releases {
		if r.Draft {
			continue
		}
		if InRange(r.TagName, from, to) {
			out = append(out, r)
		}
	}
	return out
}

// FindRelease returns the release with the given tag, ignoring a "v" prefix.
func FindRelease(releases []entities.Release, tag string) (entities.Release, bool) {
	want := NormalizeVersion(tag)
	for _, r := range releases {
		if NormalizeVersion(r.TagName) == want {
			return r, true
		}
	}
	return entities.Release{}, false
}

// PortedVersion returns the registry form of an upstream tag: semantic
// versions lose their "v" prefix, other tags are kept verbatim.
func PortedVersion(tag string) string {
	tag = strings.TrimSpace(tag)
	if IsValidVersion(tag) {
		return strings.TrimPrefix(tag, "v")
	}
	return tag
}
