package entities

import (
	"fmt"
	"strings"
)

const (
	unreleasedHeading = "## [Unreleased]"
	h2Prefix          = "## ["
	h3Prefix          = "### "
	bulletPrefix      = "- "

	// ChangelogSectionChanged is the Keep-a-Changelog subsection used for porte upgrades.
	ChangelogSectionChanged = "Changed"
	// ChangelogSectionSecurity is used when the upgrade fixes an advisory.
	ChangelogSectionSecurity = "Security"
)

// UpgradeChangelogEntry renders the bullet recorded for a porte upgrade.
func UpgradeChangelogEntry(component, from, to string) string {
	return fmt.Sprintf("- changed the ported `%s` from upstream `%s` to `%s`", component, from, to)
}

// InsertChangelogEntry inserts bullet entries into the given subsection
// ("### Changed", "### Security", ...) of the "## [Unreleased]" section of a
// Keep-a-Changelog document.
//
// Behaviour:
//   - If "## [Unreleased]" is missing, the content is returned unchanged.
//   - Entries already present in the subsection are not repeated.
//   - If the subsection exists, entries go after its last bullet.
//   - Otherwise the subsection is created right after "## [Unreleased]".
func InsertChangelogEntry(content, section string, entries []string) string {
	if len(entries) == 0 {
		return content
	}

	lines := strings.Split(content, "\n")
	unreleasedIdx := indexOfLine(lines, 0, len(lines), unreleasedHeading)
	if unreleasedIdx < 0 {
		return content
	}

	sectionEnd := nextReleaseHeading(lines, unreleasedIdx)
	heading := h3Prefix + section
	sectionIdx := indexOfLine(lines, unreleasedIdx+1, sectionEnd, heading)

	fresh := missingEntries(lines, sectionIdx, sectionEnd, entries)
	if len(fresh) == 0 {
		return content
	}

	if sectionIdx >= 0 {
		lines = spliceLines(lines, lastBulletIndex(lines, sectionIdx, sectionEnd)+1, fresh)
	} else {
		block := append([]string{"", heading, ""}, fresh...)
		lines = spliceLines(lines, unreleasedIdx+1, block)
	}
	return strings.Join(lines, "\n")
}

// indexOfLine returns the index of the first trimmed line equal to want in
// [from, to), or -1.
func indexOfLine(lines []string, from, to int, want string) int {
	for i := from; i < to; i++ {
		if strings.TrimSpace(lines[i]) == want {
			return i
		}
	}
	return -1
}

// nextReleaseHeading returns the index of the next "## [" heading after
// start, or len(lines).
func nextReleaseHeading(lines []string, start int) int {
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), h2Prefix) {
			return i
		}
	}
	return len(lines)
}

// lastBulletIndex returns the last bullet line of the subsection starting at
// sectionIdx, or sectionIdx itself when it has no bullets.
func lastBulletIndex(lines []string, sectionIdx, end int) int {
	last := sectionIdx
	for i := sectionIdx + 1; i < end; i++ {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, bulletPrefix):
			last = i
		default:
			return last
		}
	}
	return last
}

func missingEntries(lines []string, sectionIdx, end int, entries []string) []string {
	existing := make(map[string]bool)
	if sectionIdx >= 0 {
		for i := sectionIdx + 1; i < end; i++ {
			existing[strings.TrimSpace(lines[i])] = true
		}
	}
	fresh := make([]string, 0, len(entries))
	for _, e := range entries {
		if !existing[strings.TrimSpace(e)] {
			fresh = append(fresh, e)
			existing[strings.TrimSpace(e)] = true
		}
	}
	return fresh
}

func spliceLines(lines []string, at int, extra []string) []string {
	result := make([]string, 0, len(lines)+len(extra))
	result = append(result, lines[:at]...)
	result = append(result, extra...)
	result = append(result, lines[at:]...)
	return result
}
