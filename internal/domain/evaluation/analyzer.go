package evaluation

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// coveragePattern reads "coverage: 87.5%" style lines out of release notes.
var coveragePattern = regexp.MustCompile(`(?i)coverage[:\s]+([0-9]+(?:\.[0-9]+)?)\s*%`)

// AnalysisInput is everything the pure part of the analysis needs.
type AnalysisInput struct {
	FromVersion      string
	ToVersion        string
	FromRelease      *entities.Release
	ToRelease        *entities.Release
	Releases         []entities.Release // releases in (from, to]
	FileDiffs        []*diff.FileDiff
	BaseDependencies []entities.Dependency
	HeadDependencies []entities.Dependency
	Advisories       []entities.Advisory
	Uncertainties    []string
}

// ChangeAnalyzer gathers upstream data for a version range and summarises it.
// It keeps no state between calls and can be retried freely.
type ChangeAnalyzer struct {
	upstream  repositories.UpstreamRepository
	manifests []repositories.ManifestRepository
	patterns  []*regexp.Regexp
}

// NewChangeAnalyzer compiles the breaking-change patterns (case-insensitive).
func NewChangeAnalyzer(
	upstream repositories.UpstreamRepository,
	manifests []repositories.ManifestRepository,
	settings entities.AnalysisSettings,
) (*ChangeAnalyzer, error) {
	patterns, err := CompilePatterns(settings.BreakingPatterns)
	if err != nil {
		return nil, err
	}
	return &ChangeAnalyzer{upstream: upstream, manifests: manifests, patterns: patterns}, nil
}

// CompilePatterns compiles breaking-change patterns; an empty list means the defaults.
func CompilePatterns(raw []string) ([]*regexp.Regexp, error) {
	if len(raw) == 0 {
		raw = entities.DefaultBreakingPatterns()
	}
	patterns := make([]*regexp.Regexp, 0, len(raw))
	for _, p := range raw {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid breaking pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// Analyze builds the ChangeAnalysis of repo between two versions. Releases is
// the full release list already fetched by the caller. Failures of the diff,
// manifest and advisory sources degrade to empty values plus an uncertainty.
func (it *ChangeAnalyzer) Analyze(
	ctx context.Context,
	component, repo, from, to string,
	releases []entities.Release,
) (*entities.ChangeAnalysis, error) {
	toRelease, found := FindRelease(releases, to)
	if !found {
		return nil, &entities.AnalysisError{Component: component, Err: fmt.Errorf("release %s not found in %s", to, repo)}
	}

	input := AnalysisInput{
		FromVersion: from,
		ToVersion:   to,
		ToRelease:   &toRelease,
		Releases:    ReleasesBetween(releases, from, to),
	}
	fromTag := from
	if fromRelease, ok := FindRelease(releases, from); ok {
		input.FromRelease = &fromRelease
		fromTag = fromRelease.TagName
	}
	if _, fallback := IsNewerVersion(from, to); fallback {
		input.Uncertainties = append(input.Uncertainties, entities.UncertaintySemverFallback)
	}

	if err := ctx.Err(); err != nil {
		return nil, &entities.AnalysisError{Component: component, Err: err}
	}

	rawDiff, err := it.upstream.CompareDiff(ctx, repo, fromTag, toRelease.TagName)
	if err == nil {
		input.FileDiffs, err = ParseDiff(rawDiff)
	}
	if err != nil {
		logger.Warnf("[%s] Diff %s...%s unavailable: %v", component, fromTag, toRelease.TagName, err)
		input.FileDiffs = nil
		input.Uncertainties = append(input.Uncertainties, entities.UncertaintyDiffUnavailable)
	}

	input.BaseDependencies, input.HeadDependencies, err = it.collectDependencies(ctx, repo, fromTag, toRelease.TagName)
	if err != nil {
		logger.Warnf("[%s] Manifests unavailable: %v", component, err)
		input.BaseDependencies, input.HeadDependencies = nil, nil
		input.Uncertainties = append(input.Uncertainties, entities.UncertaintyManifestsUnavailable)
	}

	input.Advisories, err = it.upstream.ListAdvisories(ctx, repo)
	if err != nil {
		logger.Warnf("[%s] Advisories unavailable: %v", component, err)
		input.Advisories = nil
		input.Uncertainties = append(input.Uncertainties, entities.UncertaintyAdvisoriesUnavailable)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &entities.AnalysisError{Component: component, Err: ctxErr}
	}
	return BuildChangeAnalysis(input, it.patterns), nil
}

func (it *ChangeAnalyzer) collectDependencies(
	ctx context.Context,
	repo, fromTag, toTag string,
) ([]entities.Dependency, []entities.Dependency, error) {
	var base, head []entities.Dependency
	for _, m := range it.manifests {
		for _, path := range m.Files() {
			before, err := it.readManifest(ctx, m, repo, path, fromTag)
			if err != nil {
				return nil, nil, err
			}
			after, err := it.readManifest(ctx, m, repo, path, toTag)
			if err != nil {
				return nil, nil, err
			}
			base = append(base, before...)
			head = append(head, after...)
		}
	}
	return base, head, nil
}

func (it *ChangeAnalyzer) readManifest(
	ctx context.Context,
	m repositories.ManifestRepository,
	repo, path, ref string,
) ([]entities.Dependency, error) {
	content, exists, err := it.upstream.GetFileAtRef(ctx, repo, path, ref)
	if err != nil {
		return nil, fmt.Errorf("read %s@%s: %w", path, ref, err)
	}
	if !exists {
		return nil, nil
	}
	deps, err := m.Parse(path, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s@%s (%s): %w", path, ref, m.Name(), err)
	}
	return deps, nil
}

// ParseDiff parses a unified multi-file diff.
func ParseDiff(raw string) ([]*diff.FileDiff, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(raw)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("malformed diff: %w", err)
	}
	return fileDiffs, nil
}

// BuildChangeAnalysis is the deterministic part of the analysis.
func BuildChangeAnalysis(input AnalysisInput, patterns []*regexp.Regexp) *entities.ChangeAnalysis {
	analysis := &entities.ChangeAnalysis{
		ChangeType:     ClassifyChange(input.FromVersion, input.ToVersion),
		SecurityImpact: entities.SecurityImpactNone,
		Uncertainties:  append([]string(nil), input.Uncertainties...),
	}

	analysis.FilesAffected = len(input.FileDiffs)
	for _, fd := range input.FileDiffs {
		for _, hunk := range fd.Hunks {
			for _, line := range strings.Split(string(hunk.Body), "\n") {
				if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
					analysis.LinesAdded++
				} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
					analysis.LinesDeleted++
				}
			}
		}
	}
	analysis.ComplexityDelta = round2(
		float64(analysis.FilesAffected)/10 + float64(analysis.LinesAdded+analysis.LinesDeleted)/1000,
	)

	analysis.DependenciesAdded, analysis.DependenciesRemoved = diffDependencies(
		input.BaseDependencies, input.HeadDependencies,
	)
	analysis.BreakingChanges = findBreakingChanges(input.Releases, patterns)

	for _, adv := range input.Advisories {
		if !patchedWithin(adv, input.FromVersion, input.ToVersion) {
			continue
		}
		analysis.Advisories = append(analysis.Advisories, adv.ID)
		if impact := adv.Impact(); impact.HigherThan(analysis.SecurityImpact) {
			analysis.SecurityImpact = impact
		}
	}

	fromCoverage, fromOK := releaseCoverage(input.FromRelease)
	toCoverage, toOK := releaseCoverage(input.ToRelease)
	if fromOK && toOK {
		analysis.TestCoverageDelta = round2(toCoverage - fromCoverage)
	} else {
		analysis.Uncertainties = append(analysis.Uncertainties, entities.UncertaintyMissingCoverage)
	}

	return analysis
}

// diffDependencies returns the sorted names added and removed between two sets.
func diffDependencies(base, head []entities.Dependency) ([]string, []string) {
	before := make(map[string]string, len(base))
	for _, d := range base {
		before[d.Key()] = d.Name
	}
	after := make(map[string]string, len(head))
	for _, d := range head {
		after[d.Key()] = d.Name
	}

	added := []string{}
	for key, name := range after {
		if _, ok := before[key]; !ok {
			added = append(added, name)
		}
	}
	removed := []string{}
	for key, name := range before {
		if _, ok := after[key]; !ok {
			removed = append(removed, name)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func findBreakingChanges(releases []entities.Release, patterns []*regexp.Regexp) []string {
	found := []string{}
	seen := map[string]bool{}
	for _, r := range releases {
		for _, line := range strings.Split(r.Body, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || seen[line] {
				continue
			}
			for _, re := range patterns {
				if re.MatchString(line) {
					seen[line] = true
					found = append(found, line)
					break
				}
			}
		}
	}
	return found
}

// patchedWithin reports whether any patched version of the advisory falls in (from, to].
func patchedWithin(adv entities.Advisory, from, to string) bool {
	for _, patched := range adv.PatchedVersions {
		for _, candidate := range strings.Split(patched, ",") {
			candidate = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(candidate), ">=< "))
			if candidate != "" && InRange(candidate, from, to) {
				return true
			}
		}
	}
	return false
}

func releaseCoverage(release *entities.Release) (float64, bool) {
	if release == nil {
		return 0, false
	}
	match := coveragePattern.FindStringSubmatch(release.Body)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
