package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/evaluation"
	"github.com/rios0rios0/portetrack/internal/domain/pipeline"
)

const (
	changelogFile     = "CHANGELOG.md"
	changelogFileMode = 0o644
)

// ChangelogStepRepository records the upgrade in the porte's CHANGELOG.md.
type ChangelogStepRepository struct{}

// NewChangelogStepRepository creates the changelog step.
func NewChangelogStepRepository() *ChangelogStepRepository {
	return &ChangelogStepRepository{}
}

func (it *ChangelogStepRepository) StepTypes() []string {
	return []string{pipeline.StepUpdateChangelog}
}

func (it *ChangelogStepRepository) Execute(_ context.Context, sc entities.StepContext) (entities.StepOutput, error) {
	if sc.Porte.Workspace == "" {
		return skipped("no workspace configured"), nil
	}
	if sc.Evaluation == nil {
		return entities.StepOutput{}, errors.New("no evaluation in step context")
	}

	path := filepath.Join(sc.Porte.Workspace, changelogFile)
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return skipped(changelogFile + " not found"), nil
	}
	if err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	ev := sc.Evaluation
	section := ChangelogSection(ev)
	entry := entities.UpgradeChangelogEntry(
		ev.ComponentName,
		evaluation.PortedVersion(ev.CurrentVersion),
		evaluation.PortedVersion(ev.UpstreamVersion),
	)
	updated := entities.InsertChangelogEntry(string(content), section, []string{entry})
	changed := updated != string(content)

	result := map[string]any{"file": changelogFile, "section": section, "changed": changed}
	if !changed {
		return entities.StepOutput{Result: result}, nil
	}
	if sc.DryRun {
		result["dry_run"] = true
		return entities.StepOutput{Result: result}, nil
	}

	if err = os.WriteFile(path, []byte(updated), changelogFileMode); err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debugf("[changelog] Added %q under %s", entry, section)
	return entities.StepOutput{Result: result}, nil
}

// ChangelogSection picks "Security" for upgrades that fix advisories.
func ChangelogSection(ev *entities.VersionEvaluation) string {
	if ev.Decision == entities.DecisionSecurityPatch {
		return entities.ChangelogSectionSecurity
	}
	if ev.ChangeAnalysis != nil && ev.ChangeAnalysis.SecurityImpact.HigherThan(entities.SecurityImpactNone) {
		return entities.ChangelogSectionSecurity
	}
	return entities.ChangelogSectionChanged
}
