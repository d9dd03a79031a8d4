package python

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

const ecosystemName = "python"

// requirementPattern matches "name[extras] <spec>" of a requirements line.
var requirementPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[[^\]]*\])?\s*(.*)$`)

// namePattern is the PEP 503 separator run.
var namePattern = regexp.MustCompile(`[-_.]+`)

// ManifestRepository reads pip requirements files.
type ManifestRepository struct{}

var _ repositories.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository creates a new requirements reader.
func NewManifestRepository() *ManifestRepository {
	return &ManifestRepository{}
}

func (it *ManifestRepository) Name() string { return ecosystemName }

func (it *ManifestRepository) Files() []string {
	return []string{"requirements.txt", "requirements-dev.txt"}
}

// Parse skips comments, pip options (-r, -e, --hash ...) and URLs. Names are
// normalized so that "Foo_Bar" and "foo-bar" are the same dependency.
func (it *ManifestRepository) Parse(path, content string) ([]entities.Dependency, error) {
	var deps []entities.Dependency
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(stripComment(line))
		if line == "" || strings.HasPrefix(line, "-") || strings.Contains(line, "://") {
			continue
		}
		if marker := strings.Index(line, ";"); marker >= 0 {
			line = strings.TrimSpace(line[:marker])
		}

		match := requirementPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		deps = append(deps, entities.Dependency{
			Name:      normalizeName(match[1]),
			Version:   strings.ReplaceAll(match[2], " ", ""),
			Ecosystem: ecosystemName,
			FilePath:  path,
		})
	}
	return deps, nil
}

func stripComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		return line[:idx]
	}
	return line
}

func normalizeName(name string) string {
	return strings.ToLower(namePattern.ReplaceAllString(name, "-"))
}
