//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"strings"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// StubManifestRepository parses a trivial "name version" per line format.
type StubManifestRepository struct {
	EcosystemName string
	ManifestFiles []string
	ParseErr      error
}

var _ repositories.ManifestRepository = (*StubManifestRepository)(nil)

func (s *StubManifestRepository) Name() string    { return s.EcosystemName }
func (s *StubManifestRepository) Files() []string { return s.ManifestFiles }

func (s *StubManifestRepository) Parse(path, content string) ([]entities.Dependency, error) {
	if s.ParseErr != nil {
		return nil, s.ParseErr
	}
	var deps []entities.Dependency
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		dep := entities.Dependency{Name: fields[0], Ecosystem: s.EcosystemName, FilePath: path}
		if len(fields) > 1 {
			dep.Version = fields[1]
		}
		deps = append(deps, dep)
	}
	return deps, nil
}
