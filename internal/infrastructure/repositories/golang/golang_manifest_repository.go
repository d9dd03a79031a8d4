package golang

import (
	"fmt"

	"golang.org/x/mod/modfile"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

const ecosystemName = "golang"

// ManifestRepository reads the requirements of a go.mod file.
type ManifestRepository struct{}

var _ repositories.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository creates a new go.mod reader.
func NewManifestRepository() *ManifestRepository {
	return &ManifestRepository{}
}

func (it *ManifestRepository) Name() string    { return ecosystemName }
func (it *ManifestRepository) Files() []string { return []string{"go.mod"} }

// Parse returns one dependency per require directive. Replace directives are
// not applied: the declared requirement is what changes between tags.
func (it *ManifestRepository) Parse(path, content string) ([]entities.Dependency, error) {
	file, err := modfile.ParseLax(path, []byte(content), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	deps := make([]entities.Dependency, 0, len(file.Require))
	for _, req := range file.Require {
		deps = append(deps, entities.Dependency{
			Name:      req.Mod.Path,
			Version:   req.Mod.Version,
			Ecosystem: ecosystemName,
			FilePath:  path,
		})
	}
	return deps, nil
}
