package javascript

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

const ecosystemName = "javascript"

type packageJSON struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// ManifestRepository reads the dependency maps of a package.json file.
type ManifestRepository struct{}

var _ repositories.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository creates a new package.json reader.
func NewManifestRepository() *ManifestRepository {
	return &ManifestRepository{}
}

func (it *ManifestRepository) Name() string    { return ecosystemName }
func (it *ManifestRepository) Files() []string { return []string{"package.json"} }

// Parse merges every dependency map; a package listed twice keeps the first
// constraint in dependencies, dev, peer, optional order.
func (it *ManifestRepository) Parse(path, content string) ([]entities.Dependency, error) {
	var manifest packageJSON
	if err := json.Unmarshal([]byte(content), &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	versions := make(map[string]string)
	for _, group := range []map[string]string{
		manifest.Dependencies,
		manifest.DevDependencies,
		manifest.PeerDependencies,
		manifest.OptionalDependencies,
	} {
		for name, version := range group {
			if _, seen := versions[name]; !seen {
				versions[name] = version
			}
		}
	}

	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]entities.Dependency, 0, len(names))
	for _, name := range names {
		deps = append(deps, entities.Dependency{
			Name:      name,
			Version:   versions[name],
			Ecosystem: ecosystemName,
			FilePath:  path,
		})
	}
	return deps, nil
}
