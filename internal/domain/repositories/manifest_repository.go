package repositories

import "github.com/rios0rios0/portetrack/internal/domain/entities"

// ManifestRepository abstracts a dependency ecosystem (Go modules, npm,
// pip, Terraform modules). Each implementation knows which manifest files it
// owns and how to read their dependency set.
type ManifestRepository interface {
	// Name returns the ecosystem identifier (e.g. "golang", "terraform").
	Name() string

	// Files returns the manifest paths, relative to the repository root.
	Files() []string

	// Parse extracts the dependencies declared in a manifest file.
	Parse(path, content string) ([]entities.Dependency, error)
}
