package repositories

import (
	"fmt"
	"sort"

	domainRepos "github.com/rios0rios0/portetrack/internal/domain/repositories"
)

// ManifestRegistry manages all registered dependency manifest parsers.
type ManifestRegistry struct {
	manifests map[string]domainRepos.ManifestRepository
}

// NewManifestRegistry creates an empty manifest registry.
func NewManifestRegistry() *ManifestRegistry {
	return &ManifestRegistry{
		manifests: make(map[string]domainRepos.ManifestRepository),
	}
}

// Register adds a manifest parser under its name.
func (r *ManifestRegistry) Register(m domainRepos.ManifestRepository) {
	r.manifests[m.Name()] = m
}

// Get returns the parser with the given name, or nil if not registered.
func (r *ManifestRegistry) Get(name string) domainRepos.ManifestRepository {
	return r.manifests[name]
}

// All returns every registered parser, sorted by name.
func (r *ManifestRegistry) All() []domainRepos.ManifestRepository {
	result := make([]domainRepos.ManifestRepository, 0, len(r.manifests))
	for _, name := range r.Names() {
		result = append(result, r.manifests[name])
	}
	return result
}

// Select returns the named parsers in the given order; no names means all of them.
func (r *ManifestRegistry) Select(names []string) ([]domainRepos.ManifestRepository, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	result := make([]domainRepos.ManifestRepository, 0, len(names))
	for _, name := range names {
		m, ok := r.manifests[name]
		if !ok {
			return nil, fmt.Errorf("unknown manifest parser: %q", name)
		}
		result = append(result, m)
	}
	return result, nil
}

// Names returns the sorted list of registered parser names.
func (r *ManifestRegistry) Names() []string {
	names := make([]string, 0, len(r.manifests))
	for name := range r.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
