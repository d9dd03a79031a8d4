package entities

// Dependency is a single entry of a dependency manifest at a given tag.
type Dependency struct {
	Name      string // module path, package or module source
	Version   string // declared version constraint, may be empty
	Ecosystem string // "golang", "javascript", "python", "terraform"
	FilePath  string // manifest the dependency was read from
}

// Key identifies a dependency across versions of the same manifest.
func (d Dependency) Key() string {
	return d.Ecosystem + ":" + d.Name
}
