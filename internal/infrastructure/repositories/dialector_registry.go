package repositories

import (
	"fmt"
	"sort"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DialectorFactory builds the GORM dialector of a database driver from its DSN.
type DialectorFactory func(dsn string) gorm.Dialector

// DialectorRegistry manages all supported database drivers.
type DialectorRegistry struct {
	dialectors map[string]DialectorFactory
}

// NewDialectorRegistry creates an empty dialector registry.
func NewDialectorRegistry() *DialectorRegistry {
	return &DialectorRegistry{
		dialectors: make(map[string]DialectorFactory),
	}
}

// NewDefaultDialectorRegistry registers sqlite, postgres and mysql.
func NewDefaultDialectorRegistry() *DialectorRegistry {
	reg := NewDialectorRegistry()
	reg.Register("sqlite", sqlite.Open)
	reg.Register("postgres", postgres.Open)
	reg.Register("mysql", mysql.Open)
	return reg
}

// Register adds a dialector factory under the given driver name (e.g. "sqlite").
func (r *DialectorRegistry) Register(name string, factory DialectorFactory) {
	r.dialectors[name] = factory
}

// Get returns the dialector for the given driver and DSN.
func (r *DialectorRegistry) Get(name, dsn string) (gorm.Dialector, error) {
	factory, ok := r.dialectors[name]
	if !ok {
		return nil, fmt.Errorf("unknown database driver: %q", name)
	}
	return factory(dsn), nil
}

// Names returns the sorted list of registered driver names.
func (r *DialectorRegistry) Names() []string {
	names := make([]string, 0, len(r.dialectors))
	for name := range r.dialectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
