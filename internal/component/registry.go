// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name>.  The
// components package registers them in dependency order; cmd/web mounts
// every component’s Routes() at “/” after calling Init() with the shared
// service dependencies.  MigrateAll applies Migrations() in the same
// order, so a component may reference tables of any component registered
// before it.

package component

import (
	"context"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/adept-reqfields/internal/database"
)

// Initializer is called once with the shared dependencies before Routes().
type Initializer interface {
	Init(Deps) error
}

// Component contract.
//
// Migrations() may return nil if the component has no schema changes.
// Routes() should mount BOTH page and API endpoints, e.g:
//
//	r := chi.NewRouter()
//	r.Get("/required-fields", list)
//	r.Route("/api/required-fields", func(api chi.Router) { ... })
//	return r
type Component interface {
	Name() string
	Routes() chi.Router
	Migrations() []string
	Initializer
}

var (
	mu       sync.RWMutex
	registry []Component
	byName   = map[string]int{}
)

// Register adds c.  Re-registering a name replaces the earlier component
// in place.
func Register(c Component) {
	mu.Lock()
	defer mu.Unlock()
	if i, ok := byName[c.Name()]; ok {
		registry[i] = c
		return
	}
	byName[c.Name()] = len(registry)
	registry = append(registry, c)
}

// All returns every registered component in registration order.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Component(nil), registry...)
}

// Get returns the component registered under name.
func Get(name string) (Component, bool) {
	mu.RLock()
	defer mu.RUnlock()
	i, ok := byName[name]
	if !ok {
		return nil, false
	}
	return registry[i], true
}

// MigrateAll applies base, then each component's migrations in
// registration order.
func MigrateAll(ctx context.Context, db *sqlx.DB, base ...[]string) error {
	groups := append([][]string(nil), base...)
	for _, c := range All() {
		if m := c.Migrations(); len(m) > 0 {
			groups = append(groups, m)
		}
	}
	return database.Migrate(ctx, db, groups...)
}

// reset clears the registry.  Tests only.
func reset() {
	mu.Lock()
	registry = nil
	byName = map[string]int{}
	mu.Unlock()
}
