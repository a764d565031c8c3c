// Package components registers every bundled component in dependency
// order: the catalog owns the tables the rule and record components
// reference, so it migrates first.
package components

import (
	"sync"

	"github.com/yanizio/adept-reqfields/components/catalog"
	"github.com/yanizio/adept-reqfields/components/records"
	"github.com/yanizio/adept-reqfields/components/requiredfields"
	"github.com/yanizio/adept-reqfields/internal/component"
)

var once sync.Once

// Register is idempotent.
func Register() {
	once.Do(func() {
		component.Register(catalog.New())
		component.Register(requiredfields.New())
		component.Register(records.New())
	})
}
