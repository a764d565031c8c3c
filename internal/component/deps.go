// internal/component/deps.go
//
// Shared resources handed to components.
//
// Context
// -------
// app.Open builds one Deps value after the pool and stores are ready and
// passes it to every component's Init.  Components keep only the fields
// they need.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package component

import (
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/adept-reqfields/internal/acl"
	"github.com/yanizio/adept-reqfields/internal/record"
	"github.com/yanizio/adept-reqfields/internal/rule"
	"github.com/yanizio/adept-reqfields/internal/schema"
)

// Deps exposes the shared service resources to Components during Init.
// Records is the guarded store; components never see the raw one.
type Deps struct {
	DB      *sqlx.DB
	ACL     *acl.Store
	Catalog *schema.Catalog
	Rules   *rule.Store
	Records record.Store
}
