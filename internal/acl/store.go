// internal/acl/store.go
//
// Query helpers for Role-Based Access Control.
//
// Context
// -------
// The ACL model lives in the service database:
//
//	role        (id PK, name, enabled)
//	role_acl    (role_id, component, action, permitted)
//	user_role   (user_id, role_id)
//
// Management routes need answers to two questions:
//  1. Which *role names* does user X have?        → `UserRoles()`
//  2. Is role R permitted for component/action?   → `RoleAllowed()`
//
// Migrations() creates the tables and seeds the `admin` role with full
// rights on the required-field rules and the schema catalog.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package acl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/adept-reqfields/internal/database"
)

// Components guarded by the ACL.
const (
	ComponentRequiredFields = "required_fields"
	ComponentCatalog        = "schema_catalog"
)

// Actions.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// AdminRole is seeded by Migrations.
const AdminRole = "admin"

// Store answers ACL questions against db.
type Store struct {
	db *sqlx.DB
}

// NewStore binds a Store to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// UserRoles returns the role *names* bound to userID.  Disabled roles are
// filtered out.
func (s *Store) UserRoles(ctx context.Context, userID int64) ([]string, error) {
	const q = `SELECT r.name
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.user_id = ? AND r.enabled = TRUE`

	roles := make([]string, 0, 4)
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, s.db), &roles, q, userID); err != nil {
		return nil, err
	}
	return roles, nil
}

// RoleAllowed reports whether *any* of the candidate roles is permitted for the
// given component + action.  It executes one query using IN (? … ?).
//
// Empty roles slice returns false, nil.
func (s *Store) RoleAllowed(ctx context.Context, roles []string, component, action string) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	q, args, err := sqlx.In(`SELECT 1
            FROM role_acl ra
            JOIN role r ON r.id = ra.role_id
           WHERE r.name IN (?)
             AND ra.component = ?
             AND ra.action   = ?
             AND ra.permitted = TRUE
           LIMIT 1`, roles, component, action)
	if err != nil {
		return false, err
	}
	conn := database.Conn(ctx, s.db)

	var dummy int
	err = sqlx.GetContext(ctx, conn, &dummy, conn.Rebind(q), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Allowed combines UserRoles and RoleAllowed.
func (s *Store) Allowed(ctx context.Context, userID int64, component, action string) (bool, error) {
	roles, err := s.UserRoles(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("acl user roles: %w", err)
	}
	ok, err := s.RoleAllowed(ctx, roles, component, action)
	if err != nil {
		return false, fmt.Errorf("acl role allowed: %w", err)
	}
	return ok, nil
}

// Migrations returns the idempotent DDL and seed rows for the ACL tables.
func Migrations() []string {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS role (
		    id      BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		    name    VARCHAR(64) NOT NULL UNIQUE,
		    enabled TINYINT(1) NOT NULL DEFAULT 1
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS role_acl (
		    role_id   BIGINT UNSIGNED NOT NULL,
		    component VARCHAR(64) NOT NULL,
		    action    VARCHAR(32) NOT NULL,
		    permitted TINYINT(1) NOT NULL DEFAULT 1,
		    PRIMARY KEY (role_id, component, action),
		    CONSTRAINT fk_role_acl_role FOREIGN KEY (role_id)
		        REFERENCES role (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS user_role (
		    user_id BIGINT UNSIGNED NOT NULL,
		    role_id BIGINT UNSIGNED NOT NULL,
		    PRIMARY KEY (user_id, role_id),
		    CONSTRAINT fk_user_role_role FOREIGN KEY (role_id)
		        REFERENCES role (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
		`INSERT IGNORE INTO role (name, enabled) VALUES ('` + AdminRole + `', 1)`,
	}
	for _, comp := range []string{ComponentRequiredFields, ComponentCatalog} {
		for _, act := range []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
			stmts = append(stmts, fmt.Sprintf(
				`INSERT IGNORE INTO role_acl (role_id, component, action, permitted)
				 SELECT id, '%s', '%s', 1 FROM role WHERE name = '%s'`, comp, act, AdminRole))
		}
	}
	return stmts
}
