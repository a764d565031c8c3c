// internal/acl/store_test.go
//
// Unit-tests for acl.Store helpers using sqlmock.
//
// Run: go test ./internal/acl -v

package acl

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return NewStore(sqlx.NewDb(raw, "sqlmock")), mock
}

func TestUserRoles(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT r.name FROM user_role ur JOIN role r ON r.id = ur.role_id WHERE ur.user_id = ? AND r.enabled = TRUE`,
	)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("editor").AddRow("admin"))

	got, err := s.UserRoles(context.Background(), 42)
	if err != nil {
		t.Fatalf("UserRoles error: %v", err)
	}
	if len(got) != 2 || got[0] != "editor" || got[1] != "admin" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRoleAllowed(t *testing.T) {
	s, mock := newStore(t)

	q := `SELECT 1 FROM role_acl ra JOIN role r ON r.id = ra.role_id WHERE r.name IN (?, ?) AND ra.component = ? AND ra.action = ? AND ra.permitted = TRUE LIMIT 1`

	mock.ExpectQuery(regexp.QuoteMeta(q)).
		WithArgs("editor", "admin", ComponentRequiredFields, ActionUpdate).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := s.RoleAllowed(context.Background(),
		[]string{"editor", "admin"}, ComponentRequiredFields, ActionUpdate)
	if err != nil {
		t.Fatalf("RoleAllowed error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok = true, got false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRoleAllowed_NoHit(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM role_acl ra`)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err := s.RoleAllowed(context.Background(), []string{"viewer"}, ComponentRequiredFields, ActionDelete)
	if err != nil || ok {
		t.Fatalf("got (%v, %v), want (false, nil)", ok, err)
	}
}

func TestRoleAllowed_NoRoles(t *testing.T) {
	s, _ := newStore(t)
	ok, err := s.RoleAllowed(context.Background(), nil, ComponentRequiredFields, ActionRead)
	if err != nil || ok {
		t.Fatalf("got (%v, %v), want (false, nil)", ok, err)
	}
}

func TestMigrations_SeedAdminCRUD(t *testing.T) {
	var seeded int
	for _, s := range Migrations() {
		if strings.Contains(s, "INSERT IGNORE INTO role_acl") &&
			strings.Contains(s, "'"+ComponentRequiredFields+"'") {
			seeded++
		}
	}
	if seeded != 4 {
		t.Fatalf("admin seeded with %d actions on %s, want 4", seeded, ComponentRequiredFields)
	}
}
