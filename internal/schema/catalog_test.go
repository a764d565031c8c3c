// internal/schema/catalog_test.go
//
// Unit-tests for Catalog using sqlmock.
//
// Run: go test ./internal/schema -v

package schema

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestFieldNames(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT f.name FROM schema_field f JOIN schema_model m ON m.id = f.model_id WHERE m.name = ?`,
	)).
		WithArgs("res.partner").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("email").AddRow("phone"))

	got, err := NewCatalog(db).FieldNames(context.Background(), "res.partner")
	if err != nil {
		t.Fatalf("FieldNames: %v", err)
	}
	if _, ok := got["email"]; !ok || len(got) != 2 {
		t.Fatalf("unexpected set: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestModelByName_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, label FROM schema_model WHERE name = ?`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "label"}))

	_, err := NewCatalog(db).ModelByName(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFieldsByIDs(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM schema_field WHERE id IN (?, ?)`)).
		WithArgs(int64(3), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "model_id", "name", "label", "type"}).
			AddRow(3, 1, "email", "Email", "char").
			AddRow(4, 2, "code", "Code", "char"))

	got, err := NewCatalog(db).FieldsByIDs(context.Background(), []int64{3, 4})
	if err != nil {
		t.Fatalf("FieldsByIDs: %v", err)
	}
	if len(got) != 2 || got[1].ModelID != 2 {
		t.Fatalf("unexpected rows: %#v", got)
	}
}

func TestDeleteField_RunsHooksInTx(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM schema_field WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cat := NewCatalog(db)
	var hooked int64
	cat.OnFieldDelete(func(ctx context.Context, id int64) error {
		hooked = id
		return nil
	})

	if err := cat.DeleteField(context.Background(), 7); err != nil {
		t.Fatalf("DeleteField: %v", err)
	}
	if hooked != 7 {
		t.Errorf("hook not called with field id, got %d", hooked)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestDeleteField_HookErrorRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	cat := NewCatalog(db)
	cat.OnFieldDelete(func(context.Context, int64) error { return errors.New("locked") })

	if err := cat.DeleteField(context.Background(), 7); err == nil {
		t.Fatalf("expected hook error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestDeleteModel_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM schema_model WHERE id = ?`)).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewCatalog(db).DeleteModel(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
