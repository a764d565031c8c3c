package component

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

type fake struct {
	name string
	ddl  []string
}

func (f fake) Name() string         { return f.name }
func (f fake) Routes() chi.Router   { return chi.NewRouter() }
func (f fake) Migrations() []string { return f.ddl }
func (f fake) Init(Deps) error      { return nil }

func TestRegister_OrderAndReplace(t *testing.T) {
	reset()
	t.Cleanup(reset)

	Register(fake{name: "catalog"})
	Register(fake{name: "rules"})
	Register(fake{name: "catalog", ddl: []string{"x"}})

	all := All()
	if len(all) != 2 || all[0].Name() != "catalog" || all[1].Name() != "rules" {
		t.Fatalf("unexpected order %v", all)
	}
	if c, _ := Get("catalog"); len(c.Migrations()) != 1 {
		t.Fatal("re-register did not replace")
	}
}

func TestMigrateAll_Order(t *testing.T) {
	reset()
	t.Cleanup(reset)

	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()

	Register(fake{name: "a", ddl: []string{"CREATE TABLE a"}})
	Register(fake{name: "b"})
	Register(fake{name: "c", ddl: []string{"CREATE TABLE c"}})

	for _, q := range []string{"CREATE TABLE base", "CREATE TABLE a", "CREATE TABLE c"} {
		mock.ExpectExec(regexp.QuoteMeta(q)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := MigrateAll(context.Background(), sqlx.NewDb(raw, "sqlmock"),
		[]string{"CREATE TABLE base"}); err != nil {
		t.Fatalf("MigrateAll: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
