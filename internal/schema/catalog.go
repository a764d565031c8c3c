// internal/schema/catalog.go
//
// Catalog queries and mutations.
//
// Context
// -------
// Catalog answers the questions the rest of the service asks about the
// host schema:
//
//   - Which models exist?                        → `ListModels`, `ModelByName`
//   - Which fields does model M declare?         → `FieldsOf`, `FieldNames`
//   - Do these field IDs belong to model M?      → `FieldsByIDs`
//
// It also owns deletion.  Removing a model cascades to its fields and to any
// required-field rule targeting it through foreign keys.  Removing a field
// first runs the registered FieldDeleteHooks inside the same transaction so
// dependants (the rule store) can drop rows that would otherwise reference
// a vanished field.
//
// Every read goes through database.Conn so callers inside a transaction
// see their own uncommitted catalog edits.  Nothing is cached.
//
// Notes
// -----
//   - Errors are returned verbatim or wrapped with %w; callers log.
//   - Oxford commas, two spaces after periods.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/adept-reqfields/internal/database"
)

// ErrNotFound is returned when a model or field lookup misses.
var ErrNotFound = errors.New("schema: not found")

// FieldDeleteHook runs inside the deleting transaction before the field
// row is removed.
type FieldDeleteHook func(ctx context.Context, fieldID int64) error

// Catalog is safe for concurrent use.
type Catalog struct {
	db *sqlx.DB

	hooksMu sync.RWMutex
	hooks   []FieldDeleteHook
}

// NewCatalog binds a Catalog to db.
func NewCatalog(db *sqlx.DB) *Catalog { return &Catalog{db: db} }

// OnFieldDelete registers h.  Hooks run in registration order.
func (c *Catalog) OnFieldDelete(h FieldDeleteHook) {
	c.hooksMu.Lock()
	c.hooks = append(c.hooks, h)
	c.hooksMu.Unlock()
}

/*──────────────────────────────── reads ───────────────────────────────────*/

// ListModels returns every model ordered by technical name.
func (c *Catalog) ListModels(ctx context.Context) ([]Model, error) {
	const q = `SELECT id, name, label FROM schema_model ORDER BY name`
	var out []Model
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, c.db), &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// ModelByName fetches one model by technical name.
func (c *Catalog) ModelByName(ctx context.Context, name string) (*Model, error) {
	const q = `SELECT id, name, label FROM schema_model WHERE name = ? LIMIT 1`
	return c.getModel(ctx, q, name)
}

// ModelByID fetches one model by primary key.
func (c *Catalog) ModelByID(ctx context.Context, id int64) (*Model, error) {
	const q = `SELECT id, name, label FROM schema_model WHERE id = ? LIMIT 1`
	return c.getModel(ctx, q, id)
}

func (c *Catalog) getModel(ctx context.Context, q string, arg any) (*Model, error) {
	var m Model
	err := sqlx.GetContext(ctx, database.Conn(ctx, c.db), &m, q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FieldsOf lists the fields declared on modelID, ordered by name.
func (c *Catalog) FieldsOf(ctx context.Context, modelID int64) ([]Field, error) {
	const q = `SELECT id, model_id, name, label, type
                 FROM schema_field
                WHERE model_id = ?
                ORDER BY name`
	var out []Field
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, c.db), &out, q, modelID); err != nil {
		return nil, err
	}
	return out, nil
}

// FieldsByIDs returns the rows for ids in arbitrary order.  Unknown IDs are
// simply absent from the result.
func (c *Catalog) FieldsByIDs(ctx context.Context, ids []int64) ([]Field, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT id, model_id, name, label, type
                               FROM schema_field
                              WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	conn := database.Conn(ctx, c.db)
	var out []Field
	if err := sqlx.SelectContext(ctx, conn, &out, conn.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// FieldNames returns the set of field names declared on the model with the
// given technical name.  An unknown model yields an empty set.
func (c *Catalog) FieldNames(ctx context.Context, model string) (map[string]struct{}, error) {
	const q = `SELECT f.name
                 FROM schema_field f
                 JOIN schema_model m ON m.id = f.model_id
                WHERE m.name = ?`
	var names []string
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, c.db), &names, q, model); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set, nil
}

/*─────────────────────────────── writes ───────────────────────────────────*/

// UpsertModel inserts m or refreshes its label, returning the row ID.
func (c *Catalog) UpsertModel(ctx context.Context, m Model) (int64, error) {
	const q = `INSERT INTO schema_model (name, label) VALUES (?, ?)
               ON DUPLICATE KEY UPDATE label = VALUES(label), id = LAST_INSERT_ID(id)`
	res, err := database.Conn(ctx, c.db).ExecContext(ctx, q, m.Name, m.Label)
	if err != nil {
		return 0, fmt.Errorf("upsert model %s: %w", m.Name, err)
	}
	return res.LastInsertId()
}

// UpsertField inserts f or refreshes its label and type, returning the ID.
func (c *Catalog) UpsertField(ctx context.Context, f Field) (int64, error) {
	if f.Type == "" {
		f.Type = "char"
	}
	const q = `INSERT INTO schema_field (model_id, name, label, type) VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE label = VALUES(label), type = VALUES(type),
                                       id = LAST_INSERT_ID(id)`
	res, err := database.Conn(ctx, c.db).ExecContext(ctx, q, f.ModelID, f.Name, f.Label, f.Type)
	if err != nil {
		return 0, fmt.Errorf("upsert field %s: %w", f.Name, err)
	}
	return res.LastInsertId()
}

// DeleteModel removes a model.  Fields and rules go with it via FK cascade.
func (c *Catalog) DeleteModel(ctx context.Context, id int64) error {
	res, err := database.Conn(ctx, c.db).ExecContext(ctx, `DELETE FROM schema_model WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete model %d: %w", id, err)
	}
	return requireAffected(res)
}

// DeleteField runs the delete hooks then removes the field, atomically.
func (c *Catalog) DeleteField(ctx context.Context, id int64) error {
	return database.WithTx(ctx, c.db, func(ctx context.Context) error {
		c.hooksMu.RLock()
		hooks := append([]FieldDeleteHook(nil), c.hooks...)
		c.hooksMu.RUnlock()

		for _, h := range hooks {
			if err := h(ctx, id); err != nil {
				return fmt.Errorf("field %d delete hook: %w", id, err)
			}
		}
		res, err := database.Conn(ctx, c.db).ExecContext(ctx, `DELETE FROM schema_field WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete field %d: %w", id, err)
		}
		return requireAffected(res)
	})
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
