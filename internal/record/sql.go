// internal/record/sql.go
//
// MySQL-backed Store.
//
// Context
// -------
// Rows are `record(id, model, data JSON)`.  Write is read-merge-write so a
// partial payload never drops other fields.  All statements go through
// database.Conn, so a caller that opened a transaction with
// database.WithTx gets every statement, including the enforce decorator's
// reads, inside it.
package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/adept-reqfields/internal/database"
)

// SQLStore implements Store on top of *sqlx.DB.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore binds a store to db.
func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

var _ Store = (*SQLStore)(nil)

// Create inserts vals in one transaction.
func (s *SQLStore) Create(ctx context.Context, model string, vals []Values) ([]Record, error) {
	out := make([]Record, 0, len(vals))
	err := database.WithTx(ctx, s.db, func(ctx context.Context) error {
		conn := database.Conn(ctx, s.db)
		for _, v := range vals {
			if v == nil {
				v = Values{}
			}
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode %s record: %w", model, err)
			}
			res, err := conn.ExecContext(ctx,
				`INSERT INTO record (model, data) VALUES (?, ?)`, model, data)
			if err != nil {
				return fmt.Errorf("insert %s record: %w", model, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			out = append(out, Record{ID: id, Model: model, Values: v})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Write merges vals into each record.  Any missing ID aborts the whole
// write with ErrNotFound.
func (s *SQLStore) Write(ctx context.Context, model string, ids []int64, vals Values) error {
	return database.WithTx(ctx, s.db, func(ctx context.Context) error {
		recs, err := s.Read(ctx, model, ids)
		if err != nil {
			return err
		}
		conn := database.Conn(ctx, s.db)
		for _, r := range recs {
			for k, v := range vals {
				r.Values[k] = v
			}
			data, err := json.Marshal(r.Values)
			if err != nil {
				return fmt.Errorf("encode %s record %d: %w", model, r.ID, err)
			}
			if _, err := conn.ExecContext(ctx,
				`UPDATE record SET data = ? WHERE id = ? AND model = ?`, data, r.ID, model); err != nil {
				return fmt.Errorf("update %s record %d: %w", model, r.ID, err)
			}
		}
		return nil
	})
}

// Read loads ids for model.
func (s *SQLStore) Read(ctx context.Context, model string, ids []int64) ([]Record, error) {
	if len(ids) == 0 {
		return []Record{}, nil
	}
	q, args, err := sqlx.In(`SELECT id, data FROM record WHERE model = ? AND id IN (?)`, model, ids)
	if err != nil {
		return nil, err
	}
	conn := database.Conn(ctx, s.db)

	var rows []struct {
		ID   int64  `db:"id"`
		Data []byte `db:"data"`
	}
	if err := sqlx.SelectContext(ctx, conn, &rows, conn.Rebind(q), args...); err != nil {
		return nil, err
	}

	byID := make(map[int64]Values, len(rows))
	for _, r := range rows {
		v := Values{}
		if err := json.Unmarshal(r.Data, &v); err != nil {
			return nil, fmt.Errorf("decode %s record %d: %w", model, r.ID, err)
		}
		if v == nil { // stored JSON null
			v = Values{}
		}
		byID[r.ID] = v
	}

	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			return nil, &NotFoundError{Model: model, ID: id}
		}
		out = append(out, Record{ID: id, Model: model, Values: v})
	}
	return out, nil
}
