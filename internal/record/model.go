// internal/record/model.go
//
// Generic host records.
//
// Context
// -------
// The host stores every business model in one table: a record is a model
// name plus a JSON object of field values.  Field declarations live in the
// schema catalog; this package neither knows nor checks them.
//
// Store is the persistence contract every model funnels through.  The
// required-field decorator in internal/enforce wraps it, and the records
// component talks only to the wrapped value.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package record

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError.
var ErrNotFound = errors.New("record: not found")

// NotFoundError names the first requested ID that does not exist.
type NotFoundError struct {
	Model string
	ID    int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s record %d: not found", e.Model, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Values is a field-name → value payload.  Decoded JSON numbers are
// float64.
type Values map[string]any

// Record is one stored row.
type Record struct {
	ID     int64  `json:"id"`
	Model  string `json:"model"`
	Values Values `json:"values"`
}

// Store persists records of any model.
type Store interface {
	// Create inserts one record per payload and returns them in order.
	Create(ctx context.Context, model string, vals []Values) ([]Record, error)
	// Write merges vals into every record in ids.
	Write(ctx context.Context, model string, ids []int64, vals Values) error
	// Read returns the records in ids, in the order given.
	Read(ctx context.Context, model string, ids []int64) ([]Record, error)
}

// Migrations returns the idempotent DDL for the record table.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS record (
		    id         BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		    model      VARCHAR(128) NOT NULL,
		    data       JSON NOT NULL,
		    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		    KEY ix_record_model (model)
		) ENGINE=InnoDB`,
	}
}
