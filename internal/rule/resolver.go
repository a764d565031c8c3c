// internal/rule/resolver.go
//
// Dynamic required-field lookup.
//
// Context
// -------
// Resolve answers "which fields must be filled on model M right now?".  It
// reads committed configuration on every call and never caches, so a rule
// edited in one request is enforced on the very next one.  When the context
// carries a transaction the read joins it, which lets a caller see its own
// uncommitted rule edits.
//
// Notes
// -----
// • A rule with is_required = FALSE contributes nothing.
package rule

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/adept-reqfields/internal/database"
)

// Resolve returns field name → label for the required fields of model.
// The map is empty, never nil, when no active rule exists.
func (s *Store) Resolve(ctx context.Context, model string) (map[string]string, error) {
	const q = `SELECT f.name, f.label
                 FROM required_field_rule r
                 JOIN schema_model m               ON m.id = r.model_id
                 JOIN required_field_rule_field rf ON rf.rule_id = r.id
                 JOIN schema_field f               ON f.id = rf.field_id
                WHERE m.name = ? AND r.is_required = TRUE`

	var rows []struct {
		Name  string `db:"name"`
		Label string `db:"label"`
	}
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, s.db), &rows, q, model); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Name] = r.Label
	}
	return out, nil
}
