// internal/rule/store.go
//
// Required-field rule persistence.
//
// Context
// -------
// Store is the only writer of the rule tables.  Every save runs in one
// transaction (joining the caller's when present) and follows the same
// order:
//
//  1. Validate the input struct (validator/v10, translated messages).
//  2. Confirm the target model exists and every field belongs to it.
//  3. Write the rule row and replace its field set.
//  4. Check that no *other* rule targets the same model.  A hit aborts the
//     transaction with a user-facing ValidationError.
//
// The unique index on model_id backs step 4 under concurrency; a
// duplicate-key error from the driver maps to the same ValidationError.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package rule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/adept-reqfields/internal/apperr"
	"github.com/yanizio/adept-reqfields/internal/database"
	"github.com/yanizio/adept-reqfields/internal/i18n"
	"github.com/yanizio/adept-reqfields/internal/metrics"
	"github.com/yanizio/adept-reqfields/internal/requestinfo"
	"github.com/yanizio/adept-reqfields/internal/schema"
)

// ErrNotFound is returned when a rule ID does not exist.
var ErrNotFound = errors.New("rule: not found")

// errDuplicate tags the one-rule-per-model rejection for metrics.
var errDuplicate = errors.New("rule: duplicate model")

// Catalog is the slice of *schema.Catalog the store needs.
type Catalog interface {
	ModelByID(ctx context.Context, id int64) (*schema.Model, error)
	FieldsByIDs(ctx context.Context, ids []int64) ([]schema.Field, error)
}

// Store reads and writes rules.  Safe for concurrent use.
type Store struct {
	db      *sqlx.DB
	catalog Catalog
	msgs    *i18n.Catalog
	v       *validator.Validate
}

// NewStore binds a Store to db.  Translations come from i18n.Default().
func NewStore(db *sqlx.DB, catalog Catalog) *Store {
	msgs := i18n.Default()
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := msgs.RegisterValidator(v); err != nil {
		zap.L().Warn("rule validator translations", zap.Error(err))
	}
	return &Store{db: db, catalog: catalog, msgs: msgs, v: v}
}

/*──────────────────────────────── reads ───────────────────────────────────*/

const selectRule = `SELECT r.id, r.model_id, m.name AS model_name, r.is_required, r.updated_at
                      FROM required_field_rule r
                      JOIN schema_model m ON m.id = r.model_id`

// List returns every rule ordered by model name, field sets included.
func (s *Store) List(ctx context.Context) ([]Rule, error) {
	conn := database.Conn(ctx, s.db)

	var rules []Rule
	if err := sqlx.SelectContext(ctx, conn, &rules, selectRule+` ORDER BY m.name`); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return rules, nil
	}

	var links []struct {
		RuleID  int64 `db:"rule_id"`
		FieldID int64 `db:"field_id"`
	}
	const q = `SELECT rule_id, field_id FROM required_field_rule_field ORDER BY rule_id, field_id`
	if err := sqlx.SelectContext(ctx, conn, &links, q); err != nil {
		return nil, err
	}

	idx := make(map[int64]int, len(rules))
	for i := range rules {
		idx[rules[i].ID] = i
		rules[i].FieldIDs = []int64{}
	}
	for _, l := range links {
		if i, ok := idx[l.RuleID]; ok {
			rules[i].FieldIDs = append(rules[i].FieldIDs, l.FieldID)
		}
	}
	return rules, nil
}

// Get fetches one rule with its field set.
func (s *Store) Get(ctx context.Context, id int64) (*Rule, error) {
	conn := database.Conn(ctx, s.db)

	var r Rule
	err := sqlx.GetContext(ctx, conn, &r, selectRule+` WHERE r.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.FieldIDs = []int64{}
	const q = `SELECT field_id FROM required_field_rule_field WHERE rule_id = ? ORDER BY field_id`
	if err := sqlx.SelectContext(ctx, conn, &r.FieldIDs, q, id); err != nil {
		return nil, err
	}
	return &r, nil
}

/*─────────────────────────────── writes ───────────────────────────────────*/

// Create stores a new rule.
func (s *Store) Create(ctx context.Context, in Input) (*Rule, error) {
	var out *Rule
	err := database.WithTx(ctx, s.db, func(ctx context.Context) error {
		if err := s.check(ctx, in); err != nil {
			return err
		}
		const q = `INSERT INTO required_field_rule (model_id, is_required) VALUES (?, ?)`
		res, err := database.Conn(ctx, s.db).ExecContext(ctx, q, in.ModelID, in.required())
		if err != nil {
			if database.IsDuplicateKey(err) {
				return s.duplicate(ctx)
			}
			return fmt.Errorf("insert rule: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := s.saveFields(ctx, id, in.FieldIDs); err != nil {
			return err
		}
		if err := s.ensureUnique(ctx, id, in.ModelID); err != nil {
			return err
		}
		out, err = s.Get(ctx, id)
		return err
	})
	s.observe("create", err)
	if err != nil {
		return nil, err
	}
	zap.S().Infow("required-field rule created", "id", out.ID, "model", out.ModelName,
		"fields", len(out.FieldIDs))
	return out, nil
}

// Update replaces model, field set, and flag of rule id.
func (s *Store) Update(ctx context.Context, id int64, in Input) (*Rule, error) {
	var out *Rule
	err := database.WithTx(ctx, s.db, func(ctx context.Context) error {
		if err := s.check(ctx, in); err != nil {
			return err
		}
		const q = `UPDATE required_field_rule SET model_id = ?, is_required = ? WHERE id = ?`
		res, err := database.Conn(ctx, s.db).ExecContext(ctx, q, in.ModelID, in.required(), id)
		if err != nil {
			if database.IsDuplicateKey(err) {
				return s.duplicate(ctx)
			}
			return fmt.Errorf("update rule %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			// MySQL reports 0 for unchanged rows too; confirm existence.
			if _, err := s.Get(ctx, id); err != nil {
				return err
			}
		}
		const del = `DELETE FROM required_field_rule_field WHERE rule_id = ?`
		if _, err := database.Conn(ctx, s.db).ExecContext(ctx, del, id); err != nil {
			return fmt.Errorf("clear rule %d fields: %w", id, err)
		}
		if err := s.saveFields(ctx, id, in.FieldIDs); err != nil {
			return err
		}
		if err := s.ensureUnique(ctx, id, in.ModelID); err != nil {
			return err
		}
		out, err = s.Get(ctx, id)
		return err
	})
	s.observe("update", err)
	if err != nil {
		return nil, err
	}
	zap.S().Infow("required-field rule updated", "id", out.ID, "model", out.ModelName,
		"fields", len(out.FieldIDs), "is_required", out.IsRequired)
	return out, nil
}

// Delete removes rule id.  Field links go with it via FK cascade.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM required_field_rule WHERE id = ?`, id)
	if err != nil {
		s.observe("delete", err)
		return fmt.Errorf("delete rule %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		err = ErrNotFound
	}
	s.observe("delete", err)
	return err
}

// PurgeField deletes every rule referencing fieldID.  Registered as a
// schema.FieldDeleteHook so a rule never outlives one of its fields.
func (s *Store) PurgeField(ctx context.Context, fieldID int64) error {
	const q = `DELETE FROM required_field_rule
                WHERE id IN (SELECT rule_id FROM required_field_rule_field WHERE field_id = ?)`
	res, err := database.Conn(ctx, s.db).ExecContext(ctx, q, fieldID)
	if err != nil {
		return fmt.Errorf("purge rules for field %d: %w", fieldID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		zap.S().Infow("required-field rules purged", "field_id", fieldID, "count", n)
	}
	return nil
}

/*─────────────────────────────── helpers ──────────────────────────────────*/

// check validates in and its references against the catalog.
func (s *Store) check(ctx context.Context, in Input) error {
	if err := s.v.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			trans := s.msgs.Translator(requestinfo.Locale(ctx))
			msgs := make([]string, 0, len(verrs))
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Translate(trans))
				fields = append(fields, fe.Field())
			}
			return apperr.Validation(strings.Join(msgs, "\n"), fields...)
		}
		return err
	}

	if _, err := s.catalog.ModelByID(ctx, in.ModelID); err != nil {
		if errors.Is(err, schema.ErrNotFound) {
			return apperr.Validation(s.msgs.T(ctx, i18n.RuleModelUnknown), "model_id")
		}
		return err
	}

	ids := uniqueIDs(in.FieldIDs)
	fields, err := s.catalog.FieldsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[int64]schema.Field, len(fields))
	for _, f := range fields {
		found[f.ID] = f
	}
	for _, id := range ids {
		f, ok := found[id]
		if !ok || f.ModelID != in.ModelID {
			return apperr.Validation(
				s.msgs.T(ctx, i18n.RuleFieldModel, strconv.FormatInt(id, 10),
					strconv.FormatInt(in.ModelID, 10)),
				"field_ids")
		}
	}
	return nil
}

func (s *Store) saveFields(ctx context.Context, ruleID int64, fieldIDs []int64) error {
	const q = `INSERT INTO required_field_rule_field (rule_id, field_id) VALUES (?, ?)`
	conn := database.Conn(ctx, s.db)
	for _, fid := range uniqueIDs(fieldIDs) {
		if _, err := conn.ExecContext(ctx, q, ruleID, fid); err != nil {
			return fmt.Errorf("link rule %d field %d: %w", ruleID, fid, err)
		}
	}
	return nil
}

// ensureUnique fails when another rule already targets modelID.
func (s *Store) ensureUnique(ctx context.Context, ruleID, modelID int64) error {
	const q = `SELECT COUNT(*) FROM required_field_rule WHERE model_id = ? AND id <> ?`
	var n int
	if err := sqlx.GetContext(ctx, database.Conn(ctx, s.db), &n, q, modelID, ruleID); err != nil {
		return err
	}
	if n > 0 {
		return s.duplicate(ctx)
	}
	return nil
}

func (s *Store) duplicate(ctx context.Context) error {
	return fmt.Errorf("%w: %w", errDuplicate,
		apperr.Validation(s.msgs.T(ctx, i18n.RuleDuplicate), "model_id"))
}

func (s *Store) observe(op string, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, errDuplicate):
		outcome = metrics.OutcomeDuplicate
	case apperr.IsValidation(err):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	metrics.RuleSavesTotal.WithLabelValues(op, outcome).Inc()
}

// uniqueIDs returns ids sorted and deduplicated.
func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
