// internal/enforce/enforce.go
//
// Required-field enforcement for every model.
//
// Context
// -------
// Wrap returns a record.Store that consults the required-field rules before
// delegating.  Because the host routes every model through one Store, the
// decorator is the single interception point: no model opts in or out.
//
//   - Create: every payload must carry a non-empty value for each required
//     field declared on the model.  The first failing payload aborts the
//     batch.  A default-values probe (requestinfo.DefaultGet) skips the
//     check entirely.
//   - Write: the effective value of each required field (payload when the
//     key is present, stored value otherwise) must be non-empty on every
//     target record.  Empty values are tolerated in list views.
//
// Rules and field declarations are read on every call; nothing is cached.
//
// Notes
// -----
// • Rejections are apperr.ValidationError with a translated message.
// • Oxford commas, two spaces after periods.
package enforce

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/adept-reqfields/internal/apperr"
	"github.com/yanizio/adept-reqfields/internal/i18n"
	"github.com/yanizio/adept-reqfields/internal/metrics"
	"github.com/yanizio/adept-reqfields/internal/record"
	"github.com/yanizio/adept-reqfields/internal/requestinfo"
)

// Resolver yields field name → label of the required fields of a model.
type Resolver interface {
	Resolve(ctx context.Context, model string) (map[string]string, error)
}

// Schema reports the fields a model declares.
type Schema interface {
	FieldNames(ctx context.Context, model string) (map[string]struct{}, error)
}

const (
	opCreate = "create"
	opWrite  = "write"
)

type guarded struct {
	next   record.Store
	rules  Resolver
	schema Schema
}

// Wrap decorates next with required-field checks.
func Wrap(next record.Store, rules Resolver, schema Schema) record.Store {
	return &guarded{next: next, rules: rules, schema: schema}
}

// Read is never checked.
func (g *guarded) Read(ctx context.Context, model string, ids []int64) ([]record.Record, error) {
	return g.next.Read(ctx, model, ids)
}

func (g *guarded) Create(ctx context.Context, model string, vals []record.Values) ([]record.Record, error) {
	if requestinfo.DefaultGet(ctx) || len(vals) == 0 {
		metrics.RequiredFieldChecksTotal.WithLabelValues(opCreate, metrics.OutcomeSkipped).Inc()
		return g.next.Create(ctx, model, vals)
	}

	required, err := g.required(ctx, model)
	if err != nil {
		metrics.RequiredFieldChecksTotal.WithLabelValues(opCreate, metrics.OutcomeError).Inc()
		return nil, err
	}

	for i, v := range vals {
		var missing []field
		for _, f := range required {
			if IsEmpty(v[f.name]) {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			zap.S().Infow("create rejected: required fields missing",
				"model", model, "payload", i, "fields", names(missing))
			return nil, g.reject(ctx, model, opCreate, missing)
		}
	}

	metrics.RequiredFieldChecksTotal.WithLabelValues(opCreate, metrics.OutcomeOK).Inc()
	return g.next.Create(ctx, model, vals)
}

func (g *guarded) Write(ctx context.Context, model string, ids []int64, vals record.Values) error {
	if len(vals) == 0 {
		metrics.RequiredFieldChecksTotal.WithLabelValues(opWrite, metrics.OutcomeSkipped).Inc()
		return g.next.Write(ctx, model, ids, vals)
	}

	required, err := g.required(ctx, model)
	if err != nil {
		metrics.RequiredFieldChecksTotal.WithLabelValues(opWrite, metrics.OutcomeError).Inc()
		return err
	}
	if len(required) == 0 {
		metrics.RequiredFieldChecksTotal.WithLabelValues(opWrite, metrics.OutcomeOK).Inc()
		return g.next.Write(ctx, model, ids, vals)
	}

	// Stored values are only needed for required fields the payload omits.
	var stored []record.Record
	for _, f := range required {
		if _, ok := vals[f.name]; !ok {
			stored, err = g.next.Read(ctx, model, ids)
			if err != nil {
				metrics.RequiredFieldChecksTotal.WithLabelValues(opWrite, metrics.OutcomeError).Inc()
				return err
			}
			break
		}
	}

	list := requestinfo.FromContext(ctx).IsListView()
	targets := len(ids)
	var missing []field
	for _, f := range required {
		for i := 0; i < targets; i++ {
			v, ok := vals[f.name]
			if !ok {
				v = stored[i].Values[f.name]
			}
			if !IsEmpty(v) {
				continue
			}
			if list {
				continue
			}
			missing = append(missing, f)
			break
		}
	}

	if len(missing) > 0 {
		zap.S().Infow("write rejected: required fields missing",
			"model", model, "ids", ids, "fields", names(missing))
		return g.reject(ctx, model, opWrite, missing)
	}

	metrics.RequiredFieldChecksTotal.WithLabelValues(opWrite, metrics.OutcomeOK).Inc()
	return g.next.Write(ctx, model, ids, vals)
}

/*─────────────────────────────── helpers ──────────────────────────────────*/

type field struct {
	name  string
	label string
}

// required returns the model's required fields that the schema declares,
// sorted by name.
func (g *guarded) required(ctx context.Context, model string) ([]field, error) {
	rules, err := g.rules.Resolve(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("resolve required fields of %s: %w", model, err)
	}
	if len(rules) == 0 {
		return nil, nil
	}
	declared, err := g.schema.FieldNames(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("fields of %s: %w", model, err)
	}

	out := make([]field, 0, len(rules))
	for name, label := range rules {
		if _, ok := declared[name]; ok {
			out = append(out, field{name: name, label: label})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

func (g *guarded) reject(ctx context.Context, model, op string, missing []field) error {
	metrics.RequiredFieldChecksTotal.WithLabelValues(op, metrics.OutcomeRejected).Inc()
	metrics.RequiredFieldViolationsTotal.WithLabelValues(model, op).Inc()

	lines := make([]string, len(missing))
	for i, f := range missing {
		lines[i] = Line(f.label, f.name)
	}
	return apperr.Validation(
		i18n.T(ctx, i18n.RequiredMissing, strings.Join(lines, "\n")),
		names(missing)...)
}

// Line formats one missing-field entry.
func Line(label, name string) string {
	return fmt.Sprintf("➡ %s (`%s`)", label, name)
}

func names(fs []field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.name
	}
	return out
}
