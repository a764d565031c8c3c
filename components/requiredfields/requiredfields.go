// components/requiredfields/requiredfields.go
//
// Required-field rule management: HTML list and form views plus JSON CRUD.
//
// Context
// -------
// Administrators maintain one rule per model, naming the fields that must
// be filled on create and update.  Routes:
//
//	GET    /required-fields             HTML list
//	GET    /required-fields/new         HTML create form
//	POST   /required-fields             form create
//	GET    /required-fields/{id}/edit   HTML edit form
//	POST   /required-fields/{id}        form update
//	GET    /api/required-fields         list
//	POST   /api/required-fields         create
//	GET    /api/required-fields/{id}    read
//	PUT    /api/required-fields/{id}    update
//	DELETE /api/required-fields/{id}    delete
//
// Every route is guarded by acl.RequirePermission on component
// `required_fields`.  Saves run in one transaction; the store rolls back on
// any validation failure.  Form posts carry a CSRF token (internal/form)
// and re-render with the message and HTTP 422 when the store rejects them.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package requiredfields

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/adept-reqfields/internal/acl"
	"github.com/yanizio/adept-reqfields/internal/component"
	"github.com/yanizio/adept-reqfields/internal/i18n"
	"github.com/yanizio/adept-reqfields/internal/respond"
	"github.com/yanizio/adept-reqfields/internal/rule"
	"github.com/yanizio/adept-reqfields/internal/schema"
)

//go:embed templates/*.html
var templates embed.FS

var (
	listTpl = template.Must(template.ParseFS(templates, "templates/list.html"))
	formTpl = template.Must(template.ParseFS(templates, "templates/form.html"))
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Rules is the slice of *rule.Store the component uses.
type Rules interface {
	List(ctx context.Context) ([]rule.Rule, error)
	Get(ctx context.Context, id int64) (*rule.Rule, error)
	Create(ctx context.Context, in rule.Input) (*rule.Rule, error)
	Update(ctx context.Context, id int64, in rule.Input) (*rule.Rule, error)
	Delete(ctx context.Context, id int64) error
}

// Catalog supplies model and field descriptors for display and form
// options.  *schema.Catalog satisfies it.
type Catalog interface {
	ListModels(ctx context.Context) ([]schema.Model, error)
	FieldsOf(ctx context.Context, modelID int64) ([]schema.Field, error)
	FieldsByIDs(ctx context.Context, ids []int64) ([]schema.Field, error)
}

// Component serves rule management.
type Component struct {
	rules   Rules
	catalog Catalog
	acl     acl.Checker
}

// New returns an uninitialised component; Init wires it.
func New() *Component { return &Component{} }

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return acl.ComponentRequiredFields }

// Migrations returns the rule tables.
func (c *Component) Migrations() []string { return rule.Migrations() }

// Init wires the rule store, catalog, and ACL.
func (c *Component) Init(d component.Deps) error {
	if d.Rules == nil || d.Catalog == nil || d.ACL == nil {
		return errors.New("requiredfields: rules, catalog, and acl are required")
	}
	c.rules, c.catalog, c.acl = d.Rules, d.Catalog, d.ACL
	return nil
}

// Routes builds and returns the router mounted at “/”.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	guard := func(action string) func(http.Handler) http.Handler {
		return acl.RequirePermission(c.acl, acl.ComponentRequiredFields, action)
	}

	r.With(guard(acl.ActionRead)).Get("/required-fields", c.handleListHTML)
	r.With(guard(acl.ActionCreate)).Get("/required-fields/new", c.handleNewForm)
	r.With(guard(acl.ActionCreate)).Post("/required-fields", c.handleCreateForm)
	r.With(guard(acl.ActionUpdate)).Get("/required-fields/{id}/edit", c.handleEditForm)
	r.With(guard(acl.ActionUpdate)).Post("/required-fields/{id}", c.handleUpdateForm)
	r.Route("/api/required-fields", func(api chi.Router) {
		api.With(guard(acl.ActionRead)).Get("/", c.handleList)
		api.With(guard(acl.ActionCreate)).Post("/", c.handleCreate)
		api.With(guard(acl.ActionRead)).Get("/{id}", c.handleGet)
		api.With(guard(acl.ActionUpdate)).Put("/{id}", c.handleUpdate)
		api.With(guard(acl.ActionDelete)).Delete("/{id}", c.handleDelete)
	})
	return r
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

type row struct {
	ID         int64
	Model      string
	Fields     []string
	IsRequired bool
}

func (c *Component) handleListHTML(w http.ResponseWriter, r *http.Request) {
	rules, err := c.rules.List(r.Context())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		zap.L().Error("list rules", zap.Error(err))
		return
	}

	var ids []int64
	for _, rl := range rules {
		ids = append(ids, rl.FieldIDs...)
	}
	fields, err := c.catalog.FieldsByIDs(r.Context(), ids)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		zap.L().Error("rule fields", zap.Error(err))
		return
	}
	labels := make(map[int64]string, len(fields))
	for _, f := range fields {
		labels[f.ID] = f.Label
	}

	rows := make([]row, len(rules))
	for i, rl := range rules {
		rows[i] = row{ID: rl.ID, Model: rl.ModelName, IsRequired: rl.IsRequired}
		for _, id := range rl.FieldIDs {
			rows[i].Fields = append(rows[i].Fields, labels[id])
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := listTpl.Execute(w, rows); err != nil {
		zap.L().Error("render rule list", zap.Error(err))
	}
}

func (c *Component) handleList(w http.ResponseWriter, r *http.Request) {
	rules, err := c.rules.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, rules)
}

func (c *Component) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rl, err := c.rules.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, c.mapNotFound(r.Context(), id, err))
		return
	}
	respond.JSON(w, http.StatusOK, rl)
}

func (c *Component) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in rule.Input
	if err := respond.Decode(r, &in); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	rl, err := c.rules.Create(r.Context(), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, rl)
}

func (c *Component) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in rule.Input
	if err := respond.Decode(r, &in); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	rl, err := c.rules.Update(r.Context(), id, in)
	if err != nil {
		respond.Error(w, r, c.mapNotFound(r.Context(), id, err))
		return
	}
	respond.JSON(w, http.StatusOK, rl)
}

func (c *Component) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.rules.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, c.mapNotFound(r.Context(), id, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

func (c *Component) mapNotFound(ctx context.Context, id int64, err error) error {
	if errors.Is(err, rule.ErrNotFound) {
		return respond.NotFound(i18n.T(ctx, i18n.RuleNotFound, strconv.FormatInt(id, 10)))
	}
	return err
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
