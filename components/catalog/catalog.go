// components/catalog/catalog.go
//
// Schema catalog API.
//
// Context
// -------
// Exposes the model and field descriptors the rule editor picks from, and
// the delete endpoints whose cascades keep rules consistent:
//
//	GET    /api/schema/models                  list models
//	GET    /api/schema/models/{model}/fields   fields of one model
//	POST   /api/schema/import                  YAML catalog document
//	DELETE /api/schema/models/{model}          drop model (rule cascades)
//	DELETE /api/schema/fields/{id}             drop field (rules purged)
//
// Guarded by acl.RequirePermission on component `schema_catalog`.
package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/adept-reqfields/internal/acl"
	"github.com/yanizio/adept-reqfields/internal/component"
	"github.com/yanizio/adept-reqfields/internal/i18n"
	"github.com/yanizio/adept-reqfields/internal/respond"
	"github.com/yanizio/adept-reqfields/internal/schema"
)

var _ component.Component = (*Component)(nil)

// Catalog is the slice of *schema.Catalog the API uses.
type Catalog interface {
	ListModels(ctx context.Context) ([]schema.Model, error)
	ModelByName(ctx context.Context, name string) (*schema.Model, error)
	FieldsOf(ctx context.Context, modelID int64) ([]schema.Field, error)
	DeleteModel(ctx context.Context, id int64) error
	DeleteField(ctx context.Context, id int64) error
	Import(ctx context.Context, doc *schema.Document) (schema.ImportStats, error)
}

// Component serves the catalog API.
type Component struct {
	cat Catalog
	acl acl.Checker
}

// New returns an uninitialised component; Init wires it.
func New() *Component { return &Component{} }

func (c *Component) Name() string         { return acl.ComponentCatalog }
func (c *Component) Migrations() []string { return schema.Migrations() }

func (c *Component) Init(d component.Deps) error {
	if d.Catalog == nil || d.ACL == nil {
		return errors.New("catalog: catalog and acl are required")
	}
	c.cat, c.acl = d.Catalog, d.ACL
	return nil
}

func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	guard := func(action string) func(http.Handler) http.Handler {
		return acl.RequirePermission(c.acl, acl.ComponentCatalog, action)
	}

	r.Route("/api/schema", func(api chi.Router) {
		api.With(guard(acl.ActionRead)).Get("/models", c.handleModels)
		api.With(guard(acl.ActionRead)).Get("/models/{model}/fields", c.handleFields)
		api.With(guard(acl.ActionCreate)).Post("/import", c.handleImport)
		api.With(guard(acl.ActionDelete)).Delete("/models/{model}", c.handleDeleteModel)
		api.With(guard(acl.ActionDelete)).Delete("/fields/{id}", c.handleDeleteField)
	})
	return r
}

func (c *Component) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := c.cat.ListModels(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, models)
}

func (c *Component) handleFields(w http.ResponseWriter, r *http.Request) {
	m, err := c.model(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	fields, err := c.cat.FieldsOf(r.Context(), m.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, fields)
}

func (c *Component) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	doc, err := schema.Parse(raw, "request body")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	stats, err := c.cat.Import(r.Context(), doc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}

func (c *Component) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	m, err := c.model(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := c.cat.DeleteModel(r.Context(), m.ID); err != nil {
		respond.Error(w, r, c.notFound(r.Context(), m.Name, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Component) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(w, "invalid id")
		return
	}
	if err := c.cat.DeleteField(r.Context(), id); err != nil {
		if errors.Is(err, schema.ErrNotFound) {
			err = respond.NotFound(http.StatusText(http.StatusNotFound))
		}
		respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Component) model(r *http.Request) (*schema.Model, error) {
	name := chi.URLParam(r, "model")
	m, err := c.cat.ModelByName(r.Context(), name)
	if err != nil {
		return nil, c.notFound(r.Context(), name, err)
	}
	return m, nil
}

func (c *Component) notFound(ctx context.Context, model string, err error) error {
	if errors.Is(err, schema.ErrNotFound) {
		return respond.NotFound(i18n.T(ctx, i18n.ModelUnknown, model))
	}
	return err
}
