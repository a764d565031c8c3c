// components/records/records.go
//
// Generic records API: the host request layer every model goes through.
//
// Context
// -------
//	POST /api/records/{model}        body: [{…}, {…}]             → 201 records
//	PUT  /api/records/{model}        body: {"ids": […], "values": {…}} → 204
//	GET  /api/records/{model}/{id}                                → 200 record
//
// Each request runs in one transaction.  The store handed to Init is the
// required-field guarded store, so a missing required value surfaces here
// as *apperr.ValidationError, which rolls the transaction back and answers
// 422 with the translated message.
//
// Notes
// -----
// • Request-scoped view type and default-values probe come from
//   requestinfo.Enrich, mounted in cmd/web.
// • Oxford commas, two spaces after periods.
package records

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/adept-reqfields/internal/component"
	"github.com/yanizio/adept-reqfields/internal/database"
	"github.com/yanizio/adept-reqfields/internal/i18n"
	"github.com/yanizio/adept-reqfields/internal/record"
	"github.com/yanizio/adept-reqfields/internal/respond"
	"github.com/yanizio/adept-reqfields/internal/schema"
)

var _ component.Component = (*Component)(nil)

// Models confirms a model exists.
type Models interface {
	ModelByName(ctx context.Context, name string) (*schema.Model, error)
}

// Component serves the records API.
type Component struct {
	db     *sqlx.DB
	store  record.Store
	models Models
}

// New returns an uninitialised component; Init wires it.
func New() *Component { return &Component{} }

func (c *Component) Name() string         { return "records" }
func (c *Component) Migrations() []string { return record.Migrations() }

func (c *Component) Init(d component.Deps) error {
	if d.DB == nil || d.Records == nil || d.Catalog == nil {
		return errors.New("records: db, records, and catalog are required")
	}
	c.db, c.store, c.models = d.DB, d.Records, d.Catalog
	return nil
}

func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/api/records/{model}", func(api chi.Router) {
		api.Post("/", c.handleCreate)
		api.Put("/", c.handleWrite)
		api.Get("/{id}", c.handleRead)
	})
	return r
}

type writeBody struct {
	IDs    []int64       `json:"ids"`
	Values record.Values `json:"values"`
}

func (c *Component) handleCreate(w http.ResponseWriter, r *http.Request) {
	var vals []record.Values
	if err := respond.Decode(r, &vals); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var out []record.Record
	err := c.inModel(r, func(ctx context.Context, model string) (err error) {
		out, err = c.store.Create(ctx, model, vals)
		return err
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, out)
}

func (c *Component) handleWrite(w http.ResponseWriter, r *http.Request) {
	var body writeBody
	if err := respond.Decode(r, &body); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	if len(body.IDs) == 0 {
		respond.BadRequest(w, "ids must not be empty")
		return
	}

	err := c.inModel(r, func(ctx context.Context, model string) error {
		return c.store.Write(ctx, model, body.IDs, body.Values)
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Component) handleRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(w, "invalid id")
		return
	}

	var out []record.Record
	err = c.inModel(r, func(ctx context.Context, model string) (err error) {
		out, err = c.store.Read(ctx, model, []int64{id})
		return err
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, out[0])
}

// inModel resolves {model}, then runs fn in one transaction.  Not-found
// conditions become 404 with a translated message.
func (c *Component) inModel(r *http.Request, fn func(ctx context.Context, model string) error) error {
	ctx := r.Context()
	name := chi.URLParam(r, "model")

	err := database.WithTx(ctx, c.db, func(ctx context.Context) error {
		if _, err := c.models.ModelByName(ctx, name); err != nil {
			return err
		}
		return fn(ctx, name)
	})

	var nf *record.NotFoundError
	switch {
	case errors.Is(err, schema.ErrNotFound):
		return respond.NotFound(i18n.T(ctx, i18n.ModelUnknown, name))
	case errors.As(err, &nf):
		return respond.NotFound(i18n.T(ctx, i18n.RecordNotFound,
			strconv.FormatInt(nf.ID, 10), nf.Model))
	}
	return err
}
