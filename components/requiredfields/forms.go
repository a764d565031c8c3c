// components/requiredfields/forms.go
//
// HTML create and edit forms for required-field rules.
//
// Context
// -------
// The form has three inputs: the target model (single-select over the
// catalog), the fields (multi-select limited to the chosen model), and
// the Is Required checkbox.  A small GET picker above it reloads the page
// with `?model_id=` so the field list follows the chosen model; without
// one the first model by name is shown.
//
// Posts go through the same rule.Store.Create and Update as the JSON API.
// A ValidationError re-renders the form with the submitted values, the
// message, and HTTP 422.  Success redirects to the list with 303.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package requiredfields

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/yanizio/adept-reqfields/internal/apperr"
	"github.com/yanizio/adept-reqfields/internal/form"
	"github.com/yanizio/adept-reqfields/internal/i18n"
	"github.com/yanizio/adept-reqfields/internal/respond"
	"github.com/yanizio/adept-reqfields/internal/rule"
	"github.com/yanizio/adept-reqfields/internal/schema"
)

const listPath = "/required-fields"

type formPage struct {
	Title  string
	Error  string
	Picker template.HTML
	Form   template.HTML
}

// ruleForm is one render request.  ModelID 0 picks the first model.
type ruleForm struct {
	Title        string
	Action       string
	PickerAction string
	ModelID      int64
	Prefill      url.Values
	Error        string
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleNewForm(w http.ResponseWriter, r *http.Request) {
	c.renderRuleForm(w, r, http.StatusOK, ruleForm{
		Title:        "New required-field rule",
		Action:       listPath,
		PickerAction: listPath + "/new",
		ModelID:      queryID(r, "model_id"),
		Prefill:      url.Values{"is_required": {"true"}},
	})
}

func (c *Component) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rl, err := c.rules.Get(r.Context(), id)
	if err != nil {
		c.htmlError(w, r, c.mapNotFound(r.Context(), id, err))
		return
	}

	modelID := queryID(r, "model_id")
	if modelID == 0 {
		modelID = rl.ModelID
	}
	pre := url.Values{"is_required": {strconv.FormatBool(rl.IsRequired)}}
	if modelID == rl.ModelID {
		for _, f := range rl.FieldIDs {
			pre.Add("field_ids", strconv.FormatInt(f, 10))
		}
	}

	c.renderRuleForm(w, r, http.StatusOK, ruleForm{
		Title:        "Edit required-field rule: " + rl.ModelName,
		Action:       listPath + "/" + strconv.FormatInt(id, 10),
		PickerAction: listPath + "/" + strconv.FormatInt(id, 10) + "/edit",
		ModelID:      modelID,
		Prefill:      pre,
	})
}

func (c *Component) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	v, in, ok := c.parseRuleForm(w, r)
	if !ok {
		return
	}
	_, err := c.rules.Create(r.Context(), in)
	c.finishSubmit(w, r, err, ruleForm{
		Title:        "New required-field rule",
		Action:       listPath,
		PickerAction: listPath + "/new",
		ModelID:      in.ModelID,
		Prefill:      v,
	})
}

func (c *Component) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, in, ok := c.parseRuleForm(w, r)
	if !ok {
		return
	}
	_, err := c.rules.Update(r.Context(), id, in)
	c.finishSubmit(w, r, c.mapNotFound(r.Context(), id, err), ruleForm{
		Title:        "Edit required-field rule",
		Action:       listPath + "/" + strconv.FormatInt(id, 10),
		PickerAction: listPath + "/" + strconv.FormatInt(id, 10) + "/edit",
		ModelID:      in.ModelID,
		Prefill:      v,
	})
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

// parseRuleForm verifies the token and decodes the three inputs.  It
// writes the error response itself and returns ok=false on failure.
func (c *Component) parseRuleForm(w http.ResponseWriter, r *http.Request) (url.Values, rule.Input, bool) {
	v, err := form.Parse(w, r)
	if errors.Is(err, form.ErrBadToken) {
		http.Error(w, i18n.T(r.Context(), i18n.FormExpired), http.StatusForbidden)
		return nil, rule.Input{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, rule.Input{}, false
	}

	modelID, err := form.Int64(v, "model_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, rule.Input{}, false
	}
	fieldIDs, err := form.Int64s(v, "field_ids")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, rule.Input{}, false
	}
	required := form.Checked(v.Get("is_required"))
	return v, rule.Input{ModelID: modelID, FieldIDs: fieldIDs, IsRequired: &required}, true
}

// finishSubmit redirects on success, re-renders on validation failure,
// and reports anything else.
func (c *Component) finishSubmit(w http.ResponseWriter, r *http.Request, err error, rf ruleForm) {
	if err == nil {
		http.Redirect(w, r, listPath, http.StatusSeeOther)
		return
	}
	if ve, ok := apperr.AsValidation(err); ok {
		rf.Error = ve.Message
		c.renderRuleForm(w, r, http.StatusUnprocessableEntity, rf)
		return
	}
	c.htmlError(w, r, err)
}

func (c *Component) renderRuleForm(w http.ResponseWriter, r *http.Request, status int, rf ruleForm) {
	ctx := r.Context()
	models, err := c.catalog.ListModels(ctx)
	if err != nil {
		c.htmlError(w, r, err)
		return
	}
	modelID := rf.ModelID
	if modelID == 0 && len(models) > 0 {
		modelID = models[0].ID
	}
	var fields []schema.Field
	if modelID > 0 {
		if fields, err = c.catalog.FieldsOf(ctx, modelID); err != nil {
			c.htmlError(w, r, err)
			return
		}
	}

	modelOpts := make([]form.Option, len(models))
	for i, m := range models {
		modelOpts[i] = form.Option{Value: strconv.FormatInt(m.ID, 10), Label: m.Label + " (" + m.Name + ")"}
	}
	fieldOpts := make([]form.Option, len(fields))
	for i, f := range fields {
		fieldOpts[i] = form.Option{Value: strconv.FormatInt(f.ID, 10), Label: f.Label + " (" + f.Name + ")"}
	}

	chosen := url.Values{"model_id": {strconv.FormatInt(modelID, 10)}}
	picker, err := form.Render(form.Def{
		ID:     "rule-model",
		Method: http.MethodGet,
		Action: rf.PickerAction,
		Submit: "Load fields",
		Fields: []form.Field{{Name: "model_id", Label: "Model", Type: form.TypeSelect, Options: modelOpts}},
	}, form.RenderOptions{Prefill: chosen})
	if err != nil {
		c.htmlError(w, r, err)
		return
	}

	pre := url.Values{}
	for k, vs := range rf.Prefill {
		pre[k] = vs
	}
	pre["model_id"] = chosen["model_id"]
	main, err := form.Render(form.Def{
		ID:     "rule",
		Action: rf.Action,
		Submit: "Save",
		Fields: []form.Field{
			{Name: "model_id", Label: "Model", Type: form.TypeSelect, Required: true, Options: modelOpts},
			{Name: "field_ids", Label: "Fields", Type: form.TypeSelect, Multiple: true, Options: fieldOpts},
			{Name: "is_required", Label: "Is Required", Type: form.TypeCheckbox},
		},
	}, form.RenderOptions{Prefill: pre})
	if err != nil {
		c.htmlError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTpl.Execute(w, formPage{Title: rf.Title, Error: rf.Error, Picker: picker, Form: main}); err != nil {
		zap.L().Error("render rule form", zap.Error(err))
	}
}

// htmlError writes a plain-text error for the HTML routes.
func (c *Component) htmlError(w http.ResponseWriter, r *http.Request, err error) {
	if respond.IsNotFound(err) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	zap.L().Error("required-fields page", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// queryID parses a positive int64 query parameter; anything else is 0.
func queryID(r *http.Request, key string) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
