// components/requiredfields/forms_test.go
//
// HTML form handler tests with in-memory fakes.
//
// Run: go test ./components/requiredfields -v

package requiredfields

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/yanizio/adept-reqfields/internal/auth"
	"github.com/yanizio/adept-reqfields/internal/form"
)

func postForm(c *Component, path string, v url.Values, withToken bool) *httptest.ResponseRecorder {
	if withToken {
		tok, _ := form.GenerateToken()
		v.Set(form.TokenField, tok)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(auth.WithUser(req.Context(), 1))
	rec := httptest.NewRecorder()
	c.Routes().ServeHTTP(rec, req)
	return rec
}

func mustContain(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(body, w) {
			t.Errorf("body missing %q\n%s", w, body)
		}
	}
}

func TestNewForm_ListsChosenModelFields(t *testing.T) {
	c, _ := newComp(true)
	rec := do(c, http.MethodGet, "/required-fields/new?model_id=2", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	mustContain(t, body,
		`<option value="2" selected>Sales Order (sale.order)</option>`,
		`<option value="1">Contact (res.partner)</option>`,
		`<select id="fld-rule-field_ids" name="field_ids" multiple>`,
		`<option value="20">Amount (amount)</option>`,
		`id="fld-rule-is_required" name="is_required" type="checkbox" value="true" checked>`,
		`name="csrf_token"`,
		`action="/required-fields"`,
	)
	if strings.Contains(body, "Email (email)") {
		t.Error("fields of another model offered")
	}
}

func TestNewForm_DefaultsToFirstModel(t *testing.T) {
	c, _ := newComp(true)
	rec := do(c, http.MethodGet, "/required-fields/new", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	mustContain(t, rec.Body.String(), `<option value="10">Email (email)</option>`, `<option value="11">Phone (phone)</option>`)
}

func TestNewForm_Guarded(t *testing.T) {
	c, _ := newComp(false)
	if rec := do(c, http.MethodGet, "/required-fields/new", "", true); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec := postForm(c, "/required-fields", url.Values{"model_id": {"2"}}, true); rec.Code != http.StatusForbidden {
		t.Fatalf("post status = %d", rec.Code)
	}
}

func TestEditForm_PrefillsRule(t *testing.T) {
	c, _ := newComp(true)
	rec := do(c, http.MethodGet, "/required-fields/1/edit", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	mustContain(t, rec.Body.String(),
		`<option value="1" selected>Contact (res.partner)</option>`,
		`<option value="10" selected>Email (email)</option>`,
		`<option value="11" selected>Phone (phone)</option>`,
		`action="/required-fields/1"`,
		`action="/required-fields/1/edit"`,
		`type="checkbox" value="true" checked>`,
	)
}

func TestEditForm_NotFound(t *testing.T) {
	c, _ := newComp(true)
	rec := do(c, http.MethodGet, "/required-fields/9/edit", "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	mustContain(t, rec.Body.String(), "Required-field rule 9 does not exist.")
}

func TestCreateForm_RedirectsOnSuccess(t *testing.T) {
	c, rules := newComp(true)
	rec := postForm(c, "/required-fields", url.Values{
		"model_id":  {"2"},
		"field_ids": {"20"},
	}, true)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/required-fields" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(rules.created) != 1 {
		t.Fatalf("store not called")
	}
	in := rules.created[0]
	if in.ModelID != 2 || len(in.FieldIDs) != 1 || in.FieldIDs[0] != 20 {
		t.Fatalf("input = %+v", in)
	}
	if in.IsRequired == nil || *in.IsRequired {
		t.Fatal("unchecked box must submit is_required=false")
	}
}

func TestCreateForm_ValidationRerenders(t *testing.T) {
	c, _ := newComp(true)
	rec := postForm(c, "/required-fields", url.Values{
		"model_id":    {"1"},
		"field_ids":   {"10"},
		"is_required": {"true"},
	}, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	mustContain(t, rec.Body.String(),
		"This field is already set as required for the selected model.",
		`<option value="10" selected>Email (email)</option>`,
	)
}

func TestCreateForm_RejectsMissingToken(t *testing.T) {
	c, rules := newComp(true)
	rec := postForm(c, "/required-fields", url.Values{"model_id": {"2"}}, false)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(rules.created) != 0 {
		t.Fatal("store called without a valid token")
	}
}

func TestCreateForm_BadID(t *testing.T) {
	c, _ := newComp(true)
	if rec := postForm(c, "/required-fields", url.Values{"model_id": {"x"}}, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpdateForm(t *testing.T) {
	c, rules := newComp(true)
	rec := postForm(c, "/required-fields/1", url.Values{
		"model_id":  {"1"},
		"field_ids": {"11"},
	}, true)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	got := rules.rules[1]
	if got.IsRequired || len(got.FieldIDs) != 1 || got.FieldIDs[0] != 11 {
		t.Fatalf("rule = %+v", got)
	}

	if rec := postForm(c, "/required-fields/9", url.Values{"model_id": {"1"}}, true); rec.Code != http.StatusNotFound {
		t.Fatalf("missing rule status = %d", rec.Code)
	}
}
