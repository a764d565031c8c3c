// internal/form/renderer.go
//
// HTML renderer for server-built form definitions.
//
// Context
// -------
// Management pages describe their forms in Go (a Def with Fields) and
// render them here into plain, accessible markup.  Select options come
// from the caller, usually catalog rows, so one renderer serves every
// page.
//
// Workflow
// --------
//   • Render writes a <form> element, then each field via writeField.
//   • Prefill supplies current values keyed by field name; multi-selects
//     may carry several.
//   • POST forms get a hidden csrf_token input from GenerateToken.  GET
//     forms (step pickers) do not.
//   • The caller receives template.HTML so the surrounding page template
//     does not double-escape the markup.
//
// Style
// -----
// Output carries no framework classes.  Each input gets
// id="fld-{form}-{name}" so two forms can share a page, and is wrapped in
// <div class="form-field">.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"strings"
)

// Field types understood by writeField.
const (
	TypeText     = "text"
	TypeHidden   = "hidden"
	TypeSelect   = "select"
	TypeCheckbox = "checkbox"
)

// Option is one <option> of a select.
type Option struct {
	Value string
	Label string
}

// Field describes one input.
type Field struct {
	Name     string
	Label    string
	Type     string
	Options  []Option
	Multiple bool // select only
	Required bool
}

// Def is a complete form.  Method defaults to POST.
type Def struct {
	ID     string
	Action string
	Method string
	Submit string
	Fields []Field
}

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	// Prefill provides initial values keyed by field name.
	Prefill map[string][]string
}

// Render returns the markup for d.
func Render(d Def, opts RenderOptions) (template.HTML, error) {
	method := strings.ToUpper(d.Method)
	if method == "" {
		method = http.MethodPost
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<form class="adept-form" id="form-%s" method="%s" action="%s">`+"\n",
		html.EscapeString(d.ID), strings.ToLower(method), html.EscapeString(d.Action))

	for i := range d.Fields {
		if err := writeField(&buf, d.ID, &d.Fields[i], opts.Prefill[d.Fields[i].Name]); err != nil {
			return "", err
		}
	}

	if method == http.MethodPost {
		tok, err := GenerateToken()
		if err != nil {
			return "", fmt.Errorf("render %s: %w", d.ID, err)
		}
		fmt.Fprintf(&buf, `<input type="hidden" name="%s" value="%s">`+"\n", TokenField, tok)
	}

	submit := d.Submit
	if submit == "" {
		submit = "Save"
	}
	buf.WriteString(`<button type="submit">` + html.EscapeString(submit) + `</button>` + "\n")
	buf.WriteString(`</form>`)
	return template.HTML(buf.String()), nil
}

// writeField emits one field wrapped in <div class="form-field">.
func writeField(buf *bytes.Buffer, formID string, f *Field, vals []string) error {
	name := html.EscapeString(f.Name)
	fid := "fld-" + html.EscapeString(formID) + "-" + name
	idAttr := `id="` + fid + `"`
	nameAttr := `name="` + name + `"`
	first := ""
	if len(vals) > 0 {
		first = vals[0]
	}

	if f.Type == TypeHidden {
		buf.WriteString(`<input ` + nameAttr + ` type="hidden" value="` + html.EscapeString(first) + `">` + "\n")
		return nil
	}

	buf.WriteString(`<div class="form-field">` + "\n")
	buf.WriteString(`<label for="` + fid + `">` + html.EscapeString(f.Label) + `</label>` + "\n")

	switch f.Type {
	case TypeText:
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="text"`)
		if f.Required {
			buf.WriteString(` required`)
		}
		if first != "" {
			buf.WriteString(` value="` + html.EscapeString(first) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case TypeSelect:
		buf.WriteString(`<select ` + idAttr + ` ` + nameAttr)
		if f.Multiple {
			buf.WriteString(` multiple`)
		}
		if f.Required {
			buf.WriteString(` required`)
		}
		buf.WriteString(`>` + "\n")
		chosen := make(map[string]bool, len(vals))
		for _, v := range vals {
			chosen[v] = true
		}
		for _, opt := range f.Options {
			sel := ""
			if chosen[opt.Value] {
				sel = ` selected`
			}
			label := opt.Label
			if label == "" {
				label = opt.Value
			}
			buf.WriteString(`<option value="` + html.EscapeString(opt.Value) + `"` + sel + `>` + html.EscapeString(label) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	case TypeCheckbox:
		checked := ""
		if Checked(first) {
			checked = ` checked`
		}
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="checkbox" value="true"` + checked + `>` + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	buf.WriteString(`</div>` + "\n")
	return nil
}

// Checked interprets a submitted checkbox value.  Browsers omit unchecked
// boxes, so "" is false.
func Checked(v string) bool {
	return v != "" && !strings.EqualFold(v, "false")
}
