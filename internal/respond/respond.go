// internal/respond/respond.go
//
// JSON response helpers shared by the API components.
//
// Context
// -------
// Every API answers with JSON.  Failures use one envelope:
//
//	{"error": "<message>", "fields": ["<name>", …]}
//
// Error() maps the error kind to a status: *apperr.ValidationError → 422
// with its (already translated) message, NotFound → 404, anything else →
// 500 with a generic message.  System errors are logged with the request
// ID; their text never reaches the client.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/adept-reqfields/internal/apperr"
	"github.com/yanizio/adept-reqfields/internal/requestinfo"
)

// ErrorBody is the failure envelope.
type ErrorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// notFound marks an error whose message is safe to show with 404.
type notFound struct{ msg string }

func (e *notFound) Error() string { return e.msg }

// NotFound returns an error rendered as 404 with msg.
func NotFound(msg string) error { return &notFound{msg: msg} }

// IsNotFound reports whether err carries a NotFound error.
func IsNotFound(err error) bool {
	var nf *notFound
	return errors.As(err, &nf)
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

// Error writes err using the envelope.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var nf *notFound
	if errors.As(err, &nf) {
		JSON(w, http.StatusNotFound, ErrorBody{Error: nf.msg})
		return
	}
	if ve, ok := apperr.AsValidation(err); ok {
		JSON(w, http.StatusUnprocessableEntity, ErrorBody{Error: ve.Message, Fields: ve.Fields})
		return
	}

	var reqID string
	if ri := requestinfo.FromContext(r.Context()); ri != nil {
		reqID = ri.ID
	}
	zap.L().Error("request failed", zap.Error(err),
		zap.String("method", r.Method), zap.String("path", r.URL.Path),
		zap.String("request_id", reqID))
	JSON(w, http.StatusInternalServerError,
		ErrorBody{Error: http.StatusText(http.StatusInternalServerError)})
}

// BadRequest writes a 400 with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: msg})
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
