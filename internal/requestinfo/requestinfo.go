//
//  internal/requestinfo/requestinfo.go
//
//  Structured request metadata consulted by the record lifecycle hooks.
//
//  The host client signals two things alongside a create or write call:
//
//  • DefaultGet – the client is only probing default values for a blank
//    form.  Nothing is persisted, so required-field checks are skipped.
//  • ViewType   – the view the client is rendering ("form", "list", …).
//    List views fire quick writes from placeholder rows, so empty
//    required values are tolerated there.
//
//  Locale drives message translation.  The struct is inert and safe to log.
//

package requestinfo

import (
	"context"
	"net/url"
	"strings"
	"time"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// View types the hooks care about.  Any other string is passed through.
const (
	ViewForm = "form"
	ViewList = "list"
)

// RequestInfo travels in context.Context from the HTTP edge down to the
// guarded record store.
type RequestInfo struct {
	ID         string    // X-Request-ID when it parses as a UUID, else fresh v4
	DefaultGet bool      // default-values probe, never persists
	ViewType   string    // "form", "list", or empty when unknown
	Locale     string    // primary Accept-Language tag, lowercased
	URL        *url.URL  // pointer copy, read-only
	Timestamp  time.Time // request arrival, UTC
}

// IsListView reports whether the client is rendering a list-style view.
func (ri *RequestInfo) IsListView() bool {
	return ri != nil && ri.ViewType == ViewList
}

//
//  -----------------------------
//  Context helpers
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// WithInfo returns a copy of ctx carrying ri.  Non-HTTP callers (CLI,
// tests) use it to express the same signals Enrich derives from requests.
func WithInfo(ctx context.Context, ri *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, ri)
}

// FromContext returns the pointer previously stored by Enrich or WithInfo.
// It returns nil when neither has run; all methods tolerate nil.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// DefaultGet is shorthand for FromContext(ctx).DefaultGet with nil safety.
func DefaultGet(ctx context.Context) bool {
	ri := FromContext(ctx)
	return ri != nil && ri.DefaultGet
}

// Locale returns the request locale or "" when unknown.
func Locale(ctx context.Context) string {
	if ri := FromContext(ctx); ri != nil {
		return ri.Locale
	}
	return ""
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	parts := strings.Split(al, ",")
	tag := strings.TrimSpace(parts[0])
	if i := strings.Index(tag, ";"); i != -1 {
		tag = tag[:i]
	}
	if i := strings.IndexAny(tag, "-_"); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// truthy accepts the usual spellings of an enabled flag.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
