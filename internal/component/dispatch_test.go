package component

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type routed struct {
	fake
	path string
}

func (r routed) Routes() chi.Router {
	rt := chi.NewRouter()
	rt.Get(r.path, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(r.name))
	})
	return rt
}

func TestHandler_Dispatch(t *testing.T) {
	h := Handler([]Component{
		routed{fake: fake{name: "a"}, path: "/api/a"},
		routed{fake: fake{name: "b"}, path: "/api/b/{id}"},
	})

	root := chi.NewRouter()
	root.Mount("/", h)

	for path, want := range map[string]string{"/api/a": "a", "/api/b/7": "b"} {
		rec := httptest.NewRecorder()
		root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Body.String() != want {
			t.Errorf("%s served by %q, want %q", path, rec.Body.String(), want)
		}
	}

	rec := httptest.NewRecorder()
	root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unmatched status = %d", rec.Code)
	}
}
