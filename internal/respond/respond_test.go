package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/adept-reqfields/internal/apperr"
)

func TestError_Mapping(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.Validation("fill it", "email"), http.StatusUnprocessableEntity, "fill it"},
		{NotFound("gone"), http.StatusNotFound, "gone"},
		{errors.New("db down"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var body ErrorBody
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error != tc.message {
			t.Errorf("%v: message = %q, want %q", tc.err, body.Error, tc.message)
		}
	}
}
