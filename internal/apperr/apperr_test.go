package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsValidation_Wrapped(t *testing.T) {
	base := Validation("missing", "name")
	wrapped := fmt.Errorf("create partner: %w", base)

	if !IsValidation(wrapped) {
		t.Fatalf("wrapped validation error not detected")
	}
	ve, ok := AsValidation(wrapped)
	if !ok || ve.Message != "missing" || len(ve.Fields) != 1 || ve.Fields[0] != "name" {
		t.Fatalf("unexpected unwrap: %#v", ve)
	}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{Validation("x"), http.StatusUnprocessableEntity},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Errorf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
