// internal/form/submit.go
//
// Submission parsing for management forms.
//
// Context
// -------
// Parse reads an urlencoded POST body under a size cap and checks the
// CSRF token before the handler sees any value.  Handlers then pull typed
// values with Int64 and Int64s.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package form

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// TokenField is the hidden input carrying the CSRF token.
const TokenField = "csrf_token"

const maxBody = 64 << 10

// ErrBadToken means the CSRF token was missing, forged, or expired.
var ErrBadToken = errors.New("form: invalid csrf token")

// Parse parses r's form body and verifies its token.
func Parse(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	if !VerifyToken(r.PostForm.Get(TokenField)) {
		return nil, ErrBadToken
	}
	return r.PostForm, nil
}

// Int64 parses the first value of key.  A missing or blank value is 0.
func Int64(v url.Values, key string) (int64, error) {
	s := v.Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("form: %s: %w", key, err)
	}
	return n, nil
}

// Int64s parses every value of key, skipping blanks.
func Int64s(v url.Values, key string) ([]int64, error) {
	var out []int64
	for _, s := range v[key] {
		if s == "" {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("form: %s: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}
