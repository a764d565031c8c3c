// internal/form/csrf.go
//
// Stateless CSRF tokens for the management forms.
//
// Context
// -------
// Every rendered form carries a hidden `csrf_token` input.  The POST
// handler checks it before touching the rule store.  Tokens are
// self-contained:
//
//	base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   • nonce: 16 random bytes.
//   • unixMicro: issue time, 8 bytes, big-endian.
//   • HMAC: keyed with the process secret (`http.csrf_key`).
//
// Verification checks the signature and the MaxAge window, so no server
// state is needed and several instances may share one key.
//
// Notes
// -----
// • SetSecret is called once by app.Open.  Without it a random key is
//   generated on first use and tokens stop verifying after a restart.
// • Oxford commas, two spaces after periods.

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	nonceBytes = 16
	tokenBytes = nonceBytes + 8 + sha256.Size

	// MaxAge bounds how long a rendered form stays submittable.
	MaxAge = 2 * time.Hour
)

// ErrShortSecret is returned by SetSecret for keys under 32 bytes.
var ErrShortSecret = errors.New("form: csrf key must decode to at least 32 bytes")

var (
	secretMu  sync.RWMutex
	secretKey []byte
)

// SetSecret installs the base64url key (padding optional).  An empty
// value leaves the current key in place.
func SetSecret(encoded string) error {
	if encoded == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return err
	}
	if len(b) < 32 {
		return ErrShortSecret
	}
	secretMu.Lock()
	secretKey = b
	secretMu.Unlock()
	return nil
}

// GenerateToken creates a new token.  Call once per form render.
func GenerateToken() (string, error) {
	return generateAt(time.Now())
}

func generateAt(now time.Time) (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(now.UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, sign(nonce, ts)...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerifyToken reports whether tok carries a valid signature and was
// issued within MaxAge.
func VerifyToken(tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}
	nonce, ts, sig := raw[:nonceBytes], raw[nonceBytes:nonceBytes+8], raw[nonceBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(ts)))
	if time.Since(issued) > MaxAge || time.Until(issued) > time.Minute {
		return false
	}
	return hmac.Equal(sig, sign(nonce, ts))
}

func sign(nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, secret())
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}

// secret returns the installed key, generating an ephemeral one on first
// use when none was configured.
func secret() []byte {
	secretMu.RLock()
	k := secretKey
	secretMu.RUnlock()
	if k != nil {
		return k
	}

	secretMu.Lock()
	defer secretMu.Unlock()
	if secretKey == nil {
		secretKey = make([]byte, 32)
		_, _ = rand.Read(secretKey)
		zap.L().Warn("http.csrf_key not set; using an ephemeral CSRF key")
	}
	return secretKey
}
