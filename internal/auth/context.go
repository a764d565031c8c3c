// internal/auth/context.go
//
// User-ID helpers and the identity middleware.
//
// Context
// -------
// Adept sits behind the platform's login gateway, which authenticates the
// user and forwards the numeric user ID in `X-Adept-User`.  Identity
// copies that ID into the request context; the ACL middleware reads it
// back with UserID.
//
// The header is honoured only when the TCP peer falls inside one of the
// trusted proxy prefixes (`http.trusted_proxies`).  Identity must run
// before chi's RealIP, which rewrites RemoteAddr from client-controlled
// headers.
//
// Usage
// -----
//     // Attach user 123 to the request context.
//     ctx = auth.WithUser(ctx, 123)
//
//     // Downstream code retrieves the ID.
//     id, ok := auth.UserID(ctx)   // 123, true
//
// Notes
// -----
// • An empty prefix list falls back to loopback only.
// • Oxford commas, two spaces after periods.

package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"

	"go.uber.org/zap"
)

// HeaderUser carries the authenticated user ID from the gateway.
const HeaderUser = "X-Adept-User"

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying the given userID.
func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID extracts the userID from ctx.  It returns (0, false) if no user is set
// or if the stored value is not an int64.
func UserID(ctx context.Context) (int64, bool) {
	v := ctx.Value(userKey{})
	id, ok := v.(int64)
	return id, ok
}

// LoopbackProxies is the trust list used when none is configured.
var LoopbackProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
}

// ParseProxies converts CIDR strings from config.  Bare addresses are
// accepted as single-host prefixes.
func ParseProxies(cidrs []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		if p, err := netip.ParsePrefix(c); err == nil {
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(c)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", c, err)
		}
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

// Identity attaches the gateway-supplied user ID when the request comes
// from a trusted proxy and the value is a positive integer.  Everything
// else continues anonymously.
func Identity(trusted []netip.Prefix) func(http.Handler) http.Handler {
	if len(trusted) == 0 {
		trusted = LoopbackProxies
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderUser)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !fromTrusted(r.RemoteAddr, trusted) {
				zap.S().Warnw("ignoring user header from untrusted peer", "remote", r.RemoteAddr)
				next.ServeHTTP(w, r)
				return
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				zap.S().Warnw("ignoring malformed user header", "value", raw)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), id)))
		})
	}
}

func fromTrusted(remote string, trusted []netip.Prefix) bool {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
