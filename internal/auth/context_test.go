package auth

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestIdentity(t *testing.T) {
	cases := []struct {
		header string
		wantID int64
		wantOK bool
	}{
		{"", 0, false},
		{"42", 42, true},
		{"abc", 0, false},
		{"-3", 0, false},
	}
	for _, tc := range cases {
		var gotID int64
		var gotOK bool
		h := Identity(nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotID, gotOK = UserID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:51000"
		if tc.header != "" {
			req.Header.Set(HeaderUser, tc.header)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)

		if gotID != tc.wantID || gotOK != tc.wantOK {
			t.Errorf("header %q: got (%d, %v), want (%d, %v)",
				tc.header, gotID, gotOK, tc.wantID, tc.wantOK)
		}
	}
}

func TestIdentity_UntrustedPeerIgnored(t *testing.T) {
	trusted, err := ParseProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		remote string
		wantOK bool
	}{
		{"10.1.2.3:4000", true},
		{"192.0.2.1:1234", false},
		{"127.0.0.1:4000", false},
		{"[::ffff:10.9.9.9]:4000", true},
		{"garbage", false},
	}
	for _, tc := range cases {
		var gotOK bool
		h := Identity(trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			_, gotOK = UserID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remote
		req.Header.Set(HeaderUser, "7")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if gotOK != tc.wantOK {
			t.Errorf("remote %q: identified=%v, want %v", tc.remote, gotOK, tc.wantOK)
		}
	}
}

func TestIdentity_DefaultsToLoopback(t *testing.T) {
	var gotOK bool
	h := Identity(nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, gotOK = UserID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil) // RemoteAddr 192.0.2.1
	req.Header.Set(HeaderUser, "7")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotOK {
		t.Fatal("header from non-loopback peer accepted without a trust list")
	}
}

func TestParseProxies(t *testing.T) {
	got, err := ParseProxies([]string{"10.0.0.5", "192.168.1.77/24", "::1"})
	if err != nil {
		t.Fatal(err)
	}
	want := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.5/32"),
		netip.MustParsePrefix("192.168.1.0/24"),
		netip.MustParsePrefix("::1/128"),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if _, err := ParseProxies([]string{"not-an-ip"}); err == nil {
		t.Fatal("expected error")
	}
}
