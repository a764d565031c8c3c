package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSplitMount(t *testing.T) {
	cases := map[string][2]string{
		"secret/adept/db": {"secret", "adept/db"},
		"secret":          {"secret", ""},
		"":                {"", ""},
	}
	for in, want := range cases {
		m, r := splitMount(in)
		if m != want[0] || r != want[1] {
			t.Errorf("splitMount(%q) = %q,%q want %q,%q", in, m, r, want[0], want[1])
		}
	}
}

func TestGetKV_ReadsAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/adept/db" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"password":"s3cret"},"metadata":{"version":1}}}`))
	}))
	defer srv.Close()

	cli, err := New(context.Background(), Options{Address: srv.URL, Token: "test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := cli.GetKV(context.Background(), "secret/adept/db", "password", time.Minute)
		if err != nil {
			t.Fatalf("GetKV: %v", err)
		}
		if got != "s3cret" {
			t.Fatalf("GetKV = %q", got)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("vault hit %d times, want 1 (cached)", n)
	}

	if _, err := cli.GetKV(context.Background(), "secret/adept/db", "user", 0); err == nil {
		t.Errorf("expected missing-key error")
	}
}

func TestGetKV_EmptyArgs(t *testing.T) {
	cli := &Client{cache: map[string]cached{}}
	if _, err := cli.GetKV(context.Background(), "", "k", 0); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
