package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
http:
  listen_addr: ":8080"
  read_timeout: 5s
database:
  dsn: "adept:%s@tcp(127.0.0.1:3306)/adept?parseTime=true"
  password: "vault:secret/adept/db#password"
log:
  dir: logs
  level: info
`

type fakeSecrets struct {
	calls int
	err   error
}

func (f *fakeSecrets) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if path != "secret/adept/db" || key != "password" {
		return "", errors.New("unexpected secret reference " + path + "#" + key)
	}
	return "s3cret", nil
}

func writeRoot(t *testing.T, body string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoad_LayersAndSecrets(t *testing.T) {
	root := writeRoot(t, sampleYAML)
	t.Setenv("ADEPT_HTTP__LISTEN_ADDR", "127.0.0.1:9090")

	sec := &fakeSecrets{}
	cfg, err := Load(context.Background(), Options{Root: root, Secrets: sec})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.ListenAddr != "127.0.0.1:9090" {
		t.Errorf("env overlay ignored: %q", cfg.HTTP.ListenAddr)
	}
	if cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.HTTP.ReadTimeout)
	}
	if sec.calls != 1 || cfg.Database.Password != "s3cret" {
		t.Errorf("secret not resolved: calls=%d pw=%q", sec.calls, cfg.Database.Password)
	}
	if got := cfg.Database.ResolvedDSN(); got != "adept:s3cret@tcp(127.0.0.1:3306)/adept?parseTime=true" {
		t.Errorf("ResolvedDSN = %q", got)
	}
	if cfg.Log.Dir != filepath.Join(root, "logs") {
		t.Errorf("log dir not anchored to root: %q", cfg.Log.Dir)
	}
	if cfg.I18n.DefaultLocale != "en" {
		t.Errorf("default locale = %q", cfg.I18n.DefaultLocale)
	}
	if Get() != cfg {
		t.Errorf("Get() does not return cached config")
	}
}

func TestLoad_SecretFailure(t *testing.T) {
	root := writeRoot(t, sampleYAML)
	_, err := Load(context.Background(), Options{Root: root, Secrets: &fakeSecrets{err: errors.New("sealed")}})
	if err == nil {
		t.Fatalf("expected secret error")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	root := writeRoot(t, "http:\n  listen_addr: \":8080\"\n")
	if _, err := Load(context.Background(), Options{Root: root}); err == nil {
		t.Fatalf("expected validation error for missing database.dsn")
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	root := writeRoot(t, `
http:
  listen_addr: ":8080"
  trusted_proxies: ["10.0.0.0/8", "192.168.1.4"]
database:
  dsn: "x"
`)
	cfg, err := Load(context.Background(), Options{Root: root})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.HTTP.TrustedProxies) != 2 || cfg.HTTP.TrustedProxies[1] != "192.168.1.4" {
		t.Fatalf("TrustedProxies = %v", cfg.HTTP.TrustedProxies)
	}

	bad := writeRoot(t, `
http:
  listen_addr: ":8080"
  trusted_proxies: ["gateway.local"]
database:
  dsn: "x"
`)
	if _, err := Load(context.Background(), Options{Root: bad}); err == nil {
		t.Fatal("expected validation error for non-CIDR proxy")
	}
}
