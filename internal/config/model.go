// internal/config/model.go
//
// Typed configuration model for the Adept required-fields service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `ADEPT_`-prefixed environment overrides – highest precedence.
//
// Any string value beginning with `vault:` is resolved through the Vault
// client *before* unmarshalling, so the model only ever holds plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"strings"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.  Zero timeouts fall back to the server
// package defaults.  TrustedProxies lists the peers (CIDR or single
// address) allowed to assert the user header; empty means loopback only.
// CSRFKey signs management form tokens (base64url, 32+ bytes, usually a
// `vault:` reference).
type HTTP struct {
	ListenAddr     string        `koanf:"listen_addr"     validate:"required,hostname_port"`
	ForceHTTPS     bool          `koanf:"force_https"`
	ReadTimeout    time.Duration `koanf:"read_timeout"    validate:"gte=0"`
	WriteTimeout   time.Duration `koanf:"write_timeout"   validate:"gte=0"`
	TrustedProxies []string      `koanf:"trusted_proxies" validate:"dive,cidr|ip"`
	CSRFKey        string        `koanf:"csrf_key"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host, port,
// or flags without touching Vault.  When it contains a single `%s` verb the
// *secret* (`Password`, usually a `vault:` reference) is substituted there.
type Database struct {
	DSN      string `koanf:"dsn"       validate:"required"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open"  validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle"  validate:"gte=0"`
}

// ResolvedDSN returns the DSN with Password substituted when the template
// asks for it.
func (d Database) ResolvedDSN() string {
	if strings.Count(d.DSN, "%s") == 1 {
		return strings.Replace(d.DSN, "%s", d.Password, 1)
	}
	return d.DSN
}

//
// Log section
//

// Log controls the zap/lumberjack logger.  Dir is relative to Paths.Root
// unless absolute.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// I18n section
//

// I18n selects the fallback locale for user-facing messages.
type I18n struct {
	DefaultLocale string `koanf:"default_locale" validate:"omitempty,oneof=en fr"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // ADEPT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Log      Log      `koanf:"log"`
	I18n     I18n     `koanf:"i18n"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
