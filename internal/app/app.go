// internal/app/app.go
//
// Process bootstrap shared by cmd/web and cmd/adeptctl.
//
// Context
// -------
// Open performs, in order:
//
//  1. Optional Vault client (when VAULT_ADDR is set) for `vault:` config
//     references, with background token renewal for long-running commands.
//  2. Config load (koanf layers, validation).
//  3. Logger (zap + lumberjack) per the log section.
//  4. Message catalog with the configured fallback locale, and the CSRF
//     key for management forms.
//  5. MySQL pool.
//  6. Stores: ACL, schema catalog, rule store (registered as the catalog's
//     field-delete hook), and the required-field guarded record store.
//
// Router() mounts every registered component behind the shared middleware
// chain.  The user header is honoured only from http.trusted_proxies.  Migrate() applies ACL DDL, then component DDL in registration
// order.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/adept-reqfields/components"
	"github.com/yanizio/adept-reqfields/internal/acl"
	"github.com/yanizio/adept-reqfields/internal/auth"
	"github.com/yanizio/adept-reqfields/internal/component"
	"github.com/yanizio/adept-reqfields/internal/config"
	"github.com/yanizio/adept-reqfields/internal/database"
	"github.com/yanizio/adept-reqfields/internal/enforce"
	"github.com/yanizio/adept-reqfields/internal/form"
	"github.com/yanizio/adept-reqfields/internal/i18n"
	"github.com/yanizio/adept-reqfields/internal/logger"
	"github.com/yanizio/adept-reqfields/internal/middleware"
	"github.com/yanizio/adept-reqfields/internal/record"
	"github.com/yanizio/adept-reqfields/internal/requestinfo"
	"github.com/yanizio/adept-reqfields/internal/rule"
	"github.com/yanizio/adept-reqfields/internal/schema"
	"github.com/yanizio/adept-reqfields/internal/vault"
)

// Options tweaks Open.
type Options struct {
	Root       string // config root; "" discovers it
	Tee        bool   // console log output in addition to the file
	RenewVault bool   // keep the Vault token alive until ctx ends
}

// App holds the opened process resources.
type App struct {
	Config *config.Config
	Log    *zap.SugaredLogger
	DB     *sqlx.DB
	Deps   component.Deps
}

// Open builds an App.  Close releases it.
func Open(ctx context.Context, opts Options) (*App, error) {
	var secrets config.SecretResolver
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx, vault.Options{Renew: opts.RenewVault})
		if err != nil {
			return nil, err
		}
		secrets = vc
	}

	cfg, err := config.Load(ctx, config.Options{Root: opts.Root, Secrets: secrets})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Tee: opts.Tee})
	if err != nil {
		return nil, fmt.Errorf("start logger: %w", err)
	}

	msgs, err := i18n.New(cfg.I18n.DefaultLocale)
	if err != nil {
		return nil, err
	}
	i18n.SetDefault(msgs)

	if err := form.SetSecret(cfg.HTTP.CSRFKey); err != nil {
		return nil, fmt.Errorf("http.csrf_key: %w", err)
	}

	db, err := database.OpenWithOptions(cfg.Database.ResolvedDSN(), cfg.Database.MaxOpen, cfg.Database.MaxIdle)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	catalog := schema.NewCatalog(db)
	rules := rule.NewStore(db, catalog)
	catalog.OnFieldDelete(rules.PurgeField)

	components.Register()

	return &App{
		Config: cfg,
		Log:    log,
		DB:     db,
		Deps: component.Deps{
			DB:      db,
			ACL:     acl.NewStore(db),
			Catalog: catalog,
			Rules:   rules,
			Records: enforce.Wrap(record.NewSQLStore(db), rules, catalog),
		},
	}, nil
}

// Migrate applies every DDL group.
func (a *App) Migrate(ctx context.Context) error {
	return component.MigrateAll(ctx, a.DB, acl.Migrations())
}

// Router initialises every component and returns the root handler.
func (a *App) Router() (http.Handler, error) {
	comps := component.All()
	for _, c := range comps {
		if err := c.Init(a.Deps); err != nil {
			return nil, fmt.Errorf("init component %s: %w", c.Name(), err)
		}
	}

	proxies, err := auth.ParseProxies(a.Config.HTTP.TrustedProxies)
	if err != nil {
		return nil, err
	}

	// Identity reads the socket peer, so it precedes RealIP.
	r := chi.NewRouter()
	r.Use(auth.Identity(proxies))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security(a.Config.HTTP.ForceHTTPS))
	r.Use(requestinfo.Enrich)
	r.Use(accessLog)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/", component.Handler(comps))

	return middleware.ForceHTTPS(a.Config.HTTP.ForceHTTPS, r), nil
}

// Close releases the DB pool and flushes the logger.
func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.DB.Close()
}

// accessLog writes one INFO line per request through a request-scoped
// logger.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		l := zap.S()
		if ri := requestinfo.FromContext(r.Context()); ri != nil {
			l = l.With("request_id", ri.ID)
		}
		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

		l.Infow("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
