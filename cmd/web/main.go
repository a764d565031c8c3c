// cmd/web/main.go
//
// Adept required-fields service – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. app.Open: Vault (optional), config, logger, message catalog, DB,
//     stores, and component registration.
//
//  3. Apply migrations (idempotent DDL).
//
//  4. Build the router: security headers, request info, identity, access
//     log, /metrics, /healthz, and every component.
//
//  5. Serve until SIGINT/SIGTERM, then shut down gracefully.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/adept-reqfields/internal/app"
	"github.com/yanizio/adept-reqfields/internal/server"
)

const (
	serverEnvPath   = "/usr/local/etc/adept-reqfields/global.env"
	shutdownTimeout = 15 * time.Second
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	loadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, app.Options{Tee: runningInTTY(), RenewVault: true})
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer a.Close()

	//
	// ── 1.  Schema ──────────────────────────────────────────────────────
	//
	if err := a.Migrate(ctx); err != nil {
		a.Log.Fatalw("migrate", "err", err)
	}

	//
	// ── 2.  Router and server ───────────────────────────────────────────
	//
	handler, err := a.Router()
	if err != nil {
		a.Log.Fatalw("router", "err", err)
	}
	srv := server.New(a.Config.HTTP, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Infow("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Infow("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		a.Log.Errorw("http server", "err", err)
	}
}
