// main is the entry point of steamdex.
// It wires the Steam scanner, the catalog cache and the adapters, then runs
// the requested command: a plugin query, a launch, a scan report or the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/catalog"
	"github.com/woozymasta/steamdex/internal/config"
	"github.com/woozymasta/steamdex/internal/icon"
	"github.com/woozymasta/steamdex/internal/launcher"
	"github.com/woozymasta/steamdex/internal/logger"
	"github.com/woozymasta/steamdex/internal/maintenance"
	"github.com/woozymasta/steamdex/internal/plugin"
	"github.com/woozymasta/steamdex/internal/report"
	"github.com/woozymasta/steamdex/internal/scanner"
	"github.com/woozymasta/steamdex/internal/server"
	"github.com/woozymasta/steamdex/internal/shortcuts"
	"github.com/woozymasta/steamdex/internal/steam"
	"github.com/woozymasta/steamdex/internal/storage"
)

func main() {
	os.Exit(run(config.Parse()))
}

func run(cfg *config.Config) int {
	logger.Setup(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database, optional
	var store *storage.Repository
	if cfg.Storage.Path != "" {
		s, err := storage.New(cfg.Storage.Path)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize database, persistence disabled")
		} else {
			store = s
			defer func() {
				if err := store.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing database")
				}
			}()
		}
	}

	cache := newCatalog(cfg, store)
	p := &plugin.Plugin{Catalog: cache, Launcher: launcher.Exec{}}

	if maintenance.Run(ctx, cfg, maintenance.Deps{Store: store, Cache: cache}) {
		return 0
	}

	switch {
	case cfg.IsRPC():
		return runRPC(ctx, p, cfg.Args.Command)

	case cfg.Args.Command == config.CommandQuery:
		return printJSON(p.Query(ctx, strings.Join(cfg.Args.Rest, " ")))

	case cfg.Args.Command == config.CommandLaunch:
		ok, msg := p.Launch(ctx, cfg.Args.Rest[0])
		fmt.Println(msg)
		if !ok {
			return 1
		}
		return 0

	case cfg.Args.Command == config.CommandScan:
		snap, err := cache.Refresh(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Scan failed")
			snap = cache.Snapshot(ctx)
		}
		if err := report.Write(os.Stdout, snap, time.Now()); err != nil {
			log.Error().Err(err).Msg("Failed to write report")
			return 1
		}
		return 0

	case cfg.Args.Command == config.CommandServe:
		return serve(ctx, cfg, cache, p)
	}

	return 1
}

// newCatalog assembles locator, icon resolver, shortcut parser and scanner
// into a catalog cache.
func newCatalog(cfg *config.Config, store *storage.Repository) *catalog.Cache {
	locator := steam.PathLocator{Override: cfg.Steam.Path}

	resolver := &icon.Resolver{MaxDepth: cfg.Steam.IconMaxDepth}
	if root, err := locator.Locate(); err == nil {
		resolver.SteamRoot = root
	}
	if cfg.Icons.Dir != "" {
		resolver.Optimizer = &icon.ResizeOptimizer{Dir: cfg.Icons.Dir, MaxSize: cfg.Icons.MaxSize}
	}

	parser := shortcuts.New()
	parser.Suffix = cfg.Steam.ExeSuffix
	parser.Lookahead = cfg.Steam.Lookahead

	sc := &scanner.Scanner{
		Icons:     resolver,
		Shortcuts: parser,
		Workers:   cfg.Steam.ScanWorkers,
	}

	opts := []catalog.Option{}
	if store != nil {
		opts = append(opts, catalog.WithStore(store))
	}

	return catalog.New(catalog.SteamSource(locator, sc), cfg.Catalog.TTL, opts...)
}

func runRPC(ctx context.Context, p *plugin.Plugin, raw string) int {
	req, err := plugin.ParseRequest([]byte(raw))
	if err != nil {
		log.Error().Err(err).Msg("Invalid JSON-RPC request")
		printJSON(plugin.Response{Error: err.Error()})
		return 1
	}

	return printJSON(p.Handle(ctx, req))
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, cache *catalog.Cache, p *plugin.Plugin) int {
	srv := server.New(cache, p, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		log.Error().Err(err).Msg("Server failed")
		return 1
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return 0
}
