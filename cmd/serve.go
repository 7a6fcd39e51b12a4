package cmd

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"

	"github.com/spiralbewilder/mlk-archive-search/pkg/api"
	"github.com/spiralbewilder/mlk-archive-search/pkg/config"
	"github.com/spiralbewilder/mlk-archive-search/pkg/log"
	"github.com/spiralbewilder/mlk-archive-search/pkg/storage"
)

//go:embed web/static/*
var staticFS embed.FS

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the search API and web interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Address to listen on (overrides config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("addr"))
		},
	}
}

func serve(ctx context.Context, configPath, addr string) error {
	logger := log.ForComponent("serve")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close database: %v\n", err)
		}
	}()

	hasFTS, err := store.HasFTS()
	if err != nil {
		return fmt.Errorf("probing full-text index: %w", err)
	}
	if !hasFTS {
		logger.Warnf("no full-text index found, searches will use the slower LIKE scan (run 'archivesearch init-fts')")
	}

	server := api.NewServer(store, cfg)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	mux.Handle("GET /", http.FileServer(http.FS(staticPages())))

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.CorsMiddleware(mux),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on http://%s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Watch the database file so an out-of-band reimport (the archive is
	// rebuilt by replacing the file) picks up the new data without a restart.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("failed to create database file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("failed to close database file watcher: %v", err)
			}
		}()
		if err := watcher.Add(cfg.DatabasePath); err != nil {
			logger.Warnf("failed to watch database file %s: %v", cfg.DatabasePath, err)
		} else {
			logger.Infof("watching database file for changes: %s", cfg.DatabasePath)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return shutdown(httpServer, logger)
		case sig := <-sigCh:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			return shutdown(httpServer, logger)
		case err := <-serverErr:
			return fmt.Errorf("http server: %w", err)
		case event, ok := <-watcherEvents(watcher):
			if !ok {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				logger.Infof("database file changed (%s), reopening...", event.Op)

				// Atomic replacement drops the watch, re-add once the new
				// file is in place.
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(cfg.DatabasePath); os.IsNotExist(err) {
					logger.Warnf("database file removed and not replaced, keeping current handle")
					continue
				}
				if watcher != nil {
					if err := watcher.Add(cfg.DatabasePath); err != nil {
						logger.Warnf("failed to re-watch database file: %v", err)
					}
				}
				if err := store.Reopen(); err != nil {
					logger.Errorf("failed to reopen database: %v", err)
				} else {
					logger.Infof("database reopened")
				}
			}
		case err, ok := <-watcherErrors(watcher):
			if !ok {
				continue
			}
			logger.Warnf("database file watcher error: %v", err)
		}
	}
}

func shutdown(srv *http.Server, logger *log.Logger) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	logger.Infof("server stopped")
	return nil
}

// staticPages exposes the embedded web UI rooted at /.
func staticPages() fs.FS {
	sub, err := fs.Sub(staticFS, "web/static")
	if err != nil {
		// The subtree is embedded at build time, a failure here is a
		// packaging bug.
		panic(err)
	}
	return sub
}

// watcherEvents tolerates a nil watcher so the select loop works even when
// watcher creation failed.
func watcherEvents(w *fsnotify.Watcher) chan fsnotify.Event {
	if w == nil {
		return nil
	}
	return w.Events
}

func watcherErrors(w *fsnotify.Watcher) chan error {
	if w == nil {
		return nil
	}
	return w.Errors
}
