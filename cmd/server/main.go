package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/linguameet/whiteboard/internal/asset"
	"github.com/linguameet/whiteboard/internal/board"
	"github.com/linguameet/whiteboard/internal/config"
	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/export"
	"github.com/linguameet/whiteboard/internal/live"
	mw "github.com/linguameet/whiteboard/internal/middleware"
	"github.com/linguameet/whiteboard/internal/render"
	"github.com/linguameet/whiteboard/internal/store"
	"github.com/linguameet/whiteboard/internal/typeid"
)

// Postgres keeps this many snapshots per board.
const snapshotsKept = 50

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boards, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		slog.Error("open board store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	doc, err := store.LoadOrCreate(ctx, boards, cfg.BoardID, func() document.Document {
		return document.New(typeid.NewPageID(), cfg.DefaultBackground)
	})
	if err != nil {
		slog.Error("load board", "board", cfg.BoardID, "error", err)
		os.Exit(1)
	}

	assets, err := asset.NewStore(cfg.AssetDir, logger)
	if err != nil {
		slog.Error("open asset store", "error", err)
		os.Exit(1)
	}

	fonts, err := render.NewFonts()
	if err != nil {
		slog.Error("load fonts", "error", err)
		os.Exit(1)
	}

	exporter := &export.Exporter{
		Images:   &render.Raster{Fonts: fonts, Images: assets, Logger: logger},
		Archive:  &render.PDF{Images: assets, Logger: logger},
		Measurer: fonts,
		Width:    cfg.ExportWidth,
		Height:   cfg.ExportHeight,
		Logger:   logger,
	}
	importer := &export.Importer{Assets: assets}

	hub := live.NewHub(doc, live.Config{
		BoardID:          cfg.BoardID,
		Store:            boards,
		Importer:         importer,
		Logger:           logger,
		AutosaveInterval: cfg.AutosaveInterval,
		Engine: engine.Options{
			Measurer:     fonts,
			HistoryLimit: cfg.HistoryLimit,
		},
	})
	go hub.Run()

	boardHandler := board.NewHandler(hub, exporter, importer, logger)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.PathPrefix(asset.URLPrefix).Handler(assets.Serve()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	boardHandler.Register(api)

	// WebSocket endpoint for the editing surface
	r.HandleFunc("/ws/board", hub.Handler(originPatterns(cfg.Origins())))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first so the board is saved
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "board", cfg.BoardID)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore picks Postgres when DATABASE_URL is set and the file store
// otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		fs, err := store.NewFileStore(cfg.DataDir, logger)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgres(pool, logger)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if n, err := pg.Prune(ctx, cfg.BoardID, snapshotsKept); err != nil {
		logger.Warn("prune snapshots", "error", err)
	} else if n > 0 {
		logger.Info("pruned snapshots", "board", cfg.BoardID, "removed", n)
	}
	if n, err := pg.Versions(ctx, cfg.BoardID); err == nil {
		logger.Info("board snapshots", "board", cfg.BoardID, "versions", n)
	}
	return pg, pool.Close, nil
}

// originPatterns turns allowed origins into the host patterns the websocket
// handshake matches against.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		out = append(out, o)
	}
	return out
}
