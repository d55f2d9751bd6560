package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/linguameet/whiteboard/internal/asset"
	"github.com/linguameet/whiteboard/internal/config"
	"github.com/linguameet/whiteboard/internal/desktop"
	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/export"
	"github.com/linguameet/whiteboard/internal/render"
	"github.com/linguameet/whiteboard/internal/store"
	"github.com/linguameet/whiteboard/internal/typeid"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	boards, err := store.NewFileStore(cfg.DataDir, logger)
	if err != nil {
		slog.Error("open board store", "error", err)
		os.Exit(1)
	}

	doc, err := store.LoadOrCreate(context.Background(), boards, cfg.BoardID, func() document.Document {
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
	raster := &render.Raster{Fonts: fonts, Images: assets, Logger: logger}

	desktop.Run(doc, desktop.Config{
		BoardID: cfg.BoardID,
		Store:   boards,
		Exporter: &export.Exporter{
			Images:   raster,
			Archive:  &render.PDF{Images: assets, Logger: logger},
			Measurer: fonts,
			Width:    cfg.ExportWidth,
			Height:   cfg.ExportHeight,
			Logger:   logger,
		},
		Importer: &export.Importer{Assets: assets},
		Raster:   raster,
		Engine: engine.Options{
			Logger:       logger,
			Measurer:     fonts,
			HistoryLimit: cfg.HistoryLimit,
		},
		AutosaveInterval: cfg.AutosaveInterval,
		Logger:           logger,
	})
}
