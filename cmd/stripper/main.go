// Package main (in stripper-subfolder) provides the CLI that strips EXIF metadata from a directory of images
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnendingLoop/ExifStripper/internal/config"
	"github.com/UnendingLoop/ExifStripper/internal/discovery"
	"github.com/UnendingLoop/ExifStripper/internal/mwlogger"
	"github.com/UnendingLoop/ExifStripper/internal/storage"
	"github.com/UnendingLoop/ExifStripper/internal/worker"
	"github.com/wb-go/wbf/helpers"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	os.Exit(run())
}

func run() int {
	// инициализировать конфиг/ считать энвы, затем флаги поверх
	cfg, err := config.Load("./.env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		return 2
	}
	if err := config.ParseFlags(&cfg, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return 0
		}
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		return 2
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(cfg.LogLevel); err != nil {
		log.Printf("Failed to init logger: %v", err)
		return 1
	}

	// контекст всего прогона: прерывания + логгер с id запуска
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := zlog.Logger.With().Str("run_id", helpers.CreateUUID()).Logger()
	ctx = mwlogger.WithLogger(ctx, logger)

	root, err := discovery.ResolvePath(cfg.SearchDir)
	if err != nil {
		logger.Error().Err(err).Str("dir", cfg.SearchDir).Msg("Failed to resolve search directory")
		return 1
	}

	var paths []string
	if cfg.Recursive {
		// старые результаты внутри дерева повторно не обрабатываем
		var skip []string
		if !cfg.InPlace {
			skip = append(skip, cfg.OutputDir)
		}
		paths, err = discovery.FindImagesTree(ctx, root, cfg.Extensions, skip...)
	} else {
		paths, err = discovery.FindImages(ctx, root, cfg.Extensions)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to search images")
		return 1
	}
	if len(paths) == 0 {
		logger.Info().Strs("extensions", cfg.Extensions).Msg("No images found")
		return 0
	}

	if !cfg.InPlace {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			logger.Error().Err(err).Str("dir", cfg.OutputDir).Msg("Failed to create output directory")
			return 1
		}
	}

	// архив опционален - без MINIO_ENDPOINT его нет
	var strg storage.ImageStorage
	client, err := storage.NewImgStorage(ctx, cfg.Archive)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect IMG-storage")
		return 1
	}
	if client != nil {
		strg = client
	}

	w := worker.NewWorkerInstance(strg, os.Stdout, worker.Options{
		Root:            root,
		OutputDir:       cfg.OutputDir,
		InPlace:         cfg.InPlace,
		PrintExif:       cfg.PrintExif,
		ContinueOnError: cfg.ContinueOnError,
		JPEGQuality:     cfg.JPEGQuality,
		ArchivePrefix:   cfg.ArchivePrefix,
	})

	report, err := w.Run(ctx, paths)
	logger.Info().Int("found", len(paths)).Msg(report.Summary())
	if err != nil {
		logger.Error().Err(err).Msg("Stripping finished with errors")
		return 1
	}
	return 0
}
