// Package main (in api-subfolder) provides launch of the HTTP stripping service
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

	"github.com/UnendingLoop/ExifStripper/internal/config"
	"github.com/UnendingLoop/ExifStripper/internal/mwlogger"
	"github.com/UnendingLoop/ExifStripper/internal/service"
	"github.com/UnendingLoop/ExifStripper/internal/storage"
	"github.com/UnendingLoop/ExifStripper/internal/transport"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	cfg, err := config.Load("./.env")
	if err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к хранилищу, если оно задано
	var strg storage.ImageStorage
	client, err := storage.NewImgStorage(ctx, cfg.Archive)
	if err != nil {
		log.Fatalf("Failed to connect IMG-storage: %v", err)
	}
	if client != nil {
		strg = client
	}

	// создаем экземпляр сервиса
	var svc transport.ImageService = service.NewImageService(strg, cfg.ArchivePrefix, cfg.JPEGQuality)
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewImageHandler(svc, cfg.MaxUploadSize)
	// сетапим сервер
	engine := ginext.New(cfg.GinMode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/images/strip", handlers.Strip)  // вернуть очищенную картинку
	engine.POST("/images/exif", handlers.Inspect) // посмотреть теги

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           mwlogger.NewMWLogger(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server launch
	go func() {
		zlog.Logger.Info().Str("addr", srv.Addr).Msg("Server running")
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для грейсфул остановки сервера
	<-ctx.Done()

	shutdown(srv)
	log.Println("Exiting app...")
}

func shutdown(srv *http.Server) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Println("Failed to shutdown server correctly:", err)
		return
	}
	log.Println("Server stopped")
}
