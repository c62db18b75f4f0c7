// Package config loads stripper settings from the environment/.env file and CLI flags
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/UnendingLoop/ExifStripper/internal/storage/miniostorage"
	wbfconfig "github.com/wb-go/wbf/config"
)

type Config struct {
	SearchDir       string
	Extensions      model.ExtensionFilter
	Recursive       bool
	OutputDir       string
	InPlace         bool
	PrintExif       bool
	ContinueOnError bool
	JPEGQuality     int
	LogLevel        string

	Archive       miniostorage.Options
	ArchivePrefix string

	AppPort       string
	GinMode       string
	MaxUploadSize int64
}

func DefaultConfig() Config {
	return Config{
		SearchDir:     ".",
		Extensions:    model.DefaultExtensions,
		OutputDir:     "stripped",
		JPEGQuality:   95,
		LogLevel:      "info",
		ArchivePrefix: "stripped/",
		AppPort:       "8080",
		GinMode:       "release",
		MaxUploadSize: 32 << 20,
	}
}

// Load applies environment variables (and envFile when it exists) on top of DefaultConfig.
func Load(envFile string) (Config, error) {
	cfg := DefaultConfig()

	// инициализировать конфиг/ считать энвы
	appConfig := wbfconfig.New()
	appConfig.EnableEnv("")
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := appConfig.LoadEnvFiles(envFile); err != nil {
				return cfg, fmt.Errorf("load env file %q: %w", envFile, err)
			}
		}
	}

	var errs []error
	setString(appConfig, "SEARCH_DIR", &cfg.SearchDir)
	setString(appConfig, "OUTPUT_DIR", &cfg.OutputDir)
	setString(appConfig, "LOG_LEVEL", &cfg.LogLevel)
	setString(appConfig, "ARCHIVE_PREFIX", &cfg.ArchivePrefix)
	setString(appConfig, "APP_PORT", &cfg.AppPort)
	setString(appConfig, "GIN_MODE", &cfg.GinMode)
	setString(appConfig, "MINIO_ENDPOINT", &cfg.Archive.Endpoint)
	setString(appConfig, "MINIO_USER", &cfg.Archive.User)
	setString(appConfig, "MINIO_PASS", &cfg.Archive.Pass)
	setString(appConfig, "BUCKET_NAME", &cfg.Archive.Bucket)
	if v := appConfig.GetString("EXTENSIONS"); v != "" {
		cfg.Extensions = model.ParseExtensions(v)
	}
	errs = append(errs,
		setBool(appConfig, "RECURSIVE", &cfg.Recursive),
		setBool(appConfig, "IN_PLACE", &cfg.InPlace),
		setBool(appConfig, "PRINT_EXIF", &cfg.PrintExif),
		setBool(appConfig, "CONTINUE_ON_ERROR", &cfg.ContinueOnError),
		setBool(appConfig, "MINIO_SECURE", &cfg.Archive.Secure),
		setInt(appConfig, "JPEG_QUALITY", &cfg.JPEGQuality),
	)
	if v := appConfig.GetString("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_UPLOAD_MB: %w", err))
		} else {
			cfg.MaxUploadSize = mb << 20
		}
	}

	return cfg, errors.Join(errs...)
}

// Validate checks value ranges; it does not touch the filesystem.
func (c *Config) Validate() error {
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be within 1..100, got %d", c.JPEGQuality)
	}
	if !c.InPlace && strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output directory is required unless in-place mode is set")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadSize)
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

func setString(cfg *wbfconfig.Config, key string, dst *string) {
	if v := cfg.GetString(key); v != "" {
		*dst = v
	}
}

func setBool(cfg *wbfconfig.Config, key string, dst *bool) error {
	v := cfg.GetString(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(cfg *wbfconfig.Config, key string, dst *int) error {
	v := cfg.GetString(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
