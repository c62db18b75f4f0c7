// Package storage wires the optional archive for stripped images
package storage

import (
	"context"
	"io"

	"github.com/UnendingLoop/ExifStripper/internal/mwlogger"
	"github.com/UnendingLoop/ExifStripper/internal/storage/miniostorage"
)

// ImageStorage - контракт для работы с хранилищем
type ImageStorage interface {
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

// NewImgStorage connects to the archive once. A nil storage and nil error mean
// archiving is disabled because no endpoint is configured.
func NewImgStorage(ctx context.Context, opts miniostorage.Options) (*miniostorage.MinioImageStorage, error) {
	if opts.Endpoint == "" {
		return nil, nil
	}

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Info().Str("endpoint", opts.Endpoint).Msg("Connecting to IMG-storage...")

	client, err := miniostorage.NewMinioClient(ctx, opts)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("bucket", client.Bucket()).Msg("Successfully connected IMG-storage!")
	return client, nil
}
