// Package service provides business-logic for the http surface: stripping and inspecting uploads
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/UnendingLoop/ExifStripper/internal/exifmeta"
	"github.com/UnendingLoop/ExifStripper/internal/imageproc"
	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/UnendingLoop/ExifStripper/internal/mwlogger"
	"github.com/UnendingLoop/ExifStripper/internal/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

type ImageService struct {
	storage       storage.ImageStorage
	archivePrefix string
	jpegQuality   int
}

func NewImageService(strg storage.ImageStorage, archivePrefix string, jpegQuality int) *ImageService {
	return &ImageService{
		storage:       strg,
		archivePrefix: archivePrefix,
		jpegQuality:   jpegQuality,
	}
}

// Strip decodes the upload, rebuilds it without metadata and encodes it in the source format.
func (c ImageService) Strip(ctx context.Context, r io.Reader) (*model.StripResult, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	src, err := c.decode(r)
	if err != nil {
		return nil, err
	}

	clean, err := imageproc.Strip(src)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to rebuild image buffer")
		return nil, err
	}

	var opts []imaging.EncodeOption
	if c.jpegQuality > 0 {
		opts = append(opts, imaging.JPEGQuality(c.jpegQuality))
	}
	var buf bytes.Buffer
	if err := imageproc.Encode(&buf, clean, src.Format, opts...); err != nil {
		logger.Error().Err(err).Str("format", src.Format.String()).Msg("Failed to encode stripped image")
		return nil, err
	}

	res := &model.StripResult{
		Data:        buf.Bytes(),
		ContentType: model.GetCType[src.Format],
		HadMetadata: src.HasMetadata(),
	}

	// кладем в архив - если он подключен
	if c.storage != nil {
		key := c.archivePrefix + uuid.New().String() + model.GetImageFileExt[res.ContentType]
		if err := c.storage.Put(ctx, key, int64(len(res.Data)), res.ContentType, bytes.NewReader(res.Data)); err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Failed to archive stripped image")
			return nil, fmt.Errorf("%w: %w", model.ErrStorage, err)
		}
		res.ArchiveKey = key
	}

	return res, nil
}

// Inspect lists the EXIF tags of the upload.
func (c ImageService) Inspect(ctx context.Context, r io.Reader) ([]exifmeta.Entry, error) {
	src, err := c.decode(r)
	if err != nil {
		return nil, err
	}

	entries, err := exifmeta.Entries(src)
	if err != nil && !errors.Is(err, model.ErrNoMetadata) {
		logger := mwlogger.LoggerFromContext(ctx)
		logger.Error().Err(err).Msg("Failed to walk exif tags")
	}
	return entries, err
}

func (c ImageService) decode(r io.Reader) (*model.Image, error) {
	if r == nil {
		return nil, model.ErrEmptySource
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, model.ErrEmptySource
	}
	return imageproc.Decode(data)
}
