// Package imageproc provides image operations: loading, metadata-free reconstruction and saving.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/UnendingLoop/ExifStripper/internal/exifmeta"
	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/disintegration/imaging"
)

// Load reads and decodes the image at path together with its EXIF block, if any.
func Load(path string) (*model.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecode, err)
	}

	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// GetImage is an alias for Load.
func GetImage(path string) (*model.Image, error) {
	return Load(path)
}

// Decode decodes an in-memory image. Pixels keep the decoder's native buffer type.
func Decode(data []byte) (*model.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", model.ErrDecode)
	}

	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecode, err)
	}

	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecode, err)
	}

	pixels, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecode, err)
	}

	return &model.Image{
		Pixels: pixels,
		Format: format,
		Exif:   exifmeta.Extract(data, format),
	}, nil
}
