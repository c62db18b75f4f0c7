package imageproc

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/disintegration/imaging"
)

// Save encodes img in the format implied by the extension of path and writes it,
// replacing any existing file.
func Save(img *model.Image, path string, opts ...imaging.EncodeOption) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrEncode, path, err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format, opts...); err != nil {
		return err
	}
	return WriteFile(path, buf.Bytes())
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img *model.Image, format imaging.Format, opts ...imaging.EncodeOption) error {
	if img == nil || img.Pixels == nil {
		return fmt.Errorf("%w: nil image", model.ErrEncode)
	}
	if err := imaging.Encode(w, img.Pixels, format, opts...); err != nil {
		return fmt.Errorf("%w: %w", model.ErrEncode, err)
	}
	return nil
}

func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", model.ErrWrite, err)
	}
	return nil
}
