// Package model provides data-structs and errors shared by the stripper packages
package model

import (
	"errors"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Mode describes the pixel encoding of an in-memory image.
type Mode string

const (
	ModeGray     Mode = "Gray"
	ModeGray16   Mode = "Gray16"
	ModeAlpha    Mode = "Alpha"
	ModeAlpha16  Mode = "Alpha16"
	ModeRGBA     Mode = "RGBA"
	ModeRGBA64   Mode = "RGBA64"
	ModeNRGBA    Mode = "NRGBA"
	ModeNRGBA64  Mode = "NRGBA64"
	ModeYCbCr    Mode = "YCbCr"
	ModeNYCbCrA  Mode = "NYCbCrA"
	ModeCMYK     Mode = "CMYK"
	ModePaletted Mode = "Paletted"
	ModeUnknown  Mode = "Unknown"
)

//---------------------

// Image is a decoded bitmap. Exif is only ever set by the decoder on a loaded image.
type Image struct {
	Pixels image.Image
	Format imaging.Format
	Exif   *exif.Exif
}

func (i *Image) Mode() Mode {
	if i == nil {
		return ModeUnknown
	}
	return ModeOf(i.Pixels)
}

func (i *Image) Size() (width, height int) {
	if i == nil || i.Pixels == nil {
		return 0, 0
	}
	b := i.Pixels.Bounds()
	return b.Dx(), b.Dy()
}

func (i *Image) HasMetadata() bool {
	return i != nil && i.Exif != nil
}

// ModeOf maps a concrete buffer type to its Mode.
func ModeOf(img image.Image) Mode {
	switch img.(type) {
	case *image.Gray:
		return ModeGray
	case *image.Gray16:
		return ModeGray16
	case *image.Alpha:
		return ModeAlpha
	case *image.Alpha16:
		return ModeAlpha16
	case *image.RGBA:
		return ModeRGBA
	case *image.RGBA64:
		return ModeRGBA64
	case *image.NRGBA:
		return ModeNRGBA
	case *image.NRGBA64:
		return ModeNRGBA64
	case *image.YCbCr:
		return ModeYCbCr
	case *image.NYCbCrA:
		return ModeNYCbCrA
	case *image.CMYK:
		return ModeCMYK
	case *image.Paletted:
		return ModePaletted
	default:
		return ModeUnknown
	}
}

//-------------------

// ExtensionFilter is an ordered set of lowercase extensions without the leading dot.
type ExtensionFilter []string

// DefaultExtensions is applied when no filter is given.
var DefaultExtensions = ExtensionFilter{"jpg", "png"}

// NormalizeExtension trims spaces and one leading dot and lowercases the result.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	ext = strings.TrimPrefix(ext, ".")
	return strings.ToLower(ext)
}

// ParseExtensions turns "jpg, .PNG,jpg" into {jpg, png}. Empty input gives nil.
func ParseExtensions(raw string) ExtensionFilter {
	var res ExtensionFilter
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		ext := NormalizeExtension(part)
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		res = append(res, ext)
	}
	return res
}

// ------------------

var (
	ErrDecode      error = errors.New("image cannot be decoded")                  // missing, unreadable or unsupported source
	ErrNoMetadata  error = errors.New("image carries no metadata")                // print_exif on a clean image
	ErrAllocation  error = errors.New("image buffer cannot be allocated")         // nil or empty source
	ErrEncode      error = errors.New("image cannot be encoded in target format") // unknown extension or encoder failure
	ErrWrite       error = errors.New("image cannot be written")                  // filesystem failure on save
	ErrEmptySource error = errors.New("empty/incorrect source image provided")    // http: no upload
	ErrStorage     error = errors.New("archive storage failure")                  // archive put failed
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
	TIFF = "image/tiff"
	BMP  = "image/bmp"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
	TIFF: ".tif",
	BMP:  ".bmp",
}

var GetCType = map[imaging.Format]string{
	imaging.JPEG: JPEG,
	imaging.GIF:  GIF,
	imaging.PNG:  PNG,
	imaging.TIFF: TIFF,
	imaging.BMP:  BMP,
}

//--------------------

// StripResult is an encoded metadata-free image ready to be sent back.
type StripResult struct {
	Data        []byte
	ContentType string
	HadMetadata bool
	ArchiveKey  string
}
