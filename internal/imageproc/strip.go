package imageproc

import (
	"fmt"
	"image"
	"image/color"

	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/disintegration/imaging"
)

// Strip builds a new image with the same mode, size and pixels as src and no metadata.
func Strip(src *model.Image) (*model.Image, error) {
	if src == nil || src.Pixels == nil {
		return nil, fmt.Errorf("%w: nil source image", model.ErrAllocation)
	}
	b := src.Pixels.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", model.ErrAllocation, b.Dx(), b.Dy())
	}

	return &model.Image{
		Pixels: clonePixels(src.Pixels),
		Format: src.Format,
	}, nil
}

// CreateImage is an alias for Strip.
func CreateImage(src *model.Image) (*model.Image, error) {
	return Strip(src)
}

func clonePixels(src image.Image) image.Image {
	b := src.Bounds()

	switch s := src.(type) {
	case *image.Gray:
		d := image.NewGray(b)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 1)
		return d
	case *image.Gray16:
		d := image.NewGray16(b)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 2)
		return d
	case *image.Alpha:
		d := image.NewAlpha(b)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 1)
		return d
	case *image.Alpha16:
		d := image.NewAlpha16(b)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 2)
		return d
	case *image.RGBA:
		d := image.NewRGBA(b)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 4)
		return d
	case *image.RGBA64:
		d := image.NewRGBA64(b)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 8)
		return d
	case *image.NRGBA:
		d := image.NewNRGBA(b)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 4)
		return d
	case *image.NRGBA64:
		d := image.NewNRGBA64(b)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 8)
		return d
	case *image.CMYK:
		d := image.NewCMYK(b)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 4)
		return d
	case *image.Paletted:
		palette := make(color.Palette, len(s.Palette))
		copy(palette, s.Palette)
		d := image.NewPaletted(b, palette)
		copyRows(d.Pix, d.PixOffset, s.Pix, s.PixOffset, b, 1)
		return d
	case *image.YCbCr:
		d := image.NewYCbCr(b, s.SubsampleRatio)
		copyYCbCr(d, s)
		return d
	case *image.NYCbCrA:
		d := image.NewNYCbCrA(b, s.SubsampleRatio)
		copyYCbCr(&d.YCbCr, &s.YCbCr)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				d.A[d.AOffset(x, y)] = s.A[s.AOffset(x, y)]
			}
		}
		return d
	default:
		// неизвестный тип буфера - пиксели сохраняем, режим становится NRGBA
		return imaging.Clone(src)
	}
}

func copyRows(dst []byte, dstOff func(x, y int) int, src []byte, srcOff func(x, y int) int, b image.Rectangle, bytesPerPixel int) {
	n := b.Dx() * bytesPerPixel
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := srcOff(b.Min.X, y)
		j := dstOff(b.Min.X, y)
		copy(dst[j:j+n], src[i:i+n])
	}
}

// copyYCbCr copies sample by sample; chroma planes are subsampled, so the same
// chroma offset is written several times.
func copyYCbCr(dst, src *image.YCbCr) {
	b := src.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Y[dst.YOffset(x, y)] = src.Y[src.YOffset(x, y)]
			ci, cj := dst.COffset(x, y), src.COffset(x, y)
			dst.Cb[ci] = src.Cb[cj]
			dst.Cr[ci] = src.Cr[cj]
		}
	}
}
