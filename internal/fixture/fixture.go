// Package fixture builds test images with and without embedded EXIF blocks.
package fixture

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

const (
	Camera           = "Acme Cameras"
	DateTimeOriginal = "2021:01:01 00:00:00"
)

// Pattern returns an opaque NRGBA image where every pixel differs from its neighbours.
func Pattern(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func Encode(t testing.TB, img image.Image, format imaging.Format) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

// ExifBlock builds a little-endian TIFF block: Make in IFD0, DateTimeOriginal in the Exif IFD.
func ExifBlock(camera, dateTimeOriginal string) []byte {
	le := binary.LittleEndian
	mk := append([]byte(camera), 0)
	dt := append([]byte(dateTimeOriginal), 0)

	const ifd0 = 8
	exifIFD := ifd0 + 2 + 2*12 + 4
	dataStart := exifIFD + 2 + 12 + 4
	mkOff := dataStart
	dtOff := mkOff + len(mk)

	buf := make([]byte, dtOff+len(dt))
	copy(buf, "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], ifd0)

	p := ifd0
	le.PutUint16(buf[p:], 2)
	p += 2
	p = putASCII(buf, p, 0x010F, mk, mkOff)
	p = putEntry(buf, p, 0x8769, 4, 1, uint32(exifIFD))
	le.PutUint32(buf[p:], 0)

	p = exifIFD
	le.PutUint16(buf[p:], 1)
	p += 2
	p = putASCII(buf, p, 0x9003, dt, dtOff)
	le.PutUint32(buf[p:], 0)

	return buf
}

func putEntry(buf []byte, p int, tag, typ uint16, count, value uint32) int {
	le := binary.LittleEndian
	le.PutUint16(buf[p:], tag)
	le.PutUint16(buf[p+2:], typ)
	le.PutUint32(buf[p+4:], count)
	le.PutUint32(buf[p+8:], value)
	return p + 12
}

// putASCII stores values of up to four bytes inline, longer ones at off.
func putASCII(buf []byte, p int, tag uint16, val []byte, off int) int {
	if len(val) <= 4 {
		next := putEntry(buf, p, tag, 2, uint32(len(val)), 0)
		copy(buf[p+8:p+12], val)
		return next
	}
	copy(buf[off:], val)
	return putEntry(buf, p, tag, 2, uint32(len(val)), uint32(off))
}

// WithJPEGExif inserts an APP1 segment carrying block right after SOI.
func WithJPEGExif(t testing.TB, jpg, block []byte) []byte {
	t.Helper()
	require.GreaterOrEqual(t, len(jpg), 2)
	require.Equal(t, []byte{0xFF, 0xD8}, jpg[:2])

	payload := append([]byte("Exif\x00\x00"), block...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(jpg)+len(seg))
	out = append(out, jpg[:2]...)
	out = append(out, seg...)
	return append(out, jpg[2:]...)
}

// WithPNGExif inserts an eXIf chunk right after IHDR.
func WithPNGExif(t testing.TB, png, block []byte) []byte {
	t.Helper()
	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	require.Greater(t, len(png), ihdrEnd)
	require.Equal(t, "IHDR", string(png[12:16]))

	chunk := make([]byte, 8, 12+len(block))
	binary.BigEndian.PutUint32(chunk, uint32(len(block)))
	copy(chunk[4:], "eXIf")
	chunk = append(chunk, block...)
	crc := crc32.ChecksumIEEE(chunk[4:])
	chunk = binary.BigEndian.AppendUint32(chunk, crc)

	out := make([]byte, 0, len(png)+len(chunk))
	out = append(out, png[:ihdrEnd]...)
	out = append(out, chunk...)
	return append(out, png[ihdrEnd:]...)
}

// JPEGWithExif is a w x h JPEG carrying the default Camera/DateTimeOriginal block.
func JPEGWithExif(t testing.TB, w, h int) []byte {
	t.Helper()
	return WithJPEGExif(t, Encode(t, Pattern(w, h), imaging.JPEG), ExifBlock(Camera, DateTimeOriginal))
}

// PNGWithExif is a w x h PNG carrying the default Camera/DateTimeOriginal block.
func PNGWithExif(t testing.TB, w, h int) []byte {
	t.Helper()
	return WithPNGExif(t, Encode(t, Pattern(w, h), imaging.PNG), ExifBlock(Camera, DateTimeOriginal))
}

// OpaqueRGBAPNG is a w x h PNG of Pattern stored as color type 6 (8-bit RGBA)
// even though every pixel is opaque. image/png never writes that layout itself.
func OpaqueRGBAPNG(t testing.TB, w, h int) []byte {
	t.Helper()

	img := Pattern(w, h)
	var raw bytes.Buffer
	for y := 0; y < h; y++ {
		raw.WriteByte(0) // filter: none
		raw.Write(img.Pix[y*img.Stride : y*img.Stride+w*4])
	}
	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	_, err := zw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8], ihdr[9] = 8, 6

	out := []byte("\x89PNG\r\n\x1a\n")
	out = appendChunk(out, "IHDR", ihdr)
	out = appendChunk(out, "IDAT", idat.Bytes())
	return appendChunk(out, "IEND", nil)
}

func appendChunk(out []byte, kind string, data []byte) []byte {
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	start := len(out)
	out = append(out, kind...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(out[start:]))
}

func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
