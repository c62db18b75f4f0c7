// Package exifmeta extracts EXIF blocks from raw image bytes and lists their tags.
package exifmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Entry is one metadata tag. Name is the decimal id when the tag is not registered.
type Entry struct {
	ID    uint16 `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Extract returns the EXIF block found in data, or nil when there is none.
func Extract(data []byte, format imaging.Format) *exif.Exif {
	var raw io.Reader
	switch format {
	case imaging.JPEG, imaging.TIFF:
		raw = bytes.NewReader(data)
	case imaging.PNG:
		block := pngExifChunk(data)
		if block == nil {
			return nil
		}
		raw = bytes.NewReader(block)
	default:
		return nil
	}

	// goexif returns a usable value alongside non-critical tag errors
	x, _ := exif.Decode(raw)
	if x == nil || x.Tiff == nil {
		return nil
	}
	return x
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngExifChunk walks the chunk list up to IDAT/IEND looking for eXIf.
func pngExifChunk(data []byte) []byte {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil
	}
	p := len(pngSignature)
	for p+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[p:]))
		kind := string(data[p+4 : p+8])
		start := p + 8
		end := start + length
		if length < 0 || end+4 > len(data) {
			return nil
		}
		switch kind {
		case "eXIf":
			return data[start:end]
		case "IDAT", "IEND":
			return nil
		}
		p = end + 4
	}
	return nil
}

// Entries lists the metadata of img ordered by tag id.
func Entries(img *model.Image) ([]Entry, error) {
	if !img.HasMetadata() {
		return nil, model.ErrNoMetadata
	}

	c := &collector{}
	if err := img.Exif.Walk(c); err != nil {
		return nil, fmt.Errorf("walk exif tags: %w", err)
	}

	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].ID != c.entries[j].ID {
			return c.entries[i].ID < c.entries[j].ID
		}
		return c.entries[i].Name < c.entries[j].Name
	})
	return c.entries, nil
}

// Print writes "<name_or_id> <value>" lines for every tag of img.
func Print(w io.Writer, img *model.Image) error {
	entries, err := Entries(img)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %s\n", e.Name, e.Value); err != nil {
			return err
		}
	}
	return nil
}

type collector struct {
	entries []Entry
}

func (c *collector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.entries = append(c.entries, Entry{
		ID:    tag.Id,
		Name:  resolveName(name, tag.Id),
		Value: tagValue(tag),
	})
	return nil
}

func resolveName(field exif.FieldName, id uint16) string {
	if strings.HasPrefix(string(field), "GPS") {
		if name, ok := GPSTagName(id); ok {
			return name
		}
	}
	if name, ok := TagName(id); ok {
		return name
	}
	return strconv.Itoa(int(id))
}

func tagValue(tag *tiff.Tag) string {
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			return strings.TrimRight(s, "\x00")
		}
	}
	return tag.String()
}
