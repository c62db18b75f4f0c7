package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/UnendingLoop/ExifStripper/internal/fixture"
	"github.com/UnendingLoop/ExifStripper/internal/imageproc"
	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func TestImageService_Strip(t *testing.T) {
	tests := []struct {
		name     string
		input    io.Reader
		wantType string
		wantMeta bool
		wantErr  error
	}{
		{name: "jpeg with exif", input: bytes.NewReader(fixture.JPEGWithExif(t, 10, 10)), wantType: model.JPEG, wantMeta: true},
		{name: "png with exif", input: bytes.NewReader(fixture.PNGWithExif(t, 10, 10)), wantType: model.PNG, wantMeta: true},
		{name: "plain gif", input: bytes.NewReader(fixture.Encode(t, fixture.Pattern(4, 4), imaging.GIF)), wantType: model.GIF},
		{name: "nil reader", input: nil, wantErr: model.ErrEmptySource},
		{name: "empty body", input: bytes.NewReader(nil), wantErr: model.ErrEmptySource},
		{name: "broken image", input: strings.NewReader("broken"), wantErr: model.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewImageService(nil, "", 90)
			res, err := svc.Strip(context.Background(), tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantType, res.ContentType)
			require.Equal(t, tt.wantMeta, res.HadMetadata)
			require.Empty(t, res.ArchiveKey)

			img, err := imageproc.Decode(res.Data)
			require.NoError(t, err)
			require.False(t, img.HasMetadata())
		})
	}
}

func TestImageService_Strip_Archive(t *testing.T) {
	var putKey string
	strg := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			require.Equal(t, model.PNG, ct)
			require.Positive(t, size)
			putKey = key
			return nil
		},
	}

	svc := NewImageService(strg, "clean/", 0)
	res, err := svc.Strip(context.Background(), bytes.NewReader(fixture.PNGWithExif(t, 4, 4)))
	require.NoError(t, err)
	require.Equal(t, putKey, res.ArchiveKey)
	require.True(t, strings.HasPrefix(res.ArchiveKey, "clean/"))
	require.True(t, strings.HasSuffix(res.ArchiveKey, ".png"))
}

func TestImageService_Strip_ArchiveError(t *testing.T) {
	strg := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			return errors.New("minio down")
		},
	}

	svc := NewImageService(strg, "", 0)
	_, err := svc.Strip(context.Background(), bytes.NewReader(fixture.PNGWithExif(t, 4, 4)))
	require.ErrorIs(t, err, model.ErrStorage)
}

func TestImageService_Inspect(t *testing.T) {
	svc := NewImageService(nil, "", 0)

	entries, err := svc.Inspect(context.Background(), bytes.NewReader(fixture.JPEGWithExif(t, 4, 4)))
	require.NoError(t, err)

	var found bool
	for _, e := range entries {
		if e.ID == 0x9003 {
			found = true
			require.Equal(t, "DateTimeOriginal", e.Name)
			require.Equal(t, fixture.DateTimeOriginal, e.Value)
		}
	}
	require.True(t, found)

	_, err = svc.Inspect(context.Background(), bytes.NewReader(fixture.Encode(t, fixture.Pattern(4, 4), imaging.PNG)))
	require.ErrorIs(t, err, model.ErrNoMetadata)

	_, err = svc.Inspect(context.Background(), strings.NewReader("junk"))
	require.ErrorIs(t, err, model.ErrDecode)
}
