package worker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/UnendingLoop/ExifStripper/internal/fixture"
	"github.com/UnendingLoop/ExifStripper/internal/imageproc"
	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func TestWorker_Run_OutputDir(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	a := fixture.WriteFile(t, src, "a.jpg", fixture.JPEGWithExif(t, 16, 8))
	b := fixture.WriteFile(t, src, "b.png", fixture.Encode(t, fixture.Pattern(5, 5), imaging.PNG))

	w := NewWorkerInstance(nil, nil, Options{OutputDir: out})
	report, err := w.Run(context.Background(), []string{a, b})
	require.NoError(t, err)
	require.Equal(t, 2, report.Stripped)
	require.Zero(t, report.Failed)
	require.Len(t, report.Results, 2)
	require.True(t, report.Results[0].HadMetadata)
	require.False(t, report.Results[1].HadMetadata)
	require.Equal(t, "2 stripped, 0 failed, 1 carried metadata", report.Summary())

	got, err := imageproc.Load(filepath.Join(out, "a.jpg"))
	require.NoError(t, err)
	require.False(t, got.HasMetadata())

	// исходник не тронут
	orig, err := imageproc.Load(a)
	require.NoError(t, err)
	require.True(t, orig.HasMetadata())
}

func TestWorker_Run_InPlace(t *testing.T) {
	dir := t.TempDir()
	p := fixture.WriteFile(t, dir, "a.png", fixture.PNGWithExif(t, 6, 6))

	w := NewWorkerInstance(nil, nil, Options{InPlace: true})
	require.Equal(t, p, w.OutputPath(p))

	_, err := w.Run(context.Background(), []string{p})
	require.NoError(t, err)

	got, err := imageproc.Load(p)
	require.NoError(t, err)
	require.False(t, got.HasMetadata())
}

func TestWorker_Run_StopsOnFirstError(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	broken := fixture.WriteFile(t, src, "broken.jpg", []byte("not-an-image"))
	good := fixture.WriteFile(t, src, "good.png", fixture.Encode(t, fixture.Pattern(4, 4), imaging.PNG))

	w := NewWorkerInstance(nil, nil, Options{OutputDir: out})
	report, err := w.Run(context.Background(), []string{broken, good})
	require.ErrorIs(t, err, model.ErrDecode)
	require.Equal(t, 1, report.Failed)
	require.Zero(t, report.Stripped)
	require.Len(t, report.Results, 1)

	_, statErr := os.Stat(filepath.Join(out, "good.png"))
	require.True(t, os.IsNotExist(statErr))
}

func TestWorker_Run_ContinueOnError(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	missing := filepath.Join(src, "gone.jpg")
	good := fixture.WriteFile(t, src, "good.png", fixture.Encode(t, fixture.Pattern(4, 4), imaging.PNG))

	w := NewWorkerInstance(nil, nil, Options{OutputDir: out, ContinueOnError: true})
	report, err := w.Run(context.Background(), []string{missing, good})
	require.ErrorIs(t, err, model.ErrDecode)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, 1, report.Stripped)
	require.Error(t, report.Results[0].Err)
	require.NoError(t, report.Results[1].Err)
	require.FileExists(t, filepath.Join(out, "good.png"))
}

func TestWorker_Run_WriteError(t *testing.T) {
	src := t.TempDir()
	p := fixture.WriteFile(t, src, "a.png", fixture.Encode(t, fixture.Pattern(4, 4), imaging.PNG))

	// родитель выходной папки - обычный файл, MkdirAll не сможет её создать
	w := NewWorkerInstance(nil, nil, Options{OutputDir: filepath.Join(p, "out")})
	_, err := w.Run(context.Background(), []string{p})
	require.ErrorIs(t, err, model.ErrWrite)
}

func TestWorker_Run_CreatesOutputDir(t *testing.T) {
	src := t.TempDir()
	p := fixture.WriteFile(t, src, "a.png", fixture.Encode(t, fixture.Pattern(4, 4), imaging.PNG))
	out := filepath.Join(t.TempDir(), "nested", "out")

	w := NewWorkerInstance(nil, nil, Options{OutputDir: out})
	_, err := w.Run(context.Background(), []string{p})
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(out, "a.png"))
}

func TestWorker_Run_KeepsTreeUnderRoot(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "x"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "y"), 0o755))
	small := fixture.WriteFile(t, filepath.Join(src, "x"), "a.png", fixture.Encode(t, fixture.Pattern(3, 3), imaging.PNG))
	big := fixture.WriteFile(t, filepath.Join(src, "y"), "a.png", fixture.Encode(t, fixture.Pattern(7, 7), imaging.PNG))

	w := NewWorkerInstance(nil, nil, Options{Root: src, OutputDir: out})
	require.Equal(t, filepath.Join(out, "x", "a.png"), w.OutputPath(small))
	require.Equal(t, filepath.Join(out, "a.png"), w.OutputPath(filepath.Join(t.TempDir(), "a.png")))

	report, err := w.Run(context.Background(), []string{small, big})
	require.NoError(t, err)
	require.Equal(t, 2, report.Stripped)

	tests := []struct {
		path string
		size int
	}{
		{path: filepath.Join(out, "x", "a.png"), size: 3},
		{path: filepath.Join(out, "y", "a.png"), size: 7},
	}
	for _, tt := range tests {
		got, err := imageproc.Load(tt.path)
		require.NoError(t, err)
		width, height := got.Size()
		require.Equal(t, tt.size, width)
		require.Equal(t, tt.size, height)
	}
}

func TestWorker_Run_OutputCollision(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "x"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "y"), 0o755))
	first := fixture.WriteFile(t, filepath.Join(src, "x"), "a.png", fixture.Encode(t, fixture.Pattern(3, 3), imaging.PNG))
	second := fixture.WriteFile(t, filepath.Join(src, "y"), "a.png", fixture.Encode(t, fixture.Pattern(7, 7), imaging.PNG))

	// без Root обе картинки попадают в один и тот же файл
	w := NewWorkerInstance(nil, nil, Options{OutputDir: out, ContinueOnError: true})
	report, err := w.Run(context.Background(), []string{first, second})
	require.ErrorIs(t, err, model.ErrWrite)
	require.Equal(t, 1, report.Stripped)
	require.Equal(t, 1, report.Failed)
	require.ErrorIs(t, report.Results[1].Err, model.ErrWrite)

	got, err := imageproc.Load(filepath.Join(out, "a.png"))
	require.NoError(t, err)
	width, _ := got.Size()
	require.Equal(t, 3, width)
}

func TestWorker_Run_PrintExif(t *testing.T) {
	src := t.TempDir()
	withMeta := fixture.WriteFile(t, src, "a.jpg", fixture.JPEGWithExif(t, 8, 8))
	plain := fixture.WriteFile(t, src, "b.png", fixture.Encode(t, fixture.Pattern(4, 4), imaging.PNG))

	var out bytes.Buffer
	w := NewWorkerInstance(nil, &out, Options{OutputDir: t.TempDir(), PrintExif: true})
	_, err := w.Run(context.Background(), []string{withMeta, plain})
	require.NoError(t, err)

	text := out.String()
	require.Contains(t, text, "== "+withMeta)
	require.Contains(t, text, "DateTimeOriginal "+fixture.DateTimeOriginal)
	require.Contains(t, text, "== "+plain+"\n(no metadata)")
}

func TestWorker_Run_Archive(t *testing.T) {
	src := t.TempDir()
	p := fixture.WriteFile(t, src, "a.jpg", fixture.JPEGWithExif(t, 8, 8))

	var gotKey, gotType string
	var gotData []byte
	strg := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, int64(len(data)), size)
			gotKey, gotType, gotData = key, ct, data
			return nil
		},
	}

	w := NewWorkerInstance(strg, nil, Options{OutputDir: t.TempDir(), ArchivePrefix: "res/"})
	report, err := w.Run(context.Background(), []string{p})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(gotKey, "res/"))
	require.True(t, strings.HasSuffix(gotKey, ".jpg"))
	require.Equal(t, gotKey, report.Results[0].ArchiveKey)
	require.Equal(t, model.JPEG, gotType)

	archived, err := imageproc.Decode(gotData)
	require.NoError(t, err)
	require.False(t, archived.HasMetadata())
}

func TestWorker_Run_ArchiveError(t *testing.T) {
	src := t.TempDir()
	p := fixture.WriteFile(t, src, "a.png", fixture.Encode(t, fixture.Pattern(4, 4), imaging.PNG))

	strg := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			return errors.New("storage down")
		},
	}

	w := NewWorkerInstance(strg, nil, Options{OutputDir: t.TempDir()})
	_, err := w.Run(context.Background(), []string{p})
	require.ErrorIs(t, err, model.ErrStorage)
}

func TestWorker_Run_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWorkerInstance(nil, nil, Options{OutputDir: t.TempDir()})
	report, err := w.Run(ctx, []string{"whatever.jpg"})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, report.Results)
}
