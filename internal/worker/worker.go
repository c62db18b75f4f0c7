// Package worker runs the strip pipeline over a list of discovered image paths
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/UnendingLoop/ExifStripper/internal/exifmeta"
	"github.com/UnendingLoop/ExifStripper/internal/imageproc"
	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/UnendingLoop/ExifStripper/internal/mwlogger"
	"github.com/UnendingLoop/ExifStripper/internal/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

type Options struct {
	Root            string // корень поиска: структура подпапок сохраняется в OutputDir
	OutputDir       string
	InPlace         bool
	PrintExif       bool
	ContinueOnError bool
	JPEGQuality     int
	ArchivePrefix   string
}

type Worker struct {
	storage storage.ImageStorage // nil - архив отключен
	out     io.Writer
	opts    Options
}

// Result describes one processed file. Err is set only when the file failed.
type Result struct {
	Source      string
	Output      string
	ArchiveKey  string
	HadMetadata bool
	Err         error
}

type Report struct {
	Results  []Result
	Stripped int
	Failed   int
}

func NewWorkerInstance(strg storage.ImageStorage, out io.Writer, opts Options) *Worker {
	if out == nil {
		out = io.Discard
	}
	return &Worker{storage: strg, out: out, opts: opts}
}

// Run processes paths one by one. The first failure stops the run unless
// ContinueOnError is set; the returned error then joins every failure.
func (w *Worker) Run(ctx context.Context, paths []string) (Report, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	var report Report
	var errs []error
	written := make(map[string]string, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var res Result
		var err error
		out := w.OutputPath(path)
		if prev, ok := written[out]; ok && !w.opts.InPlace {
			res = Result{Source: path, Output: out}
			err = fmt.Errorf("%w: %s: output %s already written from %s", model.ErrWrite, path, out, prev)
			res.Err = err
		} else {
			written[out] = path
			res, err = w.processFile(ctx, path)
		}
		report.Results = append(report.Results, res)
		if err != nil {
			report.Failed++
			errs = append(errs, err)
			logger.Error().Err(err).Str("path", path).Msg("Failed to strip image")
			if !w.opts.ContinueOnError {
				return report, err
			}
			continue
		}

		report.Stripped++
		logger.Info().
			Str("path", path).
			Str("output", res.Output).
			Bool("had_metadata", res.HadMetadata).
			Str("archive_key", res.ArchiveKey).
			Msg("Image stripped")
	}

	return report, errors.Join(errs...)
}

// OutputPath returns where the stripped copy of src is written. Sources under
// Root keep their relative path inside OutputDir, anything else lands by basename.
func (w *Worker) OutputPath(src string) string {
	if w.opts.InPlace {
		return src
	}
	if w.opts.Root != "" {
		rel, err := filepath.Rel(w.opts.Root, src)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.Join(w.opts.OutputDir, rel)
		}
	}
	return filepath.Join(w.opts.OutputDir, filepath.Base(src))
}

func (w *Worker) processFile(ctx context.Context, path string) (Result, error) {
	res := Result{Source: path, Output: w.OutputPath(path)}
	fail := func(err error) (Result, error) {
		res.Err = err
		return res, err
	}

	// читаем исходник вместе с exif
	src, err := imageproc.Load(path)
	if err != nil {
		return fail(err)
	}
	res.HadMetadata = src.HasMetadata()

	if w.opts.PrintExif {
		if err := w.printExif(path, src); err != nil {
			return fail(err)
		}
	}

	// сама операция - новый буфер без метаданных
	clean, err := imageproc.Strip(src)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", path, err))
	}

	format, err := imaging.FormatFromFilename(res.Output)
	if err != nil {
		return fail(fmt.Errorf("%w: %s: %w", model.ErrEncode, res.Output, err))
	}

	var buf bytes.Buffer
	if err := imageproc.Encode(&buf, clean, format, imaging.JPEGQuality(w.quality())); err != nil {
		return fail(fmt.Errorf("%s: %w", res.Output, err))
	}
	if !w.opts.InPlace {
		if err := os.MkdirAll(filepath.Dir(res.Output), 0o755); err != nil {
			return fail(fmt.Errorf("%w: %s: %w", model.ErrWrite, res.Output, err))
		}
	}
	if err := imageproc.WriteFile(res.Output, buf.Bytes()); err != nil {
		return fail(fmt.Errorf("%s: %w", res.Output, err))
	}

	// положить результат в архив если он настроен
	if w.storage != nil {
		key, err := w.archive(ctx, format, buf.Bytes())
		if err != nil {
			return fail(err)
		}
		res.ArchiveKey = key
	}

	return res, nil
}

func (w *Worker) printExif(path string, img *model.Image) error {
	if _, err := fmt.Fprintf(w.out, "== %s\n", path); err != nil {
		return err
	}
	err := exifmeta.Print(w.out, img)
	if errors.Is(err, model.ErrNoMetadata) {
		_, err = fmt.Fprintln(w.out, "(no metadata)")
	}
	return err
}

func (w *Worker) archive(ctx context.Context, format imaging.Format, data []byte) (string, error) {
	cType := model.GetCType[format]
	key := w.opts.ArchivePrefix + uuid.New().String() + model.GetImageFileExt[cType]
	if err := w.storage.Put(ctx, key, int64(len(data)), cType, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: put %q: %w", model.ErrStorage, key, err)
	}
	return key, nil
}

func (w *Worker) quality() int {
	if w.opts.JPEGQuality <= 0 {
		return 95
	}
	return w.opts.JPEGQuality
}

// Summary renders a one-line report for the CLI.
func (r Report) Summary() string {
	withMeta := 0
	for _, res := range r.Results {
		if res.Err == nil && res.HadMetadata {
			withMeta++
		}
	}
	return fmt.Sprintf("%d stripped, %d failed, %d carried metadata", r.Stripped, r.Failed, withMeta)
}
