// Package discovery finds image files inside a directory by extension.
package discovery

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/UnendingLoop/ExifStripper/internal/model"
	"github.com/UnendingLoop/ExifStripper/internal/mwlogger"
)

// ResolvePath expands a leading ~, makes p absolute and evaluates symlinks.
// A path that does not exist yet is returned in absolute form.
func ResolvePath(p string) (string, error) {
	if p == "" {
		p = "."
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, p[1:])
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abs, nil
		}
		return "", err
	}
	return resolved, nil
}

// FindImages returns the files directly inside startDir matching *.<ext>, grouped
// by extension in filter order, each group in lexical order. A nil filter means
// model.DefaultExtensions.
func FindImages(ctx context.Context, startDir string, exts model.ExtensionFilter) ([]string, error) {
	dir, err := ResolvePath(startDir)
	if err != nil {
		return nil, err
	}
	logger := mwlogger.LoggerFromContext(ctx)
	logger.Info().Str("dir", dir).Msg("Searching for images")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	paths := []string{}
	for _, ext := range patterns(exts) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, name := range names {
			if matches(name, ext) {
				paths = append(paths, filepath.Join(dir, name))
			}
		}
	}
	return paths, nil
}

// FindImagesTree is FindImages over startDir and all of its subdirectories.
// Hidden directories and the skip directories (e.g. the output directory) are not walked.
func FindImagesTree(ctx context.Context, startDir string, exts model.ExtensionFilter, skip ...string) ([]string, error) {
	dir, err := ResolvePath(startDir)
	if err != nil {
		return nil, err
	}
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		resolved, err := ResolvePath(s)
		if err != nil {
			return nil, err
		}
		skipped[resolved] = true
	}
	logger := mwlogger.LoggerFromContext(ctx)
	logger.Info().Str("dir", dir).Bool("recursive", true).Msg("Searching for images")

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || skipped[path]) {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	paths := []string{}
	for _, ext := range patterns(exts) {
		for _, f := range files {
			if matches(filepath.Base(f), ext) {
				paths = append(paths, f)
			}
		}
	}
	return paths, nil
}

// patterns normalizes the filter and drops entries that cannot form a flat *.<ext> pattern.
func patterns(exts model.ExtensionFilter) []string {
	if exts == nil {
		exts = model.DefaultExtensions
	}
	res := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = model.NormalizeExtension(ext)
		if ext == "" || strings.ContainsAny(ext, `*?[]\/`) || strings.ContainsRune(ext, filepath.Separator) {
			continue
		}
		res = append(res, ext)
	}
	return res
}

// matches mirrors a shell glob of *.<ext>: the leading * does not match a dot-file.
func matches(name, ext string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ok, err := filepath.Match("*."+ext, name)
	return err == nil && ok
}
