package config

// CLI flags override values loaded from the environment; the single optional
// positional argument is the search directory.

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/UnendingLoop/ExifStripper/internal/model"
)

// extensionsValue lets -ext accept a comma separated list.
type extensionsValue struct {
	dst *model.ExtensionFilter
}

func (v *extensionsValue) String() string {
	if v.dst == nil {
		return ""
	}
	return fmt.Sprint([]string(*v.dst))
}

func (v *extensionsValue) Set(s string) error {
	*v.dst = model.ParseExtensions(s)
	return nil
}

// ErrHelp is returned when -h/-help was requested and usage has been printed.
var ErrHelp = flag.ErrHelp

// ParseFlags parses args (without the program name) into cfg.
func ParseFlags(cfg *Config, args []string, output io.Writer) error {
	fs := flag.NewFlagSet("stripper", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: stripper [flags] [directory]")
		fmt.Fprintln(output, "Strips EXIF metadata from images found in directory (default: current directory).")
		fs.PrintDefaults()
	}

	fs.Var(&extensionsValue{&cfg.Extensions}, "ext", "Comma separated extensions to match (default jpg,png)")
	fs.BoolVar(&cfg.Recursive, "r", cfg.Recursive, "Search subdirectories too")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory for stripped copies")
	fs.BoolVar(&cfg.InPlace, "inplace", cfg.InPlace, "Overwrite the original files")
	fs.BoolVar(&cfg.PrintExif, "print", cfg.PrintExif, "Print EXIF tags of every image before stripping")
	fs.BoolVar(&cfg.ContinueOnError, "keep-going", cfg.ContinueOnError, "Continue with the next image after a failure")
	fs.IntVar(&cfg.JPEGQuality, "quality", cfg.JPEGQuality, "JPEG quality for re-encoded images (1-100)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug | info | warn | error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.SearchDir = fs.Arg(0)
	default:
		return errors.New("at most one directory argument is accepted")
	}
	return nil
}
