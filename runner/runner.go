package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhcgn/eml-to-html/console"
	"github.com/dhcgn/eml-to-html/convert"
	"github.com/dhcgn/eml-to-html/filter"
	"github.com/dhcgn/eml-to-html/stats"
)

// FileConverter converts one file and returns the written output path.
type FileConverter interface {
	ConvertFile(path string) (string, error)
}

type Options struct {
	Recursive bool
	// KeepGoing logs a failed file and moves on instead of aborting the run.
	KeepGoing bool
	Filter    *filter.Filter
}

type Runner struct {
	opts      Options
	converter FileConverter
	console   console.Printer
	logger    *slog.Logger
	reporter  *stats.Reporter

	errs []error
}

func New(opts Options, converter FileConverter, printer console.Printer, logger *slog.Logger) (*Runner, error) {
	if converter == nil {
		return nil, fmt.Errorf("converter must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		opts:      opts,
		converter: converter,
		console:   printer,
		logger:    logger,
		reporter:  stats.NewReporter(logger),
	}
	if c, ok := converter.(interface{ SetRecorder(convert.EventRecorder) }); ok {
		c.SetRecorder(r.reporter)
	}
	return r, nil
}

// Run converts every file named by paths. Directories are only entered in
// recursive mode; anything else is skipped silently. Without KeepGoing the
// first failure ends the run.
func (r *Runner) Run(paths []string) error {
	since := time.Now()
	r.reporter.Reset()
	r.errs = nil
	err := r.run(paths)
	summary := r.reporter.Report()

	if err != nil {
		r.logger.Error("batch failed", "duration", time.Since(since), "err", err)
		return err
	}
	if summary.Failed > 0 {
		err = errors.Join(r.errs...)
		r.logger.Error("batch finished with failures", "failed", summary.Failed, "duration", time.Since(since))
		return err
	}

	r.logger.Info("batch completed", "duration", time.Since(since))
	return nil
}

// Summary returns the counters collected so far.
func (r *Runner) Summary() stats.Summary {
	return r.reporter.Snapshot()
}

func (r *Runner) run(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		switch {
		case err == nil && info.Mode().IsRegular():
			if err := r.convert(path); err != nil {
				return err
			}
		case err == nil && info.IsDir() && r.opts.Recursive:
			if err := r.walk(path); err != nil {
				return err
			}
		default:
			r.logger.Debug("skipping path", "path", path, "recursive", r.opts.Recursive)
		}
	}
	return nil
}

func (r *Runner) walk(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root || d == nil || !d.IsDir() {
				return fmt.Errorf("walk %s: %w", path, err)
			}
			r.logger.Warn("skipping unreadable directory", "path", path, "err", err)
			r.reporter.Record(stats.Event{Stage: stats.StageConvert, Type: stats.EventTypeUnreadable, Path: path, Err: err})
			return fs.SkipDir
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), convert.InputExt) {
			return nil
		}
		if !r.allows(root, path) {
			r.logger.Debug("filtered", "path", path)
			r.reporter.Record(stats.Event{Stage: stats.StageConvert, Type: stats.EventTypeFiltered, Path: path})
			return nil
		}
		return r.convert(path)
	})
}

func (r *Runner) allows(root, path string) bool {
	if r.opts.Filter == nil {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return r.opts.Filter.Allows(rel)
}

func (r *Runner) convert(path string) error {
	out, err := r.converter.ConvertFile(path)
	if err != nil {
		r.reporter.Record(stats.Event{Stage: stats.StageConvert, Type: stats.EventTypeFailed, Path: path, Err: err})
		if !r.opts.KeepGoing {
			return err
		}
		r.logger.Error("conversion failed", "path", path, "err", err)
		if r.console != nil {
			r.console.Failed(path, err)
		}
		r.errs = append(r.errs, err)
		return nil
	}
	r.reporter.Record(stats.Event{Stage: stats.StageConvert, Type: stats.EventTypeConverted, Path: path, Detail: out})
	return nil
}
