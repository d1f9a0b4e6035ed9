package mbox

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mboxlib "github.com/emersion/go-mbox"

	"github.com/dhcgn/eml-to-html/console"
	"github.com/dhcgn/eml-to-html/convert"
	"github.com/dhcgn/eml-to-html/stats"
)

var ErrPathEmpty = errors.New("mbox path is empty")

type Options struct {
	Path string
	// OutputDir defaults to the directory of Path.
	OutputDir string
	KeepGoing bool
}

// MessageConverter turns one raw message into its HTML text.
type MessageConverter interface {
	ConvertReader(r io.Reader) (string, error)
}

// Splitter writes one HTML file per message of an mbox archive.
type Splitter struct {
	opts      Options
	converter MessageConverter
	console   console.Printer
	logger    *slog.Logger
	reporter  *stats.Reporter
}

func NewSplitter(opts Options, converter MessageConverter, printer console.Printer, logger *slog.Logger) (*Splitter, error) {
	opts.Path = strings.TrimSpace(opts.Path)
	if opts.Path == "" {
		return nil, ErrPathEmpty
	}
	if converter == nil {
		return nil, fmt.Errorf("converter must not be nil")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Dir(opts.Path)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Splitter{
		opts:      opts,
		converter: converter,
		console:   printer,
		logger:    logger,
		reporter:  stats.NewReporter(logger),
	}, nil
}

// Run opens the archive and converts every message in it.
func (s *Splitter) Run() ([]string, error) {
	file, err := os.Open(s.opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	written, err := s.Split(file)
	s.reporter.Report()
	return written, err
}

// Split converts every message read from r and returns the written paths in
// archive order.
func (s *Splitter) Split(r io.Reader) ([]string, error) {
	if err := os.MkdirAll(s.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	reader := mboxlib.NewReader(r)
	var (
		written []string
		errs    []error
	)
	for idx := 1; ; idx++ {
		msgReader, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("message %d: %w", idx, err)
		}

		out := s.OutputPath(idx)
		if err := s.convert(msgReader, out); err != nil {
			err = fmt.Errorf("message %d: %w", idx, err)
			s.reporter.Record(stats.Event{Stage: stats.StageMbox, Type: stats.EventTypeFailed, Path: out, Err: err})
			if !s.opts.KeepGoing {
				return written, err
			}
			s.logger.Error("mbox message failed", "path", s.opts.Path, "index", idx, "err", err)
			if s.console != nil {
				s.console.Failed(fmt.Sprintf("%s#%d", s.opts.Path, idx), err)
			}
			errs = append(errs, err)
			continue
		}

		s.reporter.Record(stats.Event{Stage: stats.StageMbox, Type: stats.EventTypeConverted, Path: out})
		written = append(written, out)
		if s.console != nil {
			s.console.Written(filepath.Base(out))
		}
	}

	return written, errors.Join(errs...)
}

// OutputPath names the HTML file of the idx-th (1-based) message.
func (s *Splitter) OutputPath(idx int) string {
	base := filepath.Base(s.opts.Path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(s.opts.OutputDir, fmt.Sprintf("%s-%04d%s", base, idx, convert.OutputExt))
}

// Summary returns the counters collected so far.
func (s *Splitter) Summary() stats.Summary {
	return s.reporter.Snapshot()
}

func (s *Splitter) convert(msg io.Reader, out string) error {
	html, err := s.converter.ConvertReader(msg)
	if err != nil {
		return err
	}
	if err := convert.WriteHTML(out, html); err != nil {
		return err
	}
	s.logger.Debug("converted mbox message", "path", s.opts.Path, "output", out, "bytes", len(html))
	return nil
}

// CountMessages counts the total number of messages in an mbox file.
func CountMessages(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)
	count := 0
	for {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return 0, err
		}

		if _, err := io.Copy(io.Discard, msgReader); err != nil {
			return 0, fmt.Errorf("message %d: %w", count+1, err)
		}
		count++
	}
}
