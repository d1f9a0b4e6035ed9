// Package convert writes the HTML body of one .eml file next to it.
package convert

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhcgn/eml-to-html/console"
	"github.com/dhcgn/eml-to-html/extract"
	"github.com/dhcgn/eml-to-html/parser"
	"github.com/dhcgn/eml-to-html/stats"
)

const (
	InputExt  = ".eml"
	OutputExt = ".html"
)

const (
	ReasonNotAFile = "is not a file"
	ReasonWrongExt = "not an " + InputExt + " file"
)

// EventRecorder receives one event per file that drew an advisory.
type EventRecorder interface {
	Record(evt stats.Event)
}

// Converter turns message files into HTML files.
type Converter struct {
	parser   parser.Parser
	console  console.Printer
	logger   *slog.Logger
	recorder EventRecorder
}

// New returns a Converter. A nil parser selects parser.New().
func New(p parser.Parser, printer console.Printer, logger *slog.Logger) *Converter {
	if p == nil {
		p = parser.New()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{parser: p, console: printer, logger: logger}
}

// SetRecorder routes advisory events to rec.
func (c *Converter) SetRecorder(rec EventRecorder) {
	c.recorder = rec
}

// Suffix returns the extension of the last path element. A leading dot does
// not start an extension and a trailing dot is not one, so ".eml" and "a."
// have none.
func Suffix(path string) string {
	name := filepath.Base(path)
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// OutputPath replaces the extension of path with OutputExt, or appends it
// when there is none.
func OutputPath(path string) string {
	return strings.TrimSuffix(path, Suffix(path)) + OutputExt
}

// Warnings returns the advisory reasons that apply to path. They never stop
// a conversion.
func Warnings(path string) []string {
	var reasons []string
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		reasons = append(reasons, ReasonNotAFile)
	}
	if Suffix(path) != InputExt {
		reasons = append(reasons, ReasonWrongExt)
	}
	return reasons
}

// ConvertFile converts path and returns the written output path. Advisory
// warnings are printed first; conversion is attempted regardless.
func (c *Converter) ConvertFile(path string) (string, error) {
	warnings := Warnings(path)
	for _, reason := range warnings {
		c.logger.Warn("advisory", "path", path, "reason", reason)
		if c.console != nil {
			c.console.Skipping(path, reason)
		}
	}
	if len(warnings) > 0 && c.recorder != nil {
		c.recorder.Record(stats.Event{Stage: stats.StageConvert, Type: stats.EventTypeWarned, Path: path, Detail: strings.Join(warnings, "; ")})
	}

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	html, err := c.ConvertReader(in)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", path, err)
	}

	out := OutputPath(path)
	if err := WriteHTML(out, html); err != nil {
		return "", err
	}

	c.logger.Debug("converted", "path", path, "output", out, "bytes", len(html), "warnings", len(warnings))
	if c.console != nil {
		c.console.Written(filepath.Base(out))
	}
	return out, nil
}

// ConvertReader parses a message from r and returns its HTML text.
func (c *Converter) ConvertReader(r io.Reader) (string, error) {
	node, err := c.parser.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}
	html, err := extract.HTML(node)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	return html, nil
}

// WriteHTML creates or truncates path and writes html verbatim.
func WriteHTML(path, html string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := io.WriteString(file, html); err != nil {
		file.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
