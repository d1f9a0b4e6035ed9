// Package console prints the human-readable status lines of a conversion run.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Printer receives one call per advisory, written file or failure.
type Printer interface {
	Written(path string)
	Skipping(path, reason string)
	Failed(path string, err error)
}

// Terminal prints status lines through pterm.
type Terminal struct {
	success *pterm.PrefixPrinter
	warning *pterm.PrefixPrinter
	failure *pterm.PrefixPrinter
}

// New returns a Terminal writing to w. Colour is only used when w is a
// terminal and color is true.
func New(w io.Writer, color bool) *Terminal {
	if !color || !isTerminal(w) {
		pterm.DisableColor()
	}
	return &Terminal{
		success: pterm.Success.WithWriter(w),
		warning: pterm.Warning.WithWriter(w),
		failure: pterm.Error.WithWriter(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *Terminal) Written(path string) {
	t.success.Printfln("Written `%s`", path)
}

func (t *Terminal) Skipping(path, reason string) {
	t.warning.Printfln("Skipping `%s`; %s", path, reason)
}

func (t *Terminal) Failed(path string, err error) {
	t.failure.Printfln("Failed `%s`: %v", path, err)
}

// Recorder keeps status lines in memory.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *Recorder) Written(path string) {
	r.add(fmt.Sprintf("written %s", path))
}

func (r *Recorder) Skipping(path, reason string) {
	r.add(fmt.Sprintf("skipping %s: %s", path, reason))
}

func (r *Recorder) Failed(path string, err error) {
	r.add(fmt.Sprintf("failed %s: %v", path, err))
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *Recorder) add(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}
