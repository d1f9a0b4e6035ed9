package filter

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// Options captures the path filtering configuration.
type Options struct {
	Include []string
	Exclude []string
}

type pattern struct {
	source string
	glob   glob.Glob
}

// Filter holds compiled glob patterns for paths found while walking
// directories. Patterns use '/' as separator on every platform.
type Filter struct {
	include []pattern
	exclude []pattern

	mu   sync.Mutex
	hits map[string]int
}

// Stats reports how often each pattern matched.
type Stats struct {
	IncludePatterns []string
	ExcludePatterns []string
	Hits            map[string]int
}

// New creates a new Filter from the provided options.
func New(opts Options) (*Filter, error) {
	include, err := compilePatterns(opts.Include)
	if err != nil {
		return nil, fmt.Errorf("compile include pattern: %w", err)
	}
	exclude, err := compilePatterns(opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("compile exclude pattern: %w", err)
	}

	if len(include) > 0 && len(exclude) > 0 {
		return nil, fmt.Errorf("include and exclude filters are mutually exclusive")
	}

	return &Filter{
		include: include,
		exclude: exclude,
		hits:    make(map[string]int),
	}, nil
}

// Allows returns true if path passes the filter criteria.
func (f *Filter) Allows(path string) bool {
	path = filepath.ToSlash(path)

	if len(f.include) > 0 {
		return f.matchAny(f.include, path)
	}
	if len(f.exclude) > 0 {
		return !f.matchAny(f.exclude, path)
	}
	return true
}

// Stats returns a copy of the per-pattern hit counters.
func (f *Filter) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()

	hits := make(map[string]int, len(f.hits))
	for k, v := range f.hits {
		hits[k] = v
	}
	return Stats{
		IncludePatterns: sources(f.include),
		ExcludePatterns: sources(f.exclude),
		Hits:            hits,
	}
}

func (f *Filter) matchAny(patterns []pattern, path string) bool {
	for _, p := range patterns {
		if p.glob.Match(path) {
			f.mu.Lock()
			f.hits[p.source]++
			f.mu.Unlock()
			return true
		}
	}
	return false
}

func compilePatterns(patterns []string) ([]pattern, error) {
	compiled := make([]pattern, 0, len(patterns))
	for _, source := range patterns {
		source = strings.TrimSpace(source)
		if source == "" {
			continue
		}
		g, err := glob.Compile(source, '/')
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", source, err)
		}
		compiled = append(compiled, pattern{source: source, glob: g})
	}
	return compiled, nil
}

func sources(patterns []pattern) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.source)
	}
	return out
}
