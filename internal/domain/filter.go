package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	m "linecov.dev/pkg/linecov/internal/model"
)

// regexPatternPrefix marks a pattern as a regular expression instead of a
// wildcard.
const regexPatternPrefix = "re:"

// ScopeFilter decides which modules and source files take part in coverage.
//
// A path is selected when the include list is empty or one include pattern
// matches it, and no exclude pattern matches it. Exclusion always wins, so
// the order of the patterns never changes the result.
type ScopeFilter interface {
	IsModuleSelected(path m.Path) bool
	IsSourceSelected(path m.Path) bool
	// UnmatchedSourcePatterns returns the source include patterns that never
	// selected a file.
	UnmatchedSourcePatterns() []string
}

type pattern struct {
	text string
	re   *regexp.Regexp
}

type patternSet struct {
	includes []pattern
	excludes []pattern
}

type scopeFilter struct {
	modules patternSet
	sources patternSet

	mu      sync.Mutex
	matched map[string]struct{}
}

// NewScopeFilter compiles the settings. Invalid patterns are configuration
// errors.
func NewScopeFilter(settings m.ScopeFilterSettings) (ScopeFilter, error) {
	modules, err := newPatternSet("modules", settings.ModuleIncludes, settings.ModuleExcludes)
	if err != nil {
		return nil, err
	}

	sources, err := newPatternSet("sources", settings.SourceIncludes, settings.SourceExcludes)
	if err != nil {
		return nil, err
	}

	return &scopeFilter{modules: modules, sources: sources, matched: map[string]struct{}{}}, nil
}

func newPatternSet(setting string, includes, excludes []string) (patternSet, error) {
	var (
		set patternSet
		err error
	)

	if set.includes, err = compilePatterns(setting, includes); err != nil {
		return set, err
	}

	if set.excludes, err = compilePatterns("excluded_"+setting, excludes); err != nil {
		return set, err
	}

	return set, nil
}

func compilePatterns(setting string, texts []string) ([]pattern, error) {
	patterns := make([]pattern, 0, len(texts))

	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}

		re, err := compilePattern(text)
		if err != nil {
			return nil, configurationError(setting, fmt.Errorf("invalid pattern %q: %w", text, err))
		}

		patterns = append(patterns, pattern{text: text, re: re})
	}

	return patterns, nil
}

// compilePattern turns a wildcard into a case-insensitive regular
// expression that matches anywhere in the path, as "--sources MyProject"
// selects every file under a MyProject directory. "re:" patterns are used
// as they are.
func compilePattern(text string) (*regexp.Regexp, error) {
	if expr, ok := strings.CutPrefix(text, regexPatternPrefix); ok {
		return regexp.Compile(expr)
	}

	var b strings.Builder

	b.WriteString("(?i)")

	for _, r := range normalizeSeparators(text) {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	return regexp.Compile(b.String())
}

func (f *scopeFilter) IsModuleSelected(path m.Path) bool {
	return f.modules.selects(normalizeSeparators(string(path)))
}

func (f *scopeFilter) IsSourceSelected(path m.Path) bool {
	p := normalizeSeparators(string(path))
	if !f.sources.selects(p) {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, include := range f.sources.includes {
		if _, ok := f.matched[include.text]; !ok && include.re.MatchString(p) {
			f.matched[include.text] = struct{}{}
		}
	}

	return true
}

func (f *scopeFilter) UnmatchedSourcePatterns() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var unmatched []string

	for _, include := range f.sources.includes {
		if _, ok := f.matched[include.text]; !ok {
			unmatched = append(unmatched, include.text)
		}
	}

	sort.Strings(unmatched)

	return unmatched
}

func (s patternSet) selects(p string) bool {
	for _, exclude := range s.excludes {
		if exclude.re.MatchString(p) {
			return false
		}
	}

	if len(s.includes) == 0 {
		return true
	}

	for _, include := range s.includes {
		if include.re.MatchString(p) {
			return true
		}
	}

	return false
}
