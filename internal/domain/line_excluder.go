package domain

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"linecov.dev/pkg/linecov/internal/adapter"
	m "linecov.dev/pkg/linecov/internal/model"
)

// LineExcluder drops lines whose source text matches one of the configured
// regular expressions, e.g. "// LCOV_EXCL_LINE".
type LineExcluder interface {
	IsExcluded(ctx context.Context, path m.Path, line int) bool
}

type lineExcluder struct {
	fsAdapter adapter.SourceFSAdapter
	regexes   []*regexp.Regexp
	// excluded caches the excluded line numbers of each file read so far.
	excluded map[m.Path]map[int]struct{}
}

// NewLineExcluder compiles the expressions. An empty list excludes nothing.
func NewLineExcluder(fsAdapter adapter.SourceFSAdapter, expressions []string) (LineExcluder, error) {
	regexes := make([]*regexp.Regexp, 0, len(expressions))

	for _, expr := range expressions {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, configurationError("excluded_line_regex", fmt.Errorf("invalid expression %q: %w", expr, err))
		}

		regexes = append(regexes, re)
	}

	return &lineExcluder{
		fsAdapter: fsAdapter,
		regexes:   regexes,
		excluded:  map[m.Path]map[int]struct{}{},
	}, nil
}

func (e *lineExcluder) IsExcluded(ctx context.Context, path m.Path, line int) bool {
	if len(e.regexes) == 0 {
		return false
	}

	lines, ok := e.excluded[path]
	if !ok {
		lines = e.load(ctx, path)
		e.excluded[path] = lines
	}

	_, excluded := lines[line]

	return excluded
}

func (e *lineExcluder) load(ctx context.Context, path m.Path) map[int]struct{} {
	lines := map[int]struct{}{}

	content, err := e.fsAdapter.ReadFile(ctx, path)
	if err != nil {
		slog.Debug("Source not readable, no line excluded", "path", path, "error", err)
		return lines
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	number := 0
	for scanner.Scan() {
		number++

		text := bytes.TrimRight(scanner.Bytes(), "\r")
		for _, re := range e.regexes {
			if re.Match(text) {
				lines[number] = struct{}{}
				break
			}
		}
	}

	return lines
}
