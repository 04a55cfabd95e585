package domain

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/go-diff/diff"
	"linecov.dev/pkg/linecov/internal/adapter"
	m "linecov.dev/pkg/linecov/internal/model"
)

const devNull = "/dev/null"

// DiffSelector restricts the interesting lines of each source file to the
// lines added or modified by one or more unified diffs.
type DiffSelector interface {
	// Enabled is false when no diff is configured; every line is selected then.
	Enabled() bool
	Mode() m.DiffMode
	// SelectedLines returns the selected lines of path and whether path
	// appears in any diff at all.
	SelectedLines(path m.Path) (map[int]struct{}, bool)
	IsSelected(path m.Path, line int) bool
	// UnmatchedFiles returns the diff files that no source lookup matched.
	UnmatchedFiles() []string
}

type diffSelector struct {
	mode  m.DiffMode
	files map[string]map[int]struct{}
	// relative holds the keys of diff paths that stayed relative, longest
	// first. They match absolute paths ending with them.
	relative []string

	mu      sync.Mutex
	matched map[string]struct{}
}

// NewDiffSelector reads and parses every diff in settings. Unreadable or
// malformed diffs are configuration errors.
func NewDiffSelector(
	ctx context.Context,
	fsAdapter adapter.SourceFSAdapter,
	settings []m.UnifiedDiffSettings,
	substitutor Substitutor,
	mode m.DiffMode,
) (DiffSelector, error) {
	if mode == "" {
		mode = m.DiffModeExclude
	}

	if mode != m.DiffModeExclude && mode != m.DiffModeTrack {
		return nil, configurationError("diff_mode", fmt.Errorf("unknown mode %q", mode))
	}

	selector := &diffSelector{
		mode:    mode,
		files:   map[string]map[int]struct{}{},
		matched: map[string]struct{}{},
	}

	for _, setting := range settings {
		content, err := fsAdapter.ReadFile(ctx, setting.DiffPath)
		if err != nil {
			slog.Error("Failed to read unified diff", "path", setting.DiffPath, "error", err)
			return nil, configurationError("unified_diff", fmt.Errorf("read %s: %w", setting.DiffPath, err))
		}

		if err := selector.add(content, setting, substitutor); err != nil {
			return nil, configurationError("unified_diff", fmt.Errorf("parse %s: %w", setting.DiffPath, err))
		}
	}

	if len(settings) == 0 {
		selector.files = nil
	}

	for key := range selector.files {
		if !path.IsAbs(key) && !isWindowsAbs(key) {
			selector.relative = append(selector.relative, key)
		}
	}

	sort.Slice(selector.relative, func(i, j int) bool {
		a, b := selector.relative[i], selector.relative[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}

		return a < b
	})

	return selector, nil
}

func (s *diffSelector) add(content []byte, setting m.UnifiedDiffSettings, substitutor Substitutor) error {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	fileDiffs, err := diff.ParseMultiFileDiff(content)
	if err != nil {
		return err
	}

	for _, fileDiff := range fileDiffs {
		name := diffFileName(fileDiff.NewName)
		if name == "" || name == devNull {
			continue
		}

		key := string(substitutor.Rewrite(remapDiffPath(name, setting.RootFolder)))

		lines, ok := s.files[key]
		if !ok {
			lines = map[int]struct{}{}
			s.files[key] = lines
		}

		for _, hunk := range fileDiff.Hunks {
			addedLines(hunk, lines)
		}

		slog.Debug("Loaded diff file", "diff", setting.DiffPath, "file", key, "lines", len(lines))
	}

	return nil
}

// diffFileName strips the a/ and b/ prefixes git writes in front of paths.
func diffFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == devNull {
		return name
	}

	if rest, ok := strings.CutPrefix(name, "b/"); ok {
		return rest
	}

	if rest, ok := strings.CutPrefix(name, "a/"); ok {
		return rest
	}

	return name
}

func remapDiffPath(name string, root m.Path) m.Path {
	name = normalizeSeparators(name)
	if root == "" || path.IsAbs(name) || isWindowsAbs(name) {
		return m.Path(name)
	}

	return m.Path(path.Join(normalizeSeparators(string(root)), name))
}

func isWindowsAbs(p string) bool {
	return len(p) >= 3 && p[1] == ':' && p[2] == '/'
}

// addedLines records the new-side numbers of every added line of hunk.
func addedLines(hunk *diff.Hunk, lines map[int]struct{}) {
	current := int(hunk.NewStartLine)

	for _, raw := range bytes.Split(hunk.Body, []byte("\n")) {
		if len(raw) == 0 {
			continue
		}

		switch raw[0] {
		case '+':
			lines[current] = struct{}{}
			current++
		case ' ':
			current++
		case '-', '\\':
		default:
			current++
		}
	}
}

func (s *diffSelector) Enabled() bool {
	return s.files != nil
}

func (s *diffSelector) Mode() m.DiffMode {
	return s.mode
}

func (s *diffSelector) SelectedLines(p m.Path) (map[int]struct{}, bool) {
	if !s.Enabled() {
		return nil, false
	}

	key := cleanPath(normalizeSeparators(string(p)))

	lines, ok := s.files[key]
	if !ok {
		key, ok = s.matchRelative(key)
		lines = s.files[key]
	}

	if ok {
		s.mu.Lock()
		s.matched[key] = struct{}{}
		s.mu.Unlock()
	}

	return lines, ok
}

// matchRelative finds the relative diff path that p ends with on a path
// boundary.
func (s *diffSelector) matchRelative(p string) (string, bool) {
	for _, key := range s.relative {
		if strings.HasSuffix(p, "/"+key) {
			return key, true
		}
	}

	return "", false
}

func (s *diffSelector) IsSelected(p m.Path, line int) bool {
	if !s.Enabled() {
		return true
	}

	lines, ok := s.SelectedLines(p)
	if !ok {
		return false
	}

	_, selected := lines[line]

	return selected
}

func (s *diffSelector) UnmatchedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unmatched []string

	for file := range s.files {
		if _, ok := s.matched[file]; !ok {
			unmatched = append(unmatched, file)
		}
	}

	sort.Strings(unmatched)

	return unmatched
}
