package model

import "strings"

// Path represents a file system path.
type Path string

// StartInfo describes the process the engine should launch or attach to.
type StartInfo struct {
	Path       Path
	Args       []string
	WorkingDir Path
	Env        []string
	// AttachPID attaches to an already running process when non-zero.
	AttachPID int
}

// IsAttach reports whether the run attaches instead of launching.
func (s *StartInfo) IsAttach() bool {
	return s != nil && s.AttachPID > 0
}

// SubstitutePath rewrites a debug-information path prefix to a local one.
type SubstitutePath struct {
	Prefix      Path
	Replacement Path
}

// ParseSubstitutePath parses "prefix?replacement".
func ParseSubstitutePath(value string) (SubstitutePath, bool) {
	prefix, replacement, ok := strings.Cut(value, "?")
	if !ok || prefix == "" {
		return SubstitutePath{}, false
	}

	return SubstitutePath{Prefix: Path(prefix), Replacement: Path(replacement)}, true
}

// ScopeFilterSettings holds include and exclude patterns for module and
// source paths.
type ScopeFilterSettings struct {
	ModuleIncludes []string
	ModuleExcludes []string
	SourceIncludes []string
	SourceExcludes []string
}

// DiffMode controls what happens to lines outside the configured diffs.
type DiffMode string

const (
	// DiffModeExclude drops lines outside the diff; they are not instrumented.
	DiffModeExclude DiffMode = "exclude"
	// DiffModeTrack keeps lines outside the diff with Selected set to false.
	DiffModeTrack DiffMode = "track"
)

// UnifiedDiffSettings identifies one unified diff document.
type UnifiedDiffSettings struct {
	DiffPath Path
	// RootFolder is prepended to relative paths recorded in the diff.
	RootFolder Path
}

// ParseUnifiedDiffSettings parses "diffPath[?rootFolder]".
func ParseUnifiedDiffSettings(value string) UnifiedDiffSettings {
	diffPath, root, _ := strings.Cut(value, "?")

	return UnifiedDiffSettings{DiffPath: Path(diffPath), RootFolder: Path(root)}
}
