package domain

import (
	"fmt"
	"path"
	"strings"

	m "linecov.dev/pkg/linecov/internal/model"
)

// Substitutor rewrites source paths recorded in debug information into
// paths valid on this machine.
type Substitutor interface {
	Rewrite(raw m.Path) m.Path
}

type substitutor struct {
	rules []m.SubstitutePath
}

// NewSubstitutor validates rules and returns a Substitutor applying them in
// order, first match wins. A rewritten path never matches a rule again, so
// rules whose replacement overlaps a prefix are rejected.
func NewSubstitutor(rules []m.SubstitutePath) (Substitutor, error) {
	normalized := make([]m.SubstitutePath, 0, len(rules))

	for _, rule := range rules {
		prefix := normalizeSeparators(string(rule.Prefix))
		replacement := normalizeSeparators(string(rule.Replacement))

		if prefix == "" {
			return nil, configurationError("substitute_source_path", fmt.Errorf("empty prefix"))
		}

		normalized = append(normalized, m.SubstitutePath{Prefix: m.Path(prefix), Replacement: m.Path(replacement)})
	}

	for _, rule := range normalized {
		if rule.Prefix == rule.Replacement {
			continue
		}

		for _, other := range normalized {
			if other.Prefix == other.Replacement {
				continue
			}

			if overlaps(string(rule.Replacement), string(other.Prefix)) {
				return nil, configurationError("substitute_source_path",
					fmt.Errorf("replacement %q of %q overlaps prefix %q", rule.Replacement, rule.Prefix, other.Prefix))
			}
		}
	}

	return &substitutor{rules: normalized}, nil
}

// overlaps reports whether a path under replacement can also lie under
// prefix.
func overlaps(replacement, prefix string) bool {
	if replacement == "" {
		return false
	}

	return hasPathPrefix(replacement, prefix) || hasPathPrefix(prefix, replacement)
}

func (s *substitutor) Rewrite(raw m.Path) m.Path {
	p := normalizeSeparators(string(raw))

	for _, rule := range s.rules {
		prefix := string(rule.Prefix)
		if !hasPathPrefix(p, prefix) {
			continue
		}

		return m.Path(cleanPath(string(rule.Replacement) + p[len(prefix):]))
	}

	return m.Path(cleanPath(p))
}

func normalizeSeparators(p string) string {
	return strings.ReplaceAll(strings.TrimRight(p, "\r\n"), "\\", "/")
}

func cleanPath(p string) string {
	if p == "" {
		return p
	}

	return path.Clean(p)
}

// hasPathPrefix reports whether p starts with prefix on a path boundary.
func hasPathPrefix(p, prefix string) bool {
	if !strings.HasPrefix(p, prefix) {
		return false
	}

	if len(p) == len(prefix) || strings.HasSuffix(prefix, "/") {
		return true
	}

	return p[len(prefix)] == '/'
}
