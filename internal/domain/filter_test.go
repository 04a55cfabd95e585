package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "linecov.dev/pkg/linecov/internal/model"
)

func TestScopeFilter_EmptySettingsSelectEverything(t *testing.T) {
	filter, err := NewScopeFilter(m.ScopeFilterSettings{})
	require.NoError(t, err)

	assert.True(t, filter.IsModuleSelected("/usr/bin/app"))
	assert.True(t, filter.IsSourceSelected("/src/main.c"))
	assert.Empty(t, filter.UnmatchedSourcePatterns())
}

func TestScopeFilter_WildcardsMatchAnywhereCaseInsensitively(t *testing.T) {
	filter, err := NewScopeFilter(m.ScopeFilterSettings{
		SourceIncludes: []string{"MyProject"},
		ModuleIncludes: []string{"*/bin/app*"},
	})
	require.NoError(t, err)

	assert.True(t, filter.IsSourceSelected("/home/dev/myproject/src/a.c"))
	assert.True(t, filter.IsSourceSelected(`C:\work\MyProject\b.c`))
	assert.False(t, filter.IsSourceSelected("/home/dev/other/a.c"))

	assert.True(t, filter.IsModuleSelected("/usr/bin/app"))
	assert.True(t, filter.IsModuleSelected("/usr/bin/app-server"))
	assert.False(t, filter.IsModuleSelected("/usr/lib/libc.so.6"))
}

func TestScopeFilter_RegexPatterns(t *testing.T) {
	filter, err := NewScopeFilter(m.ScopeFilterSettings{
		SourceIncludes: []string{`re:\.c$`},
	})
	require.NoError(t, err)

	assert.True(t, filter.IsSourceSelected("/src/a.c"))
	assert.False(t, filter.IsSourceSelected("/src/a.h"))
}

func TestScopeFilter_ExclusionAlwaysWins(t *testing.T) {
	settings := m.ScopeFilterSettings{
		SourceIncludes: []string{"/src/*"},
		SourceExcludes: []string{"*/generated/*"},
		ModuleIncludes: []string{"*"},
		ModuleExcludes: []string{"*libc*"},
	}

	filter, err := NewScopeFilter(settings)
	require.NoError(t, err)

	assert.True(t, filter.IsSourceSelected("/src/main.c"))
	assert.False(t, filter.IsSourceSelected("/src/generated/parser.c"))
	assert.False(t, filter.IsModuleSelected("/lib/x86_64-linux-gnu/libc.so.6"))
	assert.True(t, filter.IsModuleSelected("/usr/bin/app"))

	// A path selected by the filter is never selected once its exclusion
	// is added, whatever the order of the patterns.
	reordered := m.ScopeFilterSettings{
		SourceIncludes: []string{"*/generated/*", "/src/*"},
		SourceExcludes: []string{"*/generated/*"},
	}

	filter, err = NewScopeFilter(reordered)
	require.NoError(t, err)
	assert.False(t, filter.IsSourceSelected("/src/generated/parser.c"))
}

func TestScopeFilter_UnmatchedSourcePatterns(t *testing.T) {
	filter, err := NewScopeFilter(m.ScopeFilterSettings{
		SourceIncludes: []string{"*/src/*", "*/lib/*", "zzz"},
	})
	require.NoError(t, err)

	// Every include matching a path counts as used, not only the first.
	assert.True(t, filter.IsSourceSelected("/project/src/lib/util.c"))

	assert.Equal(t, []string{"zzz"}, filter.UnmatchedSourcePatterns())
}

func TestScopeFilter_ExcludedPathsDoNotMarkIncludes(t *testing.T) {
	filter, err := NewScopeFilter(m.ScopeFilterSettings{
		SourceIncludes: []string{"*/vendor/*"},
		SourceExcludes: []string{"*/vendor/*"},
	})
	require.NoError(t, err)

	assert.False(t, filter.IsSourceSelected("/p/vendor/x.c"))
	assert.Equal(t, []string{"*/vendor/*"}, filter.UnmatchedSourcePatterns())
}

func TestNewScopeFilter_InvalidRegex(t *testing.T) {
	_, err := NewScopeFilter(m.ScopeFilterSettings{ModuleExcludes: []string{"re:("}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}
