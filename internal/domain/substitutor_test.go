package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "linecov.dev/pkg/linecov/internal/model"
)

func TestSubstitutor_Rewrite(t *testing.T) {
	substitutor, err := NewSubstitutor([]m.SubstitutePath{
		{Prefix: "/build/src", Replacement: "/home/dev/project"},
		{Prefix: `C:\ci\work`, Replacement: "/mnt/work"},
		{Prefix: "/build", Replacement: "/opt/build"},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  m.Path
		want m.Path
	}{
		{"first rule wins", "/build/src/main.c", "/home/dev/project/main.c"},
		{"later rule", "/build/gen/parser.c", "/opt/build/gen/parser.c"},
		{"backslashes normalized", `C:\ci\work\lib\util.c`, "/mnt/work/lib/util.c"},
		{"prefix on path boundary only", "/buildtools/x.c", "/buildtools/x.c"},
		{"no rule cleans path", "/usr/include/../include/stdio.h", "/usr/include/stdio.h"},
		{"trailing newline dropped", "/build/src/a.c\r\n", "/home/dev/project/a.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, substitutor.Rewrite(tt.raw))
		})
	}
}

func TestSubstitutor_RewriteIsIdempotent(t *testing.T) {
	substitutor, err := NewSubstitutor([]m.SubstitutePath{
		{Prefix: "/build/src", Replacement: "/home/dev/project"},
		{Prefix: "/tmp", Replacement: "/var/tmp"},
	})
	require.NoError(t, err)

	for _, raw := range []m.Path{
		"/build/src/main.c",
		"/build/src/../src/a/b.c",
		"/tmp/x.c",
		"relative/file.c",
		`\build\src\win.c`,
		"",
	} {
		once := substitutor.Rewrite(raw)
		assert.Equal(t, once, substitutor.Rewrite(once), "path %q", raw)
	}
}

func TestNewSubstitutor_RejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []m.SubstitutePath
	}{
		{"empty prefix", []m.SubstitutePath{{Prefix: "", Replacement: "/x"}}},
		{"replacement under prefix", []m.SubstitutePath{{Prefix: "/src", Replacement: "/src/mirror"}}},
		{"prefix under replacement", []m.SubstitutePath{{Prefix: "/a/b", Replacement: "/a"}}},
		{
			"replacement under a later prefix",
			[]m.SubstitutePath{{Prefix: "/build", Replacement: "/home/src"}, {Prefix: "/home", Replacement: "/mnt"}},
		},
		{
			"later prefix under replacement",
			[]m.SubstitutePath{{Prefix: "/build", Replacement: "/home"}, {Prefix: "/home/src", Replacement: "/mnt"}},
		},
		{
			"replacement under an earlier prefix",
			[]m.SubstitutePath{{Prefix: "/opt", Replacement: "/x"}, {Prefix: "/ci", Replacement: "/opt/ci"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSubstitutor(tt.rules)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))

			var configErr *ConfigurationError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, "substitute_source_path", configErr.Setting)
		})
	}
}

func TestSubstitutor_ChainedRulesAreIdempotent(t *testing.T) {
	substitutor, err := NewSubstitutor([]m.SubstitutePath{
		{Prefix: "/build/src", Replacement: "/home/dev/project"},
		{Prefix: "/build", Replacement: "/opt/build"},
		{Prefix: `D:\agent`, Replacement: "/srv/agent"},
		{Prefix: "/usr/include", Replacement: "/usr/include"},
	})
	require.NoError(t, err)

	for _, raw := range []m.Path{
		"/build/src/main.c",
		"/build/gen/parser.c",
		`D:\agent\lib\util.c`,
		"/usr/include/stdio.h",
		"/home/dev/project/main.c",
	} {
		once := substitutor.Rewrite(raw)
		assert.Equal(t, once, substitutor.Rewrite(once), "path %q", raw)
	}
}

func TestNewSubstitutor_IdentityRuleIsAccepted(t *testing.T) {
	substitutor, err := NewSubstitutor([]m.SubstitutePath{{Prefix: "/src", Replacement: "/src"}})
	require.NoError(t, err)
	assert.Equal(t, m.Path("/src/a.c"), substitutor.Rewrite("/src/a.c"))
}
