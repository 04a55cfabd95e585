package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarnings_AddKeepsOrderAndDeduplicates(t *testing.T) {
	warnings := NewWarnings()

	warnings.Add("module %s has no debug info", "/lib/a.so")
	warnings.Add("child %d released", 42)
	warnings.Add("module %s has no debug info", "/lib/a.so")
	warnings.AddError(nil)

	assert.Equal(t, []string{
		"module /lib/a.so has no debug info",
		"child 42 released",
	}, warnings.Messages())
	assert.Equal(t, 2, warnings.Len())
}

func TestWarnings_NilCollectorIsSafe(t *testing.T) {
	var warnings *Warnings

	warnings.Add("ignored")

	assert.Nil(t, warnings.Messages())
	assert.Zero(t, warnings.Len())
}

func TestWarnings_AddAggregated(t *testing.T) {
	paths := []string{"/a.c", "/b.c", "/c.c"}

	t.Run("truncated", func(t *testing.T) {
		warnings := NewWarnings()
		warnings.AddAggregated("Sources not found:", paths, 2)

		require.Equal(t, 1, warnings.Len())
		assert.Equal(t,
			"Sources not found:\n\t/a.c\n\t/b.c\n\t... and 1 more (use --verbose to list all)",
			warnings.Messages()[0])
	})

	t.Run("unbounded", func(t *testing.T) {
		warnings := NewWarnings()
		warnings.AddAggregated("Sources not found:", paths, UnboundedWarningPaths)

		require.Equal(t, 1, warnings.Len())
		assert.Equal(t, "Sources not found:\n\t/a.c\n\t/b.c\n\t/c.c", warnings.Messages()[0])
	})

	t.Run("no paths", func(t *testing.T) {
		warnings := NewWarnings()
		warnings.AddAggregated("Sources not found:", nil, 2)

		assert.Zero(t, warnings.Len())
	})
}
