package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"linecov.dev/pkg/linecov/internal/domain"
	domainmocks "linecov.dev/pkg/linecov/internal/domain/mocks"
	m "linecov.dev/pkg/linecov/internal/model"
)

func TestListCmd_PassesExecutableAndFilters(t *testing.T) {
	resetConfig(t)

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("List", mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
		return args.Start.Path == m.Path("/usr/bin/app") &&
			assert.ObjectsAreEqual([]string{"*.c"}, args.Filters.SourceIncludes) &&
			assert.ObjectsAreEqual([]string{"LCOV_EXCL_LINE"}, args.ExcludedLineRegexes) &&
			args.OptimizedBuild
	})).Return(nil)

	cmd.SetArgs([]string{
		"list", "/usr/bin/app",
		"--sources", "*.c",
		"--excluded_line_regex", "LCOV_EXCL_LINE",
		"--optimized_build",
	})
	err := cmd.Execute()
	require.NoError(t, err)
	mockWorkflow.AssertExpectations(t)
}

func TestListCmd_RejectsRunFlags(t *testing.T) {
	resetConfig(t)

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	cmd.SetArgs([]string{"list", "/usr/bin/app", "--timeout", "5s"})
	require.Error(t, cmd.Execute())
	mockWorkflow.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
