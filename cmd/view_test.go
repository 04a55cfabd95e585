package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"linecov.dev/pkg/linecov/internal/domain"
	domainmocks "linecov.dev/pkg/linecov/internal/domain/mocks"
)

func TestViewCmd_PassesSnapshotPath(t *testing.T) {
	resetConfig(t)

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newViewCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("View", mock.Anything, domain.ViewArgs{Path: "run.cov"}).Return(nil)

	cmd.SetArgs([]string{"view", "run.cov"})
	err := cmd.Execute()
	require.NoError(t, err)
	mockWorkflow.AssertExpectations(t)
}

func TestViewCmd_AggregateByFileFlagIsPassedThrough(t *testing.T) {
	resetConfig(t)

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newViewCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("View", mock.Anything, domain.ViewArgs{Path: "run.cov", AggregateByFile: true}).Return(nil)

	cmd.SetArgs([]string{"view", "run.cov", "--aggregate_by_file"})
	err := cmd.Execute()
	require.NoError(t, err)
	mockWorkflow.AssertExpectations(t)
}

func TestViewCmd_ReturnsWorkflowError(t *testing.T) {
	resetConfig(t)

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newViewCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	loadErr := errors.New("not a coverage snapshot")
	mockWorkflow.On("View", mock.Anything, mock.AnythingOfType("domain.ViewArgs")).Return(loadErr)

	cmd.SetArgs([]string{"view", "broken.cov"})
	err := cmd.Execute()
	require.ErrorIs(t, err, loadErr)
}

func TestViewCmd_RequiresExactlyOneSnapshot(t *testing.T) {
	resetConfig(t)

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newViewCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	cmd.SetArgs([]string{"view"})
	require.Error(t, cmd.Execute())

	cmd.SetArgs([]string{"view", "a.cov", "b.cov"})
	require.Error(t, cmd.Execute())

	mockWorkflow.AssertNotCalled(t, "View", mock.Anything, mock.Anything)
}
