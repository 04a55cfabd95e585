package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"linecov.dev/pkg/linecov/internal/domain"
	domainmocks "linecov.dev/pkg/linecov/internal/domain/mocks"
	m "linecov.dev/pkg/linecov/internal/model"
)

// resetConfig restores the default settings and sends the log to a
// temporary file for the duration of the test.
func resetConfig(t *testing.T) {
	t.Helper()

	logger := slog.Default()

	viper.Reset()
	setDefaults()
	viper.Set(logFilenameKey, filepath.Join(t.TempDir(), "linecov.log"))

	t.Cleanup(func() {
		viper.Reset()
		setDefaults()
		slog.SetDefault(logger)
	})
}

func TestParsePaths(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []m.Path
	}{
		{"empty", []string{}, []m.Path{}},
		{"single", []string{"run.cov"}, []m.Path{m.Path("run.cov")}},
		{
			"multiple",
			[]string{"a.cov", "nightly/b.cov", "/tmp/c.cov"},
			[]m.Path{m.Path("a.cov"), m.Path("nightly/b.cov"), m.Path("/tmp/c.cov")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePaths(tt.args)
			require.Len(t, got, len(tt.want))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "linecov", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)

	for _, name := range []string{verboseFlagName, quietFlagName, logFileFlagName, exportTypeFlagName, inputCoverageFlagName, aggregateByFileFlagName} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	resetConfig(t)

	cmd := newRootCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{})
	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, output.String(), "Usage:")
	assert.Contains(t, output.String(), `prefixed with "re:"`)
}

func TestInit(t *testing.T) {
	assert.NotNil(t, ui)
	assert.NotNil(t, fsAdapter)
	assert.NotNil(t, snapshotStore)
	assert.NotNil(t, symbolAdapter)
	assert.NotNil(t, engine)
	assert.NotNil(t, merger)
	assert.NotNil(t, workflow)
}

func TestExitStatus(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		code     int
		err      error
		wantNil  bool
		wantCode int
		wantErr  error
	}{
		{name: "success", code: 0, wantNil: true},
		{name: "target exit code", code: 3, wantCode: 3},
		{name: "error without code", code: 0, err: boom, wantCode: 1, wantErr: boom},
		{name: "error keeps code", code: 139, err: boom, wantCode: 139, wantErr: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitStatus(tt.code, tt.err)
			if tt.wantNil {
				require.NoError(t, err)
				return
			}

			var exit *exitCodeError
			require.ErrorAs(t, err, &exit)
			assert.Equal(t, tt.wantCode, exit.code)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
			} else {
				assert.Equal(t, "exit code 3", err.Error())
			}
		})
	}
}

func TestExecute_ReturnsTargetExitCode(t *testing.T) {
	resetConfig(t)

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newRunCmd())
	stderr := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Run", mock.Anything, mock.AnythingOfType("domain.RunArgs")).Return(3, nil)

	cmd.SetArgs([]string{"run", "--", "/bin/app"})
	code := execute(context.Background(), cmd)

	assert.Equal(t, 3, code)
	assert.Empty(t, stderr.String())
	mockWorkflow.AssertExpectations(t)
}

func TestExecute_PrintsErrors(t *testing.T) {
	resetConfig(t)

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newRunCmd())
	stderr := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Run", mock.Anything, mock.AnythingOfType("domain.RunArgs")).
		Return(0, domain.ErrLaunch)

	cmd.SetArgs([]string{"run", "--", "/bin/missing"})
	code := execute(context.Background(), cmd)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error:")
	assert.Contains(t, stderr.String(), domain.ErrLaunch.Error())
}

func TestExecute_Success(t *testing.T) {
	cmd := &cobra.Command{
		Use: "test",
		RunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	assert.Equal(t, 0, execute(context.Background(), cmd))
}

func TestParseExports(t *testing.T) {
	got := parseExports([]string{"binary", "cobertura:out/coverage.xml", "summary:"})

	assert.Equal(t, []m.ExportSpec{
		{Kind: m.ExportBinary},
		{Kind: m.ExportCobertura, Output: "out/coverage.xml"},
		{Kind: m.ExportSummary},
	}, got)
}

func TestParseSubstitutions(t *testing.T) {
	got, err := parseSubstitutions([]string{"/build?/home/dev/src"})
	require.NoError(t, err)
	assert.Equal(t, []m.SubstitutePath{{Prefix: "/build", Replacement: "/home/dev/src"}}, got)

	_, err = parseSubstitutions([]string{"/build"})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), substituteSourcePathFlagName)
}

func TestParseDiffs(t *testing.T) {
	got := parseDiffs([]string{"change.diff", "other.diff?/work/repo"})

	assert.Equal(t, []m.UnifiedDiffSettings{
		{DiffPath: "change.diff"},
		{DiffPath: "other.diff", RootFolder: "/work/repo"},
	}, got)
}
