// Package cmd provides the root command and CLI setup for linecov.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"linecov.dev/pkg/linecov/internal/adapter"
	"linecov.dev/pkg/linecov/internal/controller"
	"linecov.dev/pkg/linecov/internal/domain"
	m "linecov.dev/pkg/linecov/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var snapshotStore adapter.SnapshotStore
var symbolAdapter adapter.SymbolAdapter
var engine domain.Engine
var merger domain.Merger
var workflow domain.Workflow
var ui controller.UI

var verboseFlag bool
var quietFlag bool
var logFileFlag string
var exportTypes []string
var inputCoverages []string
var aggregateByFileFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	snapshotStore = adapter.NewSnapshotStore(fsAdapter)
	symbolAdapter = adapter.NewLocalSymbolAdapter(viper.GetStringSlice(debugFileDirectoriesKey)...)
	engine = domain.NewEngine(func() adapter.DebuggerAdapter {
		return adapter.NewDebuggerAdapter(viper.GetDuration(rescanIntervalKey))
	})
	merger = domain.NewMerger()
	workflow = domain.NewWorkflow(
		fsAdapter,
		snapshotStore,
		symbolAdapter,
		adapter.NewExporters(fsAdapter, snapshotStore),
		engine,
		merger,
		ui,
	)
}

const patternHelp = `Module and source patterns are wildcards ('*' matches any run of characters,
matching anywhere in the path, case-insensitively) or regular expressions
prefixed with "re:". Exclusions always win over inclusions.`

const rootLongDescription = `linecov measures which source lines of a native executable run. It traces
the target like a debugger, plants a one-shot trap on every line found in
the DWARF line table and records which traps fire.

` + patternHelp

const runLongDescription = `Run a program (or attach to a running process with --pid) and record its
line coverage. Arguments after "--" are passed to the program.

` + patternHelp

const listLongDescription = `List the source lines of an executable that a run would instrument with
the current filters, without running it.

` + patternHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "linecov",
		Short:         "Source line coverage for native executables",
		Long:          rootLongDescription,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey), viper.GetBool(logQuietKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level and list every path in warnings")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().BoolVarP(&quietFlag, quietFlagName, "q", viper.GetBool(logQuietKey), "log errors only")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(quietFlagName), logQuietKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().StringArrayVar(
		&exportTypes, exportTypeFlagName, viper.GetStringSlice(exportTypesKey),
		"export as kind[:output], kind is binary, cobertura or summary (can be repeated)",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(exportTypeFlagName), exportTypesKey)

	cmd.PersistentFlags().StringArrayVar(
		&inputCoverages, inputCoverageFlagName, viper.GetStringSlice(inputCoverageKey),
		"binary coverage snapshot to merge into the result (can be repeated)",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(inputCoverageFlagName), inputCoverageKey)

	cmd.PersistentFlags().BoolVar(
		&aggregateByFileFlag, aggregateByFileFlagName, viper.GetBool(aggregateByFileKey),
		"report each source file once across modules",
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(aggregateByFileFlagName), aggregateByFileKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// exitCodeError carries the exit code of the target out of a command.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

// exitStatus turns a workflow result into the command error.
func exitStatus(code int, err error) error {
	if err != nil && code == 0 {
		code = 1
	}

	if code == 0 {
		return nil
	}

	return &exitCodeError{code: code, err: err}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, rootCmd)

	stop()
	os.Exit(code)
}

func execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	code := 1

	var exit *exitCodeError
	if errors.As(err, &exit) {
		code = exit.code
		err = exit.err
	}

	if err != nil {
		slog.Error("Command failed", "error", err)
		cmd.PrintErrln("Error:", err)
	}

	return code
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
