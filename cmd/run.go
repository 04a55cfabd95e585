package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"linecov.dev/pkg/linecov/internal/domain"
	m "linecov.dev/pkg/linecov/internal/model"
)

var errMissingProgram = errors.New("missing program to run")

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	var pid int

	cmd := &cobra.Command{
		Use:   "run [flags] -- program [args...]",
		Short: "Run a program and record its line coverage",
		Long:  runLongDescription,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindSelectionFlags(cmd)
			bindRunFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseStartInfo(args, pid, viper.GetString(workingDirKey))
			if err != nil {
				return err
			}

			runArgs, err := coverageArgs()
			if err != nil {
				return err
			}

			runArgs.Start = start

			return exitStatus(workflow.Run(cmd.Context(), runArgs))
		},
	}

	configureSelectionFlags(cmd)
	configureRunFlags(cmd)
	cmd.Flags().IntVar(&pid, pidFlagName, 0, "attach to a running process instead of starting a program")

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// configureSelectionFlags declares the flags that choose which lines are
// instrumented. Several commands share them, so they are bound to their
// config keys only when the command runs.
func configureSelectionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArray(modulesFlagName, viper.GetStringSlice(modulesKey), "select modules matching the pattern (can be repeated)")
	flags.StringArray(excludedModulesFlagName, viper.GetStringSlice(excludedModulesKey), "skip modules matching the pattern (can be repeated)")
	flags.StringArray(sourcesFlagName, viper.GetStringSlice(sourcesKey), "select source files matching the pattern (can be repeated)")
	flags.StringArray(excludedSourcesFlagName, viper.GetStringSlice(excludedSourcesKey), "skip source files matching the pattern (can be repeated)")
	flags.StringArray(unifiedDiffFlagName, viper.GetStringSlice(diffFilesKey), "only cover lines changed by the diff, as path[?root] (can be repeated)")
	flags.String(diffModeFlagName, viper.GetString(diffModeKey), "lines outside the diffs: exclude drops them, track keeps them unselected")
	flags.StringArray(substituteSourcePathFlagName, viper.GetStringSlice(substituteSourcePathKey), "rewrite source paths as prefix?replacement (can be repeated)")
	flags.StringArray(excludedLineRegexFlagName, viper.GetStringSlice(excludedLineRegexKey), "skip source lines matching the regular expression (can be repeated)")
	flags.Bool(optimizedBuildFlagName, viper.GetBool(optimizedBuildKey), "keep line table rows that are not statement boundaries")
}

func bindSelectionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	bindFlagToConfig(flags.Lookup(modulesFlagName), modulesKey)
	bindFlagToConfig(flags.Lookup(excludedModulesFlagName), excludedModulesKey)
	bindFlagToConfig(flags.Lookup(sourcesFlagName), sourcesKey)
	bindFlagToConfig(flags.Lookup(excludedSourcesFlagName), excludedSourcesKey)
	bindFlagToConfig(flags.Lookup(unifiedDiffFlagName), diffFilesKey)
	bindFlagToConfig(flags.Lookup(diffModeFlagName), diffModeKey)
	bindFlagToConfig(flags.Lookup(substituteSourcePathFlagName), substituteSourcePathKey)
	bindFlagToConfig(flags.Lookup(excludedLineRegexFlagName), excludedLineRegexKey)
	bindFlagToConfig(flags.Lookup(optimizedBuildFlagName), optimizedBuildKey)
}

func configureRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Bool(coverChildrenFlagName, viper.GetBool(coverChildrenKey), "also cover child processes")
	flags.Bool(continueAfterExceptionFlagName, viper.GetBool(continueAfterExceptionKey), "deliver fatal signals to the target instead of stopping")
	flags.String(workingDirFlagName, viper.GetString(workingDirKey), "working directory of the program")
	flags.Duration(timeoutFlagName, viper.GetDuration(timeoutKey), "kill the target after this duration (0 disables)")
}

func bindRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	bindFlagToConfig(flags.Lookup(coverChildrenFlagName), coverChildrenKey)
	bindFlagToConfig(flags.Lookup(continueAfterExceptionFlagName), continueAfterExceptionKey)
	bindFlagToConfig(flags.Lookup(workingDirFlagName), workingDirKey)
	bindFlagToConfig(flags.Lookup(timeoutFlagName), timeoutKey)
}

func parseStartInfo(args []string, pid int, workingDir string) (m.StartInfo, error) {
	if pid > 0 {
		if len(args) > 0 {
			return m.StartInfo{}, fmt.Errorf("--%s cannot be combined with a program", pidFlagName)
		}

		return m.StartInfo{AttachPID: pid}, nil
	}

	if len(args) == 0 {
		return m.StartInfo{}, errMissingProgram
	}

	return m.StartInfo{
		Path:       m.Path(args[0]),
		Args:       args[1:],
		WorkingDir: m.Path(workingDir),
	}, nil
}

// coverageArgs reads the session settings from viper.
func coverageArgs() (domain.RunArgs, error) {
	substitutions, err := parseSubstitutions(viper.GetStringSlice(substituteSourcePathKey))
	if err != nil {
		return domain.RunArgs{}, err
	}

	args := outputArgs()
	args.Filters = m.ScopeFilterSettings{
		ModuleIncludes: viper.GetStringSlice(modulesKey),
		ModuleExcludes: viper.GetStringSlice(excludedModulesKey),
		SourceIncludes: viper.GetStringSlice(sourcesKey),
		SourceExcludes: viper.GetStringSlice(excludedSourcesKey),
	}
	args.Diffs = parseDiffs(viper.GetStringSlice(diffFilesKey))
	args.DiffMode = m.DiffMode(strings.ToLower(strings.TrimSpace(viper.GetString(diffModeKey))))
	args.Substitutions = substitutions
	args.ExcludedLineRegexes = viper.GetStringSlice(excludedLineRegexKey)
	args.CoverChildren = viper.GetBool(coverChildrenKey)
	args.ContinueAfterException = viper.GetBool(continueAfterExceptionKey)
	args.OptimizedBuild = viper.GetBool(optimizedBuildKey)
	args.Timeout = viper.GetDuration(timeoutKey)

	return args, nil
}

// outputArgs reads the settings shared by every command producing results.
func outputArgs() domain.RunArgs {
	return domain.RunArgs{
		Inputs:          parsePaths(viper.GetStringSlice(inputCoverageKey)),
		Exports:         parseExports(viper.GetStringSlice(exportTypesKey)),
		AggregateByFile: viper.GetBool(aggregateByFileKey),
		Verbose:         viper.GetBool(logVerboseKey),
		SpillDir:        viper.GetString(spillDirKey),
	}
}

func parseSubstitutions(values []string) ([]m.SubstitutePath, error) {
	substitutions := make([]m.SubstitutePath, 0, len(values))

	for _, value := range values {
		substitution, ok := m.ParseSubstitutePath(value)
		if !ok {
			return nil, fmt.Errorf("%w: --%s %q, expected prefix?replacement",
				domain.ErrConfiguration, substituteSourcePathFlagName, value)
		}

		substitutions = append(substitutions, substitution)
	}

	return substitutions, nil
}

func parseDiffs(values []string) []m.UnifiedDiffSettings {
	diffs := make([]m.UnifiedDiffSettings, 0, len(values))
	for _, value := range values {
		diffs = append(diffs, m.ParseUnifiedDiffSettings(value))
	}

	return diffs
}

func parseExports(values []string) []m.ExportSpec {
	exports := make([]m.ExportSpec, 0, len(values))
	for _, value := range values {
		exports = append(exports, m.ParseExportSpec(value))
	}

	return exports
}
