package cmd

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	"linecov.dev/pkg/linecov/internal/adapter"
	m "linecov.dev/pkg/linecov/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "linecov"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	modulesFlagName                = "modules"
	excludedModulesFlagName        = "excluded_modules"
	sourcesFlagName                = "sources"
	excludedSourcesFlagName        = "excluded_sources"
	unifiedDiffFlagName            = "unified_diff"
	diffModeFlagName               = "diff_mode"
	substituteSourcePathFlagName   = "substitute_source_path"
	excludedLineRegexFlagName      = "excluded_line_regex"
	coverChildrenFlagName          = "cover_children"
	continueAfterExceptionFlagName = "continue_after_exception"
	optimizedBuildFlagName         = "optimized_build"
	aggregateByFileFlagName        = "aggregate_by_file"
	exportTypeFlagName             = "export_type"
	inputCoverageFlagName          = "input_coverage"
	workingDirFlagName             = "working_dir"
	timeoutFlagName                = "timeout"
	pidFlagName                    = "pid"
	verboseFlagName                = "verbose"
	quietFlagName                  = "quiet"
	logFileFlagName                = "log_file"

	modulesKey                = "filter.modules"
	excludedModulesKey        = "filter.excluded_modules"
	sourcesKey                = "filter.sources"
	excludedSourcesKey        = "filter.excluded_sources"
	diffFilesKey              = "diff.files"
	diffModeKey               = "diff.mode"
	substituteSourcePathKey   = "source.substitute_paths"
	excludedLineRegexKey      = "source.excluded_line_regexes"
	debugFileDirectoriesKey   = "symbols.debug_file_directories"
	coverChildrenKey          = "run.cover_children"
	continueAfterExceptionKey = "run.continue_after_exception"
	optimizedBuildKey         = "run.optimized_build"
	workingDirKey             = "run.working_dir"
	timeoutKey                = "run.timeout"
	rescanIntervalKey         = "run.rescan_interval"
	aggregateByFileKey        = "output.aggregate_by_file"
	exportTypesKey            = "output.export_types"
	inputCoverageKey          = "input.coverage"
	spillDirKey               = "output.spill_dir"

	defaultDiffMode       = string(m.DiffModeExclude)
	defaultTimeout        = time.Duration(0)
	defaultRescanInterval = adapter.DefaultRescanInterval

	envPrefix = "LINECOV"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logQuietKey      = "log.quiet"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = "LastCoverageResults.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogQuiet      = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		slog.Debug("Config file not loaded", "error", err)
	}
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(modulesKey, []string{})
	viper.SetDefault(excludedModulesKey, []string{})
	viper.SetDefault(sourcesKey, []string{})
	viper.SetDefault(excludedSourcesKey, []string{})
	viper.SetDefault(diffFilesKey, []string{})
	viper.SetDefault(diffModeKey, defaultDiffMode)
	viper.SetDefault(substituteSourcePathKey, []string{})
	viper.SetDefault(excludedLineRegexKey, []string{})
	viper.SetDefault(debugFileDirectoriesKey, []string{adapter.DefaultDebugFileDirectory})
	viper.SetDefault(coverChildrenKey, false)
	viper.SetDefault(continueAfterExceptionKey, false)
	viper.SetDefault(optimizedBuildKey, false)
	viper.SetDefault(workingDirKey, "")
	viper.SetDefault(timeoutKey, defaultTimeout)
	viper.SetDefault(rescanIntervalKey, defaultRescanInterval)
	viper.SetDefault(aggregateByFileKey, false)
	viper.SetDefault(exportTypesKey, []string{})
	viper.SetDefault(inputCoverageKey, []string{})
	viper.SetDefault(spillDirKey, "")

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logQuietKey, defaultLogQuiet)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// loggerLevel picks the level: verbose forces debug, quiet forces error.
func loggerLevel(verbose, quiet bool) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelError
	default:
		return parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info to a rotated file.
func configureLogger(logPath string, verbose, quiet bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	setLogger(logWriter, loggerLevel(verbose, quiet))
}

func setLogger(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
