package model

import (
	"fmt"
	"strings"
)

// RunOutcome is the terminal state of a run.
type RunOutcome int

const (
	// OutcomeNotRun marks data that was never produced by a run (merge only).
	OutcomeNotRun RunOutcome = iota
	// OutcomeNormal indicates the target exited on its own.
	OutcomeNormal
	// OutcomeCancelled indicates the run was aborted by an external signal.
	OutcomeCancelled
	// OutcomeTimedOut indicates the wall-clock limit was reached.
	OutcomeTimedOut
	// OutcomeCrashed indicates the target died on an unhandled fault.
	OutcomeCrashed
)

func (o RunOutcome) String() string {
	switch o {
	case OutcomeNotRun:
		return "not run"
	case OutcomeNormal:
		return "normal"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeCrashed:
		return "crashed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// RunState is a state of the instrumentation engine.
type RunState int

// Available RunState values.
const (
	StateNotStarted RunState = iota
	StateLaunching
	StateRunning
	StateChildSpawned
	StateTerminated
)

func (s RunState) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateChildSpawned:
		return "child spawned"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ExportKind names an output format.
type ExportKind string

const (
	// ExportBinary is the round-trippable snapshot format.
	ExportBinary ExportKind = "binary"
	// ExportCobertura is a cobertura-style XML report.
	ExportCobertura ExportKind = "cobertura"
	// ExportSummary is a yaml summary of per-file line counts.
	ExportSummary ExportKind = "summary"
)

// ExportSpec requests one export; Output is optional.
type ExportSpec struct {
	Kind   ExportKind
	Output Path
}

// ParseExportSpec parses "kind[:output]".
func ParseExportSpec(value string) ExportSpec {
	kind, output, _ := strings.Cut(value, ":")

	return ExportSpec{Kind: ExportKind(strings.ToLower(strings.TrimSpace(kind))), Output: Path(output)}
}

// CoverageStats counts lines.
type CoverageStats struct {
	Lines          int
	Executed       int
	Selected       int
	SelectedAndHit int
}

// Add accumulates other into s.
func (s *CoverageStats) Add(other CoverageStats) {
	s.Lines += other.Lines
	s.Executed += other.Executed
	s.Selected += other.Selected
	s.SelectedAndHit += other.SelectedAndHit
}

// Rate returns the executed ratio in [0, 1]; an empty set counts as 1.
func (s CoverageStats) Rate() float64 {
	if s.Lines == 0 {
		return 1
	}

	return float64(s.Executed) / float64(s.Lines)
}

// Stats counts the lines of a file.
func (fc *FileCoverage) Stats() CoverageStats {
	var stats CoverageStats

	for _, line := range fc.Lines {
		stats.Lines++

		if line.Executed {
			stats.Executed++
		}

		if line.Selected {
			stats.Selected++

			if line.Executed {
				stats.SelectedAndHit++
			}
		}
	}

	return stats
}

// Stats counts the lines of every file in the module.
func (mc *ModuleCoverage) Stats() CoverageStats {
	var stats CoverageStats
	for _, file := range mc.Files {
		stats.Add(file.Stats())
	}

	return stats
}

// Stats counts the lines of every module.
func (c *CoverageData) Stats() CoverageStats {
	var stats CoverageStats
	for _, module := range c.Modules {
		stats.Add(module.Stats())
	}

	return stats
}
