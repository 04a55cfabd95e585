package adapter

import (
	m "linecov.dev/pkg/linecov/internal/model"
)

func sampleCoverage() *m.CoverageData {
	return &m.CoverageData{
		Name:     "app",
		ExitCode: 3,
		Outcome:  m.OutcomeNormal,
		Modules: []*m.ModuleCoverage{
			{
				Path:        "/usr/bin/app",
				BaseAddress: 0x400000,
				Size:        0x2000,
				ProcessID:   42,
				Files: []*m.FileCoverage{
					{
						Path: "/src/main.c",
						Lines: []m.LineCoverage{
							{Number: 3, Executed: true, Instrumented: true, Selected: true},
							{Number: 4, Executed: false, Instrumented: true, Selected: true},
							{Number: 7, Executed: true, Instrumented: true, Selected: false},
						},
					},
					{
						Path: "/src/util.c",
						Lines: []m.LineCoverage{
							{Number: 10, Executed: false, Instrumented: false, Selected: true},
						},
					},
				},
			},
		},
	}
}
