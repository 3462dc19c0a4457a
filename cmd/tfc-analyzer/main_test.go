package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/obsidianops/tfc-collector/internal/testutil"
	"github.com/obsidianops/tfc-collector/pkg/client"
	"github.com/obsidianops/tfc-collector/pkg/snapshot"
	"github.com/spf13/pflag"
)

// writeFixture writes a small snapshot file and returns its path.
func writeFixture(t *testing.T) string {
	t.Helper()

	snap := snapshot.Build(
		[]client.Resource{testutil.Organization("acme")},
		map[string][]client.Resource{
			"acme": {testutil.Workspace("ws-1", "networking")},
		},
		map[string]map[string]snapshot.WorkspaceRuns{
			"acme": {
				"networking": {
					WorkspaceID: "ws-1",
					Runs: []client.Resource{
						testutil.Run("run-1", "applied"),
						testutil.Run("run-2", "errored"),
					},
				},
			},
		},
	)

	path := filepath.Join(t.TempDir(), "terraform_data.json")
	if err := snap.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

// runAnalyzer executes the command with args and returns its stdout. Flag
// values are restored afterwards so invocations stay independent.
func runAnalyzer(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Cleanup(func() {
		analyzeCmd.Flags().VisitAll(func(f *pflag.Flag) {
			f.Value.Set(f.DefValue)
			f.Changed = false
		})
	})

	buf := &bytes.Buffer{}
	analyzeCmd.SetOut(buf)
	analyzeCmd.SetErr(buf)
	analyzeCmd.SetArgs(args)

	err := analyzeCmd.Execute()
	return buf.String(), err
}

func TestAnalyze_SummaryOnlyByDefault(t *testing.T) {
	path := writeFixture(t)

	output, err := runAnalyzer(t, "--input", path)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !strings.Contains(output, "COMPREHENSIVE SUMMARY REPORT") {
		t.Error("Summary report should always be printed")
	}
	if !strings.Contains(output, "Total Runs: 2") {
		t.Errorf("Summary should count the fixture's runs, got:\n%s", output)
	}
	for _, section := range []string{"ORGANIZATION ANALYSIS", "WORKSPACE ANALYSIS", "RUN ANALYSIS"} {
		if strings.Contains(output, section) {
			t.Errorf("%s should not be printed without its flag", section)
		}
	}
}

func TestAnalyze_ReportSelection(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		include []string
		exclude []string
	}{
		{
			name:    "organizations",
			flag:    "--organizations",
			include: []string{"ORGANIZATION ANALYSIS"},
			exclude: []string{"WORKSPACE ANALYSIS", "RUN ANALYSIS"},
		},
		{
			name:    "runs",
			flag:    "--runs",
			include: []string{"RUN ANALYSIS"},
			exclude: []string{"ORGANIZATION ANALYSIS", "WORKSPACE ANALYSIS"},
		},
		{
			name:    "all",
			flag:    "--all",
			include: []string{"ORGANIZATION ANALYSIS", "WORKSPACE ANALYSIS", "RUN ANALYSIS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t)

			output, err := runAnalyzer(t, "--input", path, tt.flag)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			if !strings.Contains(output, "COMPREHENSIVE SUMMARY REPORT") {
				t.Error("Summary report should always be printed")
			}
			for _, section := range tt.include {
				if !strings.Contains(output, section) {
					t.Errorf("%s should be printed with %s", section, tt.flag)
				}
			}
			for _, section := range tt.exclude {
				if strings.Contains(output, section) {
					t.Errorf("%s should not be printed with %s", section, tt.flag)
				}
			}
		})
	}
}

func TestAnalyze_InputFromEnv(t *testing.T) {
	path := writeFixture(t)
	t.Setenv("TFC_INPUT", path)

	output, err := runAnalyzer(t)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !strings.Contains(output, "Total Organizations: 1") {
		t.Errorf("Input path should be read from TFC_INPUT, got:\n%s", output)
	}
}

func TestAnalyze_MissingInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does_not_exist.json")

	if _, err := runAnalyzer(t, "--input", path); err == nil {
		t.Fatal("Execute succeeded, want error for missing input file")
	}
}

func TestAnalyze_InvalidInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terraform_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, err := runAnalyzer(t, "--input", path); err == nil {
		t.Fatal("Execute succeeded, want error for invalid JSON")
	}
}
