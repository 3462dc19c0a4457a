// Package report renders the offline analysis reports for a collected
// snapshot. Reports only read the snapshot document; they never modify it.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/obsidianops/tfc-collector/pkg/client"
	"github.com/obsidianops/tfc-collector/pkg/snapshot"
	"github.com/samber/lo"
)

// header writes a report section banner.
func header(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

// Summary prints the comprehensive summary report.
func Summary(w io.Writer, snap *snapshot.Snapshot) {
	header(w, "COMPREHENSIVE SUMMARY REPORT")

	s := snap.Summary
	fmt.Fprintf(w, "Total Organizations: %d\n", s.TotalOrganizations)
	fmt.Fprintf(w, "Total Workspaces: %d\n", s.TotalWorkspaces)
	fmt.Fprintf(w, "Total Runs: %d\n", s.TotalRuns)

	if s.TotalOrganizations > 0 {
		fmt.Fprintf(w, "Average Workspaces per Organization: %.1f\n",
			float64(s.TotalWorkspaces)/float64(s.TotalOrganizations))
	}
	if s.TotalWorkspaces > 0 {
		fmt.Fprintf(w, "Average Runs per Workspace: %.1f\n",
			float64(s.TotalRuns)/float64(s.TotalWorkspaces))
	}
}

// Organizations prints per-organization details.
func Organizations(w io.Writer, snap *snapshot.Snapshot) {
	header(w, "ORGANIZATION ANALYSIS")

	for _, org := range snap.Organizations {
		fmt.Fprintf(w, "\nOrganization: %s\n", org.StringAttr("name", "N/A"))
		fmt.Fprintf(w, "  Email: %s\n", org.StringAttr("email", "N/A"))
		fmt.Fprintf(w, "  Created: %s\n", org.StringAttr("created-at", "N/A"))
		fmt.Fprintf(w, "  Plan: %s\n", org.StringAttr("plan", "N/A"))
	}
}

// Workspaces prints per-organization workspace details plus fleet-wide
// Terraform version and execution-mode distributions.
func Workspaces(w io.Writer, snap *snapshot.Snapshot) {
	header(w, "WORKSPACE ANALYSIS")

	var all []client.Resource
	for _, org := range snap.Organizations {
		workspaces := snap.Workspaces[org.Name()]
		all = append(all, workspaces...)

		fmt.Fprintf(w, "\nOrganization: %s\n", org.Name())
		fmt.Fprintf(w, "  Total Workspaces: %d\n", len(workspaces))

		for _, ws := range workspaces {
			fmt.Fprintf(w, "    - %s\n", ws.StringAttr("name", "N/A"))
			fmt.Fprintf(w, "      Terraform Version: %s\n", ws.StringAttr("terraform-version", "unknown"))
			fmt.Fprintf(w, "      Execution Mode: %s\n", ws.StringAttr("execution-mode", "unknown"))
			fmt.Fprintf(w, "      Auto Apply: %t\n", ws.BoolAttr("auto-apply"))
			fmt.Fprintf(w, "      Created: %s\n", ws.StringAttr("created-at", "N/A"))
		}
	}

	fmt.Fprintf(w, "\nWorkspace Statistics:\n")
	fmt.Fprintf(w, "  Total Workspaces: %d\n", len(all))

	modes := lo.CountValuesBy(all, func(ws client.Resource) string {
		return ws.StringAttr("execution-mode", "unknown")
	})
	fmt.Fprintf(w, "\nExecution Modes:\n")
	for _, entry := range sortedCounts(modes) {
		fmt.Fprintf(w, "  %s: %d\n", entry.Key, entry.Value)
	}

	versions := lo.CountValuesBy(all, func(ws client.Resource) string {
		return ws.StringAttr("terraform-version", "unknown")
	})
	fmt.Fprintf(w, "\nTerraform Versions:\n")
	for _, entry := range sortedCounts(versions) {
		fmt.Fprintf(w, "  %s: %d\n", entry.Key, entry.Value)
	}
}

// Runs prints per-workspace run details plus the fleet-wide run status
// distribution.
func Runs(w io.Writer, snap *snapshot.Snapshot) {
	header(w, "RUN ANALYSIS")

	var all []client.Resource
	for _, org := range snap.Organizations {
		byWorkspace, ok := snap.Runs[org.Name()]
		if !ok {
			continue
		}

		fmt.Fprintf(w, "\nOrganization: %s\n", org.Name())

		for _, wsName := range sortedKeys(byWorkspace) {
			workspaceRuns := byWorkspace[wsName]
			all = append(all, workspaceRuns.Runs...)

			fmt.Fprintf(w, "  Workspace: %s\n", wsName)
			fmt.Fprintf(w, "    Total Runs: %d\n", len(workspaceRuns.Runs))

			for _, r := range recent(workspaceRuns.Runs, 10) {
				fmt.Fprintf(w, "      - Run %s\n", shortID(r.ID))
				fmt.Fprintf(w, "        Status: %s\n", r.StringAttr("status", "unknown"))
				fmt.Fprintf(w, "        Created: %s\n", r.StringAttr("created-at", "N/A"))
				fmt.Fprintf(w, "        Message: %s\n", truncate(r.StringAttr("message", "N/A"), 50))
			}
		}
	}

	fmt.Fprintf(w, "\nRun Statistics:\n")
	fmt.Fprintf(w, "  Total Runs: %d\n", len(all))

	statuses := lo.CountValuesBy(all, func(r client.Resource) string {
		return r.StringAttr("status", "unknown")
	})
	fmt.Fprintf(w, "\nRun Status Distribution:\n")
	for _, entry := range sortedCounts(statuses) {
		percentage := float64(entry.Value) / float64(len(all)) * 100
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", entry.Key, entry.Value, percentage)
	}
}

// sortedCounts orders a counter by descending count, then key, for stable
// output.
func sortedCounts(counts map[string]int) []lo.Entry[string, int] {
	entries := lo.Entries(counts)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

func sortedKeys(byWorkspace map[string]snapshot.WorkspaceRuns) []string {
	keys := lo.Keys(byWorkspace)
	sort.Strings(keys)
	return keys
}

// recent returns the first n runs; the API lists runs newest first.
func recent(runs []client.Resource, n int) []client.Resource {
	if len(runs) <= n {
		return runs
	}
	return runs[:n]
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
