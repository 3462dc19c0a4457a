// Package snapshot defines the consolidated collection document that is
// persisted to disk and read back by the offline analyzer.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/obsidianops/tfc-collector/pkg/client"
	"github.com/samber/lo"
)

// WorkspaceRuns pairs a workspace's identifier with its run sequence.
type WorkspaceRuns struct {
	WorkspaceID string            `json:"workspace_id"`
	Runs        []client.Resource `json:"runs"`
}

// Summary holds the cardinalities of the assembled collections, derived from
// the collections themselves at build time.
type Summary struct {
	TotalOrganizations int `json:"total_organizations"`
	TotalWorkspaces    int `json:"total_workspaces"`
	TotalRuns          int `json:"total_runs"`
}

// Snapshot is the result of one collection run: the organizations in fetch
// order, each organization's workspaces, and each workspace's runs, keyed by
// organization and workspace name. Built once per invocation, fully in
// memory, then serialized and discarded.
type Snapshot struct {
	Organizations []client.Resource                   `json:"organizations"`
	Workspaces    map[string][]client.Resource        `json:"workspaces"`
	Runs          map[string]map[string]WorkspaceRuns `json:"runs"`
	Summary       Summary                             `json:"summary"`
}

// Build assembles a snapshot. The summary is always re-derived from the
// collections rather than taken from counters accumulated during fetching.
func Build(organizations []client.Resource, workspaces map[string][]client.Resource, runs map[string]map[string]WorkspaceRuns) *Snapshot {
	if organizations == nil {
		organizations = []client.Resource{}
	}
	if workspaces == nil {
		workspaces = map[string][]client.Resource{}
	}
	if runs == nil {
		runs = map[string]map[string]WorkspaceRuns{}
	}

	return &Snapshot{
		Organizations: organizations,
		Workspaces:    workspaces,
		Runs:          runs,
		Summary:       deriveSummary(organizations, workspaces, runs),
	}
}

// deriveSummary counts the actual cardinalities of the collections.
func deriveSummary(organizations []client.Resource, workspaces map[string][]client.Resource, runs map[string]map[string]WorkspaceRuns) Summary {
	return Summary{
		TotalOrganizations: len(organizations),
		TotalWorkspaces: lo.SumBy(lo.Values(workspaces), func(ws []client.Resource) int {
			return len(ws)
		}),
		TotalRuns: lo.SumBy(lo.Values(runs), func(byWorkspace map[string]WorkspaceRuns) int {
			return lo.SumBy(lo.Values(byWorkspace), func(wr WorkspaceRuns) int {
				return len(wr.Runs)
			})
		}),
	}
}

// WriteFile persists the snapshot as a pretty-printed JSON document.
func (s *Snapshot) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadFile loads a snapshot document produced by WriteFile.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}
