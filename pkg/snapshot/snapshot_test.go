package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/obsidianops/tfc-collector/pkg/client"
)

func org(name string) client.Resource {
	return client.Resource{ID: name, Type: "organizations", Attributes: map[string]any{"name": name}}
}

func workspace(id, name string) client.Resource {
	return client.Resource{ID: id, Type: "workspaces", Attributes: map[string]any{"name": name}}
}

func run(id string) client.Resource {
	return client.Resource{ID: id, Type: "runs", Attributes: map[string]any{"status": "applied"}}
}

func TestBuild_DerivesSummaryFromCollections(t *testing.T) {
	tests := []struct {
		name       string
		orgs       []client.Resource
		workspaces map[string][]client.Resource
		runs       map[string]map[string]WorkspaceRuns
		expected   Summary
	}{
		{
			name:     "empty",
			expected: Summary{},
		},
		{
			name: "orgs without workspaces",
			orgs: []client.Resource{org("acme"), org("globex")},
			workspaces: map[string][]client.Resource{
				"acme":   {},
				"globex": {},
			},
			expected: Summary{TotalOrganizations: 2},
		},
		{
			name: "full hierarchy",
			orgs: []client.Resource{org("acme"), org("globex")},
			workspaces: map[string][]client.Resource{
				"acme":   {workspace("ws-1", "app"), workspace("ws-2", "infra")},
				"globex": {workspace("ws-3", "site")},
			},
			runs: map[string]map[string]WorkspaceRuns{
				"acme": {
					"app":   {WorkspaceID: "ws-1", Runs: []client.Resource{run("r1"), run("r2")}},
					"infra": {WorkspaceID: "ws-2", Runs: []client.Resource{run("r3")}},
				},
				"globex": {
					"site": {WorkspaceID: "ws-3", Runs: []client.Resource{run("r4"), run("r5"), run("r6")}},
				},
			},
			expected: Summary{TotalOrganizations: 2, TotalWorkspaces: 3, TotalRuns: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Build(tt.orgs, tt.workspaces, tt.runs)
			if snap.Summary != tt.expected {
				t.Errorf("Summary = %+v, want %+v", snap.Summary, tt.expected)
			}
		})
	}
}

func TestBuild_EmptyCollectionsAreNotNull(t *testing.T) {
	snap := Build(nil, nil, nil)

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	doc := string(data)
	for _, fragment := range []string{`"organizations":[]`, `"workspaces":{}`, `"runs":{}`} {
		if !strings.Contains(doc, fragment) {
			t.Errorf("document %s should contain %s", doc, fragment)
		}
	}
}

func TestSnapshot_DocumentShape(t *testing.T) {
	snap := Build(
		[]client.Resource{org("acme")},
		map[string][]client.Resource{"acme": {workspace("ws-1", "app")}},
		map[string]map[string]WorkspaceRuns{
			"acme": {"app": {WorkspaceID: "ws-1", Runs: []client.Resource{run("r1")}}},
		},
	)

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	for _, key := range []string{"organizations", "workspaces", "runs", "summary"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing top-level key %q", key)
		}
	}

	var runs map[string]map[string]struct {
		WorkspaceID string            `json:"workspace_id"`
		Runs        []json.RawMessage `json:"runs"`
	}
	if err := json.Unmarshal(doc["runs"], &runs); err != nil {
		t.Fatalf("runs mapping has unexpected shape: %v", err)
	}
	if runs["acme"]["app"].WorkspaceID != "ws-1" {
		t.Errorf("runs[acme][app].workspace_id = %q, want %q", runs["acme"]["app"].WorkspaceID, "ws-1")
	}

	var summary map[string]int
	if err := json.Unmarshal(doc["summary"], &summary); err != nil {
		t.Fatalf("summary has unexpected shape: %v", err)
	}
	for _, key := range []string{"total_organizations", "total_workspaces", "total_runs"} {
		if _, ok := summary[key]; !ok {
			t.Errorf("summary missing key %q", key)
		}
	}
}

func TestWriteFile_ReadFile_RoundTrip(t *testing.T) {
	snap := Build(
		[]client.Resource{org("acme")},
		map[string][]client.Resource{"acme": {workspace("ws-1", "app")}},
		map[string]map[string]WorkspaceRuns{
			"acme": {"app": {WorkspaceID: "ws-1", Runs: []client.Resource{run("r1"), run("r2")}}},
		},
	)

	path := filepath.Join(t.TempDir(), "terraform_data.json")
	if err := snap.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if loaded.Summary != snap.Summary {
		t.Errorf("Summary after round trip = %+v, want %+v", loaded.Summary, snap.Summary)
	}
	if len(loaded.Organizations) != 1 || loaded.Organizations[0].ID != "acme" {
		t.Errorf("Organizations after round trip = %+v", loaded.Organizations)
	}
	if loaded.Runs["acme"]["app"].WorkspaceID != "ws-1" {
		t.Error("runs mapping lost its workspace identifier")
	}
}

func TestReadFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFile(path); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}
