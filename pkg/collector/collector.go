// Package collector orchestrates the organizations, workspaces, and runs
// fetch pipeline and assembles the collection snapshot.
package collector

import (
	"context"
	"fmt"
	"net/url"

	"github.com/obsidianops/tfc-collector/pkg/client"
	"github.com/obsidianops/tfc-collector/pkg/logging"
	"github.com/obsidianops/tfc-collector/pkg/pagination"
	"github.com/obsidianops/tfc-collector/pkg/snapshot"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Related resources embedded alongside each collection.
const (
	workspaceInclude = "current-run,organization"
	runInclude       = "plan,apply,configuration-version"
)

// Fetcher is the paginated-collection contract the collector drives.
// *pagination.Pager implements it.
type Fetcher interface {
	FetchAll(ctx context.Context, rawURL string, params url.Values) ([]client.Resource, error)
}

// Collector runs the three-stage pipeline: organizations first, then every
// organization's workspaces, then every workspace's runs. Stages two and
// three fan out concurrently; the client's request budget bounds how many
// requests are in flight. The first fatal error in any stage cancels the
// stage's siblings and fails the whole run; no partial snapshot is produced.
type Collector struct {
	fetcher Fetcher
	baseURL string
	logger  zerolog.Logger
}

// New creates a collector backed by the given Terraform Cloud client.
func New(c *client.Client) *Collector {
	return NewWithFetcher(pagination.New(c), c.BaseURL())
}

// NewWithFetcher creates a collector on a custom fetcher (for testing).
func NewWithFetcher(fetcher Fetcher, baseURL string) *Collector {
	return &Collector{
		fetcher: fetcher,
		baseURL: baseURL,
		logger:  logging.NewLogger(logging.ComponentCollector),
	}
}

// Collect fetches the full hierarchy and assembles the snapshot. It returns
// only after every fetch goroutine has exited.
func (c *Collector) Collect(ctx context.Context) (*snapshot.Snapshot, error) {
	c.logger.Info().Msg("Starting data collection")

	organizations, err := c.fetchOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	workspaces, err := c.fetchWorkspaces(ctx, organizations)
	if err != nil {
		return nil, err
	}

	runs, err := c.fetchRuns(ctx, organizations, workspaces)
	if err != nil {
		return nil, err
	}

	snap := snapshot.Build(organizations, workspaces, runs)

	c.logger.Info().
		Int("organizations", snap.Summary.TotalOrganizations).
		Int("workspaces", snap.Summary.TotalWorkspaces).
		Int("runs", snap.Summary.TotalRuns).
		Msg("Data collection complete")

	return snap, nil
}

// fetchOrganizations runs stage one: a single paginated walk of the
// organizations collection.
func (c *Collector) fetchOrganizations(ctx context.Context) ([]client.Resource, error) {
	c.logger.Info().Msg("Fetching organizations")

	organizations, err := c.fetcher.FetchAll(ctx, c.baseURL+"/organizations", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch organizations: %w", err)
	}

	c.logger.Info().Int("count", len(organizations)).Msg("Organizations fetched")
	return organizations, nil
}

// fetchWorkspaces runs stage two: one paginated walk per organization,
// fanned out concurrently. Results preserve each organization's position.
func (c *Collector) fetchWorkspaces(ctx context.Context, organizations []client.Resource) (map[string][]client.Resource, error) {
	for _, org := range organizations {
		if org.Name() == "" {
			return nil, fmt.Errorf("organization %s has no name attribute", org.ID)
		}
	}

	results := make([][]client.Resource, len(organizations))

	g, gctx := errgroup.WithContext(ctx)
	for i, org := range organizations {
		i := i
		name := org.Name()

		g.Go(func() error {
			workspacesURL := fmt.Sprintf("%s/organizations/%s/workspaces", c.baseURL, url.PathEscape(name))
			params := url.Values{"include": {workspaceInclude}}

			items, err := c.fetcher.FetchAll(gctx, workspacesURL, params)
			if err != nil {
				return fmt.Errorf("fetch workspaces for organization %q: %w", name, err)
			}

			c.logger.Info().Str("organization", name).Int("count", len(items)).Msg("Workspaces fetched")
			results[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	workspaces := make(map[string][]client.Resource, len(organizations))
	for i, org := range organizations {
		items := results[i]
		if items == nil {
			items = []client.Resource{}
		}
		workspaces[org.Name()] = items
	}
	return workspaces, nil
}

// runTarget identifies one workspace whose runs are fetched in stage three.
type runTarget struct {
	organization string
	workspace    string
	workspaceID  string
}

// fetchRuns runs stage three: one paginated walk per (organization,
// workspace) pair, fanned out concurrently across all pairs.
func (c *Collector) fetchRuns(ctx context.Context, organizations []client.Resource, workspaces map[string][]client.Resource) (map[string]map[string]snapshot.WorkspaceRuns, error) {
	var targets []runTarget
	for _, org := range organizations {
		for _, ws := range workspaces[org.Name()] {
			name := ws.Name()
			if name == "" {
				return nil, fmt.Errorf("workspace %s in organization %q has no name attribute", ws.ID, org.Name())
			}
			targets = append(targets, runTarget{
				organization: org.Name(),
				workspace:    name,
				workspaceID:  ws.ID,
			})
		}
	}

	results := make([][]client.Resource, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			runsURL := fmt.Sprintf("%s/workspaces/%s/runs", c.baseURL, url.PathEscape(target.workspaceID))
			params := url.Values{"include": {runInclude}}

			items, err := c.fetcher.FetchAll(gctx, runsURL, params)
			if err != nil {
				return fmt.Errorf("fetch runs for workspace %q (%s) in organization %q: %w",
					target.workspace, target.workspaceID, target.organization, err)
			}

			c.logger.Info().
				Str("organization", target.organization).
				Str("workspace", target.workspace).
				Int("count", len(items)).
				Msg("Runs fetched")
			results[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	runs := make(map[string]map[string]snapshot.WorkspaceRuns)
	for i, target := range targets {
		items := results[i]
		if items == nil {
			items = []client.Resource{}
		}

		byWorkspace, ok := runs[target.organization]
		if !ok {
			byWorkspace = make(map[string]snapshot.WorkspaceRuns)
			runs[target.organization] = byWorkspace
		}
		byWorkspace[target.workspace] = snapshot.WorkspaceRuns{
			WorkspaceID: target.workspaceID,
			Runs:        items,
		}
	}
	return runs, nil
}
