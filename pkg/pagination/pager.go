package pagination

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/obsidianops/tfc-collector/pkg/client"
	"github.com/obsidianops/tfc-collector/pkg/logging"
	"github.com/rs/zerolog"
)

// PageFetcher is the single-page contract the pager drives. *client.Client
// implements it.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string, params url.Values) (*client.Page, error)
}

// Pager flattens a paginated collection by following next locators until the
// chain ends.
type Pager struct {
	fetcher PageFetcher
	logger  zerolog.Logger
}

// New creates a new pager on top of the given fetcher.
func New(fetcher PageFetcher) *Pager {
	return &Pager{
		fetcher: fetcher,
		logger:  logging.NewLogger(logging.ComponentPager),
	}
}

// FetchAll returns every resource in the collection rooted at rawURL, in
// first-seen page order. params apply to the first request only; once a next
// locator appears it replaces both the URL and the query.
func (p *Pager) FetchAll(ctx context.Context, rawURL string, params url.Values) ([]client.Resource, error) {
	start := time.Now()

	var items []client.Resource
	current := rawURL
	pages := 0

	for current != "" {
		page, err := p.fetcher.Get(ctx, current, params)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", pages+1, rawURL, err)
		}

		items = append(items, page.Data...)
		pages++

		current = page.Links.Next
		params = nil
	}

	p.logger.Debug().
		Str("url", rawURL).
		Int("pages", pages).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Collection fetched")

	return items, nil
}
