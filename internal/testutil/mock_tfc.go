// Package testutil provides testing utilities for the Terraform Cloud
// collector.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/obsidianops/tfc-collector/pkg/client"
)

const mediaType = "application/vnd.api+json"

// MockResponse defines the behavior for a canned endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// rateLimitSpec makes a path answer 429 for a number of requests before its
// real handler takes over.
type rateLimitSpec struct {
	remaining  int
	retryAfter string
	withHeader bool
}

// MockTFC is a configurable fake Terraform Cloud API server.
type MockTFC struct {
	server     *httptest.Server
	mu         sync.Mutex
	handlers   map[string]http.HandlerFunc
	pages      map[string][][]client.Resource
	rateLimits map[string]*rateLimitSpec

	// Tracking
	RequestCount      int
	Requests          []string
	LastRequestHeader http.Header
}

// NewMockTFC creates a new fake Terraform Cloud server.
func NewMockTFC() *MockTFC {
	mock := &MockTFC{
		handlers:   make(map[string]http.HandlerFunc),
		pages:      make(map[string][][]client.Resource),
		rateLimits: make(map[string]*rateLimitSpec),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.route))
	return mock
}

// URL returns the fake server URL, usable as the client's base URL.
func (m *MockTFC) URL() string {
	return m.server.URL
}

// Close shuts down the fake server.
func (m *MockTFC) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockTFC) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockTFC) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple canned response for a path.
func (m *MockTFC) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetResourcePages serves a paginated collection at path, one resource slice
// per page, chained by next locators that point back at this server.
func (m *MockTFC) SetResourcePages(path string, pages ...[]client.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[path] = pages
}

// SetRateLimit makes the next count requests to path answer 429. retryAfter
// is the Retry-After header value; pass "" to omit the header entirely.
func (m *MockTFC) SetRateLimit(path string, count int, retryAfter string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimits[path] = &rateLimitSpec{
		remaining:  count,
		retryAfter: retryAfter,
		withHeader: retryAfter != "",
	}
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockTFC) GetRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

// RequestsTo returns the request URLs (path plus query) issued against path,
// in arrival order.
func (m *MockTFC) RequestsTo(path string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []string
	for _, raw := range m.Requests {
		if strings.SplitN(raw, "?", 2)[0] == path {
			matched = append(matched, raw)
		}
	}
	return matched
}

// route dispatches a request to its rate-limit gate, custom handler, or
// paginated collection, in that order.
func (m *MockTFC) route(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.RequestCount++
	m.Requests = append(m.Requests, r.URL.String())
	m.LastRequestHeader = r.Header.Clone()

	var limited bool
	var limit rateLimitSpec
	if spec, ok := m.rateLimits[r.URL.Path]; ok && spec.remaining > 0 {
		spec.remaining--
		limited = true
		limit = *spec
	}

	handler := m.handlers[r.URL.Path]
	pages, paged := m.pages[r.URL.Path]
	m.mu.Unlock()

	if limited {
		if limit.withHeader {
			w.Header().Set("Retry-After", limit.retryAfter)
		}
		w.Header().Set("Content-Type", mediaType)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors":[{"status":"429","title":"Throttled"}]}`))
		return
	}

	if handler != nil {
		handler(w, r)
		return
	}

	if paged {
		m.servePage(w, r, pages)
		return
	}

	w.Header().Set("Content-Type", mediaType)
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"errors":[{"status":"404","title":"Not Found"}]}`))
}

// servePage writes the requested page of a collection, linking to the next
// page when one remains.
func (m *MockTFC) servePage(w http.ResponseWriter, r *http.Request, pages [][]client.Resource) {
	pageNum := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			pageNum = n
		}
	}

	var items []client.Resource
	next := ""
	if len(pages) > 0 {
		if pageNum > len(pages) {
			pageNum = len(pages)
		}
		items = pages[pageNum-1]
		if pageNum < len(pages) {
			next = fmt.Sprintf("%s%s?page=%d", m.server.URL, r.URL.Path, pageNum+1)
		}
	}

	w.Header().Set("Content-Type", mediaType)
	w.WriteHeader(http.StatusOK)
	w.Write(PageBody(items, next))
}

// PageBody builds a raw list payload with an optional next locator.
func PageBody(items []client.Resource, next string) []byte {
	if items == nil {
		items = []client.Resource{}
	}

	page := client.Page{Data: items}
	page.Links.Next = next

	body, err := json.Marshal(page)
	if err != nil {
		panic(err)
	}
	return body
}

// Organization builds an organization resource with typical attributes.
func Organization(name string) client.Resource {
	return client.Resource{
		ID:   name,
		Type: "organizations",
		Attributes: map[string]any{
			"name":       name,
			"email":      name + "@example.com",
			"plan":       "free",
			"created-at": "2024-01-15T10:00:00.000Z",
		},
	}
}

// Workspace builds a workspace resource with typical attributes.
func Workspace(id, name string) client.Resource {
	return client.Resource{
		ID:   id,
		Type: "workspaces",
		Attributes: map[string]any{
			"name":              name,
			"terraform-version": "1.7.5",
			"execution-mode":    "remote",
			"auto-apply":        false,
			"created-at":        "2024-02-20T09:30:00.000Z",
		},
	}
}

// Run builds a run resource with typical attributes.
func Run(id, status string) client.Resource {
	return client.Resource{
		ID:   id,
		Type: "runs",
		Attributes: map[string]any{
			"status":     status,
			"message":    "Triggered via UI",
			"created-at": "2024-03-05T14:45:00.000Z",
		},
	}
}
