package client

import "encoding/json"

// Resource is one record returned by the Terraform Cloud API. Organizations,
// workspaces, and runs all share this shape and are distinguished by Type and
// by which attributes a consumer reads. A resource is immutable once fetched.
type Resource struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Attributes    map[string]any  `json:"attributes"`
	Relationships json.RawMessage `json:"relationships,omitempty"`
}

// Name returns the resource's name attribute, or "" when absent or not a
// string.
func (r Resource) Name() string {
	name, _ := r.Attributes["name"].(string)
	return name
}

// StringAttr returns the named attribute as a string, or fallback when the
// attribute is absent or not a string.
func (r Resource) StringAttr(key, fallback string) string {
	if v, ok := r.Attributes[key].(string); ok {
		return v
	}
	return fallback
}

// BoolAttr returns the named attribute as a bool, or false when absent.
func (r Resource) BoolAttr(key string) bool {
	v, _ := r.Attributes[key].(bool)
	return v
}

// PageLinks carries the pagination locators of a list payload. Next is empty
// on the final page.
type PageLinks struct {
	Next string `json:"next"`
}

// Page is one decoded list payload: the page's resources plus the locator of
// the next page. It exists only while a collection is being paginated.
type Page struct {
	Data     []Resource `json:"data"`
	Links    PageLinks  `json:"links"`
	Included []Resource `json:"included,omitempty"`
}
