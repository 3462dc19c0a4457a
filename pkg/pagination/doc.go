// Package pagination walks cursor-linked Terraform Cloud collections.
//
// The API links pages through a links.next locator rather than a page count,
// so a collection is walked strictly in chain order: page N+1 is requested
// only after page N's response has been consumed. Concurrency across
// collections lives one level up, in the collector's fan-out stages.
//
// Example usage:
//
//	pager := pagination.New(tfcClient)
//	items, err := pager.FetchAll(ctx, baseURL+"/organizations", nil)
//
// The pager:
//   - Applies the initial query parameters to the first request only; a next
//     locator is self-contained and already encodes filters and cursors
//   - Flattens items in first-seen page order, without deduplication
//   - Stops when a page carries no next locator
//
// Termination assumes the remote next-chain is finite and non-cyclic; the
// pager performs no cycle detection.
package pagination
