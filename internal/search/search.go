package search

import "context"

// Listing is one shopping-search result. Third-party schemas are consumed
// defensively: every field is optional and a missing price stays nil.
type Listing struct {
	Title          string   `json:"title"`
	Source         string   `json:"source,omitempty"`
	ExtractedPrice *float64 `json:"extracted_price,omitempty"`
	ProductLink    string   `json:"product_link,omitempty"`
	Thumbnail      string   `json:"thumbnail,omitempty"`
}

// Searcher defines the interface for shopping-search operations
type Searcher interface {
	// Search runs a shopping search for the given query and returns the
	// listings in result order
	Search(ctx context.Context, query string) ([]Listing, error)
}
