package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultSerpAPIBaseURL = "https://serpapi.com"

// ErrNoAPIKey is returned when the client was built without an API key.
// Callers treat it like any other search failure and degrade to no data.
var ErrNoAPIKey = errors.New("serpapi api key is not configured")

// SerpAPI implements the Searcher interface using SerpAPI's google_shopping engine
type SerpAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSerpAPI creates a new SerpAPI Searcher instance. An empty key is allowed;
// every Search call will then fail with ErrNoAPIKey.
func NewSerpAPI(apiKey string) *SerpAPI {
	return NewSerpAPIWithClient(apiKey, defaultSerpAPIBaseURL, &http.Client{
		Timeout: 30 * time.Second,
	})
}

// NewSerpAPIWithClient creates a SerpAPI instance with a custom base URL and
// HTTP client for testing
func NewSerpAPIWithClient(apiKey, baseURL string, client *http.Client) *SerpAPI {
	if baseURL == "" {
		baseURL = defaultSerpAPIBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SerpAPI{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
	}
}

// serpListing mirrors the fields of a google_shopping result we consume
type serpListing struct {
	Title            string   `json:"title"`
	Source           string   `json:"source"`
	ExtractedPrice   *float64 `json:"extracted_price"`
	ProductLink      string   `json:"product_link"`
	Thumbnail        string   `json:"thumbnail"`
	SerpAPIThumbnail string   `json:"serpapi_thumbnail"`
}

type serpResponse struct {
	ShoppingResults []serpListing `json:"shopping_results"`
}

// Search runs the query against the google_shopping engine
func (s *SerpAPI) Search(ctx context.Context, query string) ([]Listing, error) {
	if s.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("hl", "en")
	params.Set("gl", "us")
	params.Set("api_key", s.apiKey)

	reqURL := fmt.Sprintf("%s/search.json?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling serpapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("serpapi error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	listings := make([]Listing, 0, len(parsed.ShoppingResults))
	for _, r := range parsed.ShoppingResults {
		thumbnail := r.Thumbnail
		if thumbnail == "" {
			thumbnail = r.SerpAPIThumbnail
		}
		listings = append(listings, Listing{
			Title:          r.Title,
			Source:         r.Source,
			ExtractedPrice: r.ExtractedPrice,
			ProductLink:    r.ProductLink,
			Thumbnail:      thumbnail,
		})
	}
	return listings, nil
}
