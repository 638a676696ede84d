package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured means no document search backend is wired up. Callers
// must treat it as "no content available" and degrade, never as a fault.
var ErrNotConfigured = errors.New("document search not configured")

// Searcher finds course content for a topic. An unconfigured searcher is a
// normal deployment mode, not an error state.
type Searcher interface {
	Search(ctx context.Context, topic string, topK int) (string, error)
}

// NoSearch is the capability-checked "not configured" variant.
type NoSearch struct{}

func (NoSearch) Search(context.Context, string, int) (string, error) {
	return "", ErrNotConfigured
}

// SearchClient queries a document-search sidecar over HTTP. Its indexing and
// embedding internals are its own business.
type SearchClient struct {
	baseURL string
	client  *http.Client
}

func NewSearchClient(baseURL string) *SearchClient {
	return &SearchClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type searchResponse struct {
	Content string `json:"content"`
}

func (c *SearchClient) Search(ctx context.Context, topic string, topK int) (string, error) {
	q := url.Values{}
	q.Set("topic", topic)
	q.Set("top_k", strconv.Itoa(topK))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling search service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search service returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding search response: %w", err)
	}

	return parsed.Content, nil
}
