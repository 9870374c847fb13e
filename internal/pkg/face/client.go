package face

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the external recognition provider over HTTP. All
// calls are bounded by the configured timeout; a slow provider aborts
// the whole check-in rather than hanging it.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError represents a recognition provider error response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("face API error [%d]: %s", e.StatusCode, e.Message)
}

type searchRequest struct {
	GalleryID string `json:"gallery_id"`
	Image     string `json:"image"` // base64-encoded capture
}

// Search implements Recognizer.
func (c *Client) Search(ctx context.Context, image []byte, galleryID string) (SearchResult, error) {
	body, err := json.Marshal(searchRequest{
		GalleryID: galleryID,
		Image:     base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("face search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return SearchResult{}, &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SearchResult{}, fmt.Errorf("failed to decode search response: %w", err)
	}
	return result, nil
}
