package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	figmaAPIBase = "https://api.figma.com/v1"

	maxRetries          = 3
	maxNodesPerRequest  = 100
	maxDownloadBytes    = 32 << 20
	defaultRetryBackoff = 2 * time.Second
)

// Client represents a Figma API client with configured HTTP settings for reliable communication
// with the Figma API. It includes retry logic and optimized transport settings for handling large files.
type Client struct {
	accessToken  string
	baseURL      string
	retryBackoff time.Duration
	httpClient   *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryBackoff sets the base delay between retries. Attempt n waits n times the backoff.
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) { c.retryBackoff = d }
}

// NewClient creates a new Figma API client with the provided personal access token.
// The client is configured with optimized HTTP transport settings including connection pooling,
// disabled HTTP/2 (for large file stability), and a 10-minute timeout for very large files.
func NewClient(accessToken string, opts ...ClientOption) *Client {
	// Configure transport for better handling of large files
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		DisableKeepAlives:   false,
		MaxIdleConnsPerHost: 10,
		// Disable HTTP/2 to avoid stream errors with large files
		ForceAttemptHTTP2: false,
	}

	c := &Client{
		accessToken:  accessToken,
		baseURL:      figmaAPIBase,
		retryBackoff: defaultRetryBackoff,
		httpClient: &http.Client{
			Timeout:   10 * time.Minute, // Increased timeout for very large files
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports both /file/ and /design/ URL patterns (e.g., figma.com/file/ABC123/Design-Name).
// Returns an error if the URL format is invalid or if the URL doesn't match the expected Figma domain pattern.
func ExtractFileKey(figmaURL string) (string, error) {
	// Anchored to ensure the entire URL matches the expected pattern and prevent bypass attacks.
	re := regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design)/([A-Za-z0-9]+)(?:/|$|\?|#)`)
	matches := re.FindStringSubmatch(figmaURL)

	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Figma URL format: must be a valid figma.com URL with /file/ or /design/ path")
	}

	return matches[1], nil
}

var (
	nodeIDQuery = regexp.MustCompile(`[?&]node-id=([^&#]*)`)
	nodeIDHash  = regexp.MustCompile(`#([0-9]+[:-][0-9]+(?:,\s*[0-9]+[:-][0-9]+)*)$`)
	nodeIDPath  = regexp.MustCompile(`/nodes/([^?#]+)`)
)

// ExtractNodeIDs returns the node ids referenced by a Figma URL, from the node-id query
// parameter, a #id fragment or a /nodes/ path segment. URL-style ids ("12-34") are
// normalized to API ids ("12:34") and duplicates are removed. A URL without node ids
// yields an empty slice.
func ExtractNodeIDs(figmaURL string) ([]string, error) {
	var raw string
	if m := nodeIDQuery.FindStringSubmatch(figmaURL); m != nil {
		decoded, err := url.QueryUnescape(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid node-id parameter: %w", err)
		}
		raw = decoded
	} else if m := nodeIDHash.FindStringSubmatch(figmaURL); m != nil {
		raw = m[1]
	} else if m := nodeIDPath.FindStringSubmatch(figmaURL); m != nil {
		raw = m[1]
	}

	ids := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		ids = append(ids, strings.Replace(id, "-", ":", 1))
	}

	return deduplicateNodeIDs(ids), nil
}

func deduplicateNodeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}

// GetFileNodes retrieves the given nodes of a file. Nodes that do not exist are present in
// the response with a nil value. Requests are batched by 100 ids.
func (c *Client) GetFileNodes(ctx context.Context, fileKey string, ids []string) (*NodesResponse, error) {
	result := &NodesResponse{Nodes: make(map[string]*NodeData, len(ids))}

	for i := 0; i < len(ids); i += maxNodesPerRequest {
		end := i + maxNodesPerRequest
		if end > len(ids) {
			end = len(ids)
		}

		query := url.Values{}
		query.Set("ids", strings.Join(ids[i:end], ","))
		endpoint := fmt.Sprintf("%s/files/%s/nodes?%s", c.baseURL, url.PathEscape(fileKey), query.Encode())

		var batch NodesResponse
		if err := c.getJSON(ctx, endpoint, &batch); err != nil {
			return nil, err
		}

		result.Name = batch.Name
		result.LastModified = batch.LastModified
		result.Version = batch.Version
		for id, data := range batch.Nodes {
			result.Nodes[id] = data
		}
	}

	return result, nil
}

// GetImages asks Figma to render the given nodes and returns the download URL of each
// rendering. SVG renderings keep layer names as element ids.
func (c *Client) GetImages(ctx context.Context, fileKey string, ids []string, format string, scale float64) (*ImagesResponse, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("format", format)
	query.Set("scale", strconv.FormatFloat(scale, 'f', -1, 64))
	if format == "svg" {
		query.Set("svg_include_id", "true")
		query.Set("svg_simplify_stroke", "true")
	}
	endpoint := fmt.Sprintf("%s/images/%s?%s", c.baseURL, url.PathEscape(fileKey), query.Encode())

	var resp ImagesResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Err != "" {
		return nil, fmt.Errorf("render failed: %s", resp.Err)
	}

	return &resp, nil
}

// Download fetches a rendered image. Image URLs are pre-signed, so no token is sent.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return c.get(ctx, imageURL, false)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	body, err := c.get(ctx, endpoint, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// get performs a GET request with automatic retry logic (up to 3 attempts) and linear backoff
// for rate limits (429) and server errors (5xx).
func (c *Client) get(ctx context.Context, endpoint string, authenticate bool) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * c.retryBackoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if authenticate {
			req.Header.Set("X-Figma-Token", c.accessToken)
		}

		body, status, err := c.do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("attempt %d failed: %w", attempt, err)
			continue
		}

		if status != http.StatusOK {
			lastErr = fmt.Errorf("API request failed with status %d: %s", status, strings.TrimSpace(string(body)))
			if status == http.StatusTooManyRequests || status >= 500 {
				continue
			}
			return nil, lastErr
		}

		return body, nil
	}

	return nil, lastErr
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}
