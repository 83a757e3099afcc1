package asta

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the ASTA MCP API base URL.
	BaseURL = "https://asta-tools.allen.ai/mcp/v1"

	// DefaultTimeout covers SSE streams, which ping every 15s while a tool runs.
	DefaultTimeout = 3 * time.Minute

	// RateLimit is 10 requests per second per ASTA documentation.
	RateLimit = 10.0

	// DefaultAuthorFields are the fields requested for author lookups.
	DefaultAuthorFields = "name,affiliations,paperCount,citationCount,hIndex"

	// DefaultPaperFields are the fields requested for author papers. The
	// author list is what the scraper turns into co-author records.
	DefaultPaperFields = "title,year,venue,authors"

	DefaultAuthorSearchLimit = 10
	DefaultAuthorPapersLimit = 100
)

// Client is a rate-limited HTTP client for the ASTA MCP API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	requestID  atomic.Int32
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithRateLimit overrides the request rate. A non-positive rps disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new ASTA MCP API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// parseSSEResponse extracts text content from an SSE/MCP response stream.
func parseSSEResponse(body io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	var text []string
	for scanner.Scan() {
		line := scanner.Text()

		// Pings, blank separators and event names carry no data.
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var resp MCPResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &resp); err != nil {
			continue
		}

		if resp.Error != nil {
			return nil, &APIError{
				StatusCode: resp.Error.Code,
				Code:       "mcp_error",
				Message:    resp.Error.Message,
			}
		}

		if resp.Result != nil {
			for _, content := range resp.Result.Content {
				if content.Type == "text" && content.Text != "" {
					text = append(text, content.Text)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading SSE stream: %w", err)
	}
	return text, nil
}

// combineStreamingResults joins streamed text blocks into one JSON document.
// Multiple blocks become {"result":[block, ...]}.
func combineStreamingResults(text []string) ([]byte, error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("%w: no content received", ErrInvalidResponse)
	}
	if len(text) == 1 {
		return []byte(text[0]), nil
	}

	var combined strings.Builder
	combined.WriteString(`{"result":[`)
	for i, t := range text {
		if i > 0 {
			combined.WriteString(",")
		}
		combined.WriteString(t)
	}
	combined.WriteString("]}")
	return []byte(combined.String()), nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "api_error",
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}

// callTool executes an MCP tool call and returns the raw JSON result.
func (c *Client) callTool(ctx context.Context, toolName string, args map[string]any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req := MCPRequest{
		JSONRPC: "2.0",
		ID:      int(c.requestID.Add(1)),
		Method:  "tools/call",
		Params: MCPParams{
			Name:      toolName,
			Arguments: args,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	text, err := parseSSEResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	return combineStreamingResults(text)
}

// SearchAuthors searches for authors by name.
func (c *Client) SearchAuthors(ctx context.Context, name string, limit int) (*AuthorsResponse, error) {
	if limit <= 0 {
		limit = DefaultAuthorSearchLimit
	}

	result, err := c.callTool(ctx, "search_authors_by_name", map[string]any{
		"name":   name,
		"fields": DefaultAuthorFields,
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}

	authors, err := resultList[Author](result)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing authors: %v", ErrInvalidResponse, err)
	}
	return &AuthorsResponse{Authors: authors}, nil
}

// GetAuthorPapers fetches an author's papers together with their author lists.
func (c *Client) GetAuthorPapers(ctx context.Context, authorID string, limit int) (*AuthorPapersResponse, error) {
	if authorID == "" {
		return nil, fmt.Errorf("%w: empty author id", ErrNotFound)
	}
	if limit <= 0 {
		limit = DefaultAuthorPapersLimit
	}

	result, err := c.callTool(ctx, "get_author_papers", map[string]any{
		"author_id":    authorID,
		"paper_fields": DefaultPaperFields,
		"limit":        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("author %s: %w", authorID, err)
	}

	papers, err := resultList[Paper](result)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing author papers: %v", ErrInvalidResponse, err)
	}
	return &AuthorPapersResponse{AuthorID: authorID, Papers: papers}, nil
}
