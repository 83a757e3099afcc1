package asta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// sseText wraps a tool result as a single SSE data line.
func sseText(id int, text string) string {
	resp := MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  &MCPResult{Content: []MCPContent{{Type: "text", Text: text}}},
	}
	data, _ := json.Marshal(resp)
	return "event: message\ndata: " + string(data) + "\n\n"
}

// newTestClient serves handler and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithAPIKey("test-key"), WithRateLimit(0))
}

func TestGetAuthorPapers(t *testing.T) {
	var got MCPRequest
	var apiKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": ping\n\n")
		fmt.Fprint(w, sseText(got.ID, `{"result":[
			{"paperId":"p1","title":"Graphs","year":2021,"authors":[{"authorId":"1","name":"Jane Doe"},{"name":"Bo Smith"}]},
			{"paperId":"p2","title":"Trees","authors":[{"name":"Jane Doe"},{"name":""}]}
		]}`))
	})

	resp, err := c.GetAuthorPapers(context.Background(), "1", 0)
	if err != nil {
		t.Fatalf("GetAuthorPapers() error = %v", err)
	}

	if apiKey != "test-key" {
		t.Errorf("x-api-key = %q, want test-key", apiKey)
	}
	if got.Method != "tools/call" || got.Params.Name != "get_author_papers" {
		t.Errorf("request = %s %s, want tools/call get_author_papers", got.Method, got.Params.Name)
	}
	if got.Params.Arguments["author_id"] != "1" {
		t.Errorf("author_id = %v, want 1", got.Params.Arguments["author_id"])
	}
	if limit, _ := got.Params.Arguments["limit"].(float64); int(limit) != DefaultAuthorPapersLimit {
		t.Errorf("limit = %v, want %d", got.Params.Arguments["limit"], DefaultAuthorPapersLimit)
	}

	if resp.AuthorID != "1" {
		t.Errorf("AuthorID = %q, want 1", resp.AuthorID)
	}
	if len(resp.Papers) != 2 {
		t.Fatalf("len(Papers) = %d, want 2", len(resp.Papers))
	}
	names := resp.Papers[0].AuthorNames()
	if strings.Join(names, ",") != "Jane Doe,Bo Smith" {
		t.Errorf("AuthorNames() = %v", names)
	}
	if n := len(resp.Papers[1].AuthorNames()); n != 1 {
		t.Errorf("blank author not skipped: %d names", n)
	}
}

func TestGetAuthorPapers_EmptyID(t *testing.T) {
	c := NewClient()
	_, err := c.GetAuthorPapers(context.Background(), "", 10)
	if !IsNotFound(err) {
		t.Errorf("GetAuthorPapers(\"\") error = %v, want not found", err)
	}
}

func TestSearchAuthors_BareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseText(1, `[{"authorId":"42","name":"Jane Doe","paperCount":7}]`))
	})

	resp, err := c.SearchAuthors(context.Background(), "Jane Doe", 5)
	if err != nil {
		t.Fatalf("SearchAuthors() error = %v", err)
	}
	if len(resp.Authors) != 1 || resp.Authors[0].AuthorID != "42" || resp.Authors[0].PaperCount != 7 {
		t.Errorf("Authors = %+v", resp.Authors)
	}
}

func TestHTTPErrors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusUnauthorized, IsAuthError, "auth"},
		{http.StatusForbidden, IsAuthError, "forbidden"},
		{http.StatusTooManyRequests, IsRateLimited, "rate limited"},
		{http.StatusNotFound, IsNotFound, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.GetAuthorPapers(context.Background(), "1", 1)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("error %v not classified as %s", err, tt.name)
			}
		})
	}
}

func TestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.GetAuthorPapers(context.Background(), "1", 1)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", apiErr.StatusCode)
	}
	if !IsRetryable(err) {
		t.Error("5xx should be retryable")
	}
}

func TestMCPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `data: {"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"bad author"}}`+"\n")
	})
	_, err := c.GetAuthorPapers(context.Background(), "1", 1)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != "mcp_error" || apiErr.Message != "bad author" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ": ping\n\n")
	})
	_, err := c.SearchAuthors(context.Background(), "x", 1)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestCombineStreamingResults(t *testing.T) {
	got, err := combineStreamingResults([]string{`{"a":1}`, `{"b":2}`})
	if err != nil {
		t.Fatalf("combineStreamingResults() error = %v", err)
	}
	if string(got) != `{"result":[{"a":1},{"b":2}]}` {
		t.Errorf("combineStreamingResults() = %s", got)
	}

	if _, err := combineStreamingResults(nil); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("empty input error = %v, want ErrInvalidResponse", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"auth", ErrAuthError, false},
		{"not found", &APIError{StatusCode: 404}, false},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), false},
		{"rate limited", ErrRateLimited, true},
		{"network", ErrNetworkError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	e := &APIError{StatusCode: 500, Code: "api_error", Message: "HTTP 500", AuthorID: "7"}
	if !strings.Contains(e.Error(), "author: 7") {
		t.Errorf("Error() = %q, want author context", e.Error())
	}
}
