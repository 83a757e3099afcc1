// Package asta provides a client for the ASTA MCP API, the Semantic Scholar
// tool server used to look up scholars and their papers.
package asta

import "encoding/json"

// MCPRequest is a JSON-RPC tools/call request.
type MCPRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      int       `json:"id"`
	Method  string    `json:"method"`
	Params  MCPParams `json:"params"`
}

// MCPParams names the tool and its arguments.
type MCPParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// MCPResponse is one JSON-RPC message from the SSE stream.
type MCPResponse struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      int        `json:"id"`
	Result  *MCPResult `json:"result,omitempty"`
	Error   *MCPError  `json:"error,omitempty"`
}

// MCPResult holds tool output as content blocks.
type MCPResult struct {
	Content []MCPContent `json:"content"`
}

// MCPContent is a single content block. Only "text" blocks carry data.
type MCPContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MCPError is a JSON-RPC error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Author is a Semantic Scholar author.
type Author struct {
	AuthorID      string   `json:"authorId,omitempty"`
	Name          string   `json:"name"`
	Affiliations  []string `json:"affiliations,omitempty"`
	PaperCount    int      `json:"paperCount,omitempty"`
	CitationCount int      `json:"citationCount,omitempty"`
	HIndex        int      `json:"hIndex,omitempty"`
}

// Paper is a paper with its author list.
type Paper struct {
	PaperID string   `json:"paperId"`
	Title   string   `json:"title"`
	Year    int      `json:"year,omitempty"`
	Venue   string   `json:"venue,omitempty"`
	Authors []Author `json:"authors,omitempty"`
}

// AuthorNames returns the paper's author names in order, skipping blanks.
func (p Paper) AuthorNames() []string {
	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// AuthorsResponse is the result of an author search.
type AuthorsResponse struct {
	Authors []Author `json:"authors"`
}

// AuthorPapersResponse is the result of an author paper listing.
type AuthorPapersResponse struct {
	AuthorID string  `json:"authorId"`
	Papers   []Paper `json:"papers"`
}

// resultList decodes tool output that is either {"result": [...]} or a bare
// array.
func resultList[T any](data []byte) ([]T, error) {
	var wrapper struct {
		Result []T `json:"result"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Result != nil {
		return wrapper.Result, nil
	}

	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}
