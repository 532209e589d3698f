package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tommybobb/eve-uni-mcp/internal/admission"
	"github.com/tommybobb/eve-uni-mcp/internal/wiki"
)

// SearchTool handles the search_eve_wiki MCP tool.
type SearchTool struct {
	gate   *admission.Gate
	wiki   *wiki.Client
	limits Limits
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(gate *admission.Gate, client *wiki.Client, limits Limits) *SearchTool {
	return &SearchTool{gate: gate, wiki: client, limits: limits}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_eve_wiki",
		mcp.WithDescription(
			"Search the EVE University Wiki for articles about ships, mechanics, guides, etc.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term (e.g., 'Drake', 'exploration guide', 'wormhole mechanics')"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of results to return (1-50, default: 10)"),
		),
	)
}

// Handle processes the search_eve_wiki tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if rejected := admit(ctx, t.gate, func() *admission.FieldError {
		return admission.RequireString("query", query, t.limits.TextField)
	}); rejected != nil {
		return rejected, nil
	}

	limit := clampLimit(intArg(req, "limit", 10), 10, 50)

	results, err := t.wiki.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No results found for '%s'. Try different search terms or check spelling.", query,
		)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Search Results for '%s'\n\nFound %d results:\n\n", query, len(results))
	for _, r := range results {
		fmt.Fprintf(&sb, "**%s**\n%s\n%s\n\n", r.Title, r.Description, r.URL)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
