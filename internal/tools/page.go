package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tommybobb/eve-uni-mcp/internal/admission"
	"github.com/tommybobb/eve-uni-mcp/internal/wiki"
)

// PageTool handles the get_eve_wiki_page MCP tool.
type PageTool struct {
	gate   *admission.Gate
	wiki   *wiki.Client
	limits Limits
}

// NewPageTool creates a PageTool.
func NewPageTool(gate *admission.Gate, client *wiki.Client, limits Limits) *PageTool {
	return &PageTool{gate: gate, wiki: client, limits: limits}
}

// Definition returns the MCP tool definition for registration.
func (t *PageTool) Definition() mcp.Tool {
	return mcp.NewTool("get_eve_wiki_page",
		mcp.WithDescription(
			"Get the full content of a specific EVE University Wiki page in markdown format",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Exact page title (e.g., 'Drake', 'Mining', 'Wormholes')"),
		),
	)
}

// Handle processes the get_eve_wiki_page tool call.
func (t *PageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if rejected := admit(ctx, t.gate, func() *admission.FieldError {
		return admission.RequireString("title", title, t.limits.TextField)
	}); rejected != nil {
		return rejected, nil
	}

	page, err := t.wiki.PageMarkdown(ctx, title)
	if err != nil {
		if err == wiki.ErrPageMissing {
			return mcp.NewToolResultError(fmt.Sprintf(
				"The page '%s' might not exist. Try searching first.", title,
			)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", page.Title, page.URL)
	if len(page.Categories) > 5 {
		page.Categories = page.Categories[:5]
	}
	if len(page.Categories) > 0 {
		fmt.Fprintf(&sb, "**Categories:** %s\n\n", strings.Join(page.Categories, ", "))
	}
	sb.WriteString("---\n\n")
	sb.WriteString(page.Markdown)
	return mcp.NewToolResultText(sb.String()), nil
}
