package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tommybobb/eve-uni-mcp/internal/admission"
	"github.com/tommybobb/eve-uni-mcp/internal/wiki"
)

// CategoryTool handles the browse_eve_wiki_category MCP tool.
type CategoryTool struct {
	gate   *admission.Gate
	wiki   *wiki.Client
	limits Limits
}

// NewCategoryTool creates a CategoryTool.
func NewCategoryTool(gate *admission.Gate, client *wiki.Client, limits Limits) *CategoryTool {
	return &CategoryTool{gate: gate, wiki: client, limits: limits}
}

// Definition returns the MCP tool definition for registration.
func (t *CategoryTool) Definition() mcp.Tool {
	return mcp.NewTool("browse_eve_wiki_category",
		mcp.WithDescription(
			"Browse pages in a specific category (e.g., Ships, Modules, Skills, Guides)",
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category name (e.g., 'Ships', 'Mining', 'PvP', 'Exploration')"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of pages to return (1-500, default: 50)"),
		),
	)
}

// Handle processes the browse_eve_wiki_category tool call.
func (t *CategoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")
	if rejected := admit(ctx, t.gate, func() *admission.FieldError {
		return admission.RequireString("category", category, t.limits.ShortField)
	}); rejected != nil {
		return rejected, nil
	}

	limit := clampLimit(intArg(req, "limit", 50), 50, 500)

	titles, err := t.wiki.Category(ctx, category, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(titles) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No pages found in Category:%s. The category might not exist or be empty.", category,
		)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Category: %s\n\nFound %d pages:\n\n", category, len(titles))
	for _, title := range titles {
		fmt.Fprintf(&sb, "- %s\n", title)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
