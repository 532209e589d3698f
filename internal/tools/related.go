package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tommybobb/eve-uni-mcp/internal/admission"
	"github.com/tommybobb/eve-uni-mcp/internal/wiki"
)

// RelatedTool handles the get_related_pages MCP tool.
type RelatedTool struct {
	gate   *admission.Gate
	wiki   *wiki.Client
	limits Limits
}

// NewRelatedTool creates a RelatedTool.
func NewRelatedTool(gate *admission.Gate, client *wiki.Client, limits Limits) *RelatedTool {
	return &RelatedTool{gate: gate, wiki: client, limits: limits}
}

// Definition returns the MCP tool definition for registration.
func (t *RelatedTool) Definition() mcp.Tool {
	return mcp.NewTool("get_related_pages",
		mcp.WithDescription("Find pages that link to a specific wiki page"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Page title to find related pages for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of results (1-500, default: 20)"),
		),
	)
}

// Handle processes the get_related_pages tool call.
func (t *RelatedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if rejected := admit(ctx, t.gate, func() *admission.FieldError {
		return admission.RequireString("title", title, t.limits.TextField)
	}); rejected != nil {
		return rejected, nil
	}

	limit := clampLimit(intArg(req, "limit", 20), 20, 500)

	titles, err := t.wiki.Backlinks(ctx, title, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(titles) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No pages link to '%s'.", title)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Pages linking to '%s'\n\nFound %d pages:\n\n", title, len(titles))
	for _, t := range titles {
		fmt.Fprintf(&sb, "- %s\n", t)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
