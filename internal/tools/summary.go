package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tommybobb/eve-uni-mcp/internal/admission"
	"github.com/tommybobb/eve-uni-mcp/internal/wiki"
)

// SummaryTool handles the get_eve_wiki_summary MCP tool.
type SummaryTool struct {
	gate   *admission.Gate
	wiki   *wiki.Client
	limits Limits
}

// NewSummaryTool creates a SummaryTool.
func NewSummaryTool(gate *admission.Gate, client *wiki.Client, limits Limits) *SummaryTool {
	return &SummaryTool{gate: gate, wiki: client, limits: limits}
}

// Definition returns the MCP tool definition for registration.
func (t *SummaryTool) Definition() mcp.Tool {
	return mcp.NewTool("get_eve_wiki_summary",
		mcp.WithDescription(
			"Get a brief summary/introduction of a wiki page without full content",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Page title to get summary for"),
		),
	)
}

// Handle processes the get_eve_wiki_summary tool call.
func (t *SummaryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if rejected := admit(ctx, t.gate, func() *admission.FieldError {
		return admission.RequireString("title", title, t.limits.TextField)
	}); rejected != nil {
		return rejected, nil
	}

	summary, err := t.wiki.Summary(ctx, title)
	if err != nil {
		if err == wiki.ErrPageMissing {
			return mcp.NewToolResultError(fmt.Sprintf("Page '%s' does not exist.", title)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	extract := summary.Extract
	if extract == "" {
		extract = "No summary available."
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"# %s\n\n%s\n\n%s", summary.Title, summary.URL, extract,
	)), nil
}
