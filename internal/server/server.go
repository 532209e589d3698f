// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the concrete wiki client,
// cache, and admission gate and injects them into the tools and prompts
// that depend on them. No business logic lives here, only wiring.
package server

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/tommybobb/eve-uni-mcp/internal/admission"
	"github.com/tommybobb/eve-uni-mcp/internal/config"
	"github.com/tommybobb/eve-uni-mcp/internal/prompts"
	"github.com/tommybobb/eve-uni-mcp/internal/tools"
	"github.com/tommybobb/eve-uni-mcp/internal/wiki"
)

// Version is set at build time via ldflags.
var Version = "1.2.0"

// serviceName identifies the server in MCP handshakes and health
// responses.
const serviceName = "eve-university-wiki-mcp"

// New creates and configures the MCP server with all tools and prompts
// registered. credential decides how calls authenticate: the stdio
// transport passes NoCredential, the HTTP transport a bearer token.
//
// The returned cleanup function closes the page cache and must be
// called on shutdown (typically via defer). It is always non-nil and
// safe to call even when caching is disabled.
func New(cfg config.Config, credential admission.Credential, logger *slog.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	// --- Create shared dependencies ---

	cleanup := noop
	var cache *wiki.Cache
	if cfg.CacheDir != "" {
		c, err := wiki.OpenCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			// The server works without a cache, just slower.
			logger.Warn("page cache disabled", "err", err)
		} else {
			cache = c
			cleanup = func() {
				if err := c.Close(); err != nil {
					logger.Warn("page cache close", "err", err)
				}
			}
		}
	}

	client := wiki.NewClient(cfg.WikiAPI, cfg.WikiTimeout, cache, logger)

	limiter := admission.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	gate := admission.NewGate(credential, limiter, logger)

	limits := tools.Limits{
		ShortField: cfg.MaxShortField,
		TextField:  cfg.MaxTextField,
		Freeform:   cfg.MaxFreeformLen,
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		serviceName,
		Version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register wiki tools ---

	searchTool := tools.NewSearchTool(gate, client, limits)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	pageTool := tools.NewPageTool(gate, client, limits)
	s.AddTool(pageTool.Definition(), pageTool.Handle)

	summaryTool := tools.NewSummaryTool(gate, client, limits)
	s.AddTool(summaryTool.Definition(), summaryTool.Handle)

	categoryTool := tools.NewCategoryTool(gate, client, limits)
	s.AddTool(categoryTool.Definition(), categoryTool.Handle)

	relatedTool := tools.NewRelatedTool(gate, client, limits)
	s.AddTool(relatedTool.Definition(), relatedTool.Handle)

	// --- Register the plan tool ---

	planTool := tools.NewPlanTool(gate, client, limits)
	s.AddTool(planTool.Definition(), planTool.Handle)

	// --- Register prompts ---

	newbroPrompt := prompts.NewNewbroPrompt()
	s.AddPrompt(newbroPrompt.Definition(), newbroPrompt.Handle)

	return s, cleanup, nil
}

// noop is the default cleanup when no cache was opened.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the wiki tools effectively.
func serverInstructions() string {
	return fmt.Sprintf(`You have access to the EVE University Wiki MCP server (v%s).

## Wiki tools
- search_eve_wiki: find articles by keyword. Start here when the exact
  page title is unknown.
- get_eve_wiki_page: fetch a full page as markdown. Use the exact title
  from a search result.
- get_eve_wiki_summary: fetch only the introduction of a page. Prefer
  this when a quick answer is enough.
- browse_eve_wiki_category: list pages in a category such as 'Ships'
  or 'Exploration'.
- get_related_pages: find pages that link to a given page.

Cite the page URL whenever you quote wiki content.

## Newbro mining plans
generate_newbro_mining_plan builds a conservative, mining-only
onboarding plan for a brand-new Alpha player from their schedule and
ISK. The server keeps no session state: after each play session,
resubmit the call with ship_lost, isk_earned, and blockers describing
what happened, and the plan adapts. Identical inputs always produce the
identical plan, so resubmitting without changes is safe.

Blocker tags: no_mining_ship, no_modules, cant_find_belt, low_isk,
confused. Only report tags the player actually described.`, Version)
}
