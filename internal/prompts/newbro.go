// Package prompts implements MCP prompt handlers for the wiki server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewbroPrompt handles the newbro-mining-start MCP prompt.
// It guides the AI through generating a first mining plan and the
// resubmit loop that keeps it current.
type NewbroPrompt struct{}

// NewNewbroPrompt creates a NewbroPrompt.
func NewNewbroPrompt() *NewbroPrompt {
	return &NewbroPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *NewbroPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("newbro-mining-start",
		mcp.WithPromptDescription(
			"Set up a conservative mining routine for a brand-new EVE Online player. "+
				"Generates a phased plan from your schedule and ISK, backed by "+
				"EVE University wiki sources, and explains how to check in after each session.",
		),
		mcp.WithArgument("hours_per_week",
			mcp.ArgumentDescription("Roughly how many hours per week you can play"),
		),
	)
}

// Handle processes the newbro-mining-start prompt request.
func (p *NewbroPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	hours := "a few"
	if args := req.Params.Arguments; args != nil {
		if h, ok := args["hours_per_week"]; ok && h != "" {
			hours = h
		}
	}

	return &mcp.GetPromptResult{
		Description: "Start a newbro mining routine",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I'm brand new to EVE Online with about %s hours per week to play, "+
						"and I want a safe mining routine.\n\n"+
						"Please:\n"+
						"1. Ask me for my session length, sessions per week, and current ISK\n"+
						"2. Run `generate_newbro_mining_plan` with those values\n"+
						"3. Walk me through the Day 1 and Week 1 phases, citing the wiki sources it returns\n"+
						"4. Use `get_eve_wiki_summary` or `get_eve_wiki_page` when I ask about anything unfamiliar\n"+
						"5. After my next session, collect what happened (ISK earned, ship losses, problems) "+
						"and rerun the plan tool with the recent outcome fields so the plan adapts\n",
					hours,
				)),
			},
		},
	}, nil
}
