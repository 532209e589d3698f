package tools

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tommybobb/eve-uni-mcp/internal/admission"
	"github.com/tommybobb/eve-uni-mcp/internal/planner"
	"github.com/tommybobb/eve-uni-mcp/internal/wiki"
)

// searcher is the slice of the wiki client the plan tool needs.
// Narrowed to an interface so tests can fake the wiki without HTTP.
type searcher interface {
	Search(ctx context.Context, query string, limit int) ([]wiki.SearchResult, error)
}

// PlanTool handles the generate_newbro_mining_plan MCP tool. It runs
// the pure plan engine over the declared constraints, then decorates
// the response with wiki source links gathered from a fixed set of
// mining-focused seed queries. Source gathering degrades gracefully:
// the plan itself never depends on the wiki being reachable.
type PlanTool struct {
	gate   *admission.Gate
	search searcher
	limits Limits
}

// NewPlanTool creates a PlanTool.
func NewPlanTool(gate *admission.Gate, search searcher, limits Limits) *PlanTool {
	return &PlanTool{gate: gate, search: search, limits: limits}
}

// Numeric bounds for planner arguments.
const (
	minSessionHours = 0.5
	maxSessionHours = 8.0
	minSessions     = 1
	maxSessions     = 14
	maxStartingISK  = 10_000_000_000
)

// seedQueries drive source gathering for plan citations.
var seedQueries = []string{
	"EVE University mining guide",
	"Venture",
	"Mining frigates",
	"Career Agents mining",
	"Highsec mining safety",
	"Ore and mining mechanics",
	"Fitting ships for mining",
}

// relevanceWeights score search hits for newbro mining planning.
var relevanceWeights = []struct {
	keyword string
	weight  int
}{
	{"mining", 8},
	{"venture", 8},
	{"ore", 5},
	{"asteroid", 4},
	{"highsec", 4},
	{"safety", 4},
	{"career", 3},
	{"agent", 3},
	{"fit", 3},
	{"fitting", 3},
	{"barge", 2},
	{"alpha", 2},
}

// Definition returns the MCP tool definition for registration.
func (t *PlanTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_newbro_mining_plan",
		mcp.WithDescription(
			"Generate a conservative mining-only onboarding plan for a brand-new Alpha player. "+
				"Resubmit with the recent_outcome fields (ship_lost, isk_earned, blockers) after "+
				"each session to get a revised plan — the server keeps no session state.",
		),
		mcp.WithNumber("session_length_hours",
			mcp.Description("Hours per play session (0.5-8, default: 1.5)"),
		),
		mcp.WithNumber("sessions_per_week",
			mcp.Description("Play sessions per week (1-14, default: 4)"),
		),
		mcp.WithNumber("starting_isk",
			mcp.Description("Current liquid ISK (default: 0)"),
		),
		mcp.WithBoolean("ship_lost",
			mcp.Description("Whether a ship was lost since the last plan"),
		),
		mcp.WithNumber("isk_earned",
			mcp.Description("ISK earned since the last plan"),
		),
		mcp.WithArray("blockers",
			mcp.Description(
				"Problem tags from the last session: no_mining_ship, no_modules, "+
					"cant_find_belt, low_isk, confused",
			),
		),
		mcp.WithString("current_assets",
			mcp.Description("Freeform list of ships/modules already owned"),
		),
		mcp.WithString("questions",
			mcp.Description("Freeform questions to address in the next check-in"),
		),
		mcp.WithString("experience_level",
			mcp.Description("Only 'brand_new' is supported"),
			mcp.Enum("brand_new"),
		),
		mcp.WithString("risk_preference",
			mcp.Description("Only 'conservative' is supported"),
			mcp.Enum("conservative"),
		),
	)
}

// planProfile echoes the validated inputs back in the response.
type planProfile struct {
	SessionLengthHours float64 `json:"session_length_hours"`
	SessionsPerWeek    int     `json:"sessions_per_week"`
	StartingISK        int64   `json:"starting_isk"`
	ExperienceLevel    string  `json:"experience_level"`
	RiskPreference     string  `json:"risk_preference"`
	CurrentAssets      string  `json:"current_assets,omitempty"`
	Questions          string  `json:"questions,omitempty"`
}

// planSource is one citation link attached to the plan.
type planSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// planResponse is the tool's JSON output. Field names and nesting are
// a stable contract for calling agents.
type planResponse struct {
	Profile planProfile      `json:"profile"`
	Plan    planner.Plan     `json:"plan"`
	Sources []planSource     `json:"sources"`
	Outcome *planner.Outcome `json:"recent_outcome,omitempty"`
	Notes   []string         `json:"notes,omitempty"`
}

// Handle processes the generate_newbro_mining_plan tool call.
func (t *PlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hours := floatArg(req, "session_length_hours", 1.5)
	sessions := intArg(req, "sessions_per_week", 4)
	startingISK := int64(floatArg(req, "starting_isk", 0))
	experience := req.GetString("experience_level", "brand_new")
	riskPref := req.GetString("risk_preference", "conservative")
	assets := req.GetString("current_assets", "")
	questions := req.GetString("questions", "")
	blockerTags := stringListArg(req, "blockers")

	if rejected := admit(ctx, t.gate, func() *admission.FieldError {
		return admission.FirstError(
			admission.FloatRange("session_length_hours", hours, minSessionHours, maxSessionHours),
			admission.IntRange("sessions_per_week", int64(sessions), minSessions, maxSessions),
			admission.IntRange("starting_isk", startingISK, 0, maxStartingISK),
			admission.Enum("experience_level", experience, "brand_new"),
			admission.Enum("risk_preference", riskPref, "conservative"),
			validateBlockers(blockerTags),
			admission.OptionalText("current_assets", assets, t.limits.Freeform),
			admission.OptionalText("questions", questions, t.limits.Freeform),
		)
	}); rejected != nil {
		return rejected, nil
	}

	request := planner.Request{
		SessionLengthHours: hours,
		SessionsPerWeek:    sessions,
		StartingISK:        startingISK,
		Outcome:            outcomeFromArgs(req, blockerTags),
	}
	plan := planner.Generate(request)

	sources, partial := t.gatherSources(ctx)
	var notes []string
	if partial {
		notes = append(notes,
			"Reduced confidence: some wiki lookups failed; sources may be incomplete.")
	}

	resp := planResponse{
		Profile: planProfile{
			SessionLengthHours: hours,
			SessionsPerWeek:    sessions,
			StartingISK:        startingISK,
			ExperienceLevel:    experience,
			RiskPreference:     riskPref,
			CurrentAssets:      strings.TrimSpace(assets),
			Questions:          strings.TrimSpace(questions),
		},
		Plan:    plan,
		Sources: sources,
		Outcome: request.Outcome,
		Notes:   notes,
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("Failed to encode plan."), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// outcomeFromArgs builds the structured outcome record, or nil when
// the caller reported nothing. Presence of any outcome argument means
// a report was made; a false ship_lost is still a report.
func outcomeFromArgs(req mcp.CallToolRequest, blockerTags []string) *planner.Outcome {
	args := req.GetArguments()
	_, hasShipLost := args["ship_lost"]
	_, hasEarned := args["isk_earned"]
	if !hasShipLost && !hasEarned && len(blockerTags) == 0 {
		return nil
	}

	outcome := &planner.Outcome{
		ShipLost:  boolArg(req, "ship_lost", false),
		ISKEarned: int64(floatArg(req, "isk_earned", 0)),
	}
	for _, tag := range blockerTags {
		outcome.Blockers = append(outcome.Blockers, planner.Blocker(tag))
	}
	return outcome
}

func validateBlockers(tags []string) *admission.FieldError {
	known := make([]string, 0, len(planner.Blockers()))
	for _, b := range planner.Blockers() {
		known = append(known, string(b))
	}
	for _, tag := range tags {
		if err := admission.Enum("blockers", tag, known...); err != nil {
			return err
		}
	}
	return nil
}

// gatherSources searches the wiki with the seed queries and returns
// the best-scoring pages as citations. partial reports whether any
// lookup failed.
func (t *PlanTool) gatherSources(ctx context.Context) ([]planSource, bool) {
	type candidate struct {
		planSource
		score int
	}
	byTitle := make(map[string]*candidate)
	partial := false

	for _, query := range seedQueries {
		results, err := t.search.Search(ctx, query, 8)
		if err != nil {
			partial = true
			continue
		}
		for _, r := range results {
			score := scoreCandidate(r.Title, r.Description, query)
			key := strings.ToLower(r.Title)
			if existing, ok := byTitle[key]; ok {
				if score > existing.score {
					existing.score = score
					existing.URL = r.URL
				}
				continue
			}
			byTitle[key] = &candidate{
				planSource: planSource{Title: r.Title, URL: r.URL},
				score:      score,
			}
		}
	}

	ranked := make([]*candidate, 0, len(byTitle))
	for _, c := range byTitle {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return strings.ToLower(ranked[i].Title) < strings.ToLower(ranked[j].Title)
	})
	if len(ranked) > 8 {
		ranked = ranked[:8]
	}

	sources := make([]planSource, 0, len(ranked))
	for _, c := range ranked {
		sources = append(sources, c.planSource)
	}
	if len(sources) == 0 {
		// Always cite something, even when every lookup failed.
		sources = append(sources, planSource{Title: "Mining", URL: wiki.PageURL("Mining")})
	}
	return sources, partial
}

func scoreCandidate(title, description, query string) int {
	text := strings.ToLower(title + " " + description)
	score := 0
	for _, kw := range relevanceWeights {
		if strings.Contains(text, kw.keyword) {
			score += kw.weight
		}
	}
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(text, token) {
			score++
		}
	}
	return score
}
