// Package planner generates conservative onboarding activity plans for
// brand-new mining pilots.
//
// The engine is a pure function of its request: no stored sessions, no
// clock, no I/O. Adaptiveness across sessions works by the caller
// resubmitting the previous parameters together with an outcome report
// of what happened since. The server never keeps plan state; that is
// deliberate; do not "fix" it into a session store.
//
// Field names and nesting of the JSON-tagged types are a public
// contract consumed by calling agents and must stay stable.
package planner

import "fmt"

// Risk is the risk tier of a plan phase. The engine caps every plan at
// "low": the target persona is a brand-new, resource-constrained
// player, so higher tiers are never recommended regardless of capital.
type Risk string

const (
	RiskMinimal Risk = "minimal"
	RiskLow     Risk = "low"
)

// Blocker tags a problem the player reported from the last session.
type Blocker string

const (
	BlockerNoMiningShip Blocker = "no_mining_ship"
	BlockerNoModules    Blocker = "no_modules"
	BlockerCantFindBelt Blocker = "cant_find_belt"
	BlockerLowISK       Blocker = "low_isk"
	BlockerConfused     Blocker = "confused"
)

// Blockers lists every recognized tag, in remediation order.
func Blockers() []Blocker {
	return []Blocker{
		BlockerNoMiningShip,
		BlockerNoModules,
		BlockerCantFindBelt,
		BlockerLowISK,
		BlockerConfused,
	}
}

// Outcome is the structured report of what happened last session.
// It is a small record, not prose; free-form text is never parsed.
type Outcome struct {
	ShipLost  bool      `json:"ship_lost"`
	ISKEarned int64     `json:"isk_earned"`
	Blockers  []Blocker `json:"blockers,omitempty"`
}

// Request is the planner input. All fields are assumed to have passed
// validation; Generate is total over validated input and never errors.
type Request struct {
	SessionLengthHours float64  `json:"session_length_hours"`
	SessionsPerWeek    int      `json:"sessions_per_week"`
	StartingISK        int64    `json:"starting_isk"`
	Outcome            *Outcome `json:"recent_outcome,omitempty"`
}

// Activity is one recommended step inside a phase.
type Activity struct {
	Name string `json:"name"`
	// Detail explains how to carry the step out.
	Detail string `json:"detail,omitempty"`
	// ISKTarget is a spending milestone for the step, 0 when the step
	// costs nothing.
	ISKTarget int64 `json:"isk_target,omitempty"`
}

// Phase is a named, time-ordered segment of the plan.
type Phase struct {
	Title      string     `json:"title"`
	Risk       Risk       `json:"risk"`
	Activities []Activity `json:"activities"`
}

// Plan is the full generated plan, phases in chronological order.
type Plan struct {
	Phases []Phase `json:"phases"`
}

// Tuning constants. The source material describes these only
// qualitatively ("conservative", "minimal-risk"); the concrete values
// are fixed here so plans stay deterministic across revisions.
const (
	// lowCapitalISK is the capital cutoff below which only
	// minimal-risk activities are recommended and no paid upgrade
	// milestones are suggested.
	lowCapitalISK = 2_000_000

	// ventureFitISK is the milestone for a complete starter mining
	// fit including one spare.
	ventureFitISK = 2_000_000

	// minWeeklyBudgetHours is the smallest usable activity budget.
	// Below it the plan degrades to a single orientation phase.
	minWeeklyBudgetHours = 1.0

	// weekSessionCap bounds the week plan to one session per day.
	weekSessionCap = 7
)

// Generate produces a plan from the request. The same request always
// produces the same plan.
func Generate(req Request) Plan {
	budget := req.SessionLengthHours * float64(req.SessionsPerWeek)
	if budget < minWeeklyBudgetHours {
		return orientationPlan()
	}

	effectiveISK := req.StartingISK
	shipLost := false
	var blockers []Blocker
	if req.Outcome != nil {
		effectiveISK += req.Outcome.ISKEarned
		shipLost = req.Outcome.ShipLost
		blockers = req.Outcome.Blockers
	}
	if effectiveISK < 0 {
		effectiveISK = 0
	}

	risk := riskForCapital(effectiveISK)
	if shipLost {
		// A loss strictly moves recommendations toward lower risk.
		risk = RiskMinimal
	}

	day1 := Phase{
		Title:      "Day 1",
		Risk:       risk,
		Activities: day1Activities(req.SessionLengthHours),
	}

	// Remedial steps for reported blockers come first, then ship
	// replacement, so the very next session starts by unblocking.
	day1.Activities = append(remedialActivities(blockers), day1.Activities...)
	if shipLost {
		day1.Activities = append([]Activity{replacementActivity(effectiveISK)}, day1.Activities...)
	}

	week1 := Phase{
		Title:      "Week 1",
		Risk:       risk,
		Activities: week1Activities(req.SessionsPerWeek, effectiveISK, shipLost),
	}

	return Plan{Phases: []Phase{day1, week1}}
}

// riskForCapital picks the baseline tier from available capital.
func riskForCapital(isk int64) Risk {
	if isk < lowCapitalISK {
		return RiskMinimal
	}
	return RiskLow
}

// exposurePerSession is the most ISK worth of ship and cargo the plan
// suggests undocking with: half of capital normally, a quarter after a
// loss.
func exposurePerSession(effectiveISK int64, shipLost bool) int64 {
	exposure := effectiveISK / 2
	if shipLost {
		exposure /= 2
	}
	return exposure
}

func orientationPlan() Plan {
	return Plan{Phases: []Phase{{
		Title: "Orientation",
		Risk:  RiskMinimal,
		Activities: []Activity{
			{
				Name:   "Complete the station tutorial",
				Detail: "Learn docking, the overview, and basic navigation before committing to a weekly routine.",
			},
			{
				Name:   "Visit the mining career agent",
				Detail: "The career agent rewards cover your first hull and modules at no cost.",
			},
			{
				Name:   "Plan a realistic schedule",
				Detail: "Come back with at least one full hour per week to get a phased plan.",
			},
		},
	}}}
}

func day1Activities(sessionHours float64) []Activity {
	all := []Activity{
		{
			Name:   "Complete the mining career agent chain",
			Detail: "Accept every tutorial reward; they seed your hull, modules, and first ISK.",
		},
		{
			Name:   "Acquire and fit a Venture",
			Detail: "Basic mining lasers and a small shield buffer before any yield modules.",
		},
		{
			Name:   "Run one short high-sec belt session",
			Detail: "Record ISK earned, cargo cycles, and travel time for the next check-in.",
		},
		{
			Name:   "Create station and belt bookmarks",
			Detail: "One dock bookmark, one belt entry bookmark.",
		},
		{
			Name:   "Set overview and d-scan habits",
			Detail: "Configure the overview and practice d-scan before undocking again.",
		},
	}

	// Short sessions get fewer day-one tasks so the first session can
	// actually finish them.
	count := 5
	switch {
	case sessionHours <= 1.0:
		count = 3
	case sessionHours <= 2.5:
		count = 4
	}
	return all[:count]
}

func week1Activities(sessionsPerWeek int, effectiveISK int64, shipLost bool) []Activity {
	sessions := sessionsPerWeek
	if sessions > weekSessionCap {
		sessions = weekSessionCap
	}

	activities := []Activity{
		{
			Name:   "Run scheduled mining sessions",
			Detail: sessionScheduleDetail(sessions),
		},
		{
			Name:   "Review each session",
			Detail: "ISK per hour, interruptions, and risk events go in your log.",
		},
		{
			Name:      "Keep exposure under the replacement line",
			Detail:    "Never undock more ship and cargo value than you can replace the same day.",
			ISKTarget: exposurePerSession(effectiveISK, shipLost),
		},
		{
			Name:   "Practice route discipline",
			Detail: "Avoid predictable belts when local activity spikes.",
		},
		{
			Name:   "Pick one improvement goal",
			Detail: "Cycle uptime, hauling efficiency, or survival habits — choose one for next week.",
		},
	}

	// Upgrade milestones only appear once capital clears the
	// low-capital cutoff, so a zero-ISK pilot never sees a paid target.
	if effectiveISK >= lowCapitalISK {
		activities = append(activities, Activity{
			Name:      "Upgrade toward a complete Venture fit",
			Detail:    "Upgrade only when you can also afford a full replacement of the current ship.",
			ISKTarget: ventureFitISK,
		})
	}
	return activities
}

func sessionScheduleDetail(sessions int) string {
	if sessions == 1 {
		return "Run 1 high-sec mining session with a pre-undock safety check."
	}
	return fmt.Sprintf("Run %d high-sec mining sessions, each with a pre-undock safety check.", sessions)
}

// remedialActivities maps reported blocker tags to fixed unblocking
// steps, preserving the canonical tag order and dropping duplicates.
func remedialActivities(reported []Blocker) []Activity {
	if len(reported) == 0 {
		return nil
	}
	present := make(map[Blocker]bool, len(reported))
	for _, b := range reported {
		present[b] = true
	}

	var out []Activity
	for _, b := range Blockers() {
		if !present[b] {
			continue
		}
		out = append(out, remedies[b])
	}
	return out
}

var remedies = map[Blocker]Activity{
	BlockerNoMiningShip: {
		Name:   "Reacquire a mining ship",
		Detail: "Redo the mining career agent missions or buy a Venture hull from the market.",
	},
	BlockerNoModules: {
		Name:   "Fit basic mining modules",
		Detail: "Two basic mining lasers and a civilian shield booster are enough to restart.",
	},
	BlockerCantFindBelt: {
		Name:   "Locate an asteroid belt",
		Detail: "Use the overview's mining tab or the system menu's asteroid belt list.",
	},
	BlockerLowISK: {
		Name:   "Run a low-capital recovery loop",
		Detail: "One short safe run, sell the ore, refill the replacement fund before anything else.",
	},
	BlockerConfused: {
		Name:   "Simplify the next session",
		Detail: "Three goals only: undock safely, fill the hold once, dock safely.",
	},
}

func replacementActivity(effectiveISK int64) Activity {
	var target int64 = ventureFitISK
	if effectiveISK < target {
		target = effectiveISK
	}
	return Activity{
		Name:      "Replace the lost ship and fit",
		Detail:    "Rebuy a Venture hull and basic modules before planning anything else.",
		ISKTarget: target,
	}
}
