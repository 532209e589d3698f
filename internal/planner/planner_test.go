package planner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRequest() Request {
	return Request{
		SessionLengthHours: 1.5,
		SessionsPerWeek:    4,
		StartingISK:        0,
	}
}

func activityNames(p Phase) []string {
	names := make([]string, len(p.Activities))
	for i, a := range p.Activities {
		names[i] = a.Name
	}
	return names
}

func TestGenerate_Deterministic(t *testing.T) {
	req := Request{
		SessionLengthHours: 2,
		SessionsPerWeek:    5,
		StartingISK:        3_000_000,
		Outcome: &Outcome{
			ShipLost:  true,
			ISKEarned: 500_000,
			Blockers:  []Blocker{BlockerConfused, BlockerNoModules},
		},
	}

	first, err := json.Marshal(Generate(req))
	require.NoError(t, err)
	second, err := json.Marshal(Generate(req))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second), "identical requests yield byte-identical plans")
}

func TestGenerate_NewPlayerZeroISK(t *testing.T) {
	plan := Generate(baseRequest())

	require.Len(t, plan.Phases, 2)
	day1 := plan.Phases[0]
	assert.Equal(t, "Day 1", day1.Title)
	assert.Equal(t, RiskMinimal, day1.Risk, "zero capital means minimal-risk only")

	// No equipment-upgrade milestone above 0 ISK anywhere in the plan.
	for _, phase := range plan.Phases {
		for _, a := range phase.Activities {
			assert.Zero(t, a.ISKTarget, "activity %q should carry no paid milestone", a.Name)
		}
	}
}

func TestGenerate_RiskNeverExceedsLow(t *testing.T) {
	req := baseRequest()
	req.StartingISK = 10_000_000_000 // capital does not buy risk

	for _, phase := range Generate(req).Phases {
		assert.Equal(t, RiskLow, phase.Risk)
	}
}

func TestGenerate_ShipLostForcesMinimalRisk(t *testing.T) {
	capitals := []int64{0, 2_000_000, 10_000_000_000}
	for _, isk := range capitals {
		req := baseRequest()
		req.StartingISK = isk
		req.Outcome = &Outcome{ShipLost: true}

		plan := Generate(req)
		assert.Equal(t, RiskMinimal, plan.Phases[0].Risk,
			"first phase must be minimal after a loss (capital %d)", isk)
	}
}

func TestGenerate_ShipLostPrependsReplacement(t *testing.T) {
	req := baseRequest()
	req.StartingISK = 5_000_000
	req.Outcome = &Outcome{ShipLost: true}

	plan := Generate(req)
	day1 := plan.Phases[0]
	require.NotEmpty(t, day1.Activities)
	assert.Equal(t, "Replace the lost ship and fit", day1.Activities[0].Name)
	assert.Equal(t, int64(2_000_000), day1.Activities[0].ISKTarget)
}

func TestGenerate_ReplacementTargetCappedByCapital(t *testing.T) {
	req := baseRequest()
	req.StartingISK = 800_000
	req.Outcome = &Outcome{ShipLost: true}

	day1 := Generate(req).Phases[0]
	assert.Equal(t, int64(800_000), day1.Activities[0].ISKTarget,
		"replacement milestone never exceeds available capital")
}

func TestGenerate_ShipLostHalvesExposure(t *testing.T) {
	req := baseRequest()
	req.StartingISK = 8_000_000

	exposureOf := func(p Plan) int64 {
		for _, a := range p.Phases[1].Activities {
			if a.Name == "Keep exposure under the replacement line" {
				return a.ISKTarget
			}
		}
		t.Fatal("exposure activity missing")
		return 0
	}

	normal := exposureOf(Generate(req))
	req.Outcome = &Outcome{ShipLost: true}
	tightened := exposureOf(Generate(req))

	assert.Equal(t, int64(4_000_000), normal)
	assert.Equal(t, int64(2_000_000), tightened)
}

func TestGenerate_ISKEarnedRecalculatesMilestones(t *testing.T) {
	req := baseRequest()
	req.StartingISK = 1_000_000

	// Below the cutoff on starting capital alone: no upgrade milestone.
	week1 := Generate(req).Phases[1]
	assert.NotContains(t, activityNames(week1), "Upgrade toward a complete Venture fit")

	// Earnings push effective capital over the cutoff.
	req.Outcome = &Outcome{ISKEarned: 1_500_000}
	plan := Generate(req)
	week1 = plan.Phases[1]
	assert.Contains(t, activityNames(week1), "Upgrade toward a complete Venture fit")
	assert.Equal(t, RiskLow, plan.Phases[0].Risk,
		"risk tier derives from starting plus earned capital")
}

func TestGenerate_BlockersPrependRemedials(t *testing.T) {
	req := baseRequest()
	req.Outcome = &Outcome{
		// Reported out of canonical order and with a duplicate.
		Blockers: []Blocker{BlockerConfused, BlockerNoMiningShip, BlockerConfused},
	}

	day1 := Generate(req).Phases[0]
	names := activityNames(day1)
	require.GreaterOrEqual(t, len(names), 2)
	assert.Equal(t, "Reacquire a mining ship", names[0], "canonical order, not report order")
	assert.Equal(t, "Simplify the next session", names[1])

	dupes := 0
	for _, n := range names {
		if n == "Simplify the next session" {
			dupes++
		}
	}
	assert.Equal(t, 1, dupes, "duplicate tags collapse to one remedial step")
}

func TestGenerate_ReplacementPrecedesRemedials(t *testing.T) {
	req := baseRequest()
	req.Outcome = &Outcome{ShipLost: true, Blockers: []Blocker{BlockerLowISK}}

	names := activityNames(Generate(req).Phases[0])
	assert.Equal(t, "Replace the lost ship and fit", names[0])
	assert.Equal(t, "Run a low-capital recovery loop", names[1])
}

func TestGenerate_TinyBudgetDegradesToOrientation(t *testing.T) {
	req := Request{SessionLengthHours: 0.5, SessionsPerWeek: 1, StartingISK: 50_000_000}

	plan := Generate(req)
	require.Len(t, plan.Phases, 1)
	assert.Equal(t, "Orientation", plan.Phases[0].Title)
	assert.Equal(t, RiskMinimal, plan.Phases[0].Risk)
	assert.NotEmpty(t, plan.Phases[0].Activities)
}

func TestGenerate_Day1LengthScalesWithSessionHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  int
	}{
		{1.0, 3},
		{1.5, 4},
		{2.5, 4},
		{4.0, 5},
	}
	for _, tt := range tests {
		req := baseRequest()
		req.SessionLengthHours = tt.hours
		got := len(Generate(req).Phases[0].Activities)
		assert.Equal(t, tt.want, got, "hours=%v", tt.hours)
	}
}

func TestGenerate_WeekSessionsCappedAtSeven(t *testing.T) {
	req := baseRequest()
	req.SessionsPerWeek = 14

	week1 := Generate(req).Phases[1]
	require.NotEmpty(t, week1.Activities)
	assert.Contains(t, week1.Activities[0].Detail, "7 high-sec mining sessions")
}

func TestGenerate_NegativeEarningsClampToZero(t *testing.T) {
	req := baseRequest()
	req.StartingISK = 1_000_000
	req.Outcome = &Outcome{ISKEarned: -5_000_000}

	plan := Generate(req)
	assert.Equal(t, RiskMinimal, plan.Phases[0].Risk)
	for _, a := range plan.Phases[1].Activities {
		assert.GreaterOrEqual(t, a.ISKTarget, int64(0))
	}
}
