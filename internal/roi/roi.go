// Package roi computes return-on-investment estimates and lead scores.
package roi

import (
	"fmt"
	"strings"
)

// Inputs are gathered conversationally by the ROI agent before it invokes
// the calculation tool.
type Inputs struct {
	Industry     string  `json:"industry"`
	Employees    int     `json:"employees"`
	HourlyCost   float64 `json:"hourly_cost"`    // Loaded labor cost per hour
	HoursPerWeek float64 `json:"hours_per_week"` // Manual hours automatable, per employee
}

// Result is the estimate returned to the model for presentation.
type Result struct {
	MonthlySavings float64 `json:"monthly_savings"`
	AnnualSavings  float64 `json:"annual_savings"`
	PaybackWeeks   float64 `json:"payback_weeks"`
	Assumptions    string  `json:"assumptions"`
}

// automationFactor is the share of reported manual hours realistically
// recoverable per industry. Unknown industries use a conservative default.
var automationFactor = map[string]float64{
	"retail":       0.55,
	"hospitality":  0.50,
	"professional": 0.65,
	"healthcare":   0.45,
	"logistics":    0.60,
	"construction": 0.40,
}

const defaultAutomationFactor = 0.5

// referenceInvestment approximates a typical engagement cost, used only for
// the payback estimate.
const referenceInvestment = 4800.0

// Calculate produces a savings estimate from the gathered inputs.
func Calculate(in Inputs) Result {
	factor := defaultAutomationFactor
	if f, ok := automationFactor[strings.ToLower(strings.TrimSpace(in.Industry))]; ok {
		factor = f
	}

	weekly := float64(in.Employees) * in.HoursPerWeek * in.HourlyCost * factor
	monthly := weekly * 52 / 12

	payback := 0.0
	if weekly > 0 {
		payback = referenceInvestment / weekly
	}

	return Result{
		MonthlySavings: round2(monthly),
		AnnualSavings:  round2(weekly * 52),
		PaybackWeeks:   round2(payback),
		Assumptions:    fmt.Sprintf("Assumes %.0f%% of reported manual hours are automatable.", factor*100),
	}
}

// ScoreWeights tunes lead prioritization. A business heuristic, not a
// correctness property: deployments adjust these in config.
type ScoreWeights struct {
	Industry int // Points when the industry has a known automation profile
	TeamSize int // Max points for the team-size bucket
	Contact  int // Max points for contact completeness
}

// LeadScore rates a prospect 0..100 for admin notification priority.
func LeadScore(in Inputs, name, email, company string, w ScoreWeights) int {
	score := 0

	if _, ok := automationFactor[strings.ToLower(strings.TrimSpace(in.Industry))]; ok {
		score += w.Industry
	}

	switch {
	case in.Employees >= 25:
		score += w.TeamSize
	case in.Employees >= 10:
		score += w.TeamSize * 3 / 4
	case in.Employees >= 3:
		score += w.TeamSize / 2
	case in.Employees > 0:
		score += w.TeamSize / 4
	}

	fields := 0
	for _, f := range []string{name, email, company} {
		if strings.TrimSpace(f) != "" {
			fields++
		}
	}
	score += w.Contact * fields / 3

	if score > 100 {
		score = 100
	}
	return score
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
