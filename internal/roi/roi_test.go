package roi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate_KnownIndustry(t *testing.T) {
	res := Calculate(Inputs{
		Industry:     "Retail",
		Employees:    10,
		HourlyCost:   30,
		HoursPerWeek: 5,
	})

	// 10 * 5 * 30 * 0.55 = 825/week.
	assert.InDelta(t, 3575.0, res.MonthlySavings, 0.01)
	assert.InDelta(t, 42900.0, res.AnnualSavings, 0.01)
	assert.InDelta(t, 5.82, res.PaybackWeeks, 0.01)
	assert.Contains(t, res.Assumptions, "55%")
}

func TestCalculate_UnknownIndustryUsesDefaultFactor(t *testing.T) {
	res := Calculate(Inputs{
		Industry:     "aerospace",
		Employees:    4,
		HourlyCost:   25,
		HoursPerWeek: 10,
	})

	// 4 * 10 * 25 * 0.5 = 500/week.
	assert.InDelta(t, 26000.0, res.AnnualSavings, 0.01)
	assert.Contains(t, res.Assumptions, "50%")
}

func TestCalculate_ZeroInputsYieldZeroPayback(t *testing.T) {
	res := Calculate(Inputs{})

	assert.Zero(t, res.MonthlySavings)
	assert.Zero(t, res.PaybackWeeks)
}

func TestLeadScore(t *testing.T) {
	w := ScoreWeights{Industry: 30, TeamSize: 40, Contact: 30}

	full := LeadScore(Inputs{Industry: "retail", Employees: 30},
		"Jane Doe", "jane@acme.com", "Acme", w)
	assert.Equal(t, 100, full)

	mid := LeadScore(Inputs{Industry: "retail", Employees: 12},
		"Jane Doe", "jane@acme.com", "Acme", w)
	assert.Equal(t, 90, mid)

	sparse := LeadScore(Inputs{Industry: "unknown", Employees: 1}, "", "j@x.com", "", w)
	assert.Equal(t, 20, sparse)

	empty := LeadScore(Inputs{}, "", "", "", w)
	assert.Zero(t, empty)
}
