package domain

import "github.com/shopspring/decimal"

type ScenarioPreset struct {
	Name      string            `json:"name"`
	Scenarios []decimal.Decimal `json:"scenarios"`
}

func pcts(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.NewFromInt(v))
	}
	return out
}

// DefaultScenarios is used when a caller does not pick a scenario set
func DefaultScenarios() []decimal.Decimal {
	return pcts(-30, -20, -10, 0, 10, 20, 30, 50)
}

// ScenarioPresets returns the built-in scenario sets. Each call returns
// fresh slices.
func ScenarioPresets() []ScenarioPreset {
	return []ScenarioPreset{
		{Name: "Conservative", Scenarios: pcts(-20, -10, 0, 10, 20)},
		{Name: "Moderate", Scenarios: pcts(-30, -15, 0, 15, 30)},
		{Name: "Aggressive", Scenarios: pcts(-50, -25, 0, 25, 50)},
		{Name: "Custom", Scenarios: DefaultScenarios()},
	}
}

func PresetByName(name string) (ScenarioPreset, bool) {
	for _, p := range ScenarioPresets() {
		if equalFold(p.Name, name) {
			return p, true
		}
	}
	return ScenarioPreset{}, false
}
