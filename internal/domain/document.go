package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DocumentVersion = "1.0.0"

var DefaultCapital = decimal.NewFromInt(10000)

// PortfolioDocument is the portable form of a portfolio. It is what
// gets exported as JSON, loaded by the CLI and kept by the snapshot
// store. Documents are not validated until turned into a Snapshot.
type PortfolioDocument struct {
	Version         string                       `json:"version"`
	ExportedAt      *time.Time                   `json:"exported_at,omitempty"`
	Capital         decimal.Decimal              `json:"capital"`
	Fees            FeeConfig                    `json:"fees"`
	Assets          []AssetInput                 `json:"assets"`
	Scenarios       []decimal.Decimal            `json:"scenarios"`
	ScenarioPresets map[string][]decimal.Decimal `json:"scenario_presets"`
	TargetWeights   TargetWeights                `json:"target_weights"`
}

// WithDefaults fills every missing field. Fees default to zero, which
// is already the zero value.
func (d PortfolioDocument) WithDefaults() PortfolioDocument {
	if d.Version == "" {
		d.Version = DocumentVersion
	}
	if d.Capital.IsZero() {
		d.Capital = DefaultCapital
	}
	if d.Assets == nil {
		d.Assets = []AssetInput{}
	}
	if d.Scenarios == nil {
		d.Scenarios = DefaultScenarios()
	}
	if d.ScenarioPresets == nil {
		d.ScenarioPresets = map[string][]decimal.Decimal{}
		for _, p := range ScenarioPresets() {
			d.ScenarioPresets[p.Name] = p.Scenarios
		}
	}
	if d.TargetWeights == nil {
		d.TargetWeights = TargetWeights{}
	}
	return d
}

func (d PortfolioDocument) SnapshotInput() SnapshotInput {
	return SnapshotInput{
		Capital: d.Capital,
		Assets:  d.Assets,
		Fees:    d.Fees,
	}
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
