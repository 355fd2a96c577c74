package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/agency"
)

// Tuning is the operator-facing knob file. Zero values fall back to the
// engine defaults, so a partial tuning.yaml is fine.
type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	FiscalYear     int     `yaml:"fiscal_year"`
	AnnualBudget   float64 `yaml:"annual_budget"`
	FiscalYearDays int     `yaml:"fiscal_year_days"`
	DaySeconds     float64 `yaml:"day_seconds"`

	BaseDegradationRate float64 `yaml:"base_degradation_rate"`
	EnvFactorMin        float64 `yaml:"env_factor_min"`
	EnvFactorMax        float64 `yaml:"env_factor_max"`

	EventDailyChance float64 `yaml:"event_daily_chance"`
	EventMinAssets   int     `yaml:"event_min_assets"`
	EventMaxAssets   int     `yaml:"event_max_assets"`

	BidSpread  float64 `yaml:"bid_spread"`
	BidMinDays int     `yaml:"bid_min_days"`
	BidMaxDays int     `yaml:"bid_max_days"`

	CompletionRepairMin int `yaml:"completion_repair_min"`
	CompletionRepairMax int `yaml:"completion_repair_max"`

	MaintenanceCostPerPoint float64 `yaml:"maintenance_cost_per_point"`

	ProposalIntervalDays    int     `yaml:"proposal_interval_days"`
	ProposalMinCost         float64 `yaml:"proposal_min_cost"`
	ProposalMaxCost         float64 `yaml:"proposal_max_cost"`
	ProposalMaxStartOffset  int     `yaml:"proposal_max_start_offset"`
	ProposalMinDurationDays int     `yaml:"proposal_min_duration_days"`
	ProposalMaxDurationDays int     `yaml:"proposal_max_duration_days"`

	SnapshotEveryDays int `yaml:"snapshot_every_days"`
	NotificationTail  int `yaml:"notification_tail"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Apply overlays non-zero tuning values onto an engine config.
func (t Tuning) Apply(cfg agency.Config) agency.Config {
	if t.FiscalYear > 0 {
		cfg.FiscalYear = t.FiscalYear
	}
	if t.AnnualBudget > 0 {
		cfg.AnnualBudget = t.AnnualBudget
	}
	if t.FiscalYearDays > 0 {
		cfg.FiscalYearDays = t.FiscalYearDays
	}
	if t.DaySeconds > 0 {
		cfg.DaySeconds = t.DaySeconds
	}
	if t.BaseDegradationRate > 0 {
		cfg.BaseDegradationRate = t.BaseDegradationRate
	}
	if t.EnvFactorMin > 0 {
		cfg.EnvFactorMin = t.EnvFactorMin
	}
	if t.EnvFactorMax > 0 {
		cfg.EnvFactorMax = t.EnvFactorMax
	}
	if t.EventDailyChance > 0 {
		cfg.EventDailyChance = t.EventDailyChance
	}
	if t.EventMinAssets > 0 {
		cfg.EventMinAssets = t.EventMinAssets
	}
	if t.EventMaxAssets > 0 {
		cfg.EventMaxAssets = t.EventMaxAssets
	}
	if t.BidSpread > 0 {
		cfg.BidSpread = t.BidSpread
	}
	if t.BidMinDays > 0 {
		cfg.BidMinDays = t.BidMinDays
	}
	if t.BidMaxDays > 0 {
		cfg.BidMaxDays = t.BidMaxDays
	}
	if t.CompletionRepairMin > 0 {
		cfg.CompletionRepairMin = t.CompletionRepairMin
	}
	if t.CompletionRepairMax > 0 {
		cfg.CompletionRepairMax = t.CompletionRepairMax
	}
	if t.MaintenanceCostPerPoint > 0 {
		cfg.MaintenanceCostPerPoint = t.MaintenanceCostPerPoint
	}
	if t.ProposalIntervalDays > 0 {
		cfg.ProposalIntervalDays = t.ProposalIntervalDays
	}
	if t.ProposalMinCost > 0 {
		cfg.ProposalMinCost = t.ProposalMinCost
	}
	if t.ProposalMaxCost > 0 {
		cfg.ProposalMaxCost = t.ProposalMaxCost
	}
	if t.ProposalMaxStartOffset > 0 {
		cfg.ProposalMaxStartOffset = t.ProposalMaxStartOffset
	}
	if t.ProposalMinDurationDays > 0 {
		cfg.ProposalMinDurationDays = t.ProposalMinDurationDays
	}
	if t.ProposalMaxDurationDays > 0 {
		cfg.ProposalMaxDurationDays = t.ProposalMaxDurationDays
	}
	if t.SnapshotEveryDays > 0 {
		cfg.SnapshotEveryDays = t.SnapshotEveryDays
	}
	if t.NotificationTail > 0 {
		cfg.NotificationTail = t.NotificationTail
	}
	return cfg
}
