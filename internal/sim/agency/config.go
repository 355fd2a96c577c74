package agency

// Config carries every parameter that shapes a run. Parameters are
// captured in snapshots so a resumed engine behaves identically.
type Config struct {
	ID   string
	Seed int64

	FiscalYear     int
	AnnualBudget   float64
	FiscalYearDays int

	// Real seconds per simulated day in Run; StepDay ignores it.
	DaySeconds float64

	BaseDegradationRate float64
	EnvFactorMin        float64
	EnvFactorMax        float64

	EventDailyChance float64
	EventMinAssets   int
	EventMaxAssets   int

	BidSpread  float64 // bid = estimate * (1 ± spread)
	BidMinDays int
	BidMaxDays int

	CompletionRepairMin int
	CompletionRepairMax int

	MaintenanceCostPerPoint float64

	ProposalIntervalDays    int
	ProposalMinCost         float64
	ProposalMaxCost         float64
	ProposalMaxStartOffset  int
	ProposalMinDurationDays int
	ProposalMaxDurationDays int

	SnapshotEveryDays int
	NotificationTail  int
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "agency_1"
	}
	if c.FiscalYear <= 0 {
		c.FiscalYear = 2024
	}
	if c.AnnualBudget <= 0 {
		c.AnnualBudget = 1_000_000
	}
	if c.FiscalYearDays <= 0 {
		c.FiscalYearDays = 365
	}
	if c.DaySeconds <= 0 {
		c.DaySeconds = 1
	}
	if c.BaseDegradationRate <= 0 {
		c.BaseDegradationRate = 0.1
	}
	if c.EnvFactorMin <= 0 {
		c.EnvFactorMin = 0.1
	}
	if c.EnvFactorMax <= c.EnvFactorMin {
		c.EnvFactorMax = 0.3
	}
	if c.EventDailyChance <= 0 {
		c.EventDailyChance = 0.05
	}
	if c.EventMinAssets <= 0 {
		c.EventMinAssets = 1
	}
	if c.EventMaxAssets < c.EventMinAssets {
		c.EventMaxAssets = 3
	}
	if c.BidSpread <= 0 {
		c.BidSpread = 0.10
	}
	if c.BidMinDays <= 0 {
		c.BidMinDays = 30
	}
	if c.BidMaxDays < c.BidMinDays {
		c.BidMaxDays = 90
	}
	if c.CompletionRepairMin <= 0 {
		c.CompletionRepairMin = 10
	}
	if c.CompletionRepairMax < c.CompletionRepairMin {
		c.CompletionRepairMax = 30
	}
	if c.MaintenanceCostPerPoint <= 0 {
		c.MaintenanceCostPerPoint = 1000
	}
	if c.ProposalIntervalDays <= 0 {
		c.ProposalIntervalDays = 30
	}
	if c.ProposalMinCost <= 0 {
		c.ProposalMinCost = 50_000
	}
	if c.ProposalMaxCost < c.ProposalMinCost {
		c.ProposalMaxCost = 200_000
	}
	if c.ProposalMaxStartOffset <= 0 {
		c.ProposalMaxStartOffset = 10
	}
	if c.ProposalMinDurationDays <= 0 {
		c.ProposalMinDurationDays = 30
	}
	if c.ProposalMaxDurationDays < c.ProposalMinDurationDays {
		c.ProposalMaxDurationDays = 90
	}
	if c.SnapshotEveryDays <= 0 {
		c.SnapshotEveryDays = 90
	}
	if c.NotificationTail <= 0 {
		c.NotificationTail = 200
	}
}
