package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/agency"
)

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := `
protocol_version: "1.0"
annual_budget: 2500000
base_degradation_rate: 0.05
event_daily_chance: 0.02
proposal_interval_days: 15
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	tune, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.AnnualBudget != 2_500_000 || tune.BaseDegradationRate != 0.05 {
		t.Fatalf("parsed: %+v", tune)
	}

	cfg := tune.Apply(agency.Config{ID: "a", Seed: 1, BidMinDays: 20})
	if cfg.AnnualBudget != 2_500_000 {
		t.Fatalf("annual budget not applied: %.2f", cfg.AnnualBudget)
	}
	if cfg.ProposalIntervalDays != 15 {
		t.Fatalf("proposal interval not applied: %d", cfg.ProposalIntervalDays)
	}
	// Values absent from the file leave the config untouched.
	if cfg.BidMinDays != 20 {
		t.Fatalf("unset tuning overwrote config: %d", cfg.BidMinDays)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("want IsNotExist, got %v", err)
	}
}
