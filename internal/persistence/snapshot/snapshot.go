package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version  int    `json:"version"`
	AgencyID string `json:"agency_id"`
	Day      uint64 `json:"day"`
}

// SnapshotV1 is the full durable state of one agency. Tuning parameters
// are captured so a resumed engine replays identically; no RNG state is
// stored because every draw is derived from the seed and the day.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed           int64   `json:"seed"`
	FiscalYear     int     `json:"fiscal_year"`
	FiscalYearDays int     `json:"fiscal_year_days,omitempty"`
	AnnualBudget   float64 `json:"annual_budget,omitempty"`
	DaySeconds     float64 `json:"day_seconds,omitempty"`

	BaseDegradationRate float64 `json:"base_degradation_rate,omitempty"`
	EnvFactorMin        float64 `json:"env_factor_min,omitempty"`
	EnvFactorMax        float64 `json:"env_factor_max,omitempty"`
	EventDailyChance    float64 `json:"event_daily_chance,omitempty"`
	BidSpread           float64 `json:"bid_spread,omitempty"`

	Budget BudgetV1 `json:"budget"`

	Assets      []AssetV1      `json:"assets"`
	Contractors []ContractorV1 `json:"contractors"`
	Projects    []ProjectV1    `json:"projects"`
	Events      []EventV1      `json:"events"`
	Notices     []NoticeV1     `json:"notices,omitempty"`

	Counters CountersV1 `json:"counters"`
}

type BudgetV1 struct {
	FiscalYear int     `json:"fiscal_year"`
	Total      float64 `json:"total"`
	Allocated  float64 `json:"allocated"`
	Available  float64 `json:"available"`
}

type AssetV1 struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Start         [2]float64 `json:"start"`
	End           [2]float64 `json:"end"`
	Length        float64 `json:"length"`
	Lanes         int     `json:"lanes"`
	Condition     float64 `json:"condition"`
	TrafficVolume int     `json:"traffic_volume"`
	Capacity      int     `json:"capacity"`
}

type ContractorV1 struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Expertise []string `json:"expertise,omitempty"`
	Rating    float64  `json:"rating"`
	Bids      []BidV1  `json:"bids,omitempty"`
}

type BidV1 struct {
	ProjectID      uint64  `json:"project_id"`
	Day            uint64  `json:"day"`
	Amount         float64 `json:"amount"`
	CompletionDays int     `json:"completion_days"`
}

type ProjectV1 struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	AssetIDs        []int   `json:"asset_ids,omitempty"`
	EstimatedCost   float64 `json:"estimated_cost"`
	AllocatedBudget float64 `json:"allocated_budget"`
	StartDay        uint64  `json:"start_day"`
	EndDay          uint64  `json:"end_day"`
	Status          string  `json:"status"`
	Progress        float64 `json:"progress"`
	ContractorID    int     `json:"contractor_id,omitempty"`
	BidAmount       float64 `json:"bid_amount,omitempty"`
	CompletionDays  int     `json:"completion_days,omitempty"`
}

type EventV1 struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	AssetIDs []int  `json:"asset_ids,omitempty"`
	Impact   string `json:"impact,omitempty"`
	Day      uint64 `json:"day"`
	Applied  bool   `json:"applied"`
}

type NoticeV1 struct {
	Day  uint64 `json:"day"`
	Text string `json:"text"`
}

type CountersV1 struct {
	NextProject uint64 `json:"next_project"`
	NextEvent   uint64 `json:"next_event"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Read header line (ignore it for now, gob also contains header).
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
