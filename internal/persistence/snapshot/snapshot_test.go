package snapshot

import (
	"path/filepath"
	"testing"
)

func TestWriteReadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "90.snap.zst")

	in := SnapshotV1{
		Header:     Header{Version: 1, AgencyID: "agency_1", Day: 90},
		Seed:       1337,
		FiscalYear: 2024,
		Budget:     BudgetV1{FiscalYear: 2024, Total: 1_000_000, Allocated: 100_000, Available: 900_000},
		Assets: []AssetV1{
			{ID: 1, Name: "I-35", Condition: 62.5, TrafficVolume: 20000, Capacity: 25000},
		},
		Contractors: []ContractorV1{
			{ID: 1, Name: "TexBuild Co.", Rating: 4.5, Bids: []BidV1{{ProjectID: 1, Day: 3, Amount: 97_000, CompletionDays: 45}}},
		},
		Projects: []ProjectV1{
			{ID: 1, Name: "Widen I-35", Type: "Construction", Status: "InProgress", Progress: 40, ContractorID: 1},
		},
		Counters: CountersV1{NextProject: 1, NextEvent: 0},
	}
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Header != in.Header {
		t.Fatalf("header: %+v", out.Header)
	}
	if out.Budget != in.Budget {
		t.Fatalf("budget: %+v", out.Budget)
	}
	if len(out.Assets) != 1 || out.Assets[0].Condition != 62.5 {
		t.Fatalf("assets: %+v", out.Assets)
	}
	if len(out.Contractors) != 1 || len(out.Contractors[0].Bids) != 1 {
		t.Fatalf("contractors: %+v", out.Contractors)
	}
	if out.Counters != in.Counters {
		t.Fatalf("counters: %+v", out.Counters)
	}
}

func TestReadSnapshotMissingFile(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing.snap.zst")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
