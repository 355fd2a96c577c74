package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mickeyshaughnessy/TexasDoT/internal/persistence/snapshot"
	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/agency"
)

func TestSQLiteIndexRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index", "agency.sqlite")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := idx.WriteDay(agency.DayLogEntry{
		Day:     1,
		Notices: []string{"Proposed new project: Widen I-35 (ID: 1)"},
		Digest:  "abc123",
	}); err != nil {
		t.Fatalf("write day: %v", err)
	}
	if err := idx.WriteAudit(agency.AuditEntry{
		Day: 1, Actor: "engine", Action: "DEGRADE", Target: "asset:1", Amount: 0.2,
	}); err != nil {
		t.Fatalf("write audit: %v", err)
	}
	idx.RecordSnapshot("/tmp/1.snap.zst", snapshot.SnapshotV1{
		Header: snapshot.Header{Version: 1, AgencyID: "a", Day: 1},
		Seed:   7,
		Assets: []snapshot.AssetV1{{ID: 1}},
	})

	// Close drains the writer queue and commits.
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var digest string
	if err := db.QueryRow(`SELECT digest FROM days WHERE day = 1`).Scan(&digest); err != nil {
		t.Fatalf("query days: %v", err)
	}
	if digest != "abc123" {
		t.Fatalf("digest %q", digest)
	}

	var notice string
	if err := db.QueryRow(`SELECT text FROM notices WHERE day = 1 AND seq = 0`).Scan(&notice); err != nil {
		t.Fatalf("query notices: %v", err)
	}

	var action string
	var amount float64
	if err := db.QueryRow(`SELECT action, amount FROM audits WHERE day = 1 AND seq = 0`).Scan(&action, &amount); err != nil {
		t.Fatalf("query audits: %v", err)
	}
	if action != "DEGRADE" || amount != 0.2 {
		t.Fatalf("audit row: %s %.2f", action, amount)
	}

	var path string
	var assets int
	if err := db.QueryRow(`SELECT path, assets FROM snapshots WHERE day = 1`).Scan(&path, &assets); err != nil {
		t.Fatalf("query snapshots: %v", err)
	}
	if path != "/tmp/1.snap.zst" || assets != 1 {
		t.Fatalf("snapshot row: %s %d", path, assets)
	}
}

func TestSQLiteIndexWriteAfterClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "agency.sqlite")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	// Writes after close are silently dropped, never a panic.
	if err := idx.WriteDay(agency.DayLogEntry{Day: 2, Digest: "x"}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	if err := idx.WriteAudit(agency.AuditEntry{Day: 2}); err != nil {
		t.Fatalf("audit after close: %v", err)
	}
}

// Writers racing Close must either land before the channel closes or be
// dropped; under -race this pins the send-vs-close ordering.
func TestSQLiteIndexConcurrentWritesDuringClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "agency.sqlite")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = idx.WriteAudit(agency.AuditEntry{Day: uint64(i), Actor: "engine", Action: "DEGRADE", Target: "asset:1"})
			_ = idx.WriteDay(agency.DayLogEntry{Day: uint64(i), Digest: "d"})
		}
	}()

	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	<-done

	if err := idx.WriteDay(agency.DayLogEntry{Day: 999, Digest: "x"}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
}
