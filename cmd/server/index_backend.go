package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mickeyshaughnessy/TexasDoT/internal/persistence/indexdb"
	"github.com/mickeyshaughnessy/TexasDoT/internal/persistence/snapshot"
	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/agency"
)

type runtimeIndex interface {
	agency.DayLogger
	agency.AuditLogger
	Close() error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
}

func openRuntimeIndex(agencyDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("TXDOT_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		dbPath := filepath.Join(agencyDir, "index", "agency.sqlite")
		return indexdb.OpenSQLite(dbPath)
	case "postgres":
		dsn := strings.TrimSpace(os.Getenv("TXDOT_INDEX_POSTGRES_DSN"))
		if dsn == "" {
			return nil, fmt.Errorf("TXDOT_INDEX_BACKEND=postgres but TXDOT_INDEX_POSTGRES_DSN is empty")
		}
		return indexdb.OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported TXDOT_INDEX_BACKEND: %s", backend)
	}
}

// multiDayLogger fans day entries out to the JSONL log and the index.
type multiDayLogger struct {
	a agency.DayLogger
	b runtimeIndex
}

func (m multiDayLogger) WriteDay(entry agency.DayLogEntry) error {
	err := m.a.WriteDay(entry)
	if m.b != nil {
		_ = m.b.WriteDay(entry)
	}
	return err
}

type multiAuditLogger struct {
	a agency.AuditLogger
	b runtimeIndex
}

func (m multiAuditLogger) WriteAudit(entry agency.AuditEntry) error {
	err := m.a.WriteAudit(entry)
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return err
}
