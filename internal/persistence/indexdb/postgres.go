package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mickeyshaughnessy/TexasDoT/internal/persistence/snapshot"
	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/agency"
)

// PostgresIndex mirrors SQLiteIndex on a shared Postgres server, for
// deployments where several agencies report into one database. Same
// buffered single-writer discipline, same drop-on-backpressure rule.
type PostgresIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu orders writer sends against Close; without it a send could
	// land on the channel after it is closed.
	mu     sync.RWMutex
	closed bool
}

func OpenPostgres(dsn string) (*PostgresIndex, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := initPostgresSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	p := &PostgresIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop()
	}()
	return p, nil
}

func initPostgresSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS days (
			day BIGINT PRIMARY KEY,
			digest TEXT NOT NULL,
			commands INTEGER NOT NULL,
			events INTEGER NOT NULL,
			raw_json JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notices (
			day BIGINT NOT NULL,
			seq INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (day, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS audits (
			day BIGINT NOT NULL,
			seq INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			target TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			detail TEXT,
			raw_json JSONB NOT NULL,
			PRIMARY KEY (day, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_target_day ON audits(target, day)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			day BIGINT PRIMARY KEY,
			path TEXT NOT NULL,
			seed BIGINT NOT NULL,
			fiscal_year INTEGER NOT NULL,
			assets INTEGER NOT NULL,
			contractors INTEGER NOT NULL,
			projects INTEGER NOT NULL,
			events INTEGER NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresIndex) Close() error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.ch)
		p.mu.Unlock()
		p.wg.Wait()
		err = p.db.Close()
	})
	return err
}

func (p *PostgresIndex) WriteDay(entry agency.DayLogEntry) error {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil
	}
	select {
	case p.ch <- req{kind: reqDay, day: entry}:
	default:
	}
	return nil
}

func (p *PostgresIndex) WriteAudit(entry agency.AuditEntry) error {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil
	}
	select {
	case p.ch <- req{kind: reqAudit, audit: entry}:
	default:
	}
	return nil
}

func (p *PostgresIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if p == nil {
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	r := snapshotRow{
		Day:         snap.Header.Day,
		Path:        path,
		Seed:        snap.Seed,
		FiscalYear:  snap.FiscalYear,
		Assets:      len(snap.Assets),
		Contractors: len(snap.Contractors),
		Projects:    len(snap.Projects),
		Events:      len(snap.Events),
	}
	select {
	case p.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
	}
}

func (p *PostgresIndex) loop() {
	ctx := context.Background()

	var (
		lastAuditDay uint64
		auditSeq     int
	)

	exec := func(query string, args ...any) {
		cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, _ = p.db.ExecContext(cctx, query, args...)
	}

	for r := range p.ch {
		switch r.kind {
		case reqDay:
			b, _ := json.Marshal(r.day)
			exec(`INSERT INTO days(day,digest,commands,events,raw_json) VALUES($1,$2,$3,$4,$5)
				ON CONFLICT (day) DO UPDATE SET digest=EXCLUDED.digest, commands=EXCLUDED.commands, events=EXCLUDED.events, raw_json=EXCLUDED.raw_json`,
				int64(r.day.Day), r.day.Digest, len(r.day.Commands), len(r.day.Events), string(b))
			for i, text := range r.day.Notices {
				exec(`INSERT INTO notices(day,seq,text) VALUES($1,$2,$3) ON CONFLICT DO NOTHING`,
					int64(r.day.Day), i, text)
			}

		case reqAudit:
			a := r.audit
			if a.Day != lastAuditDay {
				lastAuditDay = a.Day
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			raw, _ := json.Marshal(a)
			exec(`INSERT INTO audits(day,seq,actor,action,target,amount,detail,raw_json) VALUES($1,$2,$3,$4,$5,$6,$7,$8)
				ON CONFLICT DO NOTHING`,
				int64(a.Day), seq, a.Actor, a.Action, a.Target, a.Amount, a.Detail, string(raw))

		case reqSnapshot:
			sn := r.snapshot
			exec(`INSERT INTO snapshots(day,path,seed,fiscal_year,assets,contractors,projects,events) VALUES($1,$2,$3,$4,$5,$6,$7,$8)
				ON CONFLICT (day) DO UPDATE SET path=EXCLUDED.path`,
				int64(sn.Day), sn.Path, sn.Seed, sn.FiscalYear, sn.Assets, sn.Contractors, sn.Projects, sn.Events)
		}
	}
}
