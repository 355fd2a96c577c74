package agency

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/mickeyshaughnessy/TexasDoT/internal/persistence/snapshot"
	"github.com/mickeyshaughnessy/TexasDoT/internal/protocol"
)

// Engine is the single-writer day-stepped simulation. All state is
// mutated only inside StepDay (driven by Run's timer or directly); a hosting
// application that shares an Engine across goroutines must serialize
// every call, including the read accessors. Queries is the one read
// path that is safe alongside Run: requests are answered between steps.
type Engine struct {
	cfg Config

	day atomic.Uint64

	budget      Budget
	assets      map[int]*Asset
	contractors map[int]*Contractor
	projects    map[uint64]*Project
	events      map[uint64]*Event

	notifications []Notification

	nextProjectID uint64
	nextEventID   uint64

	inbox   chan CommandEnvelope
	attach  chan ObserverRequest
	detach  chan string
	queries chan StateQuery
	stop    chan struct{}

	observers       map[string]*observerState
	nextObserverNum uint64

	// Optional sinks (may be nil). Implemented in internal/persistence/*.
	dayLogger    DayLogger
	auditLogger  AuditLogger
	snapshotSink chan<- snapshot.SnapshotV1

	// External status capability; defaults to a no-op.
	status StatusClient
}

// CommandEnvelope is an operator command queued for the next day boundary.
type CommandEnvelope struct {
	ClientID string
	Cmd      protocol.CmdMsg
}

// ObserverRequest attaches a presentation client to the per-day feed.
type ObserverRequest struct {
	Name string
	Out  chan []byte
	Resp chan protocol.WelcomeMsg
}

// StateQuery is a read request answered by the loop between day steps.
// Resp must be buffered; the loop never blocks on it.
type StateQuery struct {
	AssetID int // 0 skips the asset lookup
	Resp    chan StateView
}

// StateView is a consistent copy of the queried state.
type StateView struct {
	Day     uint64
	Budget  Budget
	Asset   Asset
	AssetOK bool
}

type observerState struct {
	Out chan []byte
}

type DayLogger interface {
	WriteDay(entry DayLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// DayLogEntry is one JSONL record per simulated day. Commands are kept
// verbatim so a replay can re-drive the same day from a snapshot.
type DayLogEntry struct {
	Day      uint64            `json:"day"`
	Commands []RecordedCommand `json:"commands,omitempty"`
	Events   []uint64          `json:"events,omitempty"`
	Notices  []string          `json:"notices,omitempty"`
	Digest   string            `json:"digest"`
}

type RecordedCommand struct {
	ClientID string          `json:"client_id"`
	Cmd      protocol.CmdMsg `json:"cmd"`
}

// AuditEntry records a single budget or asset-condition mutation.
type AuditEntry struct {
	Day    uint64  `json:"day"`
	Actor  string  `json:"actor"`  // "engine" or a client id
	Action string  `json:"action"` // e.g. "ALLOCATE", "DEGRADE", "REPAIR"
	Target string  `json:"target"` // e.g. "project:3", "asset:1"
	Amount float64 `json:"amount"`
	Detail string  `json:"detail,omitempty"`
}

func New(cfg Config, assets []Asset, contractors []Contractor) (*Engine, error) {
	cfg.applyDefaults()
	if len(assets) == 0 {
		return nil, fmt.Errorf("engine %s: no assets", cfg.ID)
	}

	e := &Engine{
		cfg:         cfg,
		budget:      NewBudget(cfg.FiscalYear, cfg.AnnualBudget),
		assets:      map[int]*Asset{},
		contractors: map[int]*Contractor{},
		projects:    map[uint64]*Project{},
		events:      map[uint64]*Event{},
		inbox:       make(chan CommandEnvelope, 256),
		attach:      make(chan ObserverRequest, 16),
		detach:      make(chan string, 16),
		queries:     make(chan StateQuery, 16),
		stop:        make(chan struct{}),
		observers:   map[string]*observerState{},
		status:      NoopStatusClient{},
	}
	for i := range assets {
		a := assets[i]
		if a.ID <= 0 {
			return nil, fmt.Errorf("asset %q: non-positive id %d", a.Name, a.ID)
		}
		if _, dup := e.assets[a.ID]; dup {
			return nil, fmt.Errorf("duplicate asset id %d", a.ID)
		}
		a.Condition = clampCondition(a.Condition)
		e.assets[a.ID] = &a
	}
	for i := range contractors {
		c := contractors[i]
		if c.ID <= 0 {
			return nil, fmt.Errorf("contractor %q: non-positive id %d", c.Name, c.ID)
		}
		if _, dup := e.contractors[c.ID]; dup {
			return nil, fmt.Errorf("duplicate contractor id %d", c.ID)
		}
		e.contractors[c.ID] = &c
	}
	return e, nil
}

func (e *Engine) SetDayLogger(l DayLogger)                       { e.dayLogger = l }
func (e *Engine) SetAuditLogger(l AuditLogger)                   { e.auditLogger = l }
func (e *Engine) SetSnapshotSink(ch chan<- snapshot.SnapshotV1)  { e.snapshotSink = ch }
func (e *Engine) SetStatusClient(c StatusClient) {
	if c == nil {
		c = NoopStatusClient{}
	}
	e.status = c
}

func (e *Engine) Inbox() chan<- CommandEnvelope  { return e.inbox }
func (e *Engine) Attach() chan<- ObserverRequest { return e.attach }
func (e *Engine) Detach() chan<- string          { return e.detach }
func (e *Engine) Queries() chan<- StateQuery     { return e.queries }

func (e *Engine) ID() string         { return e.cfg.ID }
func (e *Engine) Seed() int64        { return e.cfg.Seed }
func (e *Engine) CurrentDay() uint64 { return e.day.Load() }
func (e *Engine) Budget() Budget     { return e.budget }

// Asset returns a copy of the asset with the given id.
func (e *Engine) Asset(id int) (Asset, error) {
	a := e.assets[id]
	if a == nil {
		return Asset{}, fmt.Errorf("asset %d: %w", id, ErrNotFound)
	}
	return *a, nil
}

// Project returns a copy of the project with the given id.
func (e *Engine) Project(id uint64) (Project, error) {
	p := e.projects[id]
	if p == nil {
		return Project{}, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return *p, nil
}

// Assets returns copies of all assets ordered by id.
func (e *Engine) Assets() []Asset {
	out := make([]Asset, 0, len(e.assets))
	for _, id := range e.sortedAssetIDs() {
		out = append(out, *e.assets[id])
	}
	return out
}

// Contractors returns copies of all contractors ordered by id.
func (e *Engine) Contractors() []Contractor {
	ids := make([]int, 0, len(e.contractors))
	for id := range e.contractors {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Contractor, 0, len(ids))
	for _, id := range ids {
		out = append(out, *e.contractors[id])
	}
	return out
}

// Projects returns copies of all projects ordered by id.
func (e *Engine) Projects() []Project {
	out := make([]Project, 0, len(e.projects))
	for _, id := range e.sortedProjectIDs() {
		out = append(out, *e.projects[id])
	}
	return out
}

// Events returns copies of the event log ordered by id.
func (e *Engine) Events() []Event {
	out := make([]Event, 0, len(e.events))
	for _, id := range e.sortedEventIDs() {
		out = append(out, *e.events[id])
	}
	return out
}

func (e *Engine) sortedAssetIDs() []int {
	ids := make([]int, 0, len(e.assets))
	for id := range e.assets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (e *Engine) sortedProjectIDs() []uint64 {
	ids := make([]uint64, 0, len(e.projects))
	for id := range e.projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *Engine) sortedEventIDs() []uint64 {
	ids := make([]uint64, 0, len(e.events))
	for id := range e.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *Engine) audit(day uint64, actor, action, target string, amount float64, detail string) {
	if e.auditLogger == nil {
		return
	}
	_ = e.auditLogger.WriteAudit(AuditEntry{
		Day:    day,
		Actor:  actor,
		Action: action,
		Target: target,
		Amount: amount,
		Detail: detail,
	})
}
