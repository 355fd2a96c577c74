package agency

import (
	"context"
	"testing"

	"github.com/mickeyshaughnessy/TexasDoT/internal/persistence/snapshot"
	"github.com/mickeyshaughnessy/TexasDoT/internal/protocol"
)

func TestApplyCommandAckCodes(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		name     string
		cmd      protocol.CmdMsg
		accepted bool
		code     string
	}{
		{
			name:     "propose ok",
			cmd:      cmdPropose("c1"),
			accepted: true,
		},
		{
			name:     "approve unknown project",
			cmd:      protocol.CmdMsg{ID: "c2", Op: protocol.OpApproveProject, ProjectID: 999},
			accepted: false,
			code:     protocol.ErrNotFound,
		},
		{
			name:     "assign before approval",
			cmd:      protocol.CmdMsg{ID: "c3", Op: protocol.OpAssignContractor, ProjectID: 1},
			accepted: false,
			code:     protocol.ErrInvalidTransition,
		},
		{
			name:     "maintenance bad amount",
			cmd:      protocol.CmdMsg{ID: "c4", Op: protocol.OpPerformMaintenance, AssetID: 1, RepairAmount: -2},
			accepted: false,
			code:     protocol.ErrBadRequest,
		},
		{
			name:     "save without sink",
			cmd:      protocol.CmdMsg{ID: "c5", Op: protocol.OpSaveState},
			accepted: false,
			code:     protocol.ErrPersistence,
		},
		{
			name:     "unknown op",
			cmd:      protocol.CmdMsg{ID: "c6", Op: "EXPLODE"},
			accepted: false,
			code:     protocol.ErrProtoBadRequest,
		},
	}
	for _, c := range cases {
		ack := e.applyCommand(c.cmd)
		if ack.AckFor != c.cmd.ID {
			t.Errorf("%s: ack_for %q", c.name, ack.AckFor)
		}
		if ack.Accepted != c.accepted {
			t.Errorf("%s: accepted=%v want %v (%s)", c.name, ack.Accepted, c.accepted, ack.Message)
		}
		if ack.Code != c.code {
			t.Errorf("%s: code=%q want %q", c.name, ack.Code, c.code)
		}
		if !protocol.IsKnownCode(ack.Code) {
			t.Errorf("%s: unknown code %q", c.name, ack.Code)
		}
	}
}

func TestRejectedCommandsLeftOutOfDayLog(t *testing.T) {
	e := newTestEngine(t)
	pending := []CommandEnvelope{
		{ClientID: "c1", Cmd: cmdPropose("ok")},
		{ClientID: "c1", Cmd: protocol.CmdMsg{ID: "bad", Op: protocol.OpApproveProject, ProjectID: 42}},
	}
	recorded := e.applyCommands(pending)
	if len(recorded) != 1 || recorded[0].Cmd.ID != "ok" {
		t.Fatalf("recorded %d commands: %+v", len(recorded), recorded)
	}
}

// State queries are the one read path hosts may use while Run owns the
// engine; they are answered between steps, never against half-stepped
// state.
func TestStateQueryServedByRunningLoop(t *testing.T) {
	e, err := New(Config{ID: "a", Seed: 7, DaySeconds: 3600}, StarterAssets(), StarterContractors())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	q := StateQuery{AssetID: 1, Resp: make(chan StateView, 1)}
	e.Queries() <- q
	view := <-q.Resp
	if view.Day != 0 {
		t.Fatalf("day %d", view.Day)
	}
	if view.Budget.Total != 1_000_000 || view.Budget.Available != 1_000_000 {
		t.Fatalf("budget view: %+v", view.Budget)
	}
	if !view.AssetOK || view.Asset.ID != 1 {
		t.Fatalf("asset view: ok=%v %+v", view.AssetOK, view.Asset)
	}

	q = StateQuery{AssetID: 99, Resp: make(chan StateView, 1)}
	e.Queries() <- q
	if view := <-q.Resp; view.AssetOK {
		t.Fatal("unknown asset reported present")
	}
}

func TestPeriodicSnapshotEmission(t *testing.T) {
	e, err := New(Config{ID: "a", Seed: 5, SnapshotEveryDays: 3}, StarterAssets(), StarterContractors())
	if err != nil {
		t.Fatal(err)
	}
	sink := make(chan snapshot.SnapshotV1, 4)
	e.SetSnapshotSink(sink)

	e.AdvanceDays(3)
	select {
	case snap := <-sink:
		if snap.Header.Day != 3 {
			t.Fatalf("snapshot at day %d", snap.Header.Day)
		}
		if snap.Header.AgencyID != "a" || snap.Seed != 5 {
			t.Fatalf("snapshot header: %+v", snap.Header)
		}
	default:
		t.Fatal("no snapshot emitted on day 3")
	}

	e.AdvanceDays(2)
	select {
	case snap := <-sink:
		t.Fatalf("unscheduled snapshot at day %d", snap.Header.Day)
	default:
	}
}

func TestCheckpointNow(t *testing.T) {
	e := newTestEngine(t)
	if e.CheckpointNow() {
		t.Fatal("checkpoint without a sink should fail")
	}
	sink := make(chan snapshot.SnapshotV1, 1)
	e.SetSnapshotSink(sink)
	if !e.CheckpointNow() {
		t.Fatal("checkpoint with a sink should succeed")
	}
	if e.CheckpointNow() {
		t.Fatal("checkpoint into a full sink should fail")
	}
}
