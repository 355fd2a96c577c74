package agency

import (
	"errors"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{ID: "agency_test", Seed: 42}, StarterAssets(), StarterContractors())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestApproveAllocatesAndCancelReleases(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.ProposeProject("Widen I-35", TypeConstruction, []int{1}, 100_000, 0, 30)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if p.Status != StatusProposed {
		t.Fatalf("status %s", p.Status)
	}

	if err := e.ApproveProject(p.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	b := e.Budget()
	if b.Available != 900_000 || b.Allocated != 100_000 || b.Total != 1_000_000 {
		t.Fatalf("after approve: %+v", b)
	}

	if err := e.CancelProject(p.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	b = e.Budget()
	if b.Available != 1_000_000 || b.Allocated != 0 || b.Total != 1_000_000 {
		t.Fatalf("after cancel: %+v", b)
	}
	got, _ := e.Project(p.ID)
	if got.Status != StatusCancelled || got.AllocatedBudget != 0 {
		t.Fatalf("cancelled project: %+v", got)
	}
}

func TestApproveInsufficientFundsLeavesProjectProposed(t *testing.T) {
	e := newTestEngine(t)
	p, err := e.ProposeProject("Mega Tunnel", TypeConstruction, []int{1}, 5_000_000, 0, 90)
	if err != nil {
		t.Fatal(err)
	}
	err = e.ApproveProject(p.ID)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	got, _ := e.Project(p.ID)
	if got.Status != StatusProposed || got.AllocatedBudget != 0 {
		t.Fatalf("project mutated on failed approval: %+v", got)
	}
	if b := e.Budget(); b.Available != 1_000_000 {
		t.Fatalf("budget mutated: %+v", b)
	}
}

func TestProposeValidation(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.ProposeProject("", TypeUpgrade, nil, 1000, 0, 10); !errors.Is(err, ErrBadRequest) {
		t.Errorf("empty name: %v", err)
	}
	if _, err := e.ProposeProject("x", ProjectType("Teleport"), nil, 1000, 0, 10); !errors.Is(err, ErrBadRequest) {
		t.Errorf("unknown type: %v", err)
	}
	if _, err := e.ProposeProject("x", TypeUpgrade, nil, -5, 0, 10); !errors.Is(err, ErrBadRequest) {
		t.Errorf("negative cost: %v", err)
	}
	if _, err := e.ProposeProject("x", TypeUpgrade, []int{99}, 1000, 0, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown asset: %v", err)
	}
}

func TestCancelCompletedRejected(t *testing.T) {
	e := newTestEngine(t)
	p, err := e.ProposeProject("Patch Loop 1604", TypeMaintenance, []int{3}, 10_000, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.ApproveProject(p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AssignContractor(p.ID); err != nil {
		t.Fatal(err)
	}
	e.AdvanceDays(2)
	got, _ := e.Project(p.ID)
	if got.Status != StatusCompleted {
		t.Fatalf("expected completion, got %s", got.Status)
	}
	if err := e.CancelProject(p.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel completed: %v", err)
	}
}

func TestPerformMaintenance(t *testing.T) {
	e := newTestEngine(t)

	if err := e.PerformMaintenance(1, 10); err != nil {
		t.Fatalf("maintain: %v", err)
	}
	a, _ := e.Asset(1)
	if a.Condition != 90 {
		t.Fatalf("condition %.2f, want 90", a.Condition)
	}
	b := e.Budget()
	if b.Total != 1_000_000 || b.Available != 990_000 || b.Allocated != 10_000 {
		t.Fatalf("budget after maintenance: %+v", b)
	}
	checkLedger(t, b)

	if err := e.PerformMaintenance(99, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown asset: %v", err)
	}
	if err := e.PerformMaintenance(1, -1); !errors.Is(err, ErrBadRequest) {
		t.Errorf("negative amount: %v", err)
	}
}

func TestPerformMaintenanceInsufficientFunds(t *testing.T) {
	e, err := New(Config{ID: "a", Seed: 1, AnnualBudget: 500}, StarterAssets(), StarterContractors())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.PerformMaintenance(1, 10); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	a, _ := e.Asset(1)
	if a.Condition != 80 {
		t.Fatalf("asset repaired without funds: %.2f", a.Condition)
	}
}

func TestScheduleEventValidation(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.ScheduleEvent("x", EventType("Meteor"), ImpactMinor, nil, 5); !errors.Is(err, ErrBadRequest) {
		t.Errorf("unknown type: %v", err)
	}
	if _, err := e.ScheduleEvent("x", EventNaturalDisaster, ImpactLevel("Apocalyptic"), []int{1}, 5); !errors.Is(err, ErrBadRequest) {
		t.Errorf("unknown impact: %v", err)
	}
	if _, err := e.ScheduleEvent("x", EventNaturalDisaster, ImpactMinor, []int{42}, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown asset: %v", err)
	}
	ev, err := e.ScheduleEvent("Flood watch", EventNaturalDisaster, ImpactModerate, []int{1, 2}, 5)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if ev.Applied {
		t.Fatal("scheduled event must start unapplied")
	}
}
