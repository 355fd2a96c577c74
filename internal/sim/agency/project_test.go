package agency

import "testing"

func TestProjectTransitions(t *testing.T) {
	cases := []struct {
		from, to ProjectStatus
		ok       bool
	}{
		{StatusProposed, StatusApproved, true},
		{StatusProposed, StatusCancelled, true},
		{StatusProposed, StatusInProgress, false},
		{StatusApproved, StatusInProgress, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusCompleted, StatusApproved, false},
		{StatusCancelled, StatusApproved, false},
	}
	for _, c := range cases {
		if got := c.from.canTransition(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestProjectProgressMonotonic(t *testing.T) {
	p := Project{ID: 1, StartDay: 0, EndDay: 10, Status: StatusInProgress}
	prev := 0.0
	for day := uint64(1); day <= 10; day++ {
		done := p.UpdateProgress(day)
		if p.Progress < prev {
			t.Fatalf("progress went backwards: %.2f < %.2f", p.Progress, prev)
		}
		prev = p.Progress
		if done != (day == 10) {
			t.Fatalf("day %d: done=%v", day, done)
		}
	}
	if p.Status != StatusCompleted || p.Progress != 100 {
		t.Fatalf("after full schedule: status=%s progress=%.2f", p.Status, p.Progress)
	}
}

func TestProjectProgressDegenerateSchedule(t *testing.T) {
	p := Project{ID: 1, StartDay: 5, EndDay: 5, Status: StatusInProgress}
	if !p.UpdateProgress(6) {
		t.Fatal("zero-duration project should complete on first update")
	}
	if p.Progress != 100 || p.Status != StatusCompleted {
		t.Fatalf("status=%s progress=%.2f", p.Status, p.Progress)
	}
}

func TestProjectProgressIgnoredWhenNotInProgress(t *testing.T) {
	p := Project{ID: 1, StartDay: 0, EndDay: 10, Status: StatusApproved}
	if p.UpdateProgress(5) {
		t.Fatal("approved project should not progress")
	}
	if p.Progress != 0 {
		t.Fatalf("progress moved: %.2f", p.Progress)
	}
}
