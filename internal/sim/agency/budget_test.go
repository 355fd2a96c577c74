package agency

import (
	"errors"
	"testing"
)

func checkLedger(t *testing.T, b Budget) {
	t.Helper()
	if got := b.Allocated + b.Available; got != b.Total {
		t.Fatalf("ledger out of balance: allocated=%.2f available=%.2f total=%.2f", b.Allocated, b.Available, b.Total)
	}
}

func TestBudgetAllocateDeallocate(t *testing.T) {
	b := NewBudget(2024, 1_000_000)
	checkLedger(t, b)

	if err := b.Allocate(100_000); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if b.Available != 900_000 || b.Allocated != 100_000 {
		t.Fatalf("after allocate: %+v", b)
	}
	checkLedger(t, b)

	released := b.Deallocate(100_000)
	if released != 100_000 {
		t.Fatalf("released %.2f", released)
	}
	if b.Available != 1_000_000 || b.Allocated != 0 {
		t.Fatalf("after deallocate: %+v", b)
	}
	checkLedger(t, b)
}

func TestBudgetAllocateInsufficient(t *testing.T) {
	b := NewBudget(2024, 1000)
	err := b.Allocate(2000)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	// Failure must not mutate the ledger.
	if b.Available != 1000 || b.Allocated != 0 || b.Total != 1000 {
		t.Fatalf("ledger mutated on failure: %+v", b)
	}
}

func TestBudgetDeallocateCapped(t *testing.T) {
	b := NewBudget(2024, 1000)
	if err := b.Allocate(300); err != nil {
		t.Fatal(err)
	}
	released := b.Deallocate(9999)
	if released != 300 {
		t.Fatalf("released %.2f, want 300", released)
	}
	checkLedger(t, b)
	if b.Allocated != 0 || b.Available != 1000 {
		t.Fatalf("after capped deallocate: %+v", b)
	}
}
