package agency

import "fmt"

// Budget is the agency's fiscal ledger. The invariant
// Allocated + Available == Total holds after every operation.
type Budget struct {
	FiscalYear int
	Total      float64
	Allocated  float64
	Available  float64
}

func NewBudget(fiscalYear int, total float64) Budget {
	return Budget{FiscalYear: fiscalYear, Total: total, Available: total}
}

// Allocate moves amount from available to allocated. Fails without
// mutation when funds are short; that is a business outcome the caller
// reports, not a system error.
func (b *Budget) Allocate(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("allocate %.2f: %w", amount, ErrBadRequest)
	}
	if amount > b.Available {
		return fmt.Errorf("allocate %.2f with %.2f available: %w", amount, b.Available, ErrInsufficientFunds)
	}
	b.Available -= amount
	b.Allocated += amount
	return nil
}

// Deallocate returns amount from allocated back to available, capped at
// the currently allocated total so the ledger can never go negative.
// Returns the amount actually released.
func (b *Budget) Deallocate(amount float64) float64 {
	if amount < 0 {
		return 0
	}
	if amount > b.Allocated {
		amount = b.Allocated
	}
	b.Allocated -= amount
	b.Available += amount
	return amount
}
