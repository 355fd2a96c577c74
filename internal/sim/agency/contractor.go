package agency

// Contractor is a bidder in the contractor pool. Everything but the bid
// history is immutable; the history is append-only and kept for audit.
type Contractor struct {
	ID        int
	Name      string
	Expertise []string
	Rating    float64 // 0..5
	Bids      []Bid
}

// Bid is a recorded price/time quote for a project.
type Bid struct {
	ProjectID      uint64
	Day            uint64
	Amount         float64
	CompletionDays int
}

func (c *Contractor) recordBid(b Bid) {
	c.Bids = append(c.Bids, b)
}
