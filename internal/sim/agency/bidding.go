package agency

import (
	"fmt"
	"sort"
)

// bidOffer pairs a contractor with its drawn quote for one resolution.
type bidOffer struct {
	ContractorID   int
	Rating         float64
	Amount         float64
	CompletionDays int
}

// AssignContractor runs the bidding round for an approved project: every
// contractor in the pool draws a quote, the lowest bid wins, ties broken
// by highest rating then lowest contractor id. The project moves to
// InProgress.
//
// The whole pool is treated as eligible; expertise tags are recorded on
// contractors but not used as a filter.
func (e *Engine) AssignContractor(projectID uint64) (*Project, error) {
	day := e.day.Load()
	p := e.projects[projectID]
	if p == nil {
		return nil, fmt.Errorf("assign contractor to project %d: %w", projectID, ErrNotFound)
	}
	if !p.Status.canTransition(StatusInProgress) {
		return nil, fmt.Errorf("assign contractor to project %d in status %s: %w", projectID, p.Status, ErrInvalidTransition)
	}
	if len(e.contractors) == 0 {
		return nil, fmt.Errorf("assign contractor to project %d: empty contractor pool: %w", projectID, ErrNotFound)
	}

	offers := e.collectBids(day, p)
	sort.Slice(offers, func(i, j int) bool {
		if offers[i].Amount != offers[j].Amount {
			return offers[i].Amount < offers[j].Amount
		}
		if offers[i].Rating != offers[j].Rating {
			return offers[i].Rating > offers[j].Rating
		}
		return offers[i].ContractorID < offers[j].ContractorID
	})
	win := offers[0]

	p.ContractorID = win.ContractorID
	p.BidAmount = win.Amount
	p.CompletionDays = win.CompletionDays
	p.Status = StatusInProgress

	name := e.contractors[win.ContractorID].Name
	e.notify(day, "Contractor %s has been assigned to project %s with bid $%.2f and completion time %d days.",
		name, p.Name, win.Amount, win.CompletionDays)
	return p, nil
}

// collectBids draws one quote per contractor in id order and records it
// in each contractor's history. Draws are keyed by (seed, day, project,
// contractor) so a replay reproduces them exactly.
func (e *Engine) collectBids(day uint64, p *Project) []bidOffer {
	ids := make([]int, 0, len(e.contractors))
	for id := range e.contractors {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	offers := make([]bidOffer, 0, len(ids))
	for _, cid := range ids {
		c := e.contractors[cid]
		mixed := int(p.ID)*1000003 + cid
		amount := p.EstimatedCost * uniform(hash3(e.cfg.Seed, int(day), mixed, saltBidAmount), 1-e.cfg.BidSpread, 1+e.cfg.BidSpread)
		days := intBetween(hash3(e.cfg.Seed, int(day), mixed, saltBidDays), e.cfg.BidMinDays, e.cfg.BidMaxDays)

		c.recordBid(Bid{ProjectID: p.ID, Day: day, Amount: amount, CompletionDays: days})
		offers = append(offers, bidOffer{
			ContractorID:   cid,
			Rating:         c.Rating,
			Amount:         amount,
			CompletionDays: days,
		})
	}
	return offers
}
