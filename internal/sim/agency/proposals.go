package agency

import "fmt"

// autoPropose generates one randomized project proposal, left in
// Proposed status for the operator to act on.
func (e *Engine) autoPropose(day uint64) {
	ids := e.sortedAssetIDs()
	if len(ids) == 0 {
		return
	}
	assetID := ids[hash2(e.cfg.Seed, int(day), saltProposal)%uint64(len(ids))]
	a := e.assets[assetID]

	ptype := []ProjectType{TypeConstruction, TypeMaintenance, TypeUpgrade}[hash2(e.cfg.Seed, int(day), saltProposal+1)%3]
	cost := float64(intBetween(hash2(e.cfg.Seed, int(day), saltProposal+2), int(e.cfg.ProposalMinCost), int(e.cfg.ProposalMaxCost)))
	offset := intBetween(hash2(e.cfg.Seed, int(day), saltProposal+3), 1, e.cfg.ProposalMaxStartOffset)
	duration := intBetween(hash2(e.cfg.Seed, int(day), saltProposal+4), e.cfg.ProposalMinDurationDays, e.cfg.ProposalMaxDurationDays)

	name := fmt.Sprintf("Upgrade %s", a.Name)
	if _, err := e.ProposeProject(name, ptype, []int{assetID}, cost, offset, duration); err != nil {
		// Starter data keeps this path unreachable; surface it anyway.
		e.notify(day, "Auto-proposal failed: %v", err)
	}
}
