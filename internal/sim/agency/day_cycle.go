package agency

import "fmt"

// StepDay advances the simulation by exactly one day. Queued commands
// are applied first against the current day, then the clock moves and
// the daily pipeline runs: fiscal rollover, degradation, project
// progress, the random event roll, scheduled events, and the periodic
// auto-proposal. The resulting state digest is returned.
//
// Run calls this on its timer; tests and the replayer call it directly.
func (e *Engine) StepDay(pending []CommandEnvelope) string {
	recorded := e.applyCommands(pending)

	day := e.day.Add(1)

	e.maybeFiscalRollover(day)
	e.degradeAssets(day)
	e.advanceProjects(day)

	var eventIDs []uint64
	if id := e.generateRandomEvent(day); id != 0 {
		eventIDs = append(eventIDs, id)
	}
	eventIDs = append(eventIDs, e.applyScheduledEvents(day)...)

	if e.cfg.ProposalIntervalDays > 0 && day%uint64(e.cfg.ProposalIntervalDays) == 0 {
		e.autoPropose(day)
	}

	digest := e.stateDigest()

	if e.dayLogger != nil {
		_ = e.dayLogger.WriteDay(DayLogEntry{
			Day:      day,
			Commands: recorded,
			Events:   eventIDs,
			Notices:  e.noticesFor(day),
			Digest:   digest,
		})
	}
	e.broadcastObs(day, digest)

	if e.snapshotSink != nil && e.cfg.SnapshotEveryDays > 0 && day%uint64(e.cfg.SnapshotEveryDays) == 0 {
		e.emitSnapshot()
	}
	return digest
}

// AdvanceDays steps n days with no queued commands. Test helper shape,
// also used by the replayer to fast-forward between logged days.
func (e *Engine) AdvanceDays(n int) string {
	var digest string
	for i := 0; i < n; i++ {
		digest = e.StepDay(nil)
	}
	return digest
}

// maybeFiscalRollover opens a new fiscal year. Funds committed to live
// projects carry over; available funds reset to the annual budget.
func (e *Engine) maybeFiscalRollover(day uint64) {
	if e.cfg.FiscalYearDays <= 0 || day%uint64(e.cfg.FiscalYearDays) != 0 {
		return
	}
	e.budget.FiscalYear++
	e.budget.Total = e.cfg.AnnualBudget + e.budget.Allocated
	e.budget.Available = e.cfg.AnnualBudget
	e.audit(day, "engine", "ROLLOVER", fmt.Sprintf("fy:%d", e.budget.FiscalYear), e.cfg.AnnualBudget, "")
	e.notify(day, "Fiscal year %d has begun with a budget of $%.0f.", e.budget.FiscalYear, e.cfg.AnnualBudget)
}

// degradeAssets applies daily wear to every asset. The environmental
// factor is drawn per asset per day.
func (e *Engine) degradeAssets(day uint64) {
	for _, id := range e.sortedAssetIDs() {
		a := e.assets[id]
		env := uniform(hash3(e.cfg.Seed, int(day), id, saltEnvFactor), e.cfg.EnvFactorMin, e.cfg.EnvFactorMax)
		loss := a.Degrade(e.cfg.BaseDegradationRate, env)
		e.audit(day, "engine", "DEGRADE", fmt.Sprintf("asset:%d", id), loss, "")
	}
}

// advanceProjects recomputes progress for each in-progress project.
// Work elapses starting the day after StartDay, so a project with a 30
// day schedule completes exactly on its EndDay. On completion the
// allocation is released back to available funds, and maintenance or
// upgrade work repairs its assets by a deterministic amount.
func (e *Engine) advanceProjects(day uint64) {
	for _, id := range e.sortedProjectIDs() {
		p := e.projects[id]
		if p.Status != StatusInProgress || day <= p.StartDay {
			continue
		}
		if !p.UpdateProgress(day) {
			continue
		}
		e.completeProject(day, p)
	}
}

func (e *Engine) completeProject(day uint64, p *Project) {
	if p.AllocatedBudget > 0 {
		released := e.budget.Deallocate(p.AllocatedBudget)
		e.audit(day, "engine", "DEALLOCATE", fmt.Sprintf("project:%d", p.ID), released, "completion")
		p.AllocatedBudget = 0
	}
	if p.Type == TypeMaintenance || p.Type == TypeUpgrade {
		for _, aid := range p.AssetIDs {
			a := e.assets[aid]
			if a == nil {
				continue
			}
			amount := float64(intBetween(hash3(e.cfg.Seed, int(p.ID), aid, saltRepair), e.cfg.CompletionRepairMin, e.cfg.CompletionRepairMax))
			a.Repair(amount)
			e.audit(day, "engine", "REPAIR", fmt.Sprintf("asset:%d", aid), amount, "project completion")
		}
	}
	e.notify(day, "Project %s has been completed.", p.Name)
}
