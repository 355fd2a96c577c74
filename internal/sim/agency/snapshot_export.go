package agency

import "github.com/mickeyshaughnessy/TexasDoT/internal/persistence/snapshot"

// ExportSnapshot captures the full engine state as a SnapshotV1.
func (e *Engine) ExportSnapshot() snapshot.SnapshotV1 {
	day := e.day.Load()
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{Version: 1, AgencyID: e.cfg.ID, Day: day},

		Seed:           e.cfg.Seed,
		FiscalYear:     e.budget.FiscalYear,
		FiscalYearDays: e.cfg.FiscalYearDays,
		AnnualBudget:   e.cfg.AnnualBudget,
		DaySeconds:     e.cfg.DaySeconds,

		BaseDegradationRate: e.cfg.BaseDegradationRate,
		EnvFactorMin:        e.cfg.EnvFactorMin,
		EnvFactorMax:        e.cfg.EnvFactorMax,
		EventDailyChance:    e.cfg.EventDailyChance,
		BidSpread:           e.cfg.BidSpread,

		Budget: snapshot.BudgetV1{
			FiscalYear: e.budget.FiscalYear,
			Total:      e.budget.Total,
			Allocated:  e.budget.Allocated,
			Available:  e.budget.Available,
		},

		Counters: snapshot.CountersV1{
			NextProject: e.nextProjectID,
			NextEvent:   e.nextEventID,
		},
	}

	for _, id := range e.sortedAssetIDs() {
		a := e.assets[id]
		snap.Assets = append(snap.Assets, snapshot.AssetV1{
			ID:            a.ID,
			Name:          a.Name,
			Start:         a.Start,
			End:           a.End,
			Length:        a.Length,
			Lanes:         a.Lanes,
			Condition:     a.Condition,
			TrafficVolume: a.TrafficVolume,
			Capacity:      a.Capacity,
		})
	}

	for _, c := range e.Contractors() {
		cv := snapshot.ContractorV1{
			ID:        c.ID,
			Name:      c.Name,
			Expertise: append([]string(nil), c.Expertise...),
			Rating:    c.Rating,
		}
		for _, b := range c.Bids {
			cv.Bids = append(cv.Bids, snapshot.BidV1{
				ProjectID:      b.ProjectID,
				Day:            b.Day,
				Amount:         b.Amount,
				CompletionDays: b.CompletionDays,
			})
		}
		snap.Contractors = append(snap.Contractors, cv)
	}

	for _, id := range e.sortedProjectIDs() {
		p := e.projects[id]
		snap.Projects = append(snap.Projects, snapshot.ProjectV1{
			ID:              p.ID,
			Name:            p.Name,
			Type:            string(p.Type),
			AssetIDs:        append([]int(nil), p.AssetIDs...),
			EstimatedCost:   p.EstimatedCost,
			AllocatedBudget: p.AllocatedBudget,
			StartDay:        p.StartDay,
			EndDay:          p.EndDay,
			Status:          string(p.Status),
			Progress:        p.Progress,
			ContractorID:    p.ContractorID,
			BidAmount:       p.BidAmount,
			CompletionDays:  p.CompletionDays,
		})
	}

	for _, id := range e.sortedEventIDs() {
		ev := e.events[id]
		snap.Events = append(snap.Events, snapshot.EventV1{
			ID:       ev.ID,
			Name:     ev.Name,
			Type:     string(ev.Type),
			AssetIDs: append([]int(nil), ev.AssetIDs...),
			Impact:   string(ev.Impact),
			Day:      ev.Day,
			Applied:  ev.Applied,
		})
	}

	for _, n := range e.notifications {
		snap.Notices = append(snap.Notices, snapshot.NoticeV1{Day: n.Day, Text: n.Text})
	}

	return snap
}

func (e *Engine) emitSnapshot() {
	select {
	case e.snapshotSink <- e.ExportSnapshot():
	default:
		e.notify(e.day.Load(), "Snapshot dropped: writer is behind.")
	}
}

// CheckpointNow exports a snapshot on demand, outside the periodic
// schedule. Returns false when no sink is wired or the sink is full.
func (e *Engine) CheckpointNow() bool {
	if e.snapshotSink == nil {
		return false
	}
	select {
	case e.snapshotSink <- e.ExportSnapshot():
		return true
	default:
		return false
	}
}
