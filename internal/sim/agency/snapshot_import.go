package agency

import (
	"fmt"

	"github.com/mickeyshaughnessy/TexasDoT/internal/persistence/snapshot"
)

// FromSnapshot reconstructs an engine from a SnapshotV1. The snapshot's
// captured tuning overrides the corresponding fields of cfg so a resumed
// run replays identically; operational knobs (logging, day pacing when
// absent) come from cfg.
func FromSnapshot(cfg Config, snap snapshot.SnapshotV1) (*Engine, error) {
	if snap.Header.Version != 1 {
		return nil, fmt.Errorf("snapshot version %d: %w", snap.Header.Version, ErrPersistence)
	}

	cfg.ID = snap.Header.AgencyID
	cfg.Seed = snap.Seed
	if snap.FiscalYearDays > 0 {
		cfg.FiscalYearDays = snap.FiscalYearDays
	}
	if snap.AnnualBudget > 0 {
		cfg.AnnualBudget = snap.AnnualBudget
	}
	if snap.DaySeconds > 0 {
		cfg.DaySeconds = snap.DaySeconds
	}
	if snap.BaseDegradationRate > 0 {
		cfg.BaseDegradationRate = snap.BaseDegradationRate
	}
	if snap.EnvFactorMin > 0 {
		cfg.EnvFactorMin = snap.EnvFactorMin
	}
	if snap.EnvFactorMax > 0 {
		cfg.EnvFactorMax = snap.EnvFactorMax
	}
	if snap.EventDailyChance > 0 {
		cfg.EventDailyChance = snap.EventDailyChance
	}
	if snap.BidSpread > 0 {
		cfg.BidSpread = snap.BidSpread
	}
	cfg.FiscalYear = snap.Budget.FiscalYear
	cfg.applyDefaults()

	assets := make([]Asset, 0, len(snap.Assets))
	for _, av := range snap.Assets {
		assets = append(assets, Asset{
			ID:            av.ID,
			Name:          av.Name,
			Start:         av.Start,
			End:           av.End,
			Length:        av.Length,
			Lanes:         av.Lanes,
			Condition:     av.Condition,
			TrafficVolume: av.TrafficVolume,
			Capacity:      av.Capacity,
		})
	}

	contractors := make([]Contractor, 0, len(snap.Contractors))
	for _, cv := range snap.Contractors {
		c := Contractor{
			ID:        cv.ID,
			Name:      cv.Name,
			Expertise: append([]string(nil), cv.Expertise...),
			Rating:    cv.Rating,
		}
		for _, bv := range cv.Bids {
			c.Bids = append(c.Bids, Bid{
				ProjectID:      bv.ProjectID,
				Day:            bv.Day,
				Amount:         bv.Amount,
				CompletionDays: bv.CompletionDays,
			})
		}
		contractors = append(contractors, c)
	}

	e, err := New(cfg, assets, contractors)
	if err != nil {
		return nil, err
	}

	e.day.Store(snap.Header.Day)
	e.budget = Budget{
		FiscalYear: snap.Budget.FiscalYear,
		Total:      snap.Budget.Total,
		Allocated:  snap.Budget.Allocated,
		Available:  snap.Budget.Available,
	}
	e.nextProjectID = snap.Counters.NextProject
	e.nextEventID = snap.Counters.NextEvent

	for _, pv := range snap.Projects {
		status, ok := parseProjectStatus(pv.Status)
		if !ok {
			return nil, fmt.Errorf("project %d: unknown status %q: %w", pv.ID, pv.Status, ErrPersistence)
		}
		ptype, ok := ParseProjectType(pv.Type)
		if !ok {
			return nil, fmt.Errorf("project %d: unknown type %q: %w", pv.ID, pv.Type, ErrPersistence)
		}
		for _, aid := range pv.AssetIDs {
			if e.assets[aid] == nil {
				return nil, fmt.Errorf("project %d references unknown asset %d: %w", pv.ID, aid, ErrPersistence)
			}
		}
		if pv.ContractorID != 0 && e.contractors[pv.ContractorID] == nil {
			return nil, fmt.Errorf("project %d references unknown contractor %d: %w", pv.ID, pv.ContractorID, ErrPersistence)
		}
		e.projects[pv.ID] = &Project{
			ID:              pv.ID,
			Name:            pv.Name,
			Type:            ptype,
			AssetIDs:        append([]int(nil), pv.AssetIDs...),
			EstimatedCost:   pv.EstimatedCost,
			AllocatedBudget: pv.AllocatedBudget,
			StartDay:        pv.StartDay,
			EndDay:          pv.EndDay,
			Status:          status,
			Progress:        pv.Progress,
			ContractorID:    pv.ContractorID,
			BidAmount:       pv.BidAmount,
			CompletionDays:  pv.CompletionDays,
		}
	}

	for _, ev := range snap.Events {
		etype, ok := ParseEventType(ev.Type)
		if !ok {
			return nil, fmt.Errorf("event %d: unknown type %q: %w", ev.ID, ev.Type, ErrPersistence)
		}
		for _, aid := range ev.AssetIDs {
			if e.assets[aid] == nil {
				return nil, fmt.Errorf("event %d references unknown asset %d: %w", ev.ID, aid, ErrPersistence)
			}
		}
		e.events[ev.ID] = &Event{
			ID:       ev.ID,
			Name:     ev.Name,
			Type:     etype,
			AssetIDs: append([]int(nil), ev.AssetIDs...),
			Impact:   ImpactLevel(ev.Impact),
			Day:      ev.Day,
			Applied:  ev.Applied,
		}
	}

	for _, n := range snap.Notices {
		e.notifications = append(e.notifications, Notification{Day: n.Day, Text: n.Text})
	}

	return e, nil
}

func parseProjectStatus(s string) (ProjectStatus, bool) {
	switch ProjectStatus(s) {
	case StatusProposed, StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled:
		return ProjectStatus(s), true
	}
	return "", false
}
