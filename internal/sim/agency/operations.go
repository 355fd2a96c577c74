package agency

import "fmt"

// ProposeProject creates a new project in Proposed status. Dates are
// relative to the current day: start = today + startOffsetDays,
// end = start + durationDays. A zero duration is legal and completes on
// its first progress update.
func (e *Engine) ProposeProject(name string, ptype ProjectType, assetIDs []int, estimatedCost float64, startOffsetDays, durationDays int) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("propose: empty name: %w", ErrBadRequest)
	}
	if _, ok := ParseProjectType(string(ptype)); !ok {
		return nil, fmt.Errorf("propose %q: unknown project type %q: %w", name, ptype, ErrBadRequest)
	}
	if estimatedCost <= 0 {
		return nil, fmt.Errorf("propose %q: non-positive cost %.2f: %w", name, estimatedCost, ErrBadRequest)
	}
	if startOffsetDays < 0 || durationDays < 0 {
		return nil, fmt.Errorf("propose %q: negative schedule: %w", name, ErrBadRequest)
	}
	for _, id := range assetIDs {
		if e.assets[id] == nil {
			return nil, fmt.Errorf("propose %q: asset %d: %w", name, id, ErrNotFound)
		}
	}

	day := e.day.Load()
	e.nextProjectID++
	p := &Project{
		ID:            e.nextProjectID,
		Name:          name,
		Type:          ptype,
		AssetIDs:      append([]int(nil), assetIDs...),
		EstimatedCost: estimatedCost,
		StartDay:      day + uint64(startOffsetDays),
		EndDay:        day + uint64(startOffsetDays) + uint64(durationDays),
		Status:        StatusProposed,
	}
	e.projects[p.ID] = p
	e.notify(day, "Proposed new project: %s (ID: %d)", p.Name, p.ID)
	return p, nil
}

// ApproveProject moves a proposed project to Approved, allocating its
// estimated cost. A budget shortfall leaves the project untouched.
func (e *Engine) ApproveProject(id uint64) error {
	day := e.day.Load()
	p := e.projects[id]
	if p == nil {
		return fmt.Errorf("approve project %d: %w", id, ErrNotFound)
	}
	if !p.Status.canTransition(StatusApproved) {
		return fmt.Errorf("approve project %d in status %s: %w", id, p.Status, ErrInvalidTransition)
	}
	if err := e.budget.Allocate(p.EstimatedCost); err != nil {
		e.notify(day, "Insufficient funds to approve project %s.", p.Name)
		return fmt.Errorf("approve project %d: %w", id, err)
	}
	p.AllocatedBudget = p.EstimatedCost
	p.Status = StatusApproved
	e.audit(day, "engine", "ALLOCATE", fmt.Sprintf("project:%d", id), p.EstimatedCost, "approval")
	e.notify(day, "Project %s has been approved and allocated $%.2f.", p.Name, p.AllocatedBudget)
	return nil
}

// CancelProject terminates a Proposed or Approved project and releases
// any outstanding allocation back to the budget.
func (e *Engine) CancelProject(id uint64) error {
	day := e.day.Load()
	p := e.projects[id]
	if p == nil {
		return fmt.Errorf("cancel project %d: %w", id, ErrNotFound)
	}
	if !p.Status.canTransition(StatusCancelled) {
		return fmt.Errorf("cancel project %d in status %s: %w", id, p.Status, ErrInvalidTransition)
	}
	if p.AllocatedBudget > 0 {
		released := e.budget.Deallocate(p.AllocatedBudget)
		e.audit(day, "engine", "DEALLOCATE", fmt.Sprintf("project:%d", id), released, "cancellation")
		p.AllocatedBudget = 0
	}
	p.Status = StatusCancelled
	e.notify(day, "Project %s has been cancelled.", p.Name)
	return nil
}

// PerformMaintenance buys an immediate repair on one asset at the
// configured cost per condition point. The cost is committed out of
// available funds.
func (e *Engine) PerformMaintenance(assetID int, repairAmount float64) error {
	day := e.day.Load()
	a := e.assets[assetID]
	if a == nil {
		return fmt.Errorf("maintain asset %d: %w", assetID, ErrNotFound)
	}
	if repairAmount <= 0 {
		return fmt.Errorf("maintain asset %d: non-positive amount %.2f: %w", assetID, repairAmount, ErrBadRequest)
	}
	cost := repairAmount * e.cfg.MaintenanceCostPerPoint
	if err := e.budget.Allocate(cost); err != nil {
		e.notify(day, "Insufficient funds to perform maintenance on %s.", a.Name)
		return fmt.Errorf("maintain asset %d: %w", assetID, err)
	}
	a.Repair(repairAmount)
	e.audit(day, "engine", "REPAIR", fmt.Sprintf("asset:%d", assetID), repairAmount, "maintenance")
	e.notify(day, "Performed maintenance on %s for $%.0f.", a.Name, cost)
	return nil
}

// ScheduleEvent places an event in the log for a future (or current)
// day; the day cycle applies it at the first boundary on or after that
// day.
func (e *Engine) ScheduleEvent(name string, etype EventType, impact ImpactLevel, assetIDs []int, day uint64) (*Event, error) {
	if _, ok := ParseEventType(string(etype)); !ok {
		return nil, fmt.Errorf("schedule event: unknown type %q: %w", etype, ErrBadRequest)
	}
	if etype == EventNaturalDisaster {
		if _, ok := ParseImpactLevel(string(impact)); !ok {
			return nil, fmt.Errorf("schedule event: unknown impact %q: %w", impact, ErrBadRequest)
		}
	}
	if day < e.day.Load() {
		return nil, fmt.Errorf("schedule event on past day %d: %w", day, ErrBadRequest)
	}
	for _, id := range assetIDs {
		if e.assets[id] == nil {
			return nil, fmt.Errorf("schedule event: asset %d: %w", id, ErrNotFound)
		}
	}
	if name == "" {
		name = string(etype)
	}
	e.nextEventID++
	ev := &Event{
		ID:       e.nextEventID,
		Name:     name,
		Type:     etype,
		AssetIDs: append([]int(nil), assetIDs...),
		Impact:   impact,
		Day:      day,
	}
	e.events[ev.ID] = ev
	return ev, nil
}
