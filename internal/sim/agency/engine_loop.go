package agency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mickeyshaughnessy/TexasDoT/internal/protocol"
)

// Run drives the day clock until the context is cancelled or Stop is
// called. Commands arriving between boundaries queue up and apply in
// arrival order at the next boundary; observer attach and detach are
// handled between days so a day is never observed half-stepped.
func (e *Engine) Run(ctx context.Context) {
	interval := time.Duration(e.cfg.DaySeconds * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []CommandEnvelope
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case env := <-e.inbox:
			pending = append(pending, env)
		case req := <-e.attach:
			e.handleAttach(req)
		case id := <-e.detach:
			delete(e.observers, id)
		case q := <-e.queries:
			e.handleQuery(q)
		case <-ticker.C:
			e.StepDay(pending)
			pending = nil
		}
	}
}

// Stop terminates Run. Safe to call more than once.
func (e *Engine) Stop() {
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}

func (e *Engine) handleAttach(req ObserverRequest) {
	e.nextObserverNum++
	id := fmt.Sprintf("client_%d", e.nextObserverNum)
	e.observers[id] = &observerState{Out: req.Out}
	req.Resp <- protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ClientID:        id,
		EngineParams: protocol.EngineParams{
			AgencyID:   e.cfg.ID,
			Seed:       e.cfg.Seed,
			DaySeconds: e.cfg.DaySeconds,
			FiscalYear: e.budget.FiscalYear,
			CurrentDay: e.day.Load(),
		},
	}
}

func (e *Engine) handleQuery(q StateQuery) {
	view := StateView{Day: e.day.Load(), Budget: e.budget}
	if q.AssetID != 0 {
		if a := e.assets[q.AssetID]; a != nil {
			view.Asset = *a
			view.AssetOK = true
		}
	}
	select {
	case q.Resp <- view:
	default:
	}
}

// applyCommands executes queued operator commands against the current
// day and acks each back to its issuer. Failed commands are acked with
// a stable error code and excluded from the day log.
func (e *Engine) applyCommands(pending []CommandEnvelope) []RecordedCommand {
	var recorded []RecordedCommand
	for _, env := range pending {
		ack := e.applyCommand(env.Cmd)
		if ack.Accepted {
			recorded = append(recorded, RecordedCommand{ClientID: env.ClientID, Cmd: env.Cmd})
		}
		e.sendTo(env.ClientID, ack)
	}
	return recorded
}

func (e *Engine) applyCommand(cmd protocol.CmdMsg) protocol.AckMsg {
	ack := protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          cmd.ID,
		Day:             e.day.Load(),
	}

	var err error
	switch cmd.Op {
	case protocol.OpProposeProject:
		var p *Project
		p, err = e.ProposeProject(cmd.Name, ProjectType(cmd.ProjectType), cmd.AssetIDs, cmd.EstimatedCost, cmd.StartOffsetDays, cmd.DurationDays)
		if err == nil {
			ack.ProjectID = p.ID
		}
	case protocol.OpApproveProject:
		err = e.ApproveProject(cmd.ProjectID)
		ack.ProjectID = cmd.ProjectID
	case protocol.OpAssignContractor:
		_, err = e.AssignContractor(cmd.ProjectID)
		ack.ProjectID = cmd.ProjectID
	case protocol.OpCancelProject:
		err = e.CancelProject(cmd.ProjectID)
		ack.ProjectID = cmd.ProjectID
	case protocol.OpPerformMaintenance:
		err = e.PerformMaintenance(cmd.AssetID, cmd.RepairAmount)
	case protocol.OpScheduleEvent:
		_, err = e.ScheduleEvent(cmd.Name, EventType(cmd.EventType), ImpactLevel(cmd.Impact), cmd.AssetIDs, cmd.Day)
	case protocol.OpSaveState:
		if !e.CheckpointNow() {
			err = fmt.Errorf("save state: no snapshot writer: %w", ErrPersistence)
		}
	default:
		ack.Code = protocol.ErrProtoBadRequest
		ack.Message = fmt.Sprintf("unknown op %q", cmd.Op)
		return ack
	}

	if err != nil {
		ack.Code = codeFor(err)
		ack.Message = err.Error()
		return ack
	}
	ack.Accepted = true
	return ack
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return protocol.ErrInsufficientFunds
	case errors.Is(err, ErrInvalidTransition):
		return protocol.ErrInvalidTransition
	case errors.Is(err, ErrNotFound):
		return protocol.ErrNotFound
	case errors.Is(err, ErrBadRequest):
		return protocol.ErrBadRequest
	case errors.Is(err, ErrPersistence):
		return protocol.ErrPersistence
	}
	return protocol.ErrInternal
}

// sendTo delivers a message to one observer, dropping it if the
// observer's queue is full.
func (e *Engine) sendTo(clientID string, v any) {
	obs := e.observers[clientID]
	if obs == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case obs.Out <- b:
	default:
	}
}

func (e *Engine) broadcastNotice(n Notification) {
	if len(e.observers) == 0 {
		return
	}
	b, err := json.Marshal(protocol.NoticeMsg{
		Type:            protocol.TypeNotice,
		ProtocolVersion: protocol.Version,
		Day:             n.Day,
		Text:            n.Text,
	})
	if err != nil {
		return
	}
	for _, obs := range e.observers {
		select {
		case obs.Out <- b:
		default:
		}
	}
}

// broadcastObs sends the per-day observation to every observer. Slow
// observers lose days rather than stalling the clock.
func (e *Engine) broadcastObs(day uint64, digest string) {
	if len(e.observers) == 0 {
		return
	}
	obsMsg := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Day:             day,
		Budget: protocol.BudgetView{
			FiscalYear: e.budget.FiscalYear,
			Total:      e.budget.Total,
			Allocated:  e.budget.Allocated,
			Available:  e.budget.Available,
		},
		Notices: e.noticesFor(day),
		Digest:  digest,
	}
	for _, id := range e.sortedAssetIDs() {
		a := e.assets[id]
		obsMsg.Assets = append(obsMsg.Assets, protocol.AssetView{
			ID:        a.ID,
			Name:      a.Name,
			Condition: a.Condition,
			Traffic:   a.TrafficVolume,
			Capacity:  a.Capacity,
		})
	}
	for _, id := range e.sortedProjectIDs() {
		p := e.projects[id]
		if p.Status.terminal() && day > p.EndDay+1 {
			continue
		}
		obsMsg.Projects = append(obsMsg.Projects, protocol.ProjectView{
			ID:             p.ID,
			Name:           p.Name,
			Type:           string(p.Type),
			Status:         string(p.Status),
			Progress:       p.Progress,
			EstimatedCost:  p.EstimatedCost,
			AllocatedFunds: p.AllocatedBudget,
			StartDay:       p.StartDay,
			EndDay:         p.EndDay,
			ContractorID:   p.ContractorID,
			BidAmount:      p.BidAmount,
		})
	}
	b, err := json.Marshal(obsMsg)
	if err != nil {
		return
	}
	for _, obs := range e.observers {
		select {
		case obs.Out <- b:
		default:
		}
	}
}
