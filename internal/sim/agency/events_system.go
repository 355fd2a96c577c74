package agency

import (
	"fmt"
	"sort"
)

var eventTypes = []EventType{EventNaturalDisaster, EventEconomicShift, EventPoliticalChange}
var impactLevels = []ImpactLevel{ImpactMinor, ImpactModerate, ImpactSevere}

// generateRandomEvent rolls the daily event chance and, on a hit,
// creates and immediately applies one event. Returns the event id or 0.
func (e *Engine) generateRandomEvent(day uint64) uint64 {
	if u01(hash2(e.cfg.Seed, int(day), saltEventRoll)) >= e.cfg.EventDailyChance {
		return 0
	}

	etype := eventTypes[hash2(e.cfg.Seed, int(day), saltEventType)%uint64(len(eventTypes))]

	e.nextEventID++
	ev := &Event{ID: e.nextEventID, Type: etype, Day: day}

	switch etype {
	case EventNaturalDisaster:
		ev.Name = "Heavy Rainstorm"
		ev.Impact = impactLevels[hash2(e.cfg.Seed, int(day), saltEventImpact)%uint64(len(impactLevels))]
		ev.AssetIDs = e.sampleAssets(day, intBetween(hash2(e.cfg.Seed, int(day), saltEventCount), e.cfg.EventMinAssets, e.cfg.EventMaxAssets))
	case EventEconomicShift:
		// Recognized but without a defined asset effect yet.
		ev.Name = "Economic Shift"
	case EventPoliticalChange:
		ev.Name = "Political Change"
	}

	e.events[ev.ID] = ev
	e.applyEvent(day, ev)
	e.notify(day, "Event '%s' occurred affecting %d assets.", ev.Name, len(ev.AssetIDs))
	return ev.ID
}

// sampleAssets picks k distinct assets by ranking them under a per-day
// hash, a deterministic stand-in for sampling without replacement.
func (e *Engine) sampleAssets(day uint64, k int) []int {
	ids := e.sortedAssetIDs()
	if k > len(ids) {
		k = len(ids)
	}
	sort.Slice(ids, func(i, j int) bool {
		return hash3(e.cfg.Seed, int(day), ids[i], saltEventSample) < hash3(e.cfg.Seed, int(day), ids[j], saltEventSample)
	})
	picked := append([]int(nil), ids[:k]...)
	sort.Ints(picked)
	return picked
}

// applyEvent applies an event's effect once and marks it applied.
// Only natural disasters currently damage assets; the other variants are
// deliberate no-ops on the registry.
func (e *Engine) applyEvent(day uint64, ev *Event) {
	if ev.Applied {
		return
	}
	ev.Applied = true
	if ev.Type != EventNaturalDisaster {
		return
	}
	dmg := impactDamage[ev.Impact]
	for _, id := range ev.AssetIDs {
		a := e.assets[id]
		if a == nil {
			continue
		}
		a.Damage(dmg)
		e.audit(day, "engine", "DAMAGE", fmt.Sprintf("asset:%d", id), dmg, string(ev.Impact))
	}
}

// applyScheduledEvents fires events whose scheduled day has arrived and
// that have not been applied yet. An event scheduled for the command
// day fires at the very next boundary rather than sitting unapplied;
// events generated earlier the same step were applied at creation and
// are skipped, so no event ever hits its assets twice.
func (e *Engine) applyScheduledEvents(day uint64) []uint64 {
	var fired []uint64
	for _, id := range e.sortedEventIDs() {
		ev := e.events[id]
		if ev.Day > day || ev.Applied {
			continue
		}
		e.applyEvent(day, ev)
		e.notify(day, "Event '%s' is happening today.", ev.Name)
		fired = append(fired, id)
	}
	return fired
}
