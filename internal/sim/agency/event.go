package agency

type EventType string

const (
	EventNaturalDisaster EventType = "NaturalDisaster"
	EventEconomicShift   EventType = "EconomicShift"
	EventPoliticalChange EventType = "PoliticalChange"
)

func ParseEventType(s string) (EventType, bool) {
	switch EventType(s) {
	case EventNaturalDisaster, EventEconomicShift, EventPoliticalChange:
		return EventType(s), true
	}
	return "", false
}

type ImpactLevel string

const (
	ImpactMinor    ImpactLevel = "Minor"
	ImpactModerate ImpactLevel = "Moderate"
	ImpactSevere   ImpactLevel = "Severe"
)

func ParseImpactLevel(s string) (ImpactLevel, bool) {
	switch ImpactLevel(s) {
	case ImpactMinor, ImpactModerate, ImpactSevere:
		return ImpactLevel(s), true
	}
	return "", false
}

// impactDamage is the fixed per-asset condition damage for a natural
// disaster at each impact level.
var impactDamage = map[ImpactLevel]float64{
	ImpactMinor:    5,
	ImpactModerate: 15,
	ImpactSevere:   30,
}

// Event is a one-shot disruptive occurrence. It is applied exactly once
// on its scheduled day and kept afterwards as a historical log entry.
type Event struct {
	ID       uint64
	Name     string
	Type     EventType
	AssetIDs []int
	Impact   ImpactLevel
	Day      uint64
	Applied  bool
}
