package agency

// Asset is a road segment managed by the agency. Assets are created at
// initialization and never destroyed during a run; only their condition
// moves, through degradation and repair.
type Asset struct {
	ID     int
	Name   string
	Start  [2]float64 // map geometry, cosmetic only
	End    [2]float64
	Length float64
	Lanes  int

	Condition     float64 // clamped to [0,100]
	TrafficVolume int
	Capacity      int
}

// Degrade lowers the condition by baseRate scaled with congestion and the
// day's environmental factor. Returns the applied loss.
func (a *Asset) Degrade(baseRate, envFactor float64) float64 {
	load := 0.0
	if a.Capacity > 0 {
		load = float64(a.TrafficVolume) / float64(a.Capacity)
	}
	loss := baseRate * (1 + load + envFactor)
	a.Condition = clampCondition(a.Condition - loss)
	return loss
}

// Repair raises the condition by amount, clamped at 100.
func (a *Asset) Repair(amount float64) {
	a.Condition = clampCondition(a.Condition + amount)
}

// Damage lowers the condition by amount, clamped at 0.
func (a *Asset) Damage(amount float64) {
	a.Condition = clampCondition(a.Condition - amount)
}

func clampCondition(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
