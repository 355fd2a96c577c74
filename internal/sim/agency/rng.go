package agency

// Deterministic draws. Every stochastic decision in the engine is a pure
// function of (seed, day, salts), so replays from any snapshot reproduce
// the run exactly and no generator state needs persisting.

const (
	saltEnvFactor   = 101
	saltEventRoll   = 211
	saltEventType   = 223
	saltEventImpact = 227
	saltEventCount  = 229
	saltEventSample = 233
	saltBidAmount   = 307
	saltBidDays     = 311
	saltRepair      = 331
	saltProposal    = 401
)

func mix64(v uint64) uint64 {
	v ^= v >> 30
	v *= 0xbf58476d1ce4e5b9
	v ^= v >> 27
	v *= 0x94d049bb133111eb
	v ^= v >> 31
	return v
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// u01 maps a hash to [0,1).
func u01(h uint64) float64 {
	return float64(h%1_000_000_000) / 1_000_000_000.0
}

// uniform maps a hash to the half-open [lo,hi); hi itself is never
// drawn, which is immaterial at the 1e-9 grid of u01.
func uniform(h uint64, lo, hi float64) float64 {
	return lo + (hi-lo)*u01(h)
}

// intBetween maps a hash to [lo,hi] inclusive.
func intBetween(h uint64, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(h%uint64(hi-lo+1))
}
