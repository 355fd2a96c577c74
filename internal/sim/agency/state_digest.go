package agency

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math"
)

// stateDigest hashes the complete simulation state in a canonical order.
// Two engines with the same seed and command history produce identical
// digests on every day, which is what the replayer verifies.
func (e *Engine) stateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, e.day.Load())
	digestWriteI64(h, &tmp, int64(e.budget.FiscalYear))
	digestWriteF64(h, &tmp, e.budget.Total)
	digestWriteF64(h, &tmp, e.budget.Allocated)
	digestWriteF64(h, &tmp, e.budget.Available)

	for _, id := range e.sortedAssetIDs() {
		a := e.assets[id]
		digestWriteI64(h, &tmp, int64(a.ID))
		digestWriteF64(h, &tmp, a.Condition)
		digestWriteI64(h, &tmp, int64(a.TrafficVolume))
		digestWriteI64(h, &tmp, int64(a.Capacity))
	}

	for _, id := range e.sortedProjectIDs() {
		p := e.projects[id]
		digestWriteU64(h, &tmp, p.ID)
		io.WriteString(h, string(p.Type))
		io.WriteString(h, string(p.Status))
		digestWriteF64(h, &tmp, p.EstimatedCost)
		digestWriteF64(h, &tmp, p.AllocatedBudget)
		digestWriteF64(h, &tmp, p.Progress)
		digestWriteU64(h, &tmp, p.StartDay)
		digestWriteU64(h, &tmp, p.EndDay)
		digestWriteI64(h, &tmp, int64(p.ContractorID))
		digestWriteF64(h, &tmp, p.BidAmount)
		digestWriteI64(h, &tmp, int64(p.CompletionDays))
	}

	for _, c := range e.Contractors() {
		digestWriteI64(h, &tmp, int64(c.ID))
		digestWriteF64(h, &tmp, c.Rating)
		digestWriteI64(h, &tmp, int64(len(c.Bids)))
		for _, b := range c.Bids {
			digestWriteU64(h, &tmp, b.ProjectID)
			digestWriteU64(h, &tmp, b.Day)
			digestWriteF64(h, &tmp, b.Amount)
			digestWriteI64(h, &tmp, int64(b.CompletionDays))
		}
	}

	for _, id := range e.sortedEventIDs() {
		ev := e.events[id]
		digestWriteU64(h, &tmp, ev.ID)
		io.WriteString(h, string(ev.Type))
		io.WriteString(h, string(ev.Impact))
		digestWriteU64(h, &tmp, ev.Day)
		h.Write([]byte{boolByte(ev.Applied)})
		for _, aid := range ev.AssetIDs {
			digestWriteI64(h, &tmp, int64(aid))
		}
	}

	digestWriteU64(h, &tmp, e.nextProjectID)
	digestWriteU64(h, &tmp, e.nextEventID)

	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h io.Writer, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h io.Writer, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteF64(h io.Writer, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
