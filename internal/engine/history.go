package engine

import "github.com/roach88/sentropy/internal/ir"

// DefaultHistoryCap is the number of measurements retained by default.
const DefaultHistoryCap = 1000

// history is a bounded FIFO of measurements.
//
// It is not synchronized; the engine guards it with historyMu. Appending
// past the cap evicts from the front, oldest first.
type history struct {
	items []ir.Measurement
	cap   int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = DefaultHistoryCap
	}
	return &history{
		items: make([]ir.Measurement, 0, min(capacity, 64)),
		cap:   capacity,
	}
}

// append adds m to the back and returns how many entries were evicted.
func (h *history) append(m ir.Measurement) int {
	h.items = append(h.items, m)

	evicted := 0
	for len(h.items) > h.cap {
		// Zero the slot so the backing array drops the evicted strings.
		h.items[0] = ir.Measurement{}
		h.items = h.items[1:]
		evicted++
	}

	// Compact once the dead prefix of the backing array grows past the cap.
	if evicted > 0 && cap(h.items) > 2*h.cap {
		compacted := make([]ir.Measurement, len(h.items), h.cap+1)
		copy(compacted, h.items)
		h.items = compacted
	}
	return evicted
}

// replace loads ms, keeping only the newest cap entries.
func (h *history) replace(ms []ir.Measurement) {
	if len(ms) > h.cap {
		ms = ms[len(ms)-h.cap:]
	}
	h.items = make([]ir.Measurement, len(ms), max(len(ms), min(h.cap, 64)))
	copy(h.items, ms)
}

// snapshot returns a copy of the retained measurements, oldest first.
func (h *history) snapshot() []ir.Measurement {
	out := make([]ir.Measurement, len(h.items))
	copy(out, h.items)
	return out
}

func (h *history) len() int {
	return len(h.items)
}
