// Package engine implements the sentropy measurement engine.
//
// The engine computes three-component coordinates from contextual inputs,
// caches aligned coordinates, retains a bounded measurement history, and
// tracks integration attempts that drive a separation below a target.
//
// ARCHITECTURE:
//
// Owned State:
// The engine owns three structures, each behind its own sync.RWMutex:
//   - coordinate cache (map keyed by ir.CoordinateKey)
//   - measurement history (FIFO, capped at WithHistoryCap entries)
//   - integration tracker (separation, attempt log, counters)
//
// A critical section covers exactly one insert, append or update and never
// holds two of these locks at once. There is no transaction spanning
// structures, so ValidateAllMarkers is a best-effort snapshot.
//
// Journal:
// When a Journal is configured, every record is written to it while the
// owning lock is held and before the in-memory append. A failed write
// returns an io error and leaves the engine unchanged. A slow journal
// therefore stalls readers of the structure being written. Restore loads a
// journal snapshot back into a fresh engine.
//
// Ordering:
// Every record is stamped with a seq from the logical Clock, taken inside
// the same critical section as the append. History order and journal order
// therefore agree.
//
// Callers only ever receive copies. Eviction never invalidates a value a
// caller already holds.
package engine
