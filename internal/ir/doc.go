// Package ir provides the canonical record representation for sentropy.
//
// This package contains value types, the injected policy, the error taxonomy
// and the canonical hashing used for cache keys. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational layer
// with no circular dependencies.
//
// Key design constraints:
//   - Records are plain values (no pointer fields) so callers always hold copies
//   - Coordinate magnitude is derived on demand, never stored next to the components
//   - Canonical JSON forbids floats; float inputs to hashes are encoded as IEEE-754 bits
//   - All JSON tags use snake_case
//   - Every record carries a logical clock stamp (seq) for deterministic ordering
package ir
