// Package store provides the SQLite-backed journal for sentropy engines.
//
// The journal holds three record kinds:
//   - coordinates: aligned coordinates, one row per cache key (upsert)
//   - measurements: append-only measurement log
//   - integration_attempts: append-only attempt log
//
// Store implements engine.Journal. Snapshot rebuilds the state an engine
// needs to resume (engine.Restore), and QueryMeasurements serves filtered
// reads for the CLI.
//
// # Ordering
//
// All ordering uses seq INTEGER (the engine's logical clock), never
// timestamps. Every query includes ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Floats are stored as REAL, which SQLite keeps as IEEE-754 doubles, so
// values round-trip bit for bit.
package store
