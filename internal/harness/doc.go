// Package harness runs conformance scenarios against the engine.
//
// A scenario is a YAML file that drives a fresh engine through a list of
// steps and then checks assertions on its final state. Each run uses a
// frozen clock and sequential IDs, so the trace it produces is identical
// across runs and can be compared against a golden snapshot.
//
// # Scenario Format
//
//	name: history_eviction
//	description: "Old measurements are evicted past the cap"
//	precision: standard      # optional, default standard
//	history_cap: 3           # optional, default 1000
//	attempt_log_cap: 0       # optional, 0 means unbounded
//	clock_step: 1s           # optional, default 0 (frozen)
//	steps:
//	  - measure:
//	      context: "0123456789"
//	      observer: naive
//	      target_precision: 1e-30
//	      complexity: 5
//	      accessibility: 0.95
//	    repeat: 5
//	    expect:
//	      converged: false
//	  - align: { knowledge: 1, time: 2, entropy: .nan }
//	    expect:
//	      error: alignment
//	  - integrate: { target: 0.01 }
//	    expect:
//	      success: true
//	  - validate: {}
//	    expect:
//	      rate: 1
//	assertions:
//	  - type: history_len
//	    value: 3
//
// Each step names exactly one operation. repeat runs it several times and
// checks the expect clause after every run. An expect clause with error set
// requires the step to fail with that error kind.
//
// # Assertion Types
//
//   - history_len: measurements retained in the history
//   - cache_size: coordinates in the alignment cache
//   - total_attempts: integration attempts recorded
//   - success_rate: integration success rate
//   - marker_rate: marker validation rate over cache and history
//   - converged_count: retained measurements that converged
//
// # Golden Snapshots
//
// Snapshot renders a result as canonical JSON with floats printed to six
// significant digits. RunWithGolden compares it against
// testdata/golden/<name>.golden.
package harness
