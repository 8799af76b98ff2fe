package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sentropy/internal/ir"
)

// GoldenDir is where RunWithGolden keeps its fixtures, relative to the
// test's package directory.
const GoldenDir = "testdata/golden"

// Snapshot renders a result as canonical JSON for golden comparison.
// Errors are left out; a failing scenario is reported by Pass, and its
// trace still shows what happened.
func Snapshot(name string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(snapshotObject(name, result))
}

// Fingerprint returns the content hash of the snapshot Snapshot would
// render for result. Equal fingerprints mean byte-identical snapshots.
func Fingerprint(name string, result *Result) (string, error) {
	return ir.TraceHash(snapshotObject(name, result))
}

func snapshotObject(name string, result *Result) ir.IRObject {
	trace := make(ir.IRArray, len(result.Trace))
	for i, ev := range result.Trace {
		obj := ir.IRObject{
			"step":    ir.IRInt(ev.Step),
			"op":      ir.IRString(ev.Op),
			"repeat":  ir.IRInt(ev.Repeat),
			"seq":     ir.IRInt(ev.Seq),
			"outcome": ir.IRString(ev.Outcome),
		}
		if ev.Result != nil {
			obj["result"] = ev.Result
		}
		trace[i] = obj
	}

	return ir.IRObject{
		"scenario": ir.IRString(name),
		"pass":     ir.IRBool(result.Pass),
		"trace":    trace,
		"final":    finalObject(result.Final),
	}
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
