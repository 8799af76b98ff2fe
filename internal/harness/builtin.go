package harness

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// Builtin returns the scenarios shipped with the binary, sorted by name.
// Their golden files live in this package's testdata/golden.
func Builtin() ([]*Scenario, error) {
	paths, err := fs.Glob(builtinFS, "scenarios/*.yaml")
	if err != nil {
		return nil, err
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		data, err := builtinFS.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		s, err := ParseScenario(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}

	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].Name < scenarios[j].Name
	})
	return scenarios, nil
}
