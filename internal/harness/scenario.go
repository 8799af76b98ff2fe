package harness

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Precision is the engine's precision level. Default: standard.
	Precision string `yaml:"precision,omitempty"`

	// HistoryCap bounds the measurement history. Default: 1000.
	HistoryCap int `yaml:"history_cap,omitempty"`

	// AttemptLogCap bounds the attempt log. Zero means unbounded.
	AttemptLogCap int `yaml:"attempt_log_cap,omitempty"`

	// ClockStep is how far the clock moves on each read, as a Go duration.
	// Default: frozen.
	ClockStep string `yaml:"clock_step,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one engine operation. Exactly one of Measure, Align, Integrate,
// and Validate is set.
type Step struct {
	Measure   *engine.MeasurementInput `yaml:"measure,omitempty"`
	Align     *AlignArgs               `yaml:"align,omitempty"`
	Integrate *IntegrateArgs           `yaml:"integrate,omitempty"`
	Validate  *ValidateArgs            `yaml:"validate,omitempty"`

	// Repeat runs the step this many times. Default: 1.
	Repeat int `yaml:"repeat,omitempty"`

	// Expect is checked after every run of the step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// AlignArgs are the inputs to an align step.
type AlignArgs struct {
	Knowledge float64 `yaml:"knowledge"`
	Time      float64 `yaml:"time"`
	Entropy   float64 `yaml:"entropy"`
}

// IntegrateArgs are the inputs to an integrate step.
type IntegrateArgs struct {
	Target float64 `yaml:"target"`
}

// ValidateArgs is empty; a validate step takes no inputs.
type ValidateArgs struct{}

// Expect constrains a step's outcome. Unset fields are not checked.
type Expect struct {
	// Error is the expected error kind. Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Converged applies to measure steps.
	Converged *bool `yaml:"converged,omitempty"`

	// Magnitude applies to measure and align steps, within 1e-9.
	Magnitude *float64 `yaml:"magnitude,omitempty"`

	// Success applies to integrate steps.
	Success *bool `yaml:"success,omitempty"`

	// Rate applies to validate steps.
	Rate *float64 `yaml:"rate,omitempty"`
}

// Assertion checks one value of the final engine state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Value is the expected value, compared within 1e-9.
	Value float64 `yaml:"value"`
}

// Step operation names.
const (
	OpMeasure   = "measure"
	OpAlign     = "align"
	OpIntegrate = "integrate"
	OpValidate  = "validate"
)

// Assertion type constants.
const (
	AssertHistoryLen     = "history_len"
	AssertCacheSize      = "cache_size"
	AssertTotalAttempts  = "total_attempts"
	AssertSuccessRate    = "success_rate"
	AssertMarkerRate     = "marker_rate"
	AssertConvergedCount = "converged_count"
)

var assertionTypes = map[string]bool{
	AssertHistoryLen:     true,
	AssertCacheSize:      true,
	AssertTotalAttempts:  true,
	AssertSuccessRate:    true,
	AssertMarkerRate:     true,
	AssertConvergedCount: true,
}

// Op returns the name of the operation the step runs, or "" if the step
// names none or more than one.
func (s Step) Op() string {
	var ops []string
	if s.Measure != nil {
		ops = append(ops, OpMeasure)
	}
	if s.Align != nil {
		ops = append(ops, OpAlign)
	}
	if s.Integrate != nil {
		ops = append(ops, OpIntegrate)
	}
	if s.Validate != nil {
		ops = append(ops, OpValidate)
	}
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// Runs returns how many times the step executes.
func (s Step) Runs() int {
	if s.Repeat < 1 {
		return 1
	}
	return s.Repeat
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(bytes.NewReader(data))
}

// ParseScenario parses and validates a scenario from r.
func ParseScenario(r io.Reader) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Precision != "" {
		if _, err := ir.ParsePrecision(s.Precision); err != nil {
			return fmt.Errorf("precision: %w", err)
		}
	}

	if s.HistoryCap < 0 {
		return fmt.Errorf("history_cap must be non-negative")
	}
	if s.AttemptLogCap < 0 {
		return fmt.Errorf("attempt_log_cap must be non-negative")
	}

	if s.ClockStep != "" {
		d, err := time.ParseDuration(s.ClockStep)
		if err != nil {
			return fmt.Errorf("clock_step: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("clock_step must be non-negative")
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if a.Type == "" {
			return fmt.Errorf("assertions[%d]: type is required", i)
		}
		if !assertionTypes[a.Type] {
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}

	return nil
}

// validateStep checks that a step names one operation and that its expect
// clause only uses fields that apply to it.
func validateStep(index int, s Step) error {
	op := s.Op()
	if op == "" {
		return fmt.Errorf("steps[%d]: exactly one of measure, align, integrate, validate is required", index)
	}
	if s.Repeat < 0 {
		return fmt.Errorf("steps[%d]: repeat must be non-negative", index)
	}

	e := s.Expect
	if e == nil {
		return nil
	}
	if e.Converged != nil && op != OpMeasure {
		return fmt.Errorf("steps[%d].expect: converged applies only to measure", index)
	}
	if e.Magnitude != nil && op != OpMeasure && op != OpAlign {
		return fmt.Errorf("steps[%d].expect: magnitude applies only to measure and align", index)
	}
	if e.Success != nil && op != OpIntegrate {
		return fmt.Errorf("steps[%d].expect: success applies only to integrate", index)
	}
	if e.Rate != nil && op != OpValidate {
		return fmt.Errorf("steps[%d].expect: rate applies only to validate", index)
	}
	if e.Error != "" && (e.Converged != nil || e.Magnitude != nil || e.Success != nil || e.Rate != nil) {
		return fmt.Errorf("steps[%d].expect: error cannot be combined with result fields", index)
	}
	return nil
}
