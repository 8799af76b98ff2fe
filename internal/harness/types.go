package harness

import (
	"github.com/roach88/sentropy/internal/ir"
)

// OutcomeOK marks a trace event whose operation succeeded. Failed
// operations record their error kind instead.
const OutcomeOK = "ok"

// TraceEvent records the last execution of one scenario step.
type TraceEvent struct {
	Step    int         `json:"step"`
	Op      string      `json:"op"`
	Repeat  int         `json:"repeat"`
	Seq     int64       `json:"seq"`
	Outcome string      `json:"outcome"`
	Result  ir.IRObject `json:"result,omitempty"`
}

// Final is the engine state after the last step.
type Final struct {
	Seq            int64   `json:"seq"`
	HistoryLen     int     `json:"history_len"`
	CacheSize      int     `json:"cache_size"`
	TotalAttempts  int     `json:"total_attempts"`
	SuccessRate    float64 `json:"success_rate"`
	MarkerRate     float64 `json:"marker_rate"`
	ConvergedCount int     `json:"converged_count"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in step order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists every failed expectation. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Final Final `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
