package ir

import (
	"encoding/json"
	"math"
	"time"
)

// MethodTriDimensionalAlignment is the method recorded on every integration attempt.
const MethodTriDimensionalAlignment = "tri_dimensional_alignment"

// Magnitude returns the Euclidean norm of the three components. It does not
// overflow for finite components unless the norm itself exceeds the float64
// range.
func Magnitude(knowledge, time, entropy float64) float64 {
	return math.Hypot(math.Hypot(knowledge, time), entropy)
}

// Coordinate is a three-component position with a provenance marker.
// The magnitude is never stored; it is recomputed from the components.
type Coordinate struct {
	ID        string    `json:"id"`
	Knowledge float64   `json:"knowledge"`
	Time      float64   `json:"time"`
	Entropy   float64   `json:"entropy"`
	Marker    string    `json:"marker"`
	CreatedAt time.Time `json:"created_at"`
}

// Magnitude returns sqrt(k²+t²+e²) for the coordinate.
func (c Coordinate) Magnitude() float64 {
	return Magnitude(c.Knowledge, c.Time, c.Entropy)
}

// IsOptimal reports whether the coordinate magnitude is strictly below the
// threshold for level.
func (c Coordinate) IsOptimal(level Precision) bool {
	return Optimal(c.Magnitude(), level)
}

// MarshalJSON includes the derived magnitude in the output.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	type coordinate Coordinate
	return json.Marshal(struct {
		coordinate
		Magnitude float64 `json:"magnitude"`
	}{coordinate(c), c.Magnitude()})
}

// Measurement is an immutable record of one engine measurement.
type Measurement struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	Knowledge  float64   `json:"knowledge"`
	Time       float64   `json:"time"`
	Entropy    float64   `json:"entropy"`
	Magnitude  float64   `json:"magnitude"`
	Observer   Observer  `json:"observer"`
	Precision  Precision `json:"precision"`
	Converged  bool      `json:"converged"`
	Marker     string    `json:"marker"`
	MeasuredAt time.Time `json:"measured_at"`
}

// IntegrationAttempt records one run of the decay loop.
type IntegrationAttempt struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	Target      float64   `json:"target"`
	Achieved    float64   `json:"achieved"`
	Success     bool      `json:"success"`
	Iterations  int       `json:"iterations"`
	Method      string    `json:"method"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// IntegrationStats is a snapshot of the integration tracker.
type IntegrationStats struct {
	CurrentSeparation float64    `json:"current_separation"`
	SuccessRate       float64    `json:"success_rate"`
	TotalAttempts     int        `json:"total_attempts"`
	Successes         int        `json:"successes"`
	LastSuccess       *time.Time `json:"last_success,omitempty"`
	OptimalAchieved   bool       `json:"optimal_achieved"`
}

// PhaseCount is the per-source breakdown of a validation report.
type PhaseCount struct {
	Total    int `json:"total"`
	Matching int `json:"matching"`
}

// ValidationReport summarises a marker validation scan.
//
// The cache and history phases are read under separate locks, so the report
// is a best-effort snapshot: writes landing between the phases may or may not
// be counted.
type ValidationReport struct {
	Total       int        `json:"total"`
	Matching    int        `json:"matching"`
	Rate        float64    `json:"rate"`
	Cache       PhaseCount `json:"cache"`
	History     PhaseCount `json:"history"`
	ValidatedAt time.Time  `json:"validated_at"`
}

// Passed reports whether every scanned record carried the expected marker.
func (r ValidationReport) Passed() bool {
	return r.Rate >= 1.0
}
