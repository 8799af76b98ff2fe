package engine

import "github.com/roach88/sentropy/internal/ir"

// ValidateAllMarkers scans the cache and the history and reports how many
// records carry the policy's marker. An empty engine reports a rate of 1.0.
//
// The scan runs in two phases, cache then history, each under its own read
// lock. Records written between the phases may or may not be counted.
func (e *Engine) ValidateAllMarkers() ir.ValidationReport {
	want := e.policy.Marker

	var cache ir.PhaseCount
	e.cacheMu.RLock()
	for _, c := range e.cache {
		cache.Total++
		if c.Marker == want {
			cache.Matching++
		}
	}
	e.cacheMu.RUnlock()

	var hist ir.PhaseCount
	e.historyMu.RLock()
	for _, m := range e.history.items {
		hist.Total++
		if m.Marker == want {
			hist.Matching++
		}
	}
	e.historyMu.RUnlock()

	r := ir.ValidationReport{
		Total:       cache.Total + hist.Total,
		Matching:    cache.Matching + hist.Matching,
		Rate:        1.0,
		Cache:       cache,
		History:     hist,
		ValidatedAt: e.now(),
	}
	if r.Total > 0 {
		r.Rate = float64(r.Matching) / float64(r.Total)
	}

	e.metrics.ObserveValidation(r)
	e.logger.Info("marker validation complete",
		"matching", r.Matching,
		"total", r.Total,
		"rate", r.Rate,
	)
	return r
}
