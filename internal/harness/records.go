package harness

import (
	"github.com/roach88/sentropy/internal/ir"
)

// Floats are rendered with ir.FloatText so that traces stay stable across
// platforms and readable in golden files.

func measurementObject(m ir.Measurement) ir.IRObject {
	return ir.IRObject{
		"id":        ir.IRString(m.ID),
		"seq":       ir.IRInt(m.Seq),
		"knowledge": ir.FloatText(m.Knowledge),
		"time":      ir.FloatText(m.Time),
		"entropy":   ir.FloatText(m.Entropy),
		"magnitude": ir.FloatText(m.Magnitude),
		"observer":  ir.IRString(m.Observer.String()),
		"precision": ir.IRString(m.Precision.String()),
		"converged": ir.IRBool(m.Converged),
		"marker":    ir.IRString(m.Marker),
	}
}

func coordinateObject(c ir.Coordinate) ir.IRObject {
	return ir.IRObject{
		"id":        ir.IRString(c.ID),
		"knowledge": ir.FloatText(c.Knowledge),
		"time":      ir.FloatText(c.Time),
		"entropy":   ir.FloatText(c.Entropy),
		"magnitude": ir.FloatText(c.Magnitude()),
		"marker":    ir.IRString(c.Marker),
	}
}

func statsObject(s ir.IntegrationStats) ir.IRObject {
	return ir.IRObject{
		"current_separation": ir.FloatText(s.CurrentSeparation),
		"success_rate":       ir.FloatText(s.SuccessRate),
		"total_attempts":     ir.IRInt(s.TotalAttempts),
		"successes":          ir.IRInt(s.Successes),
		"optimal_achieved":   ir.IRBool(s.OptimalAchieved),
	}
}

func reportObject(r ir.ValidationReport) ir.IRObject {
	return ir.IRObject{
		"total":    ir.IRInt(r.Total),
		"matching": ir.IRInt(r.Matching),
		"rate":     ir.FloatText(r.Rate),
		"cache": ir.IRObject{
			"total":    ir.IRInt(r.Cache.Total),
			"matching": ir.IRInt(r.Cache.Matching),
		},
		"history": ir.IRObject{
			"total":    ir.IRInt(r.History.Total),
			"matching": ir.IRInt(r.History.Matching),
		},
	}
}

func finalObject(f Final) ir.IRObject {
	return ir.IRObject{
		"seq":             ir.IRInt(f.Seq),
		"history_len":     ir.IRInt(f.HistoryLen),
		"cache_size":      ir.IRInt(f.CacheSize),
		"total_attempts":  ir.IRInt(f.TotalAttempts),
		"success_rate":    ir.FloatText(f.SuccessRate),
		"marker_rate":     ir.FloatText(f.MarkerRate),
		"converged_count": ir.IRInt(f.ConvergedCount),
	}
}
