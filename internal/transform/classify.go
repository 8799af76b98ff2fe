package transform

import "strings"

// Problem classes reported by Classify.
const (
	ClassCognitive     = "cognitive pattern selection"
	ClassTemporal      = "temporal coordination"
	ClassCommunication = "communication optimization"
	ClassCrossDomain   = "cross-domain transfer"
	ClassMemory        = "memory optimization"
	ClassGeneral       = "general problem"
)

var classKeywords = []struct {
	class    string
	keywords []string
}{
	{ClassCognitive, []string{"cognitive", "mind", "thought"}},
	{ClassTemporal, []string{"time", "temporal", "sync"}},
	{ClassCommunication, []string{"communication", "message", "signal"}},
	{ClassCrossDomain, []string{"domain", "transfer", "cross"}},
	{ClassMemory, []string{"memory", "storage", "cache"}},
}

// Classify names the problem class by keyword. The first matching class in
// declaration order wins.
func Classify(problem string) string {
	lower := strings.ToLower(problem)
	for _, c := range classKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.class
			}
		}
	}
	return ClassGeneral
}
