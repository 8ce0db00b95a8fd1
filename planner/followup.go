package planner

import "strings"

// followUpMarkers are phrases that usually refer back to an earlier
// answer ("how volatile is that", "what about last month").
var followUpMarkers = []string{
	"what about",
	"why",
	"explain",
	"extend",
	"compare",
	"drill",
	"that",
	"those",
	"earlier",
	"previous",
}

// IsFollowUp reports whether a question likely refers to the previous
// turn. Callers use it to decide whether to thread the previous plan into
// classification.
func IsFollowUp(question string) bool {
	q := strings.ToLower(question)
	for _, m := range followUpMarkers {
		if strings.Contains(q, m) {
			return true
		}
	}
	return false
}
