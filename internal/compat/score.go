package compat

import "strings"

// statusScores is the single mapping shared by scoring and display-label
// derivation. Lookup keys are lowercased and trimmed.
var statusScores = map[string]float64{
	"perfect":    5,
	"playable":   4,
	"in-game":    3,
	"ingame":     3,
	"menu":       2,
	"not tested": 1,
	"not-tested": 1,
	"not_tested": 1,
	"boot":       1.5,
	"crash":      0,
	"broken":     0,
	"unknown":    1,
}

// ScoreForStatus maps a reported status to its numeric weight. Unrecognized
// or empty statuses score as "unknown".
func ScoreForStatus(status string) float64 {
	key := strings.ToLower(strings.TrimSpace(status))
	if score, ok := statusScores[key]; ok {
		return score
	}
	return statusScores["unknown"]
}

// StatusFromAverage derives the consensus display label from a group's mean
// score. Thresholds are inclusive lower bounds.
func StatusFromAverage(avg float64) string {
	switch {
	case avg >= 4.5:
		return "Perfect"
	case avg >= 3.5:
		return "Playable"
	case avg >= 2.5:
		return "In-Game"
	case avg >= 1.5:
		return "Menu"
	case avg >= 0.5:
		return "Not Tested"
	default:
		return "Crash"
	}
}
