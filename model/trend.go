package model

// Trend is the coarse outcome of a match, independent of the exact score.
// The stored values match the single character codes used in the predictions
// table.
type Trend string

const (
	TrendNone Trend = ""
	TrendHome Trend = "L"
	TrendDraw Trend = "E"
	TrendAway Trend = "V"
)

func (t Trend) String() string {
	switch t {
	case TrendHome:
		return "home"
	case TrendDraw:
		return "draw"
	case TrendAway:
		return "away"
	default:
		return "none"
	}
}

// ClassifyTrend returns the outcome for a final (or predicted) score.
func ClassifyTrend(homeGoals, awayGoals int32) Trend {
	switch {
	case homeGoals > awayGoals:
		return TrendHome
	case homeGoals < awayGoals:
		return TrendAway
	default:
		return TrendDraw
	}
}

// TrendOf classifies a possibly incomplete score. The second return value is
// false when either side is missing, in which case no trend applies.
func TrendOf(homeGoals, awayGoals *int32) (Trend, bool) {
	if homeGoals == nil || awayGoals == nil {
		return TrendNone, false
	}
	return ClassifyTrend(*homeGoals, *awayGoals), true
}

// ParseTrend converts a stored trend code back into a Trend. Unknown values map
// to TrendNone.
func ParseTrend(s string) Trend {
	switch Trend(s) {
	case TrendHome, TrendDraw, TrendAway:
		return Trend(s)
	default:
		return TrendNone
	}
}
