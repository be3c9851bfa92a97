package model

import (
	"cmp"
	"slices"
	"strings"
)

// RankingEntry is one row of a tournament or league ranking.
type RankingEntry struct {
	UserID   int32  `json:"user_id"`
	Username string `json:"username"`
	Total    int32  `json:"total"` // sum of prediction scores
	Count    int32  `json:"count"` // number of predictions
}

// UserStats summarizes a user's successful predictions in a tournament.
type UserStats struct {
	Winners int32 `json:"winners"` // predictions that earned points
	Score   int32 `json:"score"`
	Exacts  int32 `json:"exacts"`
}

// SortRanking orders entries by total descending. Ties are broken by username
// and then by user id so the order is stable between reads.
func SortRanking(entries []RankingEntry) {
	slices.SortFunc(entries, func(a, b RankingEntry) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		if c := strings.Compare(a.Username, b.Username); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
}

// SortStandings orders team stats by points descending, then team id.
func SortStandings(stats []TeamStats) {
	slices.SortFunc(stats, func(a, b TeamStats) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID, b.TeamID)
	})
}
