package model

import (
	"fmt"
	"time"
)

// Match is a fixture between two teams of a tournament. HomeGoals and AwayGoals
// are both nil until the match is finalized and both set afterwards.
type Match struct {
	ID           int32      `json:"id"`
	TournamentID int32      `json:"tournament_id"`
	HomeID       int32      `json:"home_id"`
	AwayID       int32      `json:"away_id"`
	HomeGoals    *int32     `json:"home_goals"`
	AwayGoals    *int32     `json:"away_goals"`
	When         *time.Time `json:"starts_at,omitempty"`
	Location     string     `json:"location,omitempty"`
	Referee      string     `json:"referee,omitempty"`
}

// IsFinalized reports whether both goal counts are set.
func (m *Match) IsFinalized() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// Deadline returns the last moment predictions are accepted, or nil if the
// kickoff time is not known yet.
func (m *Match) Deadline(hoursToDeadline int) *time.Time {
	if m.When == nil {
		return nil
	}
	d := m.When.Add(-time.Duration(hoursToDeadline) * time.Hour)
	return &d
}

// Validate checks the structural invariants of a match.
func (m *Match) Validate() error {
	if m.HomeID == m.AwayID {
		return Invalid("home and away team must be different (team %d)", m.HomeID)
	}
	if (m.HomeGoals == nil) != (m.AwayGoals == nil) {
		return Invalid("match goals must be both set or both unset")
	}
	if m.HomeGoals != nil && (*m.HomeGoals < 0 || *m.AwayGoals < 0) {
		return Invalid("goals must not be negative, got %d-%d", *m.HomeGoals, *m.AwayGoals)
	}
	return nil
}

// Result formats the final score, or "-" for unplayed matches.
func (m *Match) Result() string {
	if !m.IsFinalized() {
		return "-"
	}
	return fmt.Sprintf("%d-%d", *m.HomeGoals, *m.AwayGoals)
}

// Prediction is a user's guess for the final score of a match. Trend is
// derived from the predicted goals and Score is only ever written by the
// finalization cascade.
type Prediction struct {
	ID        int32  `json:"id"`
	UserID    int32  `json:"user_id"`
	MatchID   int32  `json:"match_id"`
	HomeGoals *int32 `json:"home_goals"`
	AwayGoals *int32 `json:"away_goals"`
	Trend     Trend  `json:"trend"`
	Starred   bool   `json:"starred"`
	Score     int32  `json:"score"`
}

// UpdateTrend recomputes the trend from the predicted goals. It must be called
// before every write so the stored trend is never stale.
func (p *Prediction) UpdateTrend() {
	if t, ok := TrendOf(p.HomeGoals, p.AwayGoals); ok {
		p.Trend = t
	} else {
		p.Trend = TrendNone
	}
}

func (p *Prediction) Validate() error {
	if p.HomeGoals != nil && *p.HomeGoals < 0 {
		return Invalid("predicted home goals must not be negative, got %d", *p.HomeGoals)
	}
	if p.AwayGoals != nil && *p.AwayGoals < 0 {
		return Invalid("predicted away goals must not be negative, got %d", *p.AwayGoals)
	}
	return nil
}

// Goals is a small helper to build the nullable goal fields.
func Goals(n int32) *int32 {
	return &n
}
