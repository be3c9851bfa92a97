package model

// ScoringRules holds the configurable point values used to score predictions
// and to build team standings.
type ScoringRules struct {
	ExactPoints  int32 // exact score predicted
	TrendPoints  int32 // correct winner or draw, wrong score
	StarredBonus int32 // added to any positive score of a starred prediction

	WonPoints  int32
	TiePoints  int32
	LostPoints int32
}

var DefaultScoringRules = ScoringRules{
	ExactPoints:  3,
	TrendPoints:  1,
	StarredBonus: 1,
	WonPoints:    3,
	TiePoints:    1,
	LostPoints:   0,
}

func (r ScoringRules) Validate() error {
	if r.TrendPoints < 0 {
		return Invalid("trend points must not be negative, got %d", r.TrendPoints)
	}
	if r.ExactPoints <= r.TrendPoints {
		return Invalid("exact points (%d) must be greater than trend points (%d)", r.ExactPoints, r.TrendPoints)
	}
	if r.StarredBonus < 0 {
		return Invalid("starred bonus must not be negative, got %d", r.StarredBonus)
	}
	if r.WonPoints < 0 || r.TiePoints < 0 || r.LostPoints < 0 {
		return Invalid("match points must not be negative, got won=%d tie=%d lost=%d",
			r.WonPoints, r.TiePoints, r.LostPoints)
	}
	return nil
}

// IsExact reports whether the prediction matches the final score exactly.
// Unsubmitted predictions never match.
func (r ScoringRules) IsExact(p *Prediction, homeGoals, awayGoals int32) bool {
	return p.HomeGoals != nil && p.AwayGoals != nil &&
		*p.HomeGoals == homeGoals && *p.AwayGoals == awayGoals
}

// PredictionScore computes the points awarded to a prediction for a finalized
// result. An exact hit is checked first and excludes the trend award.
func (r ScoringRules) PredictionScore(p *Prediction, homeGoals, awayGoals int32) int32 {
	var score int32
	if r.IsExact(p, homeGoals, awayGoals) {
		score = r.ExactPoints
	} else if t, ok := TrendOf(p.HomeGoals, p.AwayGoals); ok && t == ClassifyTrend(homeGoals, awayGoals) {
		score = r.TrendPoints
	}

	if score > 0 && p.Starred {
		score += r.StarredBonus
	}
	return score
}

// TeamPoints is the weighted sum of a won/tie/lost record.
func (r ScoringRules) TeamPoints(won, tie, lost int32) int32 {
	return won*r.WonPoints + tie*r.TiePoints + lost*r.LostPoints
}

// TeamRecord rebuilds a team's standing in a tournament from scratch. Matches
// from other tournaments, matches the team did not play and unfinalized
// matches are ignored, so the result only depends on the finalized set.
func (r ScoringRules) TeamRecord(teamID, tournamentID int32, matches []Match) TeamStats {
	stats := TeamStats{TeamID: teamID, TournamentID: tournamentID}

	for _, m := range matches {
		if m.TournamentID != tournamentID || !m.IsFinalized() {
			continue
		}

		var scored, conceded int32
		switch teamID {
		case m.HomeID:
			scored, conceded = *m.HomeGoals, *m.AwayGoals
		case m.AwayID:
			scored, conceded = *m.AwayGoals, *m.HomeGoals
		default:
			continue
		}

		switch {
		case scored > conceded:
			stats.Won++
		case scored < conceded:
			stats.Lost++
		default:
			stats.Tie++
		}
	}

	stats.Points = r.TeamPoints(stats.Won, stats.Tie, stats.Lost)
	return stats
}

// Finalization is the outcome of a finalized match: the stored result, the
// number of predictions that were scored and the resynced standings of both
// teams.
type Finalization struct {
	Match     Match
	Scored    int
	HomeStats TeamStats
	AwayStats TeamStats
}
