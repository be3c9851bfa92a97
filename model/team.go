package model

import "strings"

type Team struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (t *Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return Invalid("team name must be provided")
	}
	if t.Slug == "" {
		return Invalid("team slug must be provided")
	}
	return nil
}

// Tournament groups matches. TeamIDs lists the teams registered for it; an
// empty list means any team may be scheduled.
type Tournament struct {
	ID        int32   `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Published bool    `json:"published"`
	TeamIDs   []int32 `json:"team_ids"`
}

func (t *Tournament) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return Invalid("tournament name must be provided")
	}
	if t.Slug == "" {
		return Invalid("tournament slug must be provided")
	}
	return nil
}

// HasTeam reports whether the team can play in the tournament.
func (t *Tournament) HasTeam(teamID int32) bool {
	if len(t.TeamIDs) == 0 {
		return true
	}
	for _, id := range t.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// TeamStats is the standing of one team in one tournament. It is always
// rebuilt from the finalized matches, never incremented.
type TeamStats struct {
	TeamID       int32  `json:"team_id"`
	TournamentID int32  `json:"tournament_id"`
	TeamName     string `json:"team_name"` // Not persisted
	Won          int32  `json:"won"`
	Tie          int32  `json:"tie"`
	Lost         int32  `json:"lost"`
	Points       int32  `json:"points"`
}

func (s *TeamStats) Played() int32 {
	return s.Won + s.Tie + s.Lost
}
