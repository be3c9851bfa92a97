package db

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/mww/fantasy_predictions/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (db *sqliteDB) AddTeam(ctx context.Context, t *model.Team) error {
	row := sqlTeam{Name: t.Name, Slug: t.Slug}
	if err := db.gorm.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("error inserting team %s: %w", t.Slug, translateGormError(err))
	}
	t.ID = row.ID
	return nil
}

func (db *sqliteDB) GetTeam(ctx context.Context, id int32) (*model.Team, error) {
	var row sqlTeam
	if err := db.gorm.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, fmt.Errorf("error looking up team %d: %w", id, translateGormError(err))
	}
	return &model.Team{ID: row.ID, Name: row.Name, Slug: row.Slug}, nil
}

func (db *sqliteDB) AddTournament(ctx context.Context, t *model.Tournament) error {
	return db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := sqlTournament{Name: t.Name, Slug: t.Slug, Published: t.Published}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("error inserting tournament %s: %w", t.Slug, translateGormError(err))
		}

		for _, teamID := range t.TeamIDs {
			tt := sqlTournamentTeam{TournamentID: row.ID, TeamID: teamID}
			if err := tx.Omit(clause.Associations).Create(&tt).Error; err != nil {
				return fmt.Errorf("error adding team %d to tournament: %w", teamID, translateGormError(err))
			}
		}

		t.ID = row.ID
		return nil
	})
}

func (db *sqliteDB) GetTournament(ctx context.Context, id int32) (*model.Tournament, error) {
	var row sqlTournament
	if err := db.gorm.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, fmt.Errorf("error looking up tournament %d: %w", id, translateGormError(err))
	}

	var teamIDs []int32
	err := db.gorm.WithContext(ctx).Model(&sqlTournamentTeam{}).
		Where("tournament_id = ?", id).
		Order("team_id").
		Pluck("team_id", &teamIDs).Error
	if err != nil {
		return nil, fmt.Errorf("error querying tournament teams: %w", translateGormError(err))
	}

	return &model.Tournament{
		ID:        row.ID,
		Name:      row.Name,
		Slug:      row.Slug,
		Published: row.Published,
		TeamIDs:   teamIDs,
	}, nil
}

func (db *sqliteDB) AddMatch(ctx context.Context, m *model.Match) error {
	row := sqlMatch{
		TournamentID: m.TournamentID,
		HomeID:       m.HomeID,
		AwayID:       m.AwayID,
		HomeGoals:    m.HomeGoals,
		AwayGoals:    m.AwayGoals,
		StartsAt:     utcOrNil(m.When),
		Location:     m.Location,
		Referee:      m.Referee,
	}
	if err := db.gorm.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("error inserting match: %w", translateGormError(err))
	}
	m.ID = row.ID
	return nil
}

func (db *sqliteDB) GetMatch(ctx context.Context, id int32) (*model.Match, error) {
	var row sqlMatch
	if err := db.gorm.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, fmt.Errorf("error looking up match %d: %w", id, translateGormError(err))
	}
	m := row.toModel()
	return &m, nil
}

func (db *sqliteDB) MatchesBetween(ctx context.Context, tournamentID int32, from, until time.Time) ([]model.Match, error) {
	var rows []sqlMatch
	err := db.gorm.WithContext(ctx).
		Where("tournament_id = ? AND starts_at BETWEEN ? AND ?", tournamentID, from.UTC(), until.UTC()).
		Order("starts_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying matches: %w", translateGormError(err))
	}
	return toModelMatches(rows), nil
}

func (db *sqliteDB) LatestMatches(ctx context.Context, teamID, tournamentID int32, until time.Time) ([]model.Match, error) {
	q := db.gorm.WithContext(ctx).
		Where("(home_id = ? OR away_id = ?) AND starts_at <= ?", teamID, teamID, until.UTC())
	if tournamentID != 0 {
		q = q.Where("tournament_id = ?", tournamentID)
	}

	var rows []sqlMatch
	if err := q.Order("starts_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying matches: %w", translateGormError(err))
	}
	return toModelMatches(rows), nil
}

func toModelMatches(rows []sqlMatch) []model.Match {
	results := make([]model.Match, 0, len(rows))
	for i := range rows {
		results = append(results, rows[i].toModel())
	}
	return results
}

func (db *sqliteDB) AddUser(ctx context.Context, u *model.User) error {
	row := sqlUser{
		Username:  u.Username,
		Email:     u.Email,
		InviteKey: u.InviteKey,
		Created:   db.clock.Now().UTC(),
	}
	if err := db.gorm.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("error inserting user %s: %w", u.Username, translateGormError(err))
	}
	u.ID = row.ID
	return nil
}

func (db *sqliteDB) GetUser(ctx context.Context, id int32) (*model.User, error) {
	var row sqlUser
	if err := db.gorm.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, fmt.Errorf("error looking up user %d: %w", id, translateGormError(err))
	}
	return &model.User{ID: row.ID, Username: row.Username, Email: row.Email, InviteKey: row.InviteKey}, nil
}

func (db *sqliteDB) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	return db.writePrediction(ctx, p, false)
}

func (db *sqliteDB) SavePrediction(ctx context.Context, p *model.Prediction) error {
	return db.writePrediction(ctx, p, true)
}

func (db *sqliteDB) writePrediction(ctx context.Context, p *model.Prediction, upsert bool) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdateTrend()

	return db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m sqlMatch
		if err := tx.First(&m, p.MatchID).Error; err != nil {
			return fmt.Errorf("error looking up match %d: %w", p.MatchID, translateGormError(err))
		}
		if m.HomeGoals != nil {
			return model.ErrPredictionClosed
		}

		now := db.clock.Now().UTC()
		row := sqlPrediction{
			UserID:    p.UserID,
			MatchID:   p.MatchID,
			HomeGoals: p.HomeGoals,
			AwayGoals: p.AwayGoals,
			Trend:     string(p.Trend),
			Starred:   p.Starred,
			Updated:   &now,
		}

		create := tx.Omit(clause.Associations)
		if upsert {
			create = create.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "match_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"home_goals", "away_goals", "trend", "starred", "updated"}),
			})
		}
		if err := create.Create(&row).Error; err != nil {
			return fmt.Errorf("error saving prediction of user %d for match %d: %w", p.UserID, p.MatchID, translateGormError(err))
		}

		// An upsert doesn't report the id and score of an existing row.
		var saved sqlPrediction
		err := tx.Where("user_id = ? AND match_id = ?", p.UserID, p.MatchID).First(&saved).Error
		if err != nil {
			return fmt.Errorf("error reading saved prediction: %w", translateGormError(err))
		}
		p.ID = saved.ID
		p.Score = saved.Score
		return nil
	})
}

func (db *sqliteDB) GetPrediction(ctx context.Context, userID, matchID int32) (*model.Prediction, error) {
	var row sqlPrediction
	err := db.gorm.WithContext(ctx).Where("user_id = ? AND match_id = ?", userID, matchID).First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("error looking up prediction of user %d for match %d: %w", userID, matchID, translateGormError(err))
	}
	p := row.toModel()
	return &p, nil
}

func (db *sqliteDB) GetMatchPredictions(ctx context.Context, matchID int32) ([]model.Prediction, error) {
	var rows []sqlPrediction
	if err := db.gorm.WithContext(ctx).Where("match_id = ?", matchID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying predictions: %w", translateGormError(err))
	}

	results := make([]model.Prediction, 0, len(rows))
	for i := range rows {
		results = append(results, rows[i].toModel())
	}
	return results, nil
}

func (db *sqliteDB) FinalizeMatch(ctx context.Context, matchID, homeGoals, awayGoals int32, rules model.ScoringRules) (*model.Finalization, error) {
	var result *model.Finalization
	err := db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row sqlMatch
		if err := tx.First(&row, matchID).Error; err != nil {
			return fmt.Errorf("error looking up match %d: %w", matchID, translateGormError(err))
		}

		m := row.toModel()
		m.HomeGoals = model.Goals(homeGoals)
		m.AwayGoals = model.Goals(awayGoals)
		if err := m.Validate(); err != nil {
			return err
		}

		err := tx.Model(&sqlMatch{}).Where("id = ?", matchID).
			Updates(map[string]any{"home_goals": homeGoals, "away_goals": awayGoals}).Error
		if err != nil {
			return fmt.Errorf("error saving result of match %d: %w", matchID, translateGormError(err))
		}

		var predictions []sqlPrediction
		if err := tx.Where("match_id = ?", matchID).Order("id").Find(&predictions).Error; err != nil {
			return fmt.Errorf("error querying predictions of match %d: %w", matchID, translateGormError(err))
		}
		for i := range predictions {
			p := predictions[i].toModel()
			score := rules.PredictionScore(&p, homeGoals, awayGoals)
			err := tx.Model(&sqlPrediction{}).Where("id = ?", p.ID).Update("score", score).Error
			if err != nil {
				return fmt.Errorf("error scoring prediction %d: %w", p.ID, translateGormError(err))
			}
		}

		stats, err := syncTeamStatsGorm(tx, m.TournamentID, []int32{m.HomeID, m.AwayID}, rules)
		if err != nil {
			return err
		}

		result = &model.Finalization{
			Match:     m,
			Scored:    len(predictions),
			HomeStats: stats[m.HomeID],
			AwayStats: stats[m.AwayID],
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (db *sqliteDB) ResyncTeamStats(ctx context.Context, teamID, tournamentID int32, rules model.ScoringRules) (*model.TeamStats, error) {
	var result model.TeamStats
	err := db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := syncTeamStatsGorm(tx, tournamentID, []int32{teamID}, rules)
		if err != nil {
			return err
		}
		result = stats[teamID]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func syncTeamStatsGorm(tx *gorm.DB, tournamentID int32, teamIDs []int32, rules model.ScoringRules) (map[int32]model.TeamStats, error) {
	ids := slices.Clone(teamIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	result := make(map[int32]model.TeamStats, len(ids))
	for _, id := range ids {
		row := sqlTeamStats{TeamID: id, TournamentID: tournamentID}
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
		if err != nil {
			return nil, fmt.Errorf("error creating stats for team %d: %w", id, translateGormError(err))
		}

		var rows []sqlMatch
		err = tx.Where("tournament_id = ? AND (home_id = ? OR away_id = ?) AND home_goals IS NOT NULL AND away_goals IS NOT NULL",
			tournamentID, id, id).Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("error querying matches of team %d: %w", id, translateGormError(err))
		}

		stats := rules.TeamRecord(id, tournamentID, toModelMatches(rows))
		err = tx.Model(&sqlTeamStats{}).
			Where("team_id = ? AND tournament_id = ?", id, tournamentID).
			Updates(map[string]any{
				"won":    stats.Won,
				"tie":    stats.Tie,
				"lost":   stats.Lost,
				"points": stats.Points,
			}).Error
		if err != nil {
			return nil, fmt.Errorf("error saving stats for team %d: %w", id, translateGormError(err))
		}
		result[id] = stats
	}
	return result, nil
}

type sqlTeamStatsRow struct {
	TeamID       int32
	TournamentID int32
	TeamName     string
	Won          int32
	Tie          int32
	Lost         int32
	Points       int32
}

func (db *sqliteDB) teamStatsQuery(ctx context.Context) *gorm.DB {
	return db.gorm.WithContext(ctx).Table("team_stats AS s").
		Select("s.team_id, s.tournament_id, t.name AS team_name, s.won, s.tie, s.lost, s.points").
		Joins("INNER JOIN teams AS t ON s.team_id = t.id")
}

func (db *sqliteDB) GetTeamStats(ctx context.Context, teamID, tournamentID int32) (*model.TeamStats, error) {
	var rows []sqlTeamStatsRow
	err := db.teamStatsQuery(ctx).
		Where("s.team_id = ? AND s.tournament_id = ?", teamID, tournamentID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error looking up stats of team %d: %w", teamID, translateGormError(err))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("error looking up stats of team %d: %w", teamID, model.ErrNotFound)
	}
	s := model.TeamStats(rows[0])
	return &s, nil
}

func (db *sqliteDB) GetStandings(ctx context.Context, tournamentID int32) ([]model.TeamStats, error) {
	var rows []sqlTeamStatsRow
	err := db.teamStatsQuery(ctx).
		Where("s.tournament_id = ?", tournamentID).
		Order("s.points DESC, s.team_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying standings: %w", translateGormError(err))
	}

	results := make([]model.TeamStats, 0, len(rows))
	for _, r := range rows {
		results = append(results, model.TeamStats(r))
	}
	return results, nil
}

type sqlRankingRow struct {
	UserID   int32
	Username string
	Total    int64
	Count    int64
}

func (db *sqliteDB) rankingQuery(ctx context.Context) *gorm.DB {
	return db.gorm.WithContext(ctx).Table("predictions AS p").
		Select("u.id AS user_id, u.username AS username, COALESCE(SUM(p.score), 0) AS total, COUNT(p.id) AS count").
		Joins("INNER JOIN matches AS m ON p.match_id = m.id").
		Joins("INNER JOIN users AS u ON p.user_id = u.id").
		Group("u.id, u.username").
		Order("total DESC, u.username, u.id")
}

func (db *sqliteDB) TournamentRanking(ctx context.Context, tournamentID int32) ([]model.RankingEntry, error) {
	var rows []sqlRankingRow
	if err := db.rankingQuery(ctx).Where("m.tournament_id = ?", tournamentID).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying ranking: %w", translateGormError(err))
	}
	return toRankingEntries(rows), nil
}

func (db *sqliteDB) LeagueRanking(ctx context.Context, leagueID int32) ([]model.RankingEntry, error) {
	var league sqlLeague
	if err := db.gorm.WithContext(ctx).First(&league, leagueID).Error; err != nil {
		return nil, fmt.Errorf("error looking up league %d: %w", leagueID, translateGormError(err))
	}

	var rows []sqlRankingRow
	err := db.rankingQuery(ctx).
		Joins("INNER JOIN league_members AS lm ON lm.user_id = u.id").
		Where("lm.league_id = ? AND m.tournament_id = ?", league.ID, league.TournamentID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying ranking: %w", translateGormError(err))
	}
	return toRankingEntries(rows), nil
}

func toRankingEntries(rows []sqlRankingRow) []model.RankingEntry {
	results := make([]model.RankingEntry, 0, len(rows))
	for _, r := range rows {
		results = append(results, model.RankingEntry{
			UserID:   r.UserID,
			Username: r.Username,
			Total:    int32(r.Total),
			Count:    int32(r.Count),
		})
	}
	return results
}

func (db *sqliteDB) UserStats(ctx context.Context, userID, tournamentID int32) (*model.UserStats, error) {
	var row struct {
		Winners int64
		Score   int64
		Exacts  int64
	}
	err := db.gorm.WithContext(ctx).Table("predictions AS p").
		Select(`COUNT(p.id) AS winners,
			COALESCE(SUM(p.score), 0) AS score,
			COALESCE(SUM(CASE WHEN p.home_goals = m.home_goals AND p.away_goals = m.away_goals THEN 1 ELSE 0 END), 0) AS exacts`).
		Joins("INNER JOIN matches AS m ON p.match_id = m.id").
		Where("p.user_id = ? AND m.tournament_id = ? AND p.score > 0", userID, tournamentID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("error querying stats of user %d: %w", userID, translateGormError(err))
	}
	return &model.UserStats{
		Winners: int32(row.Winners),
		Score:   int32(row.Score),
		Exacts:  int32(row.Exacts),
	}, nil
}

func (db *sqliteDB) AddLeague(ctx context.Context, l *model.League, ownerID int32) error {
	now := db.clock.Now().UTC()
	err := db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := sqlLeague{Name: l.Name, Slug: l.Slug, TournamentID: l.TournamentID, Created: now}
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return fmt.Errorf("error inserting league %s: %w", l.Slug, translateGormError(err))
		}

		owner := sqlLeagueMember{
			LeagueID:   row.ID,
			UserID:     ownerID,
			IsOwner:    true,
			DateJoined: now,
			Origin:     string(model.JoinCreated),
		}
		if err := tx.Omit(clause.Associations).Create(&owner).Error; err != nil {
			return fmt.Errorf("error adding user %d to league %d: %w", ownerID, row.ID, translateGormError(err))
		}

		l.ID = row.ID
		return nil
	})
	if err != nil {
		return err
	}

	l.Created = now
	l.Members = []model.LeagueMember{{
		UserID:     ownerID,
		IsOwner:    true,
		DateJoined: now,
		Origin:     model.JoinCreated,
	}}
	return nil
}

func (db *sqliteDB) AddLeagueMember(ctx context.Context, leagueID int32, m *model.LeagueMember) error {
	if m.DateJoined.IsZero() {
		m.DateJoined = db.clock.Now().UTC()
	}

	row := sqlLeagueMember{
		LeagueID:   leagueID,
		UserID:     m.UserID,
		IsOwner:    m.IsOwner,
		DateJoined: m.DateJoined.UTC(),
		Origin:     string(m.Origin),
	}
	if err := db.gorm.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("error adding user %d to league %d: %w", m.UserID, leagueID, translateGormError(err))
	}
	return nil
}

func (db *sqliteDB) GetLeague(ctx context.Context, id int32) (*model.League, error) {
	var row sqlLeague
	if err := db.gorm.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, fmt.Errorf("error looking up league %d: %w", id, translateGormError(err))
	}

	var members []struct {
		UserID     int32
		Username   string
		IsOwner    bool
		DateJoined time.Time
		Origin     string
	}
	err := db.gorm.WithContext(ctx).Table("league_members AS lm").
		Select("lm.user_id, u.username, lm.is_owner, lm.date_joined, lm.origin").
		Joins("INNER JOIN users AS u ON lm.user_id = u.id").
		Where("lm.league_id = ?", id).
		Order("lm.date_joined, lm.user_id").
		Scan(&members).Error
	if err != nil {
		return nil, fmt.Errorf("error querying league members: %w", translateGormError(err))
	}

	l := &model.League{
		ID:           row.ID,
		Name:         row.Name,
		Slug:         row.Slug,
		TournamentID: row.TournamentID,
		Created:      row.Created,
	}
	for _, m := range members {
		origin, err := model.ParseJoinOrigin(m.Origin)
		if err != nil {
			return nil, err
		}
		l.Members = append(l.Members, model.LeagueMember{
			UserID:     m.UserID,
			Username:   m.Username,
			IsOwner:    m.IsOwner,
			DateJoined: m.DateJoined,
			Origin:     origin,
		})
	}
	return l, nil
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
