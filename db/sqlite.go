package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/itbasis/go-clock"
	"github.com/mww/fantasy_predictions/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLite opens an embedded store backed by gorm and SQLite, used for local
// runs and tests that can't start a postgres container. Use ":memory:" for a
// throwaway database.
//
// SQLite has no row locks, so the store uses a single connection and every
// transaction runs serialized.
func NewSQLite(path string, clock clock.Clock) (DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return clock.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite db: %w", err)
	}

	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	err = g.AutoMigrate(
		&sqlTeam{},
		&sqlTournament{},
		&sqlTournamentTeam{},
		&sqlMatch{},
		&sqlUser{},
		&sqlPrediction{},
		&sqlTeamStats{},
		&sqlLeague{},
		&sqlLeagueMember{},
	)
	if err != nil {
		return nil, fmt.Errorf("error migrating sqlite db: %w", err)
	}

	return &sqliteDB{gorm: g, clock: clock}, nil
}

type sqliteDB struct {
	gorm  *gorm.DB
	clock clock.Clock
}

func (db *sqliteDB) Close() {
	if sqlDB, err := db.gorm.DB(); err == nil {
		sqlDB.Close()
	}
}

// translateGormError is the gorm counterpart of translateError.
func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", model.ErrDuplicateEntry, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %w", model.ErrDuplicateEntry, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %w", model.ErrValidation, err)
	case strings.Contains(msg, "database is locked"):
		return fmt.Errorf("%w: %w", model.ErrConcurrentUpdate, err)
	}
	return err
}

type sqlTeam struct {
	ID   int32  `gorm:"primaryKey"`
	Name string `gorm:"not null"`
	Slug string `gorm:"uniqueIndex;not null"`
}

func (sqlTeam) TableName() string { return "teams" }

type sqlTournament struct {
	ID        int32  `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Slug      string `gorm:"uniqueIndex;not null"`
	Published bool   `gorm:"not null;default:false"`
}

func (sqlTournament) TableName() string { return "tournaments" }

type sqlTournamentTeam struct {
	TournamentID int32         `gorm:"primaryKey"`
	TeamID       int32         `gorm:"primaryKey"`
	Tournament   sqlTournament `gorm:"foreignKey:TournamentID"`
	Team         sqlTeam       `gorm:"foreignKey:TeamID"`
}

func (sqlTournamentTeam) TableName() string { return "tournament_teams" }

type sqlMatch struct {
	ID           int32 `gorm:"primaryKey"`
	TournamentID int32 `gorm:"not null;index"`
	HomeID       int32 `gorm:"not null;index"`
	AwayID       int32 `gorm:"not null;index;check:matches_distinct_teams,home_id <> away_id"`
	HomeGoals    *int32
	AwayGoals    *int32
	StartsAt     *time.Time `gorm:"index"`
	Location     string     `gorm:"not null;default:''"`
	Referee      string     `gorm:"not null;default:''"`

	Tournament sqlTournament `gorm:"foreignKey:TournamentID"`
	Home       sqlTeam       `gorm:"foreignKey:HomeID"`
	Away       sqlTeam       `gorm:"foreignKey:AwayID"`
}

func (sqlMatch) TableName() string { return "matches" }

func (m *sqlMatch) toModel() model.Match {
	return model.Match{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		HomeID:       m.HomeID,
		AwayID:       m.AwayID,
		HomeGoals:    m.HomeGoals,
		AwayGoals:    m.AwayGoals,
		When:         m.StartsAt,
		Location:     m.Location,
		Referee:      m.Referee,
	}
}

type sqlUser struct {
	ID        int32  `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"not null;default:''"`
	InviteKey string `gorm:"uniqueIndex;not null"`
	Created   time.Time
}

func (sqlUser) TableName() string { return "users" }

type sqlPrediction struct {
	ID        int32 `gorm:"primaryKey"`
	UserID    int32 `gorm:"not null;uniqueIndex:idx_predictions_user_match"`
	MatchID   int32 `gorm:"not null;uniqueIndex:idx_predictions_user_match;index"`
	HomeGoals *int32
	AwayGoals *int32
	Trend     string `gorm:"not null;default:''"`
	Starred   bool   `gorm:"not null;default:false"`
	Score     int32  `gorm:"not null;default:0;check:predictions_score_not_negative,score >= 0"`
	Updated   *time.Time

	User  sqlUser  `gorm:"foreignKey:UserID"`
	Match sqlMatch `gorm:"foreignKey:MatchID"`
}

func (sqlPrediction) TableName() string { return "predictions" }

func (p *sqlPrediction) toModel() model.Prediction {
	return model.Prediction{
		ID:        p.ID,
		UserID:    p.UserID,
		MatchID:   p.MatchID,
		HomeGoals: p.HomeGoals,
		AwayGoals: p.AwayGoals,
		Trend:     model.ParseTrend(p.Trend),
		Starred:   p.Starred,
		Score:     p.Score,
	}
}

type sqlTeamStats struct {
	ID           int32 `gorm:"primaryKey"`
	TeamID       int32 `gorm:"not null;uniqueIndex:idx_team_stats_team_tournament"`
	TournamentID int32 `gorm:"not null;uniqueIndex:idx_team_stats_team_tournament"`
	Won          int32 `gorm:"not null;default:0"`
	Tie          int32 `gorm:"not null;default:0"`
	Lost         int32 `gorm:"not null;default:0"`
	Points       int32 `gorm:"not null;default:0;check:team_stats_points_not_negative,points >= 0"`

	Team       sqlTeam       `gorm:"foreignKey:TeamID"`
	Tournament sqlTournament `gorm:"foreignKey:TournamentID"`
}

func (sqlTeamStats) TableName() string { return "team_stats" }

type sqlLeague struct {
	ID           int32  `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex;not null"`
	Slug         string `gorm:"uniqueIndex;not null"`
	TournamentID int32  `gorm:"not null"`
	Created      time.Time

	Tournament sqlTournament `gorm:"foreignKey:TournamentID"`
}

func (sqlLeague) TableName() string { return "leagues" }

type sqlLeagueMember struct {
	LeagueID   int32 `gorm:"primaryKey"`
	UserID     int32 `gorm:"primaryKey"`
	IsOwner    bool  `gorm:"not null;default:false"`
	DateJoined time.Time
	Origin     string `gorm:"not null"`

	League sqlLeague `gorm:"foreignKey:LeagueID"`
	User   sqlUser   `gorm:"foreignKey:UserID"`
}

func (sqlLeagueMember) TableName() string { return "league_members" }
