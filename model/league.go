package model

import (
	"strings"
	"time"
)

// JoinOrigin records how a user became a league member.
type JoinOrigin string

const (
	JoinCreated JoinOrigin = "created" // the owner created the league
	JoinInvite  JoinOrigin = "invite"
	JoinDirect  JoinOrigin = "direct"
)

func ParseJoinOrigin(s string) (JoinOrigin, error) {
	switch o := JoinOrigin(strings.ToLower(strings.TrimSpace(s))); o {
	case JoinCreated, JoinInvite, JoinDirect:
		return o, nil
	case "":
		return JoinDirect, nil
	default:
		return "", Invalid("unknown league join origin: %s", s)
	}
}

// League is a private competition between users inside a tournament.
type League struct {
	ID           int32          `json:"id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	TournamentID int32          `json:"tournament_id"`
	Created      time.Time      `json:"created"`
	Members      []LeagueMember `json:"members,omitempty"`
}

type LeagueMember struct {
	UserID     int32      `json:"user_id"`
	Username   string     `json:"username,omitempty"` // Not persisted
	IsOwner    bool       `json:"is_owner"`
	DateJoined time.Time  `json:"date_joined"`
	Origin     JoinOrigin `json:"origin"`
}

func (l *League) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return Invalid("league name must be provided")
	}
	if l.Slug == "" {
		return Invalid("league slug must be provided")
	}
	if l.TournamentID <= 0 {
		return Invalid("league must belong to a tournament")
	}
	return nil
}

// Owner returns the owning member, if any.
func (l *League) Owner() *LeagueMember {
	for i := range l.Members {
		if l.Members[i].IsOwner {
			return &l.Members[i]
		}
	}
	return nil
}

func (l *League) IsMember(userID int32) bool {
	for _, m := range l.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
