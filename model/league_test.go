package model

import (
	"errors"
	"testing"
)

func TestParseJoinOrigin(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected JoinOrigin
		err      bool
	}{
		"created": {input: "created", expected: JoinCreated},
		"invite":  {input: " Invite ", expected: JoinInvite},
		"direct":  {input: "direct", expected: JoinDirect},
		"empty":   {input: "", expected: JoinDirect},
		"unknown": {input: "facebook", err: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := ParseJoinOrigin(tc.input)
			if tc.err {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected a validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a != tc.expected {
				t.Errorf("expected: '%s', got '%s'", tc.expected, a)
			}
		})
	}
}

func TestLeagueMembers(t *testing.T) {
	l := League{
		Name:         "office",
		Slug:         "office",
		TournamentID: 1,
		Members: []LeagueMember{
			{UserID: 10, Origin: JoinInvite},
			{UserID: 11, IsOwner: true, Origin: JoinCreated},
		},
	}

	if err := l.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if o := l.Owner(); o == nil || o.UserID != 11 {
		t.Errorf("expected owner 11, got %v", o)
	}
	if !l.IsMember(10) || l.IsMember(12) {
		t.Errorf("unexpected membership result")
	}

	l.TournamentID = 0
	if err := l.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected a validation error without tournament, got %v", err)
	}
}

func TestUserValidate(t *testing.T) {
	tests := map[string]struct {
		u     User
		valid bool
	}{
		"ok":          {u: User{Username: "ana", Email: "ana@example.com"}, valid: true},
		"no email":    {u: User{Username: "ana"}, valid: true},
		"blank name":  {u: User{Username: "  "}, valid: false},
		"bad address": {u: User{Username: "ana", Email: "not-an-email"}, valid: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.u.Validate()
			if tc.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.valid && !errors.Is(err, ErrValidation) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestNewInviteKey(t *testing.T) {
	a, b := NewInviteKey(), NewInviteKey()
	if len(a) != 20 {
		t.Errorf("expected key of length 20, got '%s'", a)
	}
	if a == b {
		t.Errorf("expected distinct keys, got '%s' twice", a)
	}
}

func TestTournamentHasTeam(t *testing.T) {
	open := Tournament{Name: "cup", Slug: "cup"}
	if !open.HasTeam(99) {
		t.Errorf("expected a tournament without teams to accept any team")
	}

	closed := Tournament{Name: "cup", Slug: "cup", TeamIDs: []int32{1, 2}}
	if !closed.HasTeam(2) || closed.HasTeam(3) {
		t.Errorf("unexpected team membership for %v", closed.TeamIDs)
	}
}
