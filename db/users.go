package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mww/fantasy_predictions/model"
)

func (db *postgresDB) AddUser(ctx context.Context, u *model.User) error {
	const query = `INSERT INTO users (username, email, invite_key, created)
		VALUES (@username, @email, @inviteKey, @created) RETURNING id`

	args := pgx.NamedArgs{
		"username":  u.Username,
		"email":     u.Email,
		"inviteKey": u.InviteKey,
		"created":   timestamptz(db.clock.Now()),
	}
	if err := db.pool.QueryRow(ctx, query, args).Scan(&u.ID); err != nil {
		return fmt.Errorf("error inserting user %s: %w", u.Username, translateError(err))
	}
	return nil
}

func (db *postgresDB) GetUser(ctx context.Context, id int32) (*model.User, error) {
	const query = `SELECT id, username, email, invite_key FROM users WHERE id=@id`

	var u model.User
	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id}).Scan(&u.ID, &u.Username, &u.Email, &u.InviteKey)
	if err != nil {
		return nil, fmt.Errorf("error looking up user %d: %w", id, translateError(err))
	}
	return &u, nil
}
