package postgres

import (
	"context"
	"database/sql"
	"strings"

	"petora-connect/internal/domain/users"
)

type ProfilesRepo struct {
	db *sql.DB
}

func NewProfilesRepo(db *sql.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

const profileColumns = `user_id, display_name, email, avatar_url, is_admin, created_at`

func (r *ProfilesRepo) GetByID(ctx context.Context, userID string) (users.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return users.Profile{}, notFound("profile", userID)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if isNoRows(err) {
			return users.Profile{}, notFound("profile", userID)
		}
		return users.Profile{}, err
	}
	return p, nil
}

// CreateIfAbsent: ON CONFLICT DO NOTHING no devuelve fila si ya existía.
func (r *ProfilesRepo) CreateIfAbsent(ctx context.Context, p users.Profile) (users.Profile, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING `+profileColumns,
		p.UserID,
		p.DisplayName,
		p.Email,
		p.AvatarURL,
		p.IsAdmin,
		p.CreatedAt,
	)
	created, err := scanProfile(row)
	if err == nil {
		return created, true, nil
	}
	if !isNoRows(err) {
		return users.Profile{}, false, err
	}
	cur, err := r.GetByID(ctx, p.UserID)
	if err != nil {
		return users.Profile{}, false, err
	}
	return cur, false, nil
}

func (r *ProfilesRepo) List(ctx context.Context) ([]users.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(s scanner) (users.Profile, error) {
	var p users.Profile
	err := s.Scan(
		&p.UserID,
		&p.DisplayName,
		&p.Email,
		&p.AvatarURL,
		&p.IsAdmin,
		&p.CreatedAt,
	)
	return p, err
}
