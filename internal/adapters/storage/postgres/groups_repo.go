package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"petora-connect/internal/domain/groups"
)

type GroupsRepo struct {
	db *sql.DB
}

func NewGroupsRepo(db *sql.DB) *GroupsRepo {
	return &GroupsRepo{db: db}
}

const groupColumns = `id, name, description, image_url, owner_id, member_ids, member_count, created_at`

func (r *GroupsRepo) Create(ctx context.Context, g groups.Group) error {
	members, err := json.Marshal(nonNil(g.MemberIDs))
	if err != nil {
		return fmt.Errorf("encode member ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO groups (`+groupColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6::jsonb,$7,$8)
	`,
		g.ID,
		g.Name,
		g.Description,
		g.ImageURL,
		g.OwnerID,
		string(members),
		len(g.MemberIDs),
		g.CreatedAt,
	)
	return err
}

func (r *GroupsRepo) GetByID(ctx context.Context, id string) (groups.Group, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return groups.Group{}, notFound("group", id)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
	g, err := scanGroup(row)
	if err != nil {
		if isNoRows(err) {
			return groups.Group{}, notFound("group", id)
		}
		return groups.Group{}, err
	}
	return g, nil
}

func (r *GroupsRepo) List(ctx context.Context) ([]groups.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM groups ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]groups.Group, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddMember es un único UPDATE condicional: si el usuario ya está en el set no matchea ninguna fila.
func (r *GroupsRepo) AddMember(ctx context.Context, groupID, userID string) (groups.Group, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE groups
		SET
			member_ids = member_ids || to_jsonb($2::text),
			member_count = member_count + 1
		WHERE id = $1 AND NOT jsonb_exists(member_ids, $2)
		RETURNING `+groupColumns,
		groupID, userID,
	)
	g, err := scanGroup(row)
	if err == nil {
		return g, true, nil
	}
	if !isNoRows(err) {
		return groups.Group{}, false, err
	}

	// Sin fila: o no existe el grupo o ya era miembro.
	g, err = r.GetByID(ctx, groupID)
	if err != nil {
		return groups.Group{}, false, err
	}
	return g, false, nil
}

// Delete: los mensajes caen por ON DELETE CASCADE.
func (r *GroupsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound("group", id)
	}
	return nil
}

func (r *GroupsRepo) AppendMessage(ctx context.Context, m groups.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_messages (
			id, group_id,
			sender_id, sender_name, avatar_url,
			text, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		m.ID,
		m.GroupID,
		m.SenderID,
		m.SenderName,
		m.AvatarURL,
		m.Text,
		m.CreatedAt,
	)
	return err
}

// ListMessages: seq desempata mensajes con el mismo created_at.
func (r *GroupsRepo) ListMessages(ctx context.Context, groupID string) ([]groups.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, group_id,
			sender_id, sender_name, avatar_url,
			text, created_at
		FROM group_messages
		WHERE group_id = $1
		ORDER BY created_at ASC, seq ASC
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]groups.Message, 0)
	for rows.Next() {
		var m groups.Message
		if err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.SenderID,
			&m.SenderName,
			&m.AvatarURL,
			&m.Text,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanGroup(s scanner) (groups.Group, error) {
	var (
		g       groups.Group
		members []byte
	)
	if err := s.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.ImageURL,
		&g.OwnerID,
		&members,
		&g.MemberCount,
		&g.CreatedAt,
	); err != nil {
		return groups.Group{}, err
	}
	ids, err := decodeStringSet(members)
	if err != nil {
		return groups.Group{}, fmt.Errorf("decode member ids: %w", err)
	}
	g.MemberIDs = ids
	return g, nil
}

func decodeStringSet(raw []byte) ([]string, error) {
	out := make([]string, 0)
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
