package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"petora-connect/internal/domain/posts"
)

type PostsRepo struct {
	db *sql.DB
}

func NewPostsRepo(db *sql.DB) *PostsRepo {
	return &PostsRepo{db: db}
}

const postColumns = `id, author_id, author_name, author_avatar, body, image_url, liked_by, comments, created_at`

func (r *PostsRepo) Create(ctx context.Context, p posts.Post) error {
	liked, err := json.Marshal(nonNil(p.LikedBy))
	if err != nil {
		return fmt.Errorf("encode liked_by: %w", err)
	}
	comments := p.Comments
	if comments == nil {
		comments = []posts.Comment{}
	}
	rawComments, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("encode comments: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8::jsonb,$9)
	`,
		p.ID,
		p.AuthorID,
		p.AuthorName,
		p.AuthorAvatar,
		p.Body,
		p.ImageURL,
		string(liked),
		string(rawComments),
		p.CreatedAt,
	)
	return err
}

func (r *PostsRepo) GetByID(ctx context.Context, id string) (posts.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return posts.Post{}, notFound("post", id)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if isNoRows(err) {
			return posts.Post{}, notFound("post", id)
		}
		return posts.Post{}, err
	}
	return p, nil
}

func (r *PostsRepo) List(ctx context.Context) ([]posts.Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]posts.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetLike: el WHERE solo matchea si el set cambia; sin fila => sin cambios o inexistente.
func (r *PostsRepo) SetLike(ctx context.Context, postID, userID string, liked bool) (posts.Post, bool, error) {
	query := `
		UPDATE posts
		SET liked_by = liked_by || to_jsonb($2::text)
		WHERE id = $1 AND NOT jsonb_exists(liked_by, $2)
		RETURNING ` + postColumns
	if !liked {
		query = `
		UPDATE posts
		SET liked_by = liked_by - $2::text
		WHERE id = $1 AND jsonb_exists(liked_by, $2)
		RETURNING ` + postColumns
	}

	p, err := scanPost(r.db.QueryRowContext(ctx, query, postID, userID))
	if err == nil {
		return p, true, nil
	}
	if !isNoRows(err) {
		return posts.Post{}, false, err
	}
	p, err = r.GetByID(ctx, postID)
	if err != nil {
		return posts.Post{}, false, err
	}
	return p, false, nil
}

func (r *PostsRepo) AppendComment(ctx context.Context, postID string, c posts.Comment) (posts.Post, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return posts.Post{}, fmt.Errorf("encode comment: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE posts
		SET comments = comments || jsonb_build_array($2::jsonb)
		WHERE id = $1
		RETURNING `+postColumns,
		postID, string(raw),
	)
	p, err := scanPost(row)
	if err != nil {
		if isNoRows(err) {
			return posts.Post{}, notFound("post", postID)
		}
		return posts.Post{}, err
	}
	return p, nil
}

func (r *PostsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound("post", id)
	}
	return nil
}

func scanPost(s scanner) (posts.Post, error) {
	var (
		p                  posts.Post
		liked, rawComments []byte
	)
	if err := s.Scan(
		&p.ID,
		&p.AuthorID,
		&p.AuthorName,
		&p.AuthorAvatar,
		&p.Body,
		&p.ImageURL,
		&liked,
		&rawComments,
		&p.CreatedAt,
	); err != nil {
		return posts.Post{}, err
	}

	ids, err := decodeStringSet(liked)
	if err != nil {
		return posts.Post{}, fmt.Errorf("decode liked_by: %w", err)
	}
	p.LikedBy = ids
	p.LikeCount = len(ids)

	p.Comments = make([]posts.Comment, 0)
	if len(rawComments) > 0 {
		if err := json.Unmarshal(rawComments, &p.Comments); err != nil {
			return posts.Post{}, fmt.Errorf("decode comments: %w", err)
		}
	}
	return p, nil
}
