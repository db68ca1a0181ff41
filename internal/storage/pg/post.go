package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const postColumns = `
    p.id, p.thread_id, p.owner_id, p.body, p.created_at, p.tags, p.attrs,
    (SELECT count(*) FROM post_reactions r WHERE r.post_id = p.id) AS helpful_count`

func scanPost(scan func(...any) error) (forum.Post, error) {
	var p forum.Post
	var attrs []byte
	err := scan(&p.Id, &p.ThreadId, &p.OwnerId, &p.Body, &p.CreatedAt, pq.Array(&p.Tags), &attrs, &p.HelpfulCount)
	if err != nil {
		return forum.Post{}, err
	}
	p.Attrs = unmarshalAttrs(attrs)
	return p, nil
}

func (s *Storage) CreatePost(ctx context.Context, p forum.Post) (forum.Post, error) {
	if p.Id == "" {
		p.Id = uuid.NewString()
	}
	attrs, err := marshalAttrs(p.Attrs)
	if err != nil {
		return forum.Post{}, err
	}
	err = s.db.QueryRowContext(ctx, `
        INSERT INTO posts (id, thread_id, owner_id, body, tags, attrs)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `, p.Id, p.ThreadId, p.OwnerId, p.Body, pq.Array(p.Tags), attrs).Scan(&p.CreatedAt)
	if err != nil {
		return forum.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}
	return p, nil
}

func (s *Storage) GetPost(ctx context.Context, id string) (forum.Post, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
        SELECT %s FROM posts p WHERE p.id = $1
    `, postColumns), id)
	p, err := scanPost(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return forum.Post{}, internal_errors.NotFoundError("Post")
		}
		return forum.Post{}, fmt.Errorf("failed to fetch post: %w", err)
	}
	return p, nil
}

func (s *Storage) UpdatePost(ctx context.Context, p forum.Post) error {
	attrs, err := marshalAttrs(p.Attrs)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
        UPDATE posts
        SET thread_id = $2, owner_id = $3, body = $4, tags = $5, attrs = $6
        WHERE id = $1
    `, p.Id, p.ThreadId, p.OwnerId, p.Body, pq.Array(p.Tags), attrs)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return internal_errors.NotFoundError("Post")
	}
	return nil
}

func (s *Storage) DeletePost(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return internal_errors.NotFoundError("Post")
	}
	return nil
}

func (s *Storage) ListPosts(ctx context.Context, q forum.PostQuery) ([]forum.Post, error) {
	query := fmt.Sprintf("SELECT %s FROM posts p WHERE 1=1", postColumns)
	var args []any
	if q.ThreadId != "" {
		args = append(args, q.ThreadId)
		query += fmt.Sprintf(" AND p.thread_id = $%d", len(args))
	}
	if q.Type != "" {
		args = append(args, q.Type)
		query += fmt.Sprintf(" AND p.attrs->>'type' = $%d", len(args))
	}
	if q.OwnerId != "" {
		args = append(args, q.OwnerId)
		query += fmt.Sprintf(" AND p.owner_id = $%d", len(args))
	}
	if q.Tag != "" {
		args = append(args, q.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(p.tags)", len(args))
	}
	query += " ORDER BY p.created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []forum.Post
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return posts, nil
}
