package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func marshalAttrs(attrs forum.Attrs) ([]byte, error) {
	if attrs == nil {
		attrs = forum.Attrs{}
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attrs: %w", err)
	}
	return data, nil
}

func unmarshalAttrs(data []byte) forum.Attrs {
	attrs := forum.Attrs{}
	if len(data) == 0 {
		return attrs
	}
	// a corrupt bag degrades to empty, reads never fail on it
	_ = json.Unmarshal(data, &attrs)
	return attrs
}

func (s *Storage) CreateThread(ctx context.Context, t forum.Thread) (forum.Thread, error) {
	if t.Id == "" {
		t.Id = uuid.NewString()
	}
	attrs, err := marshalAttrs(t.Attrs)
	if err != nil {
		return forum.Thread{}, err
	}
	err = s.db.QueryRowContext(ctx, `
        INSERT INTO threads (id, title, body, owner_id, tags, attrs)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `, t.Id, t.Title, t.Body, t.OwnerId, pq.Array(t.Tags), attrs).Scan(&t.CreatedAt)
	if err != nil {
		return forum.Thread{}, fmt.Errorf("failed to insert thread: %w", err)
	}
	return t, nil
}

func (s *Storage) GetThread(ctx context.Context, id string) (forum.Thread, error) {
	var t forum.Thread
	var attrs []byte
	err := s.db.QueryRowContext(ctx, `
        SELECT id, title, body, owner_id, created_at, tags, attrs
        FROM threads
        WHERE id = $1
    `, id).Scan(&t.Id, &t.Title, &t.Body, &t.OwnerId, &t.CreatedAt, pq.Array(&t.Tags), &attrs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return forum.Thread{}, internal_errors.NotFoundError("Thread")
		}
		return forum.Thread{}, fmt.Errorf("failed to fetch thread: %w", err)
	}
	t.Attrs = unmarshalAttrs(attrs)
	return t, nil
}

func (s *Storage) UpdateThread(ctx context.Context, t forum.Thread) error {
	attrs, err := marshalAttrs(t.Attrs)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
        UPDATE threads
        SET title = $2, body = $3, owner_id = $4, tags = $5, attrs = $6
        WHERE id = $1
    `, t.Id, t.Title, t.Body, t.OwnerId, pq.Array(t.Tags), attrs)
	if err != nil {
		return fmt.Errorf("failed to update thread: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return internal_errors.NotFoundError("Thread")
	}
	return nil
}

func (s *Storage) DeleteThread(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM threads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return internal_errors.NotFoundError("Thread")
	}
	return nil
}

func (s *Storage) ListThreads(ctx context.Context, q forum.ThreadQuery) ([]forum.Thread, error) {
	query := `
        SELECT id, title, body, owner_id, created_at, tags, attrs
        FROM threads
        WHERE 1=1`
	var args []any
	if q.Type != "" {
		args = append(args, q.Type)
		query += fmt.Sprintf(" AND attrs->>'type' = $%d", len(args))
	}
	if q.OwnerId != "" {
		args = append(args, q.OwnerId)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	if q.Tag != "" {
		args = append(args, q.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var threads []forum.Thread
	for rows.Next() {
		var t forum.Thread
		var attrs []byte
		if err := rows.Scan(&t.Id, &t.Title, &t.Body, &t.OwnerId, &t.CreatedAt, pq.Array(&t.Tags), &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		t.Attrs = unmarshalAttrs(attrs)
		threads = append(threads, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}
