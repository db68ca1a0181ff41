package pg

import (
	"context"
	"fmt"

	internal_errors "github.com/lectern-dev/lectern/shared/errors"
)

// AddReaction is conditional on (post, user): the primary key plus
// ON CONFLICT DO NOTHING makes repeated marks no-ops.
func (s *Storage) AddReaction(ctx context.Context, postId, userId string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)", postId).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return false, internal_errors.NotFoundError("Post")
	}

	result, err := s.db.ExecContext(ctx, `
        INSERT INTO post_reactions (post_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (post_id, user_id) DO NOTHING
    `, postId, userId)
	if err != nil {
		return false, fmt.Errorf("failed to add reaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check insert result: %w", err)
	}
	return affected > 0, nil
}

func (s *Storage) RemoveReaction(ctx context.Context, postId, userId string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
        DELETE FROM post_reactions WHERE post_id = $1 AND user_id = $2
    `, postId, userId)
	if err != nil {
		return false, fmt.Errorf("failed to remove reaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected > 0, nil
}

func (s *Storage) AddParticipant(ctx context.Context, threadId, userId string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO thread_participants (thread_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (thread_id, user_id) DO NOTHING
    `, threadId, userId)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}
