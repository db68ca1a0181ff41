package pg

import (
	"context"
	"fmt"

	"github.com/lectern-dev/lectern/shared/forum"

	"github.com/lib/pq"
)

const searchLimit = 200

// Search does a case-insensitive substring match over thread titles and
// bodies and over post bodies plus the title/content attrs. The result is
// deliberately cross-tenant: scoping is the application's job.
func (s *Storage) Search(ctx context.Context, query string) (forum.SearchResult, error) {
	pattern := "%" + query + "%"
	var result forum.SearchResult

	rows, err := s.db.QueryContext(ctx, `
        SELECT id, title, body, owner_id, created_at, tags, attrs
        FROM threads
        WHERE title ILIKE $1 OR body ILIKE $1
        ORDER BY created_at DESC
        LIMIT $2
    `, pattern, searchLimit)
	if err != nil {
		return forum.SearchResult{}, fmt.Errorf("failed to search threads: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t forum.Thread
		var attrs []byte
		if err := rows.Scan(&t.Id, &t.Title, &t.Body, &t.OwnerId, &t.CreatedAt, pq.Array(&t.Tags), &attrs); err != nil {
			return forum.SearchResult{}, fmt.Errorf("failed to scan thread: %w", err)
		}
		t.Attrs = unmarshalAttrs(attrs)
		result.Threads = append(result.Threads, t)
	}
	if err = rows.Err(); err != nil {
		return forum.SearchResult{}, fmt.Errorf("rows iteration error: %w", err)
	}

	postRows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
        SELECT %s
        FROM posts p
        WHERE p.body ILIKE $1
           OR p.attrs->>'title' ILIKE $1
           OR p.attrs->>'content' ILIKE $1
        ORDER BY p.created_at DESC
        LIMIT $2
    `, postColumns), pattern, searchLimit)
	if err != nil {
		return forum.SearchResult{}, fmt.Errorf("failed to search posts: %w", err)
	}
	defer postRows.Close()
	for postRows.Next() {
		p, err := scanPost(postRows.Scan)
		if err != nil {
			return forum.SearchResult{}, fmt.Errorf("failed to scan post: %w", err)
		}
		result.Posts = append(result.Posts, p)
	}
	if err = postRows.Err(); err != nil {
		return forum.SearchResult{}, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}
