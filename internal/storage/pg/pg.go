package pg

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lectern-dev/lectern/shared/config"

	_ "github.com/lib/pq"
)

// Storage implements forum.Store on Postgres. Threads and posts are rows
// with a jsonb attribute bag; the store never interprets the bag beyond
// filtering on the discriminator.
type Storage struct {
	db *sql.DB
}

func New(cfg *config.Config) (*Storage, error) {
	log.Print("Connecting to db")
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	log.Print("Succesfully connected to db")
	storage := &Storage{db}
	if err := storage.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return storage, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Public.Pg.Host, cfg.Public.Pg.Port, cfg.Public.Pg.User, cfg.Private.PgPassword, cfg.Public.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func (s *Storage) ensureSchema() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS threads (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL DEFAULT '',
            body TEXT NOT NULL DEFAULT '',
            owner_id TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            tags TEXT[] NOT NULL DEFAULT '{}',
            attrs JSONB NOT NULL DEFAULT '{}'
        );
        CREATE INDEX IF NOT EXISTS threads_type_idx ON threads ((attrs->>'type'));

        CREATE TABLE IF NOT EXISTS posts (
            id TEXT PRIMARY KEY,
            thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
            owner_id TEXT NOT NULL DEFAULT '',
            body TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            tags TEXT[] NOT NULL DEFAULT '{}',
            attrs JSONB NOT NULL DEFAULT '{}'
        );
        CREATE INDEX IF NOT EXISTS posts_thread_idx ON posts (thread_id);
        CREATE INDEX IF NOT EXISTS posts_type_idx ON posts ((attrs->>'type'));

        CREATE TABLE IF NOT EXISTS post_reactions (
            post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
            user_id TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (post_id, user_id)
        );

        CREATE TABLE IF NOT EXISTS thread_participants (
            thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
            user_id TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (thread_id, user_id)
        );
    `)
	return err
}
