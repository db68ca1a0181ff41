// Package forum defines the two storage primitives every domain entity is a
// view over: threads and posts, each carrying an open-ended attribute bag.
// The application never assumes the backing store enforces any semantics on
// the bag; all typing happens in the mapper.
package forum

import (
	"context"
	"time"
)

// Attrs is the freeform attribute bag attached to every thread and post.
// The "type" key holds the entity discriminator.
type Attrs map[string]any

const (
	// discriminator values
	TypeSchool         = "school"
	TypeChapter        = "chapter"
	TypeSubject        = "subject"
	TypeCourse         = "course"
	TypeContribution   = "contribution"
	TypeUnifiedNotes   = "unified_notes"
	TypeMembership     = "membership"
	TypeAiGeneration   = "ai_generation"
	TypeSchoolSettings = "school_settings"
)

// Type returns the discriminator, or "" when absent or not a string.
func (a Attrs) Type() string {
	if a == nil {
		return ""
	}
	s, _ := a["type"].(string)
	return s
}

type Thread struct {
	Id        string
	Title     string
	Body      string
	OwnerId   string
	CreatedAt time.Time
	Tags      []string
	Attrs     Attrs
}

type Post struct {
	Id           string
	ThreadId     string
	OwnerId      string
	Body         string
	CreatedAt    time.Time
	HelpfulCount int
	Tags         []string
	Attrs        Attrs
}

// ThreadQuery and PostQuery are AND-combined filters; zero values match all.
type ThreadQuery struct {
	Type    string
	OwnerId string
	Tag     string
}

type PostQuery struct {
	ThreadId string
	Type     string
	OwnerId  string
	Tag      string
}

// SearchResult is the raw, cross-tenant hit set returned by the store's
// full-text endpoint. Scoping happens in the application.
type SearchResult struct {
	Threads []Thread
	Posts   []Post
}

// Store is the boundary to the external forum service. Implementations:
// storage/pg (embedded default) and storage/forumhttp (remote service).
type Store interface {
	CreateThread(ctx context.Context, t Thread) (Thread, error)
	GetThread(ctx context.Context, id string) (Thread, error)
	UpdateThread(ctx context.Context, t Thread) error
	DeleteThread(ctx context.Context, id string) error
	ListThreads(ctx context.Context, q ThreadQuery) ([]Thread, error)

	CreatePost(ctx context.Context, p Post) (Post, error)
	GetPost(ctx context.Context, id string) (Post, error)
	UpdatePost(ctx context.Context, p Post) error
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, q PostQuery) ([]Post, error)

	// AddReaction records a helpful mark for (postId, userId) and reports
	// whether it was newly added; repeated calls without an intervening
	// RemoveReaction are no-ops. The count on the post reflects distinct
	// users only.
	AddReaction(ctx context.Context, postId, userId string) (bool, error)
	RemoveReaction(ctx context.Context, postId, userId string) (bool, error)

	// AddParticipant registers a user on a thread. Advisory: callers may
	// treat failures as non-fatal.
	AddParticipant(ctx context.Context, threadId, userId string) error

	Search(ctx context.Context, query string) (SearchResult, error)
}
