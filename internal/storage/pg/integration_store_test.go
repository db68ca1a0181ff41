package pg

import (
	"context"
	"testing"

	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func mustCreateThread(t *testing.T, attrs forum.Attrs, tags ...string) forum.Thread {
	t.Helper()
	thread, err := storage.CreateThread(context.Background(), forum.Thread{
		Title: "Test thread",
		Body:  "thread body",
		Tags:  tags,
		Attrs: attrs,
	})
	require.NoError(t, err)
	return thread
}

func TestThreadCRUD(t *testing.T) {
	created := mustCreateThread(t, forum.Attrs{"type": forum.TypeSchool, "join_key": "ABC123"}, "school")
	require.NotEmpty(t, created.Id)
	require.False(t, created.CreatedAt.IsZero())

	got, err := storage.GetThread(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, forum.TypeSchool, got.Attrs.Type())
	assert.Equal(t, "ABC123", got.Attrs["join_key"])
	assert.Equal(t, []string{"school"}, got.Tags)

	got.Title = "Renamed"
	got.Attrs["join_key"] = "XYZ789"
	require.NoError(t, storage.UpdateThread(context.Background(), got))

	reread, err := storage.GetThread(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reread.Title)
	assert.Equal(t, "XYZ789", reread.Attrs["join_key"])

	require.NoError(t, storage.DeleteThread(context.Background(), created.Id))
	_, err = storage.GetThread(context.Background(), created.Id)
	assert.True(t, internal_errors.Is[*internal_errors.ErrorWithStatusCode](err))
}

func TestThreadNotFound(t *testing.T) {
	_, err := storage.GetThread(context.Background(), "nonexistent")
	assert.True(t, internal_errors.Is[*internal_errors.ErrorWithStatusCode](err))

	err = storage.UpdateThread(context.Background(), forum.Thread{Id: "nonexistent"})
	assert.True(t, internal_errors.Is[*internal_errors.ErrorWithStatusCode](err))

	err = storage.DeleteThread(context.Background(), "nonexistent")
	assert.True(t, internal_errors.Is[*internal_errors.ErrorWithStatusCode](err))
}

func TestListThreadsFilters(t *testing.T) {
	school := mustCreateThread(t, forum.Attrs{"type": forum.TypeSchool}, "filter-test")
	chapter := mustCreateThread(t, forum.Attrs{"type": forum.TypeChapter}, "filter-test")

	byType, err := storage.ListThreads(context.Background(), forum.ThreadQuery{Type: forum.TypeChapter, Tag: "filter-test"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, chapter.Id, byType[0].Id)

	byTag, err := storage.ListThreads(context.Background(), forum.ThreadQuery{Tag: "filter-test"})
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	for _, thread := range []forum.Thread{school, chapter} {
		require.NoError(t, storage.DeleteThread(context.Background(), thread.Id))
	}
}

func TestPostCRUD(t *testing.T) {
	thread := mustCreateThread(t, forum.Attrs{"type": forum.TypeChapter})
	defer storage.DeleteThread(context.Background(), thread.Id)

	created, err := storage.CreatePost(context.Background(), forum.Post{
		ThreadId: thread.Id,
		OwnerId:  "u1",
		Body:     "post body",
		Tags:     []string{"contribution"},
		Attrs:    forum.Attrs{"type": forum.TypeContribution, "anonymous": true},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Id)

	got, err := storage.GetPost(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, thread.Id, got.ThreadId)
	assert.Equal(t, "post body", got.Body)
	assert.Equal(t, forum.TypeContribution, got.Attrs.Type())
	assert.Equal(t, true, got.Attrs["anonymous"])
	assert.Equal(t, 0, got.HelpfulCount)

	got.Body = "edited"
	require.NoError(t, storage.UpdatePost(context.Background(), got))
	reread, err := storage.GetPost(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, "edited", reread.Body)

	require.NoError(t, storage.DeletePost(context.Background(), created.Id))
	_, err = storage.GetPost(context.Background(), created.Id)
	assert.True(t, internal_errors.Is[*internal_errors.ErrorWithStatusCode](err))
}

func TestListPostsFilters(t *testing.T) {
	thread := mustCreateThread(t, forum.Attrs{"type": forum.TypeChapter})
	defer storage.DeleteThread(context.Background(), thread.Id)

	for _, attrs := range []forum.Attrs{
		{"type": forum.TypeContribution},
		{"type": forum.TypeContribution},
		{"type": forum.TypeUnifiedNotes},
	} {
		_, err := storage.CreatePost(context.Background(), forum.Post{ThreadId: thread.Id, OwnerId: "u1", Attrs: attrs})
		require.NoError(t, err)
	}

	contributions, err := storage.ListPosts(context.Background(), forum.PostQuery{ThreadId: thread.Id, Type: forum.TypeContribution})
	require.NoError(t, err)
	assert.Len(t, contributions, 2)

	all, err := storage.ListPosts(context.Background(), forum.PostQuery{ThreadId: thread.Id})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := storage.ListPosts(context.Background(), forum.PostQuery{ThreadId: thread.Id, Type: forum.TypeMembership})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReactionsIdempotent(t *testing.T) {
	thread := mustCreateThread(t, forum.Attrs{"type": forum.TypeChapter})
	defer storage.DeleteThread(context.Background(), thread.Id)

	post, err := storage.CreatePost(context.Background(), forum.Post{ThreadId: thread.Id, Attrs: forum.Attrs{"type": forum.TypeContribution}})
	require.NoError(t, err)

	added, err := storage.AddReaction(context.Background(), post.Id, "u1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = storage.AddReaction(context.Background(), post.Id, "u1")
	require.NoError(t, err)
	assert.False(t, added, "second mark from the same user is a no-op")

	added, err = storage.AddReaction(context.Background(), post.Id, "u2")
	require.NoError(t, err)
	assert.True(t, added)

	got, err := storage.GetPost(context.Background(), post.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.HelpfulCount, "count reflects distinct users only")

	removed, err := storage.RemoveReaction(context.Background(), post.Id, "u1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = storage.RemoveReaction(context.Background(), post.Id, "u1")
	require.NoError(t, err)
	assert.False(t, removed)

	got, err = storage.GetPost(context.Background(), post.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.HelpfulCount)
}

func TestReactionOnMissingPost(t *testing.T) {
	_, err := storage.AddReaction(context.Background(), "nonexistent", "u1")
	assert.True(t, internal_errors.Is[*internal_errors.ErrorWithStatusCode](err))
}

func TestAddParticipantIdempotent(t *testing.T) {
	thread := mustCreateThread(t, forum.Attrs{"type": forum.TypeSchool})
	defer storage.DeleteThread(context.Background(), thread.Id)

	require.NoError(t, storage.AddParticipant(context.Background(), thread.Id, "u1"))
	require.NoError(t, storage.AddParticipant(context.Background(), thread.Id, "u1"))
}

func TestSearch(t *testing.T) {
	thread := mustCreateThread(t, forum.Attrs{"type": forum.TypeChapter})
	thread.Title = "Thermodynamics basics"
	require.NoError(t, storage.UpdateThread(context.Background(), thread))
	defer storage.DeleteThread(context.Background(), thread.Id)

	post, err := storage.CreatePost(context.Background(), forum.Post{
		ThreadId: thread.Id,
		Body:     "entropy never decreases in an isolated system",
		Attrs:    forum.Attrs{"type": forum.TypeContribution, "title": "Second law"},
	})
	require.NoError(t, err)

	result, err := storage.Search(context.Background(), "thermodynamics")
	require.NoError(t, err)
	require.Len(t, result.Threads, 1)
	assert.Equal(t, thread.Id, result.Threads[0].Id)

	// matches on body, case-insensitive
	result, err = storage.Search(context.Background(), "ENTROPY")
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, post.Id, result.Posts[0].Id)

	// matches on the title attr
	result, err = storage.Search(context.Background(), "second law")
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)

	result, err = storage.Search(context.Background(), "no-such-token-anywhere")
	require.NoError(t, err)
	assert.Empty(t, result.Threads)
	assert.Empty(t, result.Posts)
}
