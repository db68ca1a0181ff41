package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"
)

// fakeStore is an in-memory forum.Store. Error injection goes through the
// optional func fields.
type fakeStore struct {
	mu           sync.Mutex
	threads      map[string]forum.Thread
	posts        map[string]forum.Post
	reactions    map[string]map[string]bool
	participants map[string]map[string]bool
	nextId       int

	createPostFunc   func(p forum.Post) error
	createThreadFunc func(t forum.Thread) error
	searchFunc       func(query string) (forum.SearchResult, error)

	participantErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		threads:      make(map[string]forum.Thread),
		posts:        make(map[string]forum.Post),
		reactions:    make(map[string]map[string]bool),
		participants: make(map[string]map[string]bool),
	}
}

func (f *fakeStore) newId() string {
	f.nextId++
	return fmt.Sprintf("id-%d", f.nextId)
}

func (f *fakeStore) CreateThread(ctx context.Context, t forum.Thread) (forum.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createThreadFunc != nil {
		if err := f.createThreadFunc(t); err != nil {
			return forum.Thread{}, err
		}
	}
	if t.Id == "" {
		t.Id = f.newId()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	f.threads[t.Id] = t
	return t, nil
}

func (f *fakeStore) GetThread(ctx context.Context, id string) (forum.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[id]
	if !ok {
		return forum.Thread{}, internal_errors.NotFoundError("Thread")
	}
	return t, nil
}

func (f *fakeStore) UpdateThread(ctx context.Context, t forum.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.threads[t.Id]; !ok {
		return internal_errors.NotFoundError("Thread")
	}
	f.threads[t.Id] = t
	return nil
}

func (f *fakeStore) DeleteThread(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.threads, id)
	return nil
}

func (f *fakeStore) ListThreads(ctx context.Context, q forum.ThreadQuery) ([]forum.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []forum.Thread
	for _, t := range f.threads {
		if q.Type != "" && t.Attrs.Type() != q.Type {
			continue
		}
		if q.OwnerId != "" && t.OwnerId != q.OwnerId {
			continue
		}
		if q.Tag != "" && !hasTag(t.Tags, q.Tag) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) CreatePost(ctx context.Context, p forum.Post) (forum.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createPostFunc != nil {
		if err := f.createPostFunc(p); err != nil {
			return forum.Post{}, err
		}
	}
	if p.Id == "" {
		p.Id = f.newId()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	f.posts[p.Id] = p
	return p, nil
}

func (f *fakeStore) GetPost(ctx context.Context, id string) (forum.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return forum.Post{}, internal_errors.NotFoundError("Post")
	}
	p.HelpfulCount = len(f.reactions[id])
	return p, nil
}

func (f *fakeStore) UpdatePost(ctx context.Context, p forum.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[p.Id]; !ok {
		return internal_errors.NotFoundError("Post")
	}
	f.posts[p.Id] = p
	return nil
}

func (f *fakeStore) DeletePost(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.posts, id)
	return nil
}

func (f *fakeStore) ListPosts(ctx context.Context, q forum.PostQuery) ([]forum.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []forum.Post
	for _, p := range f.posts {
		if q.ThreadId != "" && p.ThreadId != q.ThreadId {
			continue
		}
		if q.Type != "" && p.Attrs.Type() != q.Type {
			continue
		}
		if q.OwnerId != "" && p.OwnerId != q.OwnerId {
			continue
		}
		if q.Tag != "" && !hasTag(p.Tags, q.Tag) {
			continue
		}
		p.HelpfulCount = len(f.reactions[p.Id])
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) AddReaction(ctx context.Context, postId, userId string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reactions[postId] == nil {
		f.reactions[postId] = make(map[string]bool)
	}
	if f.reactions[postId][userId] {
		return false, nil
	}
	f.reactions[postId][userId] = true
	return true, nil
}

func (f *fakeStore) RemoveReaction(ctx context.Context, postId, userId string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.reactions[postId][userId] {
		return false, nil
	}
	delete(f.reactions[postId], userId)
	return true, nil
}

func (f *fakeStore) AddParticipant(ctx context.Context, threadId, userId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.participantErr != nil {
		return f.participantErr
	}
	if f.participants[threadId] == nil {
		f.participants[threadId] = make(map[string]bool)
	}
	f.participants[threadId][userId] = true
	return nil
}

func (f *fakeStore) Search(ctx context.Context, query string) (forum.SearchResult, error) {
	if f.searchFunc != nil {
		return f.searchFunc(query)
	}
	return forum.SearchResult{}, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
