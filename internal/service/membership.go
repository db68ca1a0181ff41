package service

import (
	"context"
	"time"

	"github.com/lectern-dev/lectern/internal/mapper"
	"github.com/lectern-dev/lectern/shared/domain"
	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"
)

// to mock service in tests
type MembershipService interface {
	Add(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId, role domain.Role) (domain.Membership, error)
	Get(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId) (*domain.Membership, error)
	ListForUser(ctx context.Context, userId domain.UserId) (map[domain.SchoolId]domain.Membership, error)
	ListForSchool(ctx context.Context, schoolId domain.SchoolId) ([]domain.Membership, error)
	UpdateRole(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId, newRole domain.Role) error
	Remove(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId) error
}

type MembershipStorage interface {
	CreatePost(ctx context.Context, p forum.Post) (forum.Post, error)
	UpdatePost(ctx context.Context, p forum.Post) error
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, q forum.PostQuery) ([]forum.Post, error)
}

// Membership persists (user, school) -> role records as membership-typed
// posts. Every read scans the membership-typed records and filters; there
// is no secondary index, which the access patterns make acceptable.
type Membership struct {
	storage MembershipStorage
	now     func() time.Time
}

func NewMembership(storage MembershipStorage) *Membership {
	return &Membership{storage: storage, now: time.Now}
}

// Add creates a membership record. At most one may exist per
// (userId, schoolId); a second Add is a Conflict.
func (m *Membership) Add(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId, role domain.Role) (domain.Membership, error) {
	existing, err := m.findPost(ctx, userId, schoolId)
	if err != nil {
		return domain.Membership{}, err
	}
	if existing != nil {
		return domain.Membership{}, internal_errors.Conflict("User is already a member of this school")
	}
	membership := domain.Membership{
		UserId:   userId,
		SchoolId: schoolId,
		Role:     role,
		JoinedAt: m.now().UTC().Truncate(time.Second),
	}
	if _, err := m.storage.CreatePost(ctx, mapper.PostFromMembership(membership)); err != nil {
		return domain.Membership{}, err
	}
	return membership, nil
}

// Get returns the membership for (userId, schoolId), or nil when none exists.
func (m *Membership) Get(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId) (*domain.Membership, error) {
	post, err := m.findPost(ctx, userId, schoolId)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}
	membership := mapper.MembershipFromPost(*post)
	return &membership, nil
}

func (m *Membership) ListForUser(ctx context.Context, userId domain.UserId) (map[domain.SchoolId]domain.Membership, error) {
	posts, err := m.storage.ListPosts(ctx, forum.PostQuery{Type: forum.TypeMembership})
	if err != nil {
		return nil, err
	}
	result := make(map[domain.SchoolId]domain.Membership)
	for _, p := range posts {
		membership := mapper.MembershipFromPost(p)
		if membership.UserId == userId {
			result[membership.SchoolId] = membership
		}
	}
	return result, nil
}

func (m *Membership) ListForSchool(ctx context.Context, schoolId domain.SchoolId) ([]domain.Membership, error) {
	posts, err := m.storage.ListPosts(ctx, forum.PostQuery{Type: forum.TypeMembership})
	if err != nil {
		return nil, err
	}
	var result []domain.Membership
	for _, p := range posts {
		membership := mapper.MembershipFromPost(p)
		if membership.SchoolId == schoolId {
			result = append(result, membership)
		}
	}
	return result, nil
}

// UpdateRole rewrites the role on the existing record. A missing record is
// NotFound, never an implicit Add.
func (m *Membership) UpdateRole(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId, newRole domain.Role) error {
	post, err := m.findPost(ctx, userId, schoolId)
	if err != nil {
		return err
	}
	if post == nil {
		return internal_errors.NotFoundError("Membership")
	}
	membership := mapper.MembershipFromPost(*post)
	membership.Role = newRole
	updated := mapper.PostFromMembership(membership)
	updated.Id = post.Id
	return m.storage.UpdatePost(ctx, updated)
}

func (m *Membership) Remove(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId) error {
	post, err := m.findPost(ctx, userId, schoolId)
	if err != nil {
		return err
	}
	if post == nil {
		return internal_errors.NotFoundError("Membership")
	}
	return m.storage.DeletePost(ctx, post.Id)
}

func (m *Membership) findPost(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId) (*forum.Post, error) {
	posts, err := m.storage.ListPosts(ctx, forum.PostQuery{Type: forum.TypeMembership})
	if err != nil {
		return nil, err
	}
	for i := range posts {
		membership := mapper.MembershipFromPost(posts[i])
		if membership.UserId == userId && membership.SchoolId == schoolId {
			return &posts[i], nil
		}
	}
	return nil, nil
}
