package service

import (
	"context"
	"strings"
	"time"

	"github.com/lectern-dev/lectern/internal/mapper"
	"github.com/lectern-dev/lectern/shared/domain"
	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"
	"github.com/lectern-dev/lectern/shared/logger"
	"github.com/lectern-dev/lectern/shared/utils"
	"github.com/microcosm-cc/bluemonday"
)

type SchoolService interface {
	Create(ctx context.Context, data domain.SchoolCreationData) (domain.School, error)
	Get(ctx context.Context, id domain.SchoolId) (domain.School, error)
	Join(ctx context.Context, userId domain.UserId, joinKey domain.JoinKey) (domain.School, domain.Membership, error)
	RegenerateJoinKey(ctx context.Context, id domain.SchoolId) (domain.JoinKey, error)
	GetSettings(ctx context.Context, id domain.SchoolId) (domain.SchoolSettings, error)
	UpdateSettings(ctx context.Context, settings domain.SchoolSettings) error
}

type SchoolStorage interface {
	CreateThread(ctx context.Context, t forum.Thread) (forum.Thread, error)
	GetThread(ctx context.Context, id string) (forum.Thread, error)
	UpdateThread(ctx context.Context, t forum.Thread) error
	ListThreads(ctx context.Context, q forum.ThreadQuery) ([]forum.Thread, error)
	CreatePost(ctx context.Context, p forum.Post) (forum.Post, error)
	UpdatePost(ctx context.Context, p forum.Post) error
	ListPosts(ctx context.Context, q forum.PostQuery) ([]forum.Post, error)
	AddParticipant(ctx context.Context, threadId, userId string) error
}

// School manages tenants: creation, join-by-key, join key rotation and the
// per-school AI settings record.
type School struct {
	storage    SchoolStorage
	membership MembershipService
	sanitizer  *bluemonday.Policy
	now        func() time.Time
}

func NewSchool(storage SchoolStorage, membership MembershipService) *School {
	return &School{
		storage:    storage,
		membership: membership,
		sanitizer:  bluemonday.StrictPolicy(),
		now:        time.Now,
	}
}

// Create provisions the school thread and makes the creator its sole
// initial admin.
func (s *School) Create(ctx context.Context, data domain.SchoolCreationData) (domain.School, error) {
	name := strings.TrimSpace(s.sanitizer.Sanitize(data.Name))
	if name == "" {
		return domain.School{}, internal_errors.Validation("School name is required")
	}

	school := domain.School{
		Name:        name,
		Description: strings.TrimSpace(s.sanitizer.Sanitize(data.Description)),
		JoinKey:     utils.GenerateJoinKey(),
		OwnerId:     data.CreatorId,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	}
	created, err := s.storage.CreateThread(ctx, mapper.ThreadFromSchool(school))
	if err != nil {
		return domain.School{}, err
	}
	school.Id = created.Id

	if _, err := s.membership.Add(ctx, data.CreatorId, school.Id, domain.RoleAdmin); err != nil {
		return domain.School{}, err
	}
	if err := s.storage.AddParticipant(ctx, school.Id, data.CreatorId); err != nil {
		// advisory only
		logger.Log.Warn("participant registration failed", "school", school.Id, "user", data.CreatorId, "err", err)
	}
	return school, nil
}

func (s *School) Get(ctx context.Context, id domain.SchoolId) (domain.School, error) {
	thread, err := s.storage.GetThread(ctx, id)
	if err != nil {
		return domain.School{}, err
	}
	if thread.Attrs.Type() != forum.TypeSchool {
		return domain.School{}, internal_errors.NotFoundError("School")
	}
	return mapper.SchoolFromThread(thread), nil
}

// Join enrolls a user by join key. Joining twice is a no-op that returns
// the existing membership.
func (s *School) Join(ctx context.Context, userId domain.UserId, joinKey domain.JoinKey) (domain.School, domain.Membership, error) {
	key := strings.ToUpper(strings.TrimSpace(joinKey))
	threads, err := s.storage.ListThreads(ctx, forum.ThreadQuery{Type: forum.TypeSchool})
	if err != nil {
		return domain.School{}, domain.Membership{}, err
	}

	var school *domain.School
	for _, t := range threads {
		candidate := mapper.SchoolFromThread(t)
		if candidate.JoinKey != "" && candidate.JoinKey == key {
			school = &candidate
			break
		}
	}
	if school == nil {
		return domain.School{}, domain.Membership{}, internal_errors.NotFoundError("School with that join key")
	}

	existing, err := s.membership.Get(ctx, userId, school.Id)
	if err != nil {
		return domain.School{}, domain.Membership{}, err
	}
	if existing != nil {
		return *school, *existing, nil
	}

	membership, err := s.membership.Add(ctx, userId, school.Id, domain.RoleStudent)
	if err != nil {
		return domain.School{}, domain.Membership{}, err
	}
	if err := s.storage.AddParticipant(ctx, school.Id, userId); err != nil {
		logger.Log.Warn("participant registration failed", "school", school.Id, "user", userId, "err", err)
	}
	return *school, membership, nil
}

func (s *School) RegenerateJoinKey(ctx context.Context, id domain.SchoolId) (domain.JoinKey, error) {
	thread, err := s.storage.GetThread(ctx, id)
	if err != nil {
		return "", err
	}
	if thread.Attrs.Type() != forum.TypeSchool {
		return "", internal_errors.NotFoundError("School")
	}
	// only the key is rewritten; unknown tags and attrs stay intact
	joinKey := utils.GenerateJoinKey()
	if thread.Attrs == nil {
		thread.Attrs = forum.Attrs{}
	}
	thread.Attrs["join_key"] = joinKey
	if err := s.storage.UpdateThread(ctx, thread); err != nil {
		return "", err
	}
	return joinKey, nil
}

// GetSettings returns the stored settings record, or defaults when the
// school has never changed them.
func (s *School) GetSettings(ctx context.Context, id domain.SchoolId) (domain.SchoolSettings, error) {
	posts, err := s.storage.ListPosts(ctx, forum.PostQuery{ThreadId: id, Type: forum.TypeSchoolSettings})
	if err != nil {
		return domain.SchoolSettings{}, err
	}
	if len(posts) == 0 {
		return domain.DefaultSettings(id), nil
	}
	// latest record wins when several exist
	latest := posts[0]
	for _, p := range posts[1:] {
		if p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	return mapper.SettingsFromPost(latest), nil
}

func (s *School) UpdateSettings(ctx context.Context, settings domain.SchoolSettings) error {
	posts, err := s.storage.ListPosts(ctx, forum.PostQuery{ThreadId: settings.SchoolId, Type: forum.TypeSchoolSettings})
	if err != nil {
		return err
	}
	post := mapper.PostFromSettings(settings)
	if len(posts) == 0 {
		_, err := s.storage.CreatePost(ctx, post)
		return err
	}
	post.Id = posts[0].Id
	return s.storage.UpdatePost(ctx, post)
}
