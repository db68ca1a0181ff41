package service

import (
	"context"
	"time"

	"github.com/lectern-dev/lectern/internal/mapper"
	"github.com/lectern-dev/lectern/shared/domain"
	"github.com/lectern-dev/lectern/shared/forum"
	"github.com/lectern-dev/lectern/shared/logger"
	"github.com/lectern-dev/lectern/shared/utils"
)

const sandboxOwner = "system"

type SandboxService interface {
	EnsureProvisioned(ctx context.Context) (domain.SchoolId, error)
	AutoEnroll(ctx context.Context, userId domain.UserId) (domain.Membership, error)
}

type SandboxStorage interface {
	CreateThread(ctx context.Context, t forum.Thread) (forum.Thread, error)
	ListThreads(ctx context.Context, q forum.ThreadQuery) ([]forum.Thread, error)
	CreatePost(ctx context.Context, p forum.Post) (forum.Post, error)
	ListPosts(ctx context.Context, q forum.PostQuery) ([]forum.Post, error)
	AddParticipant(ctx context.Context, threadId, userId string) error
}

// Sandbox provisions the fixed demo school and enrolls users into it.
// Every record it creates carries the sandbox tag so the provisioning
// check and the permission override can identify them.
type Sandbox struct {
	storage    SandboxStorage
	membership MembershipService
	schoolName string
	now        func() time.Time
}

func NewSandbox(storage SandboxStorage, membership MembershipService, schoolName string) *Sandbox {
	return &Sandbox{
		storage:    storage,
		membership: membership,
		schoolName: schoolName,
		now:        time.Now,
	}
}

// EnsureProvisioned is idempotent. "Already set up" requires the school
// thread to exist, be school-typed, be flagged sandbox AND have at least
// one sandbox-flagged subject; anything less triggers (re)provisioning.
func (s *Sandbox) EnsureProvisioned(ctx context.Context) (domain.SchoolId, error) {
	threads, err := s.storage.ListThreads(ctx, forum.ThreadQuery{Type: forum.TypeSchool, Tag: "sandbox"})
	if err != nil {
		return "", err
	}
	for _, t := range threads {
		school := mapper.SchoolFromThread(t)
		if !school.Sandbox || t.Attrs.Type() != forum.TypeSchool {
			continue
		}
		subjects, err := s.storage.ListPosts(ctx, forum.PostQuery{ThreadId: t.Id, Type: forum.TypeSubject, Tag: "sandbox"})
		if err != nil {
			return "", err
		}
		if len(subjects) > 0 {
			return t.Id, nil
		}
		// school thread exists but content is missing: fill it in
		if err := s.provisionContent(ctx, t.Id); err != nil {
			return "", err
		}
		return t.Id, nil
	}

	school := domain.School{
		Name:        s.schoolName,
		Description: "A demo school to explore the app. Administrative actions are disabled here.",
		JoinKey:     utils.GenerateJoinKey(),
		OwnerId:     sandboxOwner,
		Sandbox:     true,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	}
	created, err := s.storage.CreateThread(ctx, mapper.ThreadFromSchool(school))
	if err != nil {
		return "", err
	}
	if err := s.provisionContent(ctx, created.Id); err != nil {
		return "", err
	}
	return created.Id, nil
}

// AutoEnroll enrolls the user as a student. Always a student: the sandbox
// never grants a higher role, whatever the caller is elsewhere.
func (s *Sandbox) AutoEnroll(ctx context.Context, userId domain.UserId) (domain.Membership, error) {
	schoolId, err := s.EnsureProvisioned(ctx)
	if err != nil {
		return domain.Membership{}, err
	}

	existing, err := s.membership.Get(ctx, userId, schoolId)
	if err != nil {
		return domain.Membership{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	membership, err := s.membership.Add(ctx, userId, schoolId, domain.RoleStudent)
	if err != nil {
		return domain.Membership{}, err
	}
	if err := s.storage.AddParticipant(ctx, schoolId, userId); err != nil {
		// advisory, never authoritative for permissions
		logger.Log.Warn("sandbox participant registration failed", "user", userId, "err", err)
	}
	return membership, nil
}

func (s *Sandbox) provisionContent(ctx context.Context, schoolId domain.SchoolId) error {
	now := s.now().UTC().Truncate(time.Second)

	subject := mapper.PostFromSubject(domain.Subject{
		SchoolId:  schoolId,
		Name:      "Mathematics",
		ColorTag:  "blue",
		CreatedAt: now,
	})
	subjectPost, err := s.createSandboxPost(ctx, subject)
	if err != nil {
		return err
	}

	course := mapper.PostFromCourse(domain.Course{
		SubjectId: subjectPost.Id,
		Code:      "MATH101",
		Title:     "Calculus I",
		Teacher:   "Prof. Example",
		Term:      "Fall",
		CreatedAt: now,
	}, schoolId)
	coursePost, err := s.createSandboxPost(ctx, course)
	if err != nil {
		return err
	}

	chapterThread := mapper.ThreadFromChapter(domain.Chapter{
		CourseId:  coursePost.Id,
		Label:     "Ch. 1",
		Title:     "Limits and Continuity",
		Status:    domain.ChapterCollecting,
		CreatedAt: now,
	})
	chapterThread.OwnerId = sandboxOwner
	chapterThread.Tags = append(chapterThread.Tags, "sandbox")
	chapterThread.Attrs["sandbox"] = true
	chapter, err := s.storage.CreateThread(ctx, chapterThread)
	if err != nil {
		return err
	}

	samples := []domain.Contribution{
		{
			ChapterId: chapter.Id,
			Type:      domain.ContributionTakeaway,
			Title:     "Intuition for limits",
			Content:   "A limit describes the value a function approaches, not the value it takes.",
			AuthorId:  sandboxOwner,
			CreatedAt: now,
		},
		{
			ChapterId: chapter.Id,
			Type:      domain.ContributionSolvedExample,
			Title:     "lim x->0 sin(x)/x",
			Content:   "Squeeze theorem: cos(x) <= sin(x)/x <= 1, so the limit is 1.",
			AuthorId:  sandboxOwner,
			CreatedAt: now,
		},
		{
			ChapterId: chapter.Id,
			Type:      domain.ContributionConfusion,
			Content:   "Why does 0/0 count as indeterminate instead of undefined?",
			Anonymous: true,
			AuthorId:  sandboxOwner,
			CreatedAt: now,
		},
	}
	for _, sample := range samples {
		if _, err := s.createSandboxPost(ctx, mapper.PostFromContribution(sample)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sandbox) createSandboxPost(ctx context.Context, p forum.Post) (forum.Post, error) {
	p.Tags = append(p.Tags, "sandbox")
	p.Attrs["sandbox"] = true
	if p.OwnerId == "" {
		p.OwnerId = sandboxOwner
	}
	return s.storage.CreatePost(ctx, p)
}
