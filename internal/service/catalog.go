package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/lectern-dev/lectern/internal/mapper"
	"github.com/lectern-dev/lectern/shared/domain"
	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"
	"github.com/microcosm-cc/bluemonday"
)

type CatalogService interface {
	CreateSubject(ctx context.Context, schoolId domain.SchoolId, name, colorTag string) (domain.Subject, error)
	ListSubjects(ctx context.Context, schoolId domain.SchoolId) ([]domain.Subject, error)
	GetSubject(ctx context.Context, id domain.SubjectId) (domain.Subject, error)
	CreateCourse(ctx context.Context, subjectId domain.SubjectId, code, title, teacher, term string) (domain.Course, error)
	ListCourses(ctx context.Context, subjectId domain.SubjectId) ([]domain.Course, error)
	GetCourse(ctx context.Context, id domain.CourseId) (domain.Course, error)
	CreateChapter(ctx context.Context, data domain.ChapterCreationData) (domain.Chapter, error)
	ListChapters(ctx context.Context, courseId domain.CourseId) ([]domain.Chapter, error)
	GetChapter(ctx context.Context, id domain.ChapterId) (domain.Chapter, error)
	SchoolForSubject(ctx context.Context, id domain.SubjectId) (domain.SchoolId, error)
	SchoolForCourse(ctx context.Context, id domain.CourseId) (domain.SchoolId, error)
	SchoolForChapter(ctx context.Context, id domain.ChapterId) (domain.SchoolId, error)
}

type CatalogStorage interface {
	CreateThread(ctx context.Context, t forum.Thread) (forum.Thread, error)
	GetThread(ctx context.Context, id string) (forum.Thread, error)
	UpdateThread(ctx context.Context, t forum.Thread) error
	CreatePost(ctx context.Context, p forum.Post) (forum.Post, error)
	GetPost(ctx context.Context, id string) (forum.Post, error)
	ListPosts(ctx context.Context, q forum.PostQuery) ([]forum.Post, error)
	ListThreads(ctx context.Context, q forum.ThreadQuery) ([]forum.Thread, error)
}

// Catalog manages the School → Subject → Course → Chapter hierarchy.
// Subjects and courses are posts under the school thread; chapters are
// threads of their own so contributions can live under them.
type Catalog struct {
	storage   CatalogStorage
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewCatalog(storage CatalogStorage) *Catalog {
	return &Catalog{storage: storage, sanitizer: bluemonday.StrictPolicy(), now: time.Now}
}

func (c *Catalog) CreateSubject(ctx context.Context, schoolId domain.SchoolId, name, colorTag string) (domain.Subject, error) {
	name = strings.TrimSpace(c.sanitizer.Sanitize(name))
	if name == "" {
		return domain.Subject{}, internal_errors.Validation("Subject name is required")
	}
	subject := domain.Subject{
		SchoolId:  schoolId,
		Name:      name,
		ColorTag:  colorTag,
		CreatedAt: c.now().UTC().Truncate(time.Second),
	}
	created, err := c.storage.CreatePost(ctx, mapper.PostFromSubject(subject))
	if err != nil {
		return domain.Subject{}, err
	}
	subject.Id = created.Id
	return subject, nil
}

func (c *Catalog) ListSubjects(ctx context.Context, schoolId domain.SchoolId) ([]domain.Subject, error) {
	posts, err := c.storage.ListPosts(ctx, forum.PostQuery{ThreadId: schoolId, Type: forum.TypeSubject})
	if err != nil {
		return nil, err
	}
	subjects := make([]domain.Subject, 0, len(posts))
	for _, p := range posts {
		subjects = append(subjects, mapper.SubjectFromPost(p))
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (c *Catalog) GetSubject(ctx context.Context, id domain.SubjectId) (domain.Subject, error) {
	post, err := c.storage.GetPost(ctx, id)
	if err != nil {
		return domain.Subject{}, err
	}
	if post.Attrs.Type() != forum.TypeSubject {
		return domain.Subject{}, internal_errors.NotFoundError("Subject")
	}
	return mapper.SubjectFromPost(post), nil
}

func (c *Catalog) CreateCourse(ctx context.Context, subjectId domain.SubjectId, code, title, teacher, term string) (domain.Course, error) {
	code = strings.TrimSpace(c.sanitizer.Sanitize(code))
	title = strings.TrimSpace(c.sanitizer.Sanitize(title))
	if code == "" || title == "" {
		return domain.Course{}, internal_errors.Validation("Course code and title are required")
	}
	subject, err := c.GetSubject(ctx, subjectId)
	if err != nil {
		return domain.Course{}, err
	}
	course := domain.Course{
		SubjectId: subjectId,
		Code:      code,
		Title:     title,
		Teacher:   strings.TrimSpace(c.sanitizer.Sanitize(teacher)),
		Term:      strings.TrimSpace(c.sanitizer.Sanitize(term)),
		CreatedAt: c.now().UTC().Truncate(time.Second),
	}
	created, err := c.storage.CreatePost(ctx, mapper.PostFromCourse(course, subject.SchoolId))
	if err != nil {
		return domain.Course{}, err
	}
	course.Id = created.Id
	return course, nil
}

func (c *Catalog) ListCourses(ctx context.Context, subjectId domain.SubjectId) ([]domain.Course, error) {
	subject, err := c.GetSubject(ctx, subjectId)
	if err != nil {
		return nil, err
	}
	posts, err := c.storage.ListPosts(ctx, forum.PostQuery{ThreadId: subject.SchoolId, Type: forum.TypeCourse})
	if err != nil {
		return nil, err
	}
	courses := make([]domain.Course, 0, len(posts))
	for _, p := range posts {
		course := mapper.CourseFromPost(p)
		if course.SubjectId == subjectId {
			courses = append(courses, course)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (c *Catalog) GetCourse(ctx context.Context, id domain.CourseId) (domain.Course, error) {
	post, err := c.storage.GetPost(ctx, id)
	if err != nil {
		return domain.Course{}, err
	}
	if post.Attrs.Type() != forum.TypeCourse {
		return domain.Course{}, internal_errors.NotFoundError("Course")
	}
	return mapper.CourseFromPost(post), nil
}

func (c *Catalog) CreateChapter(ctx context.Context, data domain.ChapterCreationData) (domain.Chapter, error) {
	label := strings.TrimSpace(c.sanitizer.Sanitize(data.Label))
	title := strings.TrimSpace(c.sanitizer.Sanitize(data.Title))
	if label == "" || title == "" {
		return domain.Chapter{}, internal_errors.Validation("Chapter label and title are required")
	}
	// verify the parent exists before writing
	if _, err := c.GetCourse(ctx, data.CourseId); err != nil {
		return domain.Chapter{}, err
	}
	chapter := domain.Chapter{
		CourseId:  data.CourseId,
		Label:     label,
		Title:     title,
		Status:    domain.ChapterCollecting,
		CreatedAt: c.now().UTC().Truncate(time.Second),
	}
	thread := mapper.ThreadFromChapter(chapter)
	thread.OwnerId = data.Creator
	created, err := c.storage.CreateThread(ctx, thread)
	if err != nil {
		return domain.Chapter{}, err
	}
	chapter.Id = created.Id
	return chapter, nil
}

func (c *Catalog) ListChapters(ctx context.Context, courseId domain.CourseId) ([]domain.Chapter, error) {
	threads, err := c.storage.ListThreads(ctx, forum.ThreadQuery{Type: forum.TypeChapter})
	if err != nil {
		return nil, err
	}
	chapters := make([]domain.Chapter, 0)
	for _, t := range threads {
		chapter := mapper.ChapterFromThread(t)
		if chapter.CourseId == courseId {
			chapters = append(chapters, chapter)
		}
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].Label < chapters[j].Label })
	return chapters, nil
}

func (c *Catalog) GetChapter(ctx context.Context, id domain.ChapterId) (domain.Chapter, error) {
	thread, err := c.storage.GetThread(ctx, id)
	if err != nil {
		return domain.Chapter{}, err
	}
	if thread.Attrs.Type() != forum.TypeChapter {
		return domain.Chapter{}, internal_errors.NotFoundError("Chapter")
	}
	return mapper.ChapterFromThread(thread), nil
}

func (c *Catalog) SchoolForSubject(ctx context.Context, id domain.SubjectId) (domain.SchoolId, error) {
	subject, err := c.GetSubject(ctx, id)
	if err != nil {
		return "", err
	}
	return subject.SchoolId, nil
}

// SchoolForCourse resolves through the owning subject.
func (c *Catalog) SchoolForCourse(ctx context.Context, id domain.CourseId) (domain.SchoolId, error) {
	course, err := c.GetCourse(ctx, id)
	if err != nil {
		return "", err
	}
	if course.SubjectId == "" {
		return "", internal_errors.NotFoundError("Subject")
	}
	return c.SchoolForSubject(ctx, course.SubjectId)
}

// SchoolForChapter chains chapter -> course -> subject -> school.
func (c *Catalog) SchoolForChapter(ctx context.Context, id domain.ChapterId) (domain.SchoolId, error) {
	chapter, err := c.GetChapter(ctx, id)
	if err != nil {
		return "", err
	}
	if chapter.CourseId == "" {
		return "", internal_errors.NotFoundError("Course")
	}
	return c.SchoolForCourse(ctx, chapter.CourseId)
}
