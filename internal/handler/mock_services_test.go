package handler

import (
	"context"

	"github.com/lectern-dev/lectern/internal/service"
	"github.com/lectern-dev/lectern/shared/domain"
)

type MockSchoolService struct {
	MockCreate            func(data domain.SchoolCreationData) (domain.School, error)
	MockGet               func(id domain.SchoolId) (domain.School, error)
	MockJoin              func(userId domain.UserId, joinKey domain.JoinKey) (domain.School, domain.Membership, error)
	MockRegenerateJoinKey func(id domain.SchoolId) (domain.JoinKey, error)
	MockGetSettings       func(id domain.SchoolId) (domain.SchoolSettings, error)
	MockUpdateSettings    func(settings domain.SchoolSettings) error
}

func (m *MockSchoolService) Create(_ context.Context, data domain.SchoolCreationData) (domain.School, error) {
	if m.MockCreate != nil {
		return m.MockCreate(data)
	}
	return domain.School{}, nil
}

func (m *MockSchoolService) Get(_ context.Context, id domain.SchoolId) (domain.School, error) {
	if m.MockGet != nil {
		return m.MockGet(id)
	}
	return domain.School{Id: id}, nil
}

func (m *MockSchoolService) Join(_ context.Context, userId domain.UserId, joinKey domain.JoinKey) (domain.School, domain.Membership, error) {
	if m.MockJoin != nil {
		return m.MockJoin(userId, joinKey)
	}
	return domain.School{}, domain.Membership{}, nil
}

func (m *MockSchoolService) RegenerateJoinKey(_ context.Context, id domain.SchoolId) (domain.JoinKey, error) {
	if m.MockRegenerateJoinKey != nil {
		return m.MockRegenerateJoinKey(id)
	}
	return "", nil
}

func (m *MockSchoolService) GetSettings(_ context.Context, id domain.SchoolId) (domain.SchoolSettings, error) {
	if m.MockGetSettings != nil {
		return m.MockGetSettings(id)
	}
	return domain.DefaultSettings(id), nil
}

func (m *MockSchoolService) UpdateSettings(_ context.Context, settings domain.SchoolSettings) error {
	if m.MockUpdateSettings != nil {
		return m.MockUpdateSettings(settings)
	}
	return nil
}

type MockMembershipService struct {
	MockAdd           func(userId domain.UserId, schoolId domain.SchoolId, role domain.Role) (domain.Membership, error)
	MockGet           func(userId domain.UserId, schoolId domain.SchoolId) (*domain.Membership, error)
	MockListForUser   func(userId domain.UserId) (map[domain.SchoolId]domain.Membership, error)
	MockListForSchool func(schoolId domain.SchoolId) ([]domain.Membership, error)
	MockUpdateRole    func(userId domain.UserId, schoolId domain.SchoolId, newRole domain.Role) error
	MockRemove        func(userId domain.UserId, schoolId domain.SchoolId) error
}

func (m *MockMembershipService) Add(_ context.Context, userId domain.UserId, schoolId domain.SchoolId, role domain.Role) (domain.Membership, error) {
	if m.MockAdd != nil {
		return m.MockAdd(userId, schoolId, role)
	}
	return domain.Membership{UserId: userId, SchoolId: schoolId, Role: role}, nil
}

func (m *MockMembershipService) Get(_ context.Context, userId domain.UserId, schoolId domain.SchoolId) (*domain.Membership, error) {
	if m.MockGet != nil {
		return m.MockGet(userId, schoolId)
	}
	return nil, nil
}

func (m *MockMembershipService) ListForUser(_ context.Context, userId domain.UserId) (map[domain.SchoolId]domain.Membership, error) {
	if m.MockListForUser != nil {
		return m.MockListForUser(userId)
	}
	return nil, nil
}

func (m *MockMembershipService) ListForSchool(_ context.Context, schoolId domain.SchoolId) ([]domain.Membership, error) {
	if m.MockListForSchool != nil {
		return m.MockListForSchool(schoolId)
	}
	return nil, nil
}

func (m *MockMembershipService) UpdateRole(_ context.Context, userId domain.UserId, schoolId domain.SchoolId, newRole domain.Role) error {
	if m.MockUpdateRole != nil {
		return m.MockUpdateRole(userId, schoolId, newRole)
	}
	return nil
}

func (m *MockMembershipService) Remove(_ context.Context, userId domain.UserId, schoolId domain.SchoolId) error {
	if m.MockRemove != nil {
		return m.MockRemove(userId, schoolId)
	}
	return nil
}

type MockCatalogService struct {
	MockCreateSubject    func(schoolId domain.SchoolId, name, colorTag string) (domain.Subject, error)
	MockListSubjects     func(schoolId domain.SchoolId) ([]domain.Subject, error)
	MockGetSubject       func(id domain.SubjectId) (domain.Subject, error)
	MockCreateCourse     func(subjectId domain.SubjectId, code, title, teacher, term string) (domain.Course, error)
	MockListCourses      func(subjectId domain.SubjectId) ([]domain.Course, error)
	MockGetCourse        func(id domain.CourseId) (domain.Course, error)
	MockCreateChapter    func(data domain.ChapterCreationData) (domain.Chapter, error)
	MockListChapters     func(courseId domain.CourseId) ([]domain.Chapter, error)
	MockGetChapter       func(id domain.ChapterId) (domain.Chapter, error)
	MockSchoolForSubject func(id domain.SubjectId) (domain.SchoolId, error)
	MockSchoolForCourse  func(id domain.CourseId) (domain.SchoolId, error)
	MockSchoolForChapter func(id domain.ChapterId) (domain.SchoolId, error)
}

func (m *MockCatalogService) CreateSubject(_ context.Context, schoolId domain.SchoolId, name, colorTag string) (domain.Subject, error) {
	if m.MockCreateSubject != nil {
		return m.MockCreateSubject(schoolId, name, colorTag)
	}
	return domain.Subject{}, nil
}

func (m *MockCatalogService) ListSubjects(_ context.Context, schoolId domain.SchoolId) ([]domain.Subject, error) {
	if m.MockListSubjects != nil {
		return m.MockListSubjects(schoolId)
	}
	return nil, nil
}

func (m *MockCatalogService) GetSubject(_ context.Context, id domain.SubjectId) (domain.Subject, error) {
	if m.MockGetSubject != nil {
		return m.MockGetSubject(id)
	}
	return domain.Subject{}, nil
}

func (m *MockCatalogService) CreateCourse(_ context.Context, subjectId domain.SubjectId, code, title, teacher, term string) (domain.Course, error) {
	if m.MockCreateCourse != nil {
		return m.MockCreateCourse(subjectId, code, title, teacher, term)
	}
	return domain.Course{}, nil
}

func (m *MockCatalogService) ListCourses(_ context.Context, subjectId domain.SubjectId) ([]domain.Course, error) {
	if m.MockListCourses != nil {
		return m.MockListCourses(subjectId)
	}
	return nil, nil
}

func (m *MockCatalogService) GetCourse(_ context.Context, id domain.CourseId) (domain.Course, error) {
	if m.MockGetCourse != nil {
		return m.MockGetCourse(id)
	}
	return domain.Course{}, nil
}

func (m *MockCatalogService) CreateChapter(_ context.Context, data domain.ChapterCreationData) (domain.Chapter, error) {
	if m.MockCreateChapter != nil {
		return m.MockCreateChapter(data)
	}
	return domain.Chapter{}, nil
}

func (m *MockCatalogService) ListChapters(_ context.Context, courseId domain.CourseId) ([]domain.Chapter, error) {
	if m.MockListChapters != nil {
		return m.MockListChapters(courseId)
	}
	return nil, nil
}

func (m *MockCatalogService) GetChapter(_ context.Context, id domain.ChapterId) (domain.Chapter, error) {
	if m.MockGetChapter != nil {
		return m.MockGetChapter(id)
	}
	return domain.Chapter{Id: id}, nil
}

func (m *MockCatalogService) SchoolForSubject(_ context.Context, id domain.SubjectId) (domain.SchoolId, error) {
	if m.MockSchoolForSubject != nil {
		return m.MockSchoolForSubject(id)
	}
	return "", nil
}

func (m *MockCatalogService) SchoolForCourse(_ context.Context, id domain.CourseId) (domain.SchoolId, error) {
	if m.MockSchoolForCourse != nil {
		return m.MockSchoolForCourse(id)
	}
	return "", nil
}

func (m *MockCatalogService) SchoolForChapter(_ context.Context, id domain.ChapterId) (domain.SchoolId, error) {
	if m.MockSchoolForChapter != nil {
		return m.MockSchoolForChapter(id)
	}
	return "", nil
}

type MockContributionService struct {
	MockCreate        func(data domain.ContributionCreationData) (domain.Contribution, error)
	MockList          func(chapterId domain.ChapterId, typeFilter domain.ContributionType) ([]domain.Contribution, error)
	MockCount         func(chapterId domain.ChapterId) (int, error)
	MockGet           func(id domain.ContributionId) (domain.Contribution, error)
	MockMarkHelpful   func(id domain.ContributionId, userId domain.UserId) (int, bool, error)
	MockUnmarkHelpful func(id domain.ContributionId, userId domain.UserId) (int, bool, error)
}

func (m *MockContributionService) Create(_ context.Context, data domain.ContributionCreationData) (domain.Contribution, error) {
	if m.MockCreate != nil {
		return m.MockCreate(data)
	}
	return domain.Contribution{}, nil
}

func (m *MockContributionService) List(_ context.Context, chapterId domain.ChapterId, typeFilter domain.ContributionType) ([]domain.Contribution, error) {
	if m.MockList != nil {
		return m.MockList(chapterId, typeFilter)
	}
	return nil, nil
}

func (m *MockContributionService) Count(_ context.Context, chapterId domain.ChapterId) (int, error) {
	if m.MockCount != nil {
		return m.MockCount(chapterId)
	}
	return 0, nil
}

func (m *MockContributionService) Get(_ context.Context, id domain.ContributionId) (domain.Contribution, error) {
	if m.MockGet != nil {
		return m.MockGet(id)
	}
	return domain.Contribution{Id: id}, nil
}

func (m *MockContributionService) MarkHelpful(_ context.Context, id domain.ContributionId, userId domain.UserId) (int, bool, error) {
	if m.MockMarkHelpful != nil {
		return m.MockMarkHelpful(id, userId)
	}
	return 0, false, nil
}

func (m *MockContributionService) UnmarkHelpful(_ context.Context, id domain.ContributionId, userId domain.UserId) (int, bool, error) {
	if m.MockUnmarkHelpful != nil {
		return m.MockUnmarkHelpful(id, userId)
	}
	return 0, false, nil
}

type MockGovernorService struct {
	MockCheckEligibility func(chapterId domain.ChapterId, role domain.Role, contributionCount int, settings domain.SchoolSettings) (service.Eligibility, error)
	MockGenerate         func(chapterId domain.ChapterId, userId domain.UserId, role domain.Role, settings domain.SchoolSettings) (*domain.UnifiedNotes, *service.Eligibility, error)
	MockListNotes        func(chapterId domain.ChapterId) ([]domain.UnifiedNotes, error)
	MockGetNotes         func(id domain.NotesId) (domain.UnifiedNotes, error)
}

func (m *MockGovernorService) CheckEligibility(_ context.Context, chapterId domain.ChapterId, role domain.Role, contributionCount int, settings domain.SchoolSettings) (service.Eligibility, error) {
	if m.MockCheckEligibility != nil {
		return m.MockCheckEligibility(chapterId, role, contributionCount, settings)
	}
	return service.Eligibility{Allowed: true}, nil
}

func (m *MockGovernorService) Generate(_ context.Context, chapterId domain.ChapterId, userId domain.UserId, role domain.Role, settings domain.SchoolSettings) (*domain.UnifiedNotes, *service.Eligibility, error) {
	if m.MockGenerate != nil {
		return m.MockGenerate(chapterId, userId, role, settings)
	}
	return &domain.UnifiedNotes{}, nil, nil
}

func (m *MockGovernorService) ListNotes(_ context.Context, chapterId domain.ChapterId) ([]domain.UnifiedNotes, error) {
	if m.MockListNotes != nil {
		return m.MockListNotes(chapterId)
	}
	return nil, nil
}

func (m *MockGovernorService) GetNotes(_ context.Context, id domain.NotesId) (domain.UnifiedNotes, error) {
	if m.MockGetNotes != nil {
		return m.MockGetNotes(id)
	}
	return domain.UnifiedNotes{Id: id}, nil
}

type MockSearchService struct {
	MockSearch func(query string, tenantId domain.SchoolId, typeFilters []string) (service.SearchResults, error)
}

func (m *MockSearchService) Search(_ context.Context, query string, tenantId domain.SchoolId, typeFilters []string) (service.SearchResults, error) {
	if m.MockSearch != nil {
		return m.MockSearch(query, tenantId, typeFilters)
	}
	return service.SearchResults{}, nil
}

type MockSandboxService struct {
	MockEnsureProvisioned func() (domain.SchoolId, error)
	MockAutoEnroll        func(userId domain.UserId) (domain.Membership, error)
}

func (m *MockSandboxService) EnsureProvisioned(_ context.Context) (domain.SchoolId, error) {
	if m.MockEnsureProvisioned != nil {
		return m.MockEnsureProvisioned()
	}
	return "", nil
}

func (m *MockSandboxService) AutoEnroll(_ context.Context, userId domain.UserId) (domain.Membership, error) {
	if m.MockAutoEnroll != nil {
		return m.MockAutoEnroll(userId)
	}
	return domain.Membership{UserId: userId}, nil
}
