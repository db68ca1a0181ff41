package api

import (
	"time"

	"github.com/lectern-dev/lectern/shared/domain"
)

// Request DTOs

type CreateSchoolRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

type JoinSchoolRequest struct {
	JoinKey string `json:"join_key" validate:"required,len=6"`
}

type CreateSubjectRequest struct {
	Name     string `json:"name" validate:"required"`
	ColorTag string `json:"color_tag,omitempty"`
}

type CreateCourseRequest struct {
	Code    string `json:"code" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Teacher string `json:"teacher,omitempty"`
	Term    string `json:"term,omitempty"`
}

type CreateChapterRequest struct {
	Label string `json:"label" validate:"required"`
	Title string `json:"title" validate:"required"`
}

type CreateContributionRequest struct {
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content" validate:"required"`
	Anonymous bool   `json:"anonymous,omitempty"`
	Link      string `json:"link,omitempty"`
	ImageUrl  string `json:"image_url,omitempty"`
}

type UpdateMemberRequest struct {
	Role string `json:"role" validate:"required,oneof=student teacher admin"`
}

type UpdateSettingsRequest struct {
	MinContributions     int     `json:"min_contributions" validate:"required,min=1"`
	StudentCooldownHours float64 `json:"student_cooldown_hours" validate:"min=0"`
	TeacherCooldownHours float64 `json:"teacher_cooldown_hours" validate:"min=0"`
}

// Response DTOs

type CreateSchoolResponse struct {
	SchoolId string `json:"school_id"`
	JoinKey  string `json:"join_key"`
}

type JoinSchoolResponse struct {
	SchoolId string `json:"school_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type SchoolSummary struct {
	Id       string    `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type SchoolListResponse struct {
	Schools []SchoolSummary `json:"schools"`
}

type PermissionResponse struct {
	Allowed bool   `json:"allowed"`
	UserId  string `json:"user_id"`
}

type JoinKeyResponse struct {
	JoinKey string `json:"join_key"`
}

type MemberResponse struct {
	UserId   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
}

type SettingsResponse struct {
	MinContributions     int     `json:"min_contributions"`
	StudentCooldownHours float64 `json:"student_cooldown_hours"`
	TeacherCooldownHours float64 `json:"teacher_cooldown_hours"`
}

type SubjectResponse struct {
	Subject domain.Subject `json:"subject"`
}

type SubjectListResponse struct {
	Subjects []domain.Subject `json:"subjects"`
}

type CourseResponse struct {
	Course domain.Course `json:"course"`
}

type CourseListResponse struct {
	Courses []domain.Course `json:"courses"`
}

type ChapterResponse struct {
	Chapter domain.Chapter `json:"chapter"`
}

type ChapterListResponse struct {
	Chapters []domain.Chapter `json:"chapters"`
}

type ContributionResponse struct {
	Contribution domain.Contribution `json:"contribution"`
}

type ContributionListResponse struct {
	Contributions []domain.Contribution `json:"contributions"`
}

type HelpfulResponse struct {
	HelpfulCount int  `json:"helpful_count"`
	Marked       bool `json:"marked"`
}

// GenerateNotesResponse covers both outcomes: Generated carries the new
// version, a rejection carries the structured reason. Exactly one is set.
type GenerateNotesResponse struct {
	Generated bool               `json:"generated"`
	Notes     *NotesResponse     `json:"notes,omitempty"`
	Rejection *RejectionResponse `json:"rejection,omitempty"`
}

type NotesResponse struct {
	Id                string               `json:"id"`
	Version           int                  `json:"version"`
	GeneratedBy       string               `json:"generated_by"`
	GeneratorRole     string               `json:"generator_role"`
	GeneratedAt       time.Time            `json:"generated_at"`
	ContributionCount int                  `json:"contribution_count"`
	Sections          domain.NotesSections `json:"sections"`
}

type RejectionResponse struct {
	Reason            string `json:"reason"`
	ContributionCount int    `json:"contribution_count"`
	Required          int    `json:"required,omitempty"`
	RemainingMinutes  int    `json:"remaining_minutes,omitempty"`
}

type NotesListResponse struct {
	Notes []NotesResponse `json:"notes"`
}

type SearchHit struct {
	Kind      string    `json:"kind"`
	Id        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Snippet   string    `json:"snippet,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SearchResponse struct {
	Results       []SearchHit            `json:"results"`
	ResultsByType map[string][]SearchHit `json:"results_by_type"`
}

type SandboxEnterResponse struct {
	SchoolId string `json:"school_id"`
	Role     string `json:"role"`
}
