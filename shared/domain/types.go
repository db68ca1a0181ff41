package domain

type (
	UserId   = string
	SchoolId = string

	SubjectId      = string
	CourseId       = string
	ChapterId      = string
	ContributionId = string
	NotesId        = string

	JoinKey = string
)

// Role is the per-school membership role.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

// Action is a permission-gated operation inside a school.
type Action string

const (
	ActionGenerateAiNotes    Action = "generate_ai_notes"
	ActionCreateSubject      Action = "create_subject"
	ActionCreateCourse       Action = "create_course"
	ActionOpenAdminDashboard Action = "open_admin_dashboard"
	ActionManageMembers      Action = "manage_members"
	ActionChangeAiSettings   Action = "change_ai_settings"
	ActionRegenerateJoinKey  Action = "regenerate_join_key"
	ActionPromoteMembers     Action = "promote_members"
	ActionRemoveMembers      Action = "remove_members"
	ActionDeleteSchool       Action = "delete_school"
)
