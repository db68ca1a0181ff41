package domain

import "time"

// to iterate thru layers: handler -> service -> storage
type SchoolCreationData struct {
	Name        string
	Description string
	CreatorId   UserId
}

type School struct {
	Id          SchoolId
	Name        string
	Description string
	JoinKey     JoinKey
	OwnerId     UserId
	Sandbox     bool
	CreatedAt   time.Time
}

// SchoolSettings governs AI note generation for one school.
// Missing settings fall back to these defaults.
type SchoolSettings struct {
	SchoolId             SchoolId
	MinContributions     int
	StudentCooldownHours float64
	TeacherCooldownHours float64
}

const (
	DefaultMinContributions     = 5
	DefaultStudentCooldownHours = 2
	DefaultTeacherCooldownHours = 1
)

func DefaultSettings(schoolId SchoolId) SchoolSettings {
	return SchoolSettings{
		SchoolId:             schoolId,
		MinContributions:     DefaultMinContributions,
		StudentCooldownHours: DefaultStudentCooldownHours,
		TeacherCooldownHours: DefaultTeacherCooldownHours,
	}
}

type Subject struct {
	Id        SubjectId
	SchoolId  SchoolId
	Name      string
	ColorTag  string
	CreatedAt time.Time
}

type Course struct {
	Id        CourseId
	SubjectId SubjectId
	Code      string
	Title     string
	Teacher   string
	Term      string
	CreatedAt time.Time
}
