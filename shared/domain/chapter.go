package domain

import "time"

// ChapterStatus is advisory: derived from contribution/notes state,
// never used in permission or eligibility decisions.
type ChapterStatus string

const (
	ChapterCollecting ChapterStatus = "Collecting"
	ChapterAiReady    ChapterStatus = "AI Ready"
	ChapterCompiled   ChapterStatus = "Compiled"
)

type ChapterCreationData struct {
	CourseId CourseId
	Label    string
	Title    string
	Creator  UserId
}

type Chapter struct {
	Id        ChapterId
	CourseId  CourseId
	Label     string
	Title     string
	Status    ChapterStatus
	CreatedAt time.Time
}
