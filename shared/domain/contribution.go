package domain

import "time"

// ContributionType classifies what kind of content a member submitted.
type ContributionType string

const (
	ContributionTakeaway      ContributionType = "takeaway"
	ContributionNotesPhoto    ContributionType = "notes_photo"
	ContributionResource      ContributionType = "resource"
	ContributionSolvedExample ContributionType = "solved_example"
	ContributionConfusion     ContributionType = "confusion"
)

func (t ContributionType) Valid() bool {
	switch t {
	case ContributionTakeaway, ContributionNotesPhoto, ContributionResource,
		ContributionSolvedExample, ContributionConfusion:
		return true
	}
	return false
}

type ContributionCreationData struct {
	ChapterId ChapterId
	Type      ContributionType
	Title     string
	Content   string
	Anonymous bool
	Link      string
	ImageUrl  string
	AuthorId  UserId
}

type Contribution struct {
	Id           ContributionId
	ChapterId    ChapterId
	Type         ContributionType
	Title        string
	Content      string
	Anonymous    bool
	AuthorId     UserId
	HelpfulCount int
	Link         string
	ImageUrl     string
	CreatedAt    time.Time
}
