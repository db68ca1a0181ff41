package domain

// EntityKind discriminates the closed set of domain entities that forum
// records can map to.
type EntityKind string

const (
	KindSchool         EntityKind = "school"
	KindChapter        EntityKind = "chapter"
	KindSubject        EntityKind = "subject"
	KindCourse         EntityKind = "course"
	KindContribution   EntityKind = "contribution"
	KindUnifiedNotes   EntityKind = "unified_notes"
	KindMembership     EntityKind = "membership"
	KindAiGeneration   EntityKind = "ai_generation"
	KindSchoolSettings EntityKind = "school_settings"
)

// Entity is the tagged union produced by the mapper. Downstream code
// switches on the concrete type, never on an open attribute bag.
type Entity interface {
	Kind() EntityKind
}

func (School) Kind() EntityKind             { return KindSchool }
func (Chapter) Kind() EntityKind            { return KindChapter }
func (Subject) Kind() EntityKind            { return KindSubject }
func (Course) Kind() EntityKind             { return KindCourse }
func (Contribution) Kind() EntityKind       { return KindContribution }
func (UnifiedNotes) Kind() EntityKind       { return KindUnifiedNotes }
func (Membership) Kind() EntityKind         { return KindMembership }
func (AIGenerationRecord) Kind() EntityKind { return KindAiGeneration }
func (SchoolSettings) Kind() EntityKind     { return KindSchoolSettings }
