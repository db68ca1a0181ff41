package domain

import "time"

// NotesSections is the structured body of a compiled study document.
// Every slice defaults to empty, never nil-vs-missing ambiguity downstream.
type NotesSections struct {
	Overview     string   `json:"overview"`
	KeyConcepts  []string `json:"key_concepts"`
	Definitions  []string `json:"definitions"`
	Formulas     []string `json:"formulas"`
	Steps        []string `json:"steps"`
	Examples     []string `json:"examples"`
	Mistakes     []string `json:"mistakes"`
	Resources    []string `json:"resources"`
	RevisionList []string `json:"revision_list"`
}

type UnifiedNotes struct {
	Id            NotesId
	ChapterId     ChapterId
	Version       int
	GeneratedBy   UserId
	GeneratorRole Role
	GeneratedAt   time.Time
	// contribution count observed when this version was generated
	ContributionCount int
	Sections          NotesSections
	// raw generator output, kept for rendering and audit
	RawContent string
}

// AIGenerationRecord is one row of the append-only generation log.
// "Last generation" for cooldown purposes = max GeneratedAt per chapter.
type AIGenerationRecord struct {
	ChapterId         ChapterId
	GeneratedBy       UserId
	GeneratorRole     Role
	ContributionCount int
	GeneratedAt       time.Time
}
