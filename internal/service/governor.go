package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lectern-dev/lectern/internal/generator"
	"github.com/lectern-dev/lectern/internal/mapper"
	"github.com/lectern-dev/lectern/shared/domain"
	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"
	"github.com/lectern-dev/lectern/shared/logger"
	"github.com/lectern-dev/lectern/shared/middleware/metrics"
)

// Eligibility is the structured answer to "may this generation proceed".
// Ineligibility is a domain outcome, not an error: callers render the
// reason directly.
type Eligibility struct {
	Allowed           bool
	Reason            string
	ContributionCount int
	Required          int
	RemainingMinutes  int
}

type GovernorService interface {
	CheckEligibility(ctx context.Context, chapterId domain.ChapterId, role domain.Role, contributionCount int, settings domain.SchoolSettings) (Eligibility, error)
	Generate(ctx context.Context, chapterId domain.ChapterId, userId domain.UserId, role domain.Role, settings domain.SchoolSettings) (*domain.UnifiedNotes, *Eligibility, error)
	ListNotes(ctx context.Context, chapterId domain.ChapterId) ([]domain.UnifiedNotes, error)
	GetNotes(ctx context.Context, id domain.NotesId) (domain.UnifiedNotes, error)
}

type GovernorStorage interface {
	GetThread(ctx context.Context, id string) (forum.Thread, error)
	UpdateThread(ctx context.Context, t forum.Thread) error
	GetPost(ctx context.Context, id string) (forum.Post, error)
	ListPosts(ctx context.Context, q forum.PostQuery) ([]forum.Post, error)
	CreatePost(ctx context.Context, p forum.Post) (forum.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// Governor gates AI note generation: contribution threshold, role-based
// cooldown and monotonic version assignment. Generation for one chapter is
// serialized through a per-chapter mutex, so two concurrent requests can
// never pass eligibility together or compute the same version.
type Governor struct {
	storage GovernorStorage
	gen     generator.TextGenerator
	now     func() time.Time

	mu    sync.Mutex
	locks map[domain.ChapterId]*sync.Mutex
}

func NewGovernor(storage GovernorStorage, gen generator.TextGenerator) *Governor {
	return &Governor{
		storage: storage,
		gen:     gen,
		now:     time.Now,
		locks:   make(map[domain.ChapterId]*sync.Mutex),
	}
}

func (g *Governor) chapterLock(chapterId domain.ChapterId) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[chapterId]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[chapterId] = lock
	}
	return lock
}

// CheckEligibility applies the threshold and cooldown rules.
// The threshold check short-circuits: too few contributions is ineligible
// no matter what the cooldown state is.
func (g *Governor) CheckEligibility(ctx context.Context, chapterId domain.ChapterId, role domain.Role, contributionCount int, settings domain.SchoolSettings) (Eligibility, error) {
	if contributionCount < settings.MinContributions {
		return Eligibility{
			Allowed:           false,
			Reason:            fmt.Sprintf("Need at least %d contributions before generating unified notes", settings.MinContributions),
			ContributionCount: contributionCount,
			Required:          settings.MinContributions,
		}, nil
	}

	// admins are exempt from cooldown entirely, not via a zero setting
	if role == domain.RoleAdmin {
		return Eligibility{Allowed: true, ContributionCount: contributionCount}, nil
	}

	last, err := g.lastGeneration(ctx, chapterId)
	if err != nil {
		return Eligibility{}, err
	}
	if last == nil {
		return Eligibility{Allowed: true, ContributionCount: contributionCount}, nil
	}

	cooldownHours := settings.StudentCooldownHours
	if role == domain.RoleTeacher {
		cooldownHours = settings.TeacherCooldownHours
	}

	elapsed := g.now().Sub(last.GeneratedAt)
	cooldown := time.Duration(cooldownHours * float64(time.Hour))
	if elapsed >= cooldown {
		return Eligibility{Allowed: true, ContributionCount: contributionCount}, nil
	}

	remaining := int(math.Ceil((cooldown - elapsed).Minutes()))
	return Eligibility{
		Allowed:           false,
		Reason:            fmt.Sprintf("Try again in %d minutes", remaining),
		ContributionCount: contributionCount,
		RemainingMinutes:  remaining,
	}, nil
}

// Generate runs the full governed operation: re-reads the contribution set
// inside the per-chapter critical section, re-checks eligibility against
// that fresh count, invokes the text generator while holding the lock and
// commits the versioned notes post together with the generation record.
// Either both records are written or neither is.
func (g *Governor) Generate(ctx context.Context, chapterId domain.ChapterId, userId domain.UserId, role domain.Role, settings domain.SchoolSettings) (*domain.UnifiedNotes, *Eligibility, error) {
	lock := g.chapterLock(chapterId)
	lock.Lock()
	defer lock.Unlock()

	thread, err := g.storage.GetThread(ctx, chapterId)
	if err != nil {
		return nil, nil, err
	}
	if thread.Attrs.Type() != forum.TypeChapter {
		return nil, nil, internal_errors.NotFoundError("Chapter")
	}
	chapter := mapper.ChapterFromThread(thread)

	posts, err := g.storage.ListPosts(ctx, forum.PostQuery{ThreadId: chapterId, Type: forum.TypeContribution})
	if err != nil {
		return nil, nil, err
	}
	contributions := make([]domain.Contribution, 0, len(posts))
	for _, p := range posts {
		contributions = append(contributions, mapper.ContributionFromPost(p))
	}

	// the count used for the decision is the count that gets recorded
	eligibility, err := g.CheckEligibility(ctx, chapterId, role, len(contributions), settings)
	if err != nil {
		return nil, nil, err
	}
	if !eligibility.Allowed {
		metrics.RecordGeneration("ineligible")
		return nil, &eligibility, nil
	}

	raw, err := g.gen.Generate(ctx, buildPrompt(chapter, contributions))
	if err != nil {
		metrics.RecordGeneration("failed")
		return nil, nil, err
	}

	version, err := g.nextVersion(ctx, chapterId)
	if err != nil {
		return nil, nil, err
	}

	generatedAt := g.now().UTC().Truncate(time.Second)
	notes := domain.UnifiedNotes{
		ChapterId:         chapterId,
		Version:           version,
		GeneratedBy:       userId,
		GeneratorRole:     role,
		GeneratedAt:       generatedAt,
		ContributionCount: len(contributions),
		Sections:          parseSections(raw),
		RawContent:        raw,
	}

	createdNotes, err := g.storage.CreatePost(ctx, mapper.PostFromNotes(notes))
	if err != nil {
		metrics.RecordGeneration("failed")
		return nil, nil, err
	}
	notes.Id = createdNotes.Id

	record := domain.AIGenerationRecord{
		ChapterId:         chapterId,
		GeneratedBy:       userId,
		GeneratorRole:     role,
		ContributionCount: len(contributions),
		GeneratedAt:       generatedAt,
	}
	if _, err := g.storage.CreatePost(ctx, mapper.PostFromGeneration(record)); err != nil {
		// no orphaned version: roll the notes post back
		if delErr := g.storage.DeletePost(ctx, notes.Id); delErr != nil {
			logger.Log.Error("rollback of notes post failed", "notes", notes.Id, "err", delErr)
		}
		metrics.RecordGeneration("failed")
		return nil, nil, err
	}

	g.markCompiled(ctx, thread)
	metrics.RecordGeneration("generated")
	return &notes, nil, nil
}

func (g *Governor) ListNotes(ctx context.Context, chapterId domain.ChapterId) ([]domain.UnifiedNotes, error) {
	posts, err := g.storage.ListPosts(ctx, forum.PostQuery{ThreadId: chapterId, Type: forum.TypeUnifiedNotes})
	if err != nil {
		return nil, err
	}
	notes := make([]domain.UnifiedNotes, 0, len(posts))
	for _, p := range posts {
		notes = append(notes, mapper.NotesFromPost(p))
	}
	// newest version first
	sort.Slice(notes, func(i, j int) bool { return notes[i].Version > notes[j].Version })
	return notes, nil
}

func (g *Governor) GetNotes(ctx context.Context, id domain.NotesId) (domain.UnifiedNotes, error) {
	post, err := g.storage.GetPost(ctx, id)
	if err != nil {
		return domain.UnifiedNotes{}, err
	}
	if post.Attrs.Type() != forum.TypeUnifiedNotes {
		return domain.UnifiedNotes{}, internal_errors.NotFoundError("Notes")
	}
	return mapper.NotesFromPost(post), nil
}

func (g *Governor) lastGeneration(ctx context.Context, chapterId domain.ChapterId) (*domain.AIGenerationRecord, error) {
	posts, err := g.storage.ListPosts(ctx, forum.PostQuery{ThreadId: chapterId, Type: forum.TypeAiGeneration})
	if err != nil {
		return nil, err
	}
	var last *domain.AIGenerationRecord
	for _, p := range posts {
		record := mapper.GenerationFromPost(p)
		if last == nil || record.GeneratedAt.After(last.GeneratedAt) {
			last = &record
		}
	}
	return last, nil
}

// nextVersion counts the authoritative set of existing notes at write
// time. Callers must hold the chapter lock.
func (g *Governor) nextVersion(ctx context.Context, chapterId domain.ChapterId) (int, error) {
	posts, err := g.storage.ListPosts(ctx, forum.PostQuery{ThreadId: chapterId, Type: forum.TypeUnifiedNotes})
	if err != nil {
		return 0, err
	}
	return len(posts) + 1, nil
}

// markCompiled updates the advisory chapter status. Best effort. Only the
// status attr is touched: tags and attrs written by other components (the
// sandbox flags in particular) must survive the rewrite.
func (g *Governor) markCompiled(ctx context.Context, thread forum.Thread) {
	chapter := mapper.ChapterFromThread(thread)
	if chapter.Status == domain.ChapterCompiled {
		return
	}
	if thread.Attrs == nil {
		thread.Attrs = forum.Attrs{}
	}
	thread.Attrs["status"] = string(domain.ChapterCompiled)
	if err := g.storage.UpdateThread(ctx, thread); err != nil {
		logger.Log.Warn("chapter status update failed", "chapter", chapter.Id, "err", err)
	}
}

func buildPrompt(chapter domain.Chapter, contributions []domain.Contribution) string {
	var b strings.Builder
	b.WriteString("You are compiling unified study notes for the chapter \"")
	b.WriteString(chapter.Title)
	b.WriteString("\" from student contributions.\n")
	b.WriteString("Respond with JSON: {\"overview\": string, \"key_concepts\": [string], \"definitions\": [string], \"formulas\": [string], \"steps\": [string], \"examples\": [string], \"mistakes\": [string], \"resources\": [string], \"revision_list\": [string]}.\n\n")
	for i, c := range contributions {
		fmt.Fprintf(&b, "Contribution %d (%s)", i+1, c.Type)
		if c.Title != "" {
			fmt.Fprintf(&b, ": %s", c.Title)
		}
		b.WriteString("\n")
		b.WriteString(c.Content)
		if c.Link != "" {
			fmt.Fprintf(&b, "\nLink: %s", c.Link)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// parseSections reads the generator's JSON answer; anything unparseable
// lands whole in the overview so a sloppy generator never fails the
// operation.
func parseSections(raw string) domain.NotesSections {
	sections := domain.NotesSections{
		KeyConcepts:  []string{},
		Definitions:  []string{},
		Formulas:     []string{},
		Steps:        []string{},
		Examples:     []string{},
		Mistakes:     []string{},
		Resources:    []string{},
		RevisionList: []string{},
	}

	trimmed := strings.TrimSpace(raw)
	// tolerate markdown code fences around the JSON
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var parsed domain.NotesSections
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		sections.Overview = raw
		return sections
	}
	sections.Overview = parsed.Overview
	if parsed.KeyConcepts != nil {
		sections.KeyConcepts = parsed.KeyConcepts
	}
	if parsed.Definitions != nil {
		sections.Definitions = parsed.Definitions
	}
	if parsed.Formulas != nil {
		sections.Formulas = parsed.Formulas
	}
	if parsed.Steps != nil {
		sections.Steps = parsed.Steps
	}
	if parsed.Examples != nil {
		sections.Examples = parsed.Examples
	}
	if parsed.Mistakes != nil {
		sections.Mistakes = parsed.Mistakes
	}
	if parsed.Resources != nil {
		sections.Resources = parsed.Resources
	}
	if parsed.RevisionList != nil {
		sections.RevisionList = parsed.RevisionList
	}
	return sections
}
