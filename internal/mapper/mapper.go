// Package mapper imposes the typed domain model on generic forum records.
// Decoding is total: malformed or unknown records yield (nil, false) or a
// best-effort entity with defaults, never an error. Encoding always sets the
// "type" discriminator and writes every field its entity requires.
package mapper

import (
	"encoding/json"
	"time"

	"github.com/lectern-dev/lectern/shared/domain"
	"github.com/lectern-dev/lectern/shared/forum"
)

// FromThread maps a thread record to its domain entity.
// Threads host container-like entities only: schools and chapters.
func FromThread(t forum.Thread) (domain.Entity, bool) {
	switch t.Attrs.Type() {
	case forum.TypeSchool:
		return SchoolFromThread(t), true
	case forum.TypeChapter:
		return ChapterFromThread(t), true
	}
	return nil, false
}

// FromPost maps a post record to its domain entity.
func FromPost(p forum.Post) (domain.Entity, bool) {
	switch p.Attrs.Type() {
	case forum.TypeSubject:
		return SubjectFromPost(p), true
	case forum.TypeCourse:
		return CourseFromPost(p), true
	case forum.TypeContribution:
		return ContributionFromPost(p), true
	case forum.TypeUnifiedNotes:
		return NotesFromPost(p), true
	case forum.TypeMembership:
		return MembershipFromPost(p), true
	case forum.TypeAiGeneration:
		return GenerationFromPost(p), true
	case forum.TypeSchoolSettings:
		return SettingsFromPost(p), true
	}
	return nil, false
}

func SchoolFromThread(t forum.Thread) domain.School {
	b := newBag(t.Attrs, t.Body)
	return domain.School{
		Id:          t.Id,
		Name:        b.str("name", t.Title),
		Description: b.str("description", ""),
		JoinKey:     b.str("join_key", ""),
		OwnerId:     t.OwnerId,
		Sandbox:     b.boolean("sandbox", false),
		CreatedAt:   t.CreatedAt,
	}
}

func ChapterFromThread(t forum.Thread) domain.Chapter {
	b := newBag(t.Attrs, t.Body)
	status := domain.ChapterStatus(b.str("status", string(domain.ChapterCollecting)))
	switch status {
	case domain.ChapterCollecting, domain.ChapterAiReady, domain.ChapterCompiled:
	default:
		status = domain.ChapterCollecting
	}
	return domain.Chapter{
		Id:        t.Id,
		CourseId:  b.str("course_id", ""),
		Label:     b.str("label", ""),
		Title:     b.str("title", t.Title),
		Status:    status,
		CreatedAt: t.CreatedAt,
	}
}

func SubjectFromPost(p forum.Post) domain.Subject {
	b := newBag(p.Attrs, p.Body)
	return domain.Subject{
		Id:        p.Id,
		SchoolId:  b.str("school_id", p.ThreadId),
		Name:      b.str("name", p.Body),
		ColorTag:  b.str("color_tag", ""),
		CreatedAt: p.CreatedAt,
	}
}

func CourseFromPost(p forum.Post) domain.Course {
	b := newBag(p.Attrs, p.Body)
	return domain.Course{
		Id:        p.Id,
		SubjectId: b.str("subject_id", ""),
		Code:      b.str("code", ""),
		Title:     b.str("title", ""),
		Teacher:   b.str("teacher", ""),
		Term:      b.str("term", ""),
		CreatedAt: p.CreatedAt,
	}
}

func ContributionFromPost(p forum.Post) domain.Contribution {
	b := newBag(p.Attrs, p.Body)
	ctype := domain.ContributionType(b.str("contribution_type", string(domain.ContributionTakeaway)))
	if !ctype.Valid() {
		ctype = domain.ContributionTakeaway
	}
	content := b.str("content", "")
	if content == "" {
		// raw-text tier: a body that is not structured still counts as content
		content = p.Body
	}
	count := p.HelpfulCount
	if count < 0 {
		count = 0
	}
	return domain.Contribution{
		Id:           p.Id,
		ChapterId:    b.str("chapter_id", p.ThreadId),
		Type:         ctype,
		Title:        b.str("title", ""),
		Content:      content,
		Anonymous:    b.boolean("anonymous", false),
		AuthorId:     b.str("author_id", p.OwnerId),
		HelpfulCount: count,
		Link:         b.str("link", ""),
		ImageUrl:     b.str("image_url", ""),
		CreatedAt:    p.CreatedAt,
	}
}

func NotesFromPost(p forum.Post) domain.UnifiedNotes {
	b := newBag(p.Attrs, p.Body)
	version := b.integer("version", 1)
	if version < 1 {
		version = 1
	}
	role := domain.Role(b.str("generator_role", string(domain.RoleStudent)))
	if !role.Valid() {
		role = domain.RoleStudent
	}
	raw := b.str("content", "")
	if raw == "" {
		raw = p.Body
	}
	return domain.UnifiedNotes{
		Id:                p.Id,
		ChapterId:         b.str("chapter_id", p.ThreadId),
		Version:           version,
		GeneratedBy:       b.str("generated_by", p.OwnerId),
		GeneratorRole:     role,
		GeneratedAt:       b.timestamp("generated_at", p.CreatedAt),
		ContributionCount: b.integer("contribution_count", 0),
		Sections:          sectionsFrom(b, raw),
		RawContent:        raw,
	}
}

func MembershipFromPost(p forum.Post) domain.Membership {
	b := newBag(p.Attrs, p.Body)
	role := domain.Role(b.str("role", string(domain.RoleStudent)))
	if !role.Valid() {
		role = domain.RoleStudent
	}
	return domain.Membership{
		UserId:   b.str("user_id", p.OwnerId),
		SchoolId: b.str("school_id", p.ThreadId),
		Role:     role,
		JoinedAt: b.timestamp("joined_at", p.CreatedAt),
	}
}

func GenerationFromPost(p forum.Post) domain.AIGenerationRecord {
	b := newBag(p.Attrs, p.Body)
	role := domain.Role(b.str("generator_role", string(domain.RoleStudent)))
	if !role.Valid() {
		role = domain.RoleStudent
	}
	return domain.AIGenerationRecord{
		ChapterId:         b.str("chapter_id", p.ThreadId),
		GeneratedBy:       b.str("generated_by", p.OwnerId),
		GeneratorRole:     role,
		ContributionCount: b.integer("contribution_count", 0),
		GeneratedAt:       b.timestamp("generated_at", p.CreatedAt),
	}
}

func SettingsFromPost(p forum.Post) domain.SchoolSettings {
	b := newBag(p.Attrs, p.Body)
	defaults := domain.DefaultSettings(b.str("school_id", p.ThreadId))
	s := domain.SchoolSettings{
		SchoolId:             defaults.SchoolId,
		MinContributions:     b.integer("min_contributions", defaults.MinContributions),
		StudentCooldownHours: b.float("student_cooldown_hours", defaults.StudentCooldownHours),
		TeacherCooldownHours: b.float("teacher_cooldown_hours", defaults.TeacherCooldownHours),
	}
	if s.MinContributions < 1 {
		s.MinContributions = defaults.MinContributions
	}
	if s.StudentCooldownHours < 0 {
		s.StudentCooldownHours = defaults.StudentCooldownHours
	}
	if s.TeacherCooldownHours < 0 {
		s.TeacherCooldownHours = defaults.TeacherCooldownHours
	}
	return s
}

func sectionsFrom(b bag, raw string) domain.NotesSections {
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
	if m, ok := b.object("sections"); ok {
		sb := bag{attrs: forum.Attrs(m)}
		sections.Overview = sb.str("overview", "")
		sections.KeyConcepts = sb.strings("key_concepts")
		sections.Definitions = sb.strings("definitions")
		sections.Formulas = sb.strings("formulas")
		sections.Steps = sb.strings("steps")
		sections.Examples = sb.strings("examples")
		sections.Mistakes = sb.strings("mistakes")
		sections.Resources = sb.strings("resources")
		sections.RevisionList = sb.strings("revision_list")
		return sections
	}
	sections.Overview = raw
	return sections
}

// Encoders. Each one is the structural inverse of its decoder: the
// discriminator is always set and no required field is dropped.

func ThreadFromSchool(s domain.School) forum.Thread {
	tags := []string{forum.TypeSchool}
	if s.Sandbox {
		tags = append(tags, "sandbox")
	}
	return forum.Thread{
		Id:        s.Id,
		Title:     s.Name,
		Body:      s.Description,
		OwnerId:   s.OwnerId,
		CreatedAt: s.CreatedAt,
		Tags:      tags,
		Attrs: forum.Attrs{
			"type":        forum.TypeSchool,
			"name":        s.Name,
			"description": s.Description,
			"join_key":    s.JoinKey,
			"sandbox":     s.Sandbox,
		},
	}
}

func ThreadFromChapter(c domain.Chapter) forum.Thread {
	return forum.Thread{
		Id:        c.Id,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		Tags:      []string{forum.TypeChapter},
		Attrs: forum.Attrs{
			"type":      forum.TypeChapter,
			"course_id": c.CourseId,
			"label":     c.Label,
			"title":     c.Title,
			"status":    string(c.Status),
		},
	}
}

func PostFromSubject(s domain.Subject) forum.Post {
	return forum.Post{
		Id:        s.Id,
		ThreadId:  s.SchoolId,
		Body:      s.Name,
		CreatedAt: s.CreatedAt,
		Tags:      []string{forum.TypeSubject},
		Attrs: forum.Attrs{
			"type":      forum.TypeSubject,
			"school_id": s.SchoolId,
			"name":      s.Name,
			"color_tag": s.ColorTag,
		},
	}
}

func PostFromCourse(c domain.Course, schoolId domain.SchoolId) forum.Post {
	return forum.Post{
		Id:        c.Id,
		ThreadId:  schoolId,
		Body:      c.Code + " " + c.Title,
		CreatedAt: c.CreatedAt,
		Tags:      []string{forum.TypeCourse},
		Attrs: forum.Attrs{
			"type":       forum.TypeCourse,
			"subject_id": c.SubjectId,
			"code":       c.Code,
			"title":      c.Title,
			"teacher":    c.Teacher,
			"term":       c.Term,
		},
	}
}

func PostFromContribution(c domain.Contribution) forum.Post {
	return forum.Post{
		Id:           c.Id,
		ThreadId:     c.ChapterId,
		OwnerId:      c.AuthorId,
		Body:         c.Content,
		CreatedAt:    c.CreatedAt,
		HelpfulCount: c.HelpfulCount,
		Tags:         []string{forum.TypeContribution},
		Attrs: forum.Attrs{
			"type":              forum.TypeContribution,
			"chapter_id":        c.ChapterId,
			"contribution_type": string(c.Type),
			"title":             c.Title,
			"content":           c.Content,
			"anonymous":         c.Anonymous,
			"author_id":         c.AuthorId,
			"link":              c.Link,
			"image_url":         c.ImageUrl,
		},
	}
}

func PostFromNotes(n domain.UnifiedNotes) forum.Post {
	return forum.Post{
		Id:        n.Id,
		ThreadId:  n.ChapterId,
		OwnerId:   n.GeneratedBy,
		Body:      n.RawContent,
		CreatedAt: n.GeneratedAt,
		Tags:      []string{forum.TypeUnifiedNotes},
		Attrs: forum.Attrs{
			"type":               forum.TypeUnifiedNotes,
			"chapter_id":         n.ChapterId,
			"version":            n.Version,
			"generated_by":       n.GeneratedBy,
			"generator_role":     string(n.GeneratorRole),
			"generated_at":       n.GeneratedAt.UTC().Format(time.RFC3339),
			"contribution_count": n.ContributionCount,
			"content":            n.RawContent,
			"sections":           sectionsToMap(n.Sections),
		},
	}
}

func PostFromMembership(m domain.Membership) forum.Post {
	return forum.Post{
		ThreadId:  m.SchoolId,
		OwnerId:   m.UserId,
		CreatedAt: m.JoinedAt,
		Tags:      []string{forum.TypeMembership},
		Attrs: forum.Attrs{
			"type":      forum.TypeMembership,
			"user_id":   m.UserId,
			"school_id": m.SchoolId,
			"role":      string(m.Role),
			"joined_at": m.JoinedAt.UTC().Format(time.RFC3339),
		},
	}
}

func PostFromGeneration(g domain.AIGenerationRecord) forum.Post {
	return forum.Post{
		ThreadId:  g.ChapterId,
		OwnerId:   g.GeneratedBy,
		CreatedAt: g.GeneratedAt,
		Tags:      []string{forum.TypeAiGeneration},
		Attrs: forum.Attrs{
			"type":               forum.TypeAiGeneration,
			"chapter_id":         g.ChapterId,
			"generated_by":       g.GeneratedBy,
			"generator_role":     string(g.GeneratorRole),
			"contribution_count": g.ContributionCount,
			"generated_at":       g.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}
}

func PostFromSettings(s domain.SchoolSettings) forum.Post {
	return forum.Post{
		ThreadId: s.SchoolId,
		Tags:     []string{forum.TypeSchoolSettings},
		Attrs: forum.Attrs{
			"type":                   forum.TypeSchoolSettings,
			"school_id":              s.SchoolId,
			"min_contributions":      s.MinContributions,
			"student_cooldown_hours": s.StudentCooldownHours,
			"teacher_cooldown_hours": s.TeacherCooldownHours,
		},
	}
}

func sectionsToMap(s domain.NotesSections) map[string]any {
	// round-trip through json keeps the map shape identical to what the
	// decoder expects
	raw, err := json.Marshal(s)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}
