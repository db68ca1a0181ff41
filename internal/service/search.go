package service

import (
	"context"
	"sort"
	"time"

	"github.com/lectern-dev/lectern/internal/mapper"
	"github.com/lectern-dev/lectern/shared/domain"
	"github.com/lectern-dev/lectern/shared/forum"
	"github.com/lectern-dev/lectern/shared/logger"
)

type SearchHit struct {
	Kind      domain.EntityKind
	Id        string
	Title     string
	Snippet   string
	CreatedAt time.Time

	// set for contribution hits so subtype filters can match
	contributionType domain.ContributionType
}

type SearchResults struct {
	Results []SearchHit
	ByKind  map[domain.EntityKind][]SearchHit
}

type SearchService interface {
	Search(ctx context.Context, query string, tenantId domain.SchoolId, typeFilters []string) (SearchResults, error)
}

type SearchStorage interface {
	Search(ctx context.Context, query string) (forum.SearchResult, error)
}

// Search scopes raw cross-tenant hits down to the requesting school.
// Scoping always runs; type filters only narrow the already-scoped set.
type Search struct {
	storage SearchStorage
	catalog CatalogService
}

func NewSearch(storage SearchStorage, catalog CatalogService) *Search {
	return &Search{storage: storage, catalog: catalog}
}

func (s *Search) Search(ctx context.Context, query string, tenantId domain.SchoolId, typeFilters []string) (SearchResults, error) {
	raw, err := s.storage.Search(ctx, query)
	if err != nil {
		return SearchResults{}, err
	}

	// memoized chapter -> in-scope resolution for this one request
	chapterScope := make(map[domain.ChapterId]bool)
	chapterInScope := func(chapterId domain.ChapterId) bool {
		if chapterId == "" {
			return false
		}
		if in, ok := chapterScope[chapterId]; ok {
			return in
		}
		schoolId, err := s.catalog.SchoolForChapter(ctx, chapterId)
		if err != nil {
			// unresolvable parentage drops the hit, never errors the search
			logger.Log.Debug("search hit with unresolvable chapter", "chapter", chapterId, "err", err)
			chapterScope[chapterId] = false
			return false
		}
		in := schoolId == tenantId
		chapterScope[chapterId] = in
		return in
	}

	subjectInScope := func(schoolId domain.SchoolId) bool { return schoolId == tenantId }

	var hits []SearchHit

	for _, t := range raw.Threads {
		switch t.Attrs.Type() {
		case forum.TypeSchool:
			if t.Id == tenantId {
				school := mapper.SchoolFromThread(t)
				hits = append(hits, SearchHit{Kind: domain.KindSchool, Id: school.Id, Title: school.Name, Snippet: snippet(school.Description), CreatedAt: school.CreatedAt})
			}
		case forum.TypeChapter:
			chapter := mapper.ChapterFromThread(t)
			if chapterInScope(chapter.Id) {
				hits = append(hits, SearchHit{Kind: domain.KindChapter, Id: chapter.Id, Title: chapter.Title, Snippet: chapter.Label, CreatedAt: chapter.CreatedAt})
			}
		}
		// other thread kinds dropped silently
	}

	for _, p := range raw.Posts {
		switch p.Attrs.Type() {
		case forum.TypeSubject:
			subject := mapper.SubjectFromPost(p)
			if subjectInScope(subject.SchoolId) {
				hits = append(hits, SearchHit{Kind: domain.KindSubject, Id: subject.Id, Title: subject.Name, CreatedAt: subject.CreatedAt})
			}
		case forum.TypeCourse:
			course := mapper.CourseFromPost(p)
			schoolId, err := s.catalog.SchoolForCourse(ctx, course.Id)
			if err != nil || schoolId != tenantId {
				continue
			}
			hits = append(hits, SearchHit{Kind: domain.KindCourse, Id: course.Id, Title: course.Code + " " + course.Title, CreatedAt: course.CreatedAt})
		case forum.TypeContribution:
			contribution := mapper.ContributionFromPost(p)
			if chapterInScope(contribution.ChapterId) {
				hits = append(hits, SearchHit{Kind: domain.KindContribution, Id: contribution.Id, Title: contribution.Title, Snippet: snippet(contribution.Content), CreatedAt: contribution.CreatedAt, contributionType: contribution.Type})
			}
		case forum.TypeUnifiedNotes:
			notes := mapper.NotesFromPost(p)
			if chapterInScope(notes.ChapterId) {
				hits = append(hits, SearchHit{Kind: domain.KindUnifiedNotes, Id: notes.Id, Title: "Unified notes", Snippet: snippet(notes.Sections.Overview), CreatedAt: notes.GeneratedAt})
			}
		}
		// membership, generation and settings records never surface in search
	}

	hits = applyFilters(hits, typeFilters)

	sort.Slice(hits, func(i, j int) bool { return hits[i].CreatedAt.After(hits[j].CreatedAt) })

	byKind := make(map[domain.EntityKind][]SearchHit)
	for _, h := range hits {
		byKind[h.Kind] = append(byKind[h.Kind], h)
	}
	return SearchResults{Results: hits, ByKind: byKind}, nil
}

// applyFilters runs after scoping. An empty filter list means all kinds,
// never "no results". Filters may name entity kinds or contribution types.
func applyFilters(hits []SearchHit, filters []string) []SearchHit {
	if len(filters) == 0 {
		return hits
	}
	allowed := make(map[string]bool, len(filters))
	for _, f := range filters {
		allowed[f] = true
	}
	out := make([]SearchHit, 0, len(hits))
	for _, h := range hits {
		if allowed[string(h.Kind)] {
			out = append(out, h)
			continue
		}
		if h.Kind == domain.KindContribution && allowed[string(h.contributionType)] {
			out = append(out, h)
		}
	}
	return out
}

const snippetLen = 160

func snippet(s string) string {
	if len(s) <= snippetLen {
		return s
	}
	// cut on a rune boundary so multibyte text stays valid UTF-8
	runes := []rune(s)
	if len(runes) <= snippetLen {
		return s
	}
	return string(runes[:snippetLen]) + "…"
}
