package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lectern-dev/lectern/shared/api"
	"github.com/lectern-dev/lectern/shared/domain"
	"github.com/lectern-dev/lectern/shared/utils"
)

func notesResponse(n domain.UnifiedNotes) api.NotesResponse {
	return api.NotesResponse{
		Id:                n.Id,
		Version:           n.Version,
		GeneratedBy:       n.GeneratedBy,
		GeneratorRole:     string(n.GeneratorRole),
		GeneratedAt:       n.GeneratedAt,
		ContributionCount: n.ContributionCount,
		Sections:          n.Sections,
	}
}

// GenerateNotes runs the governed generation. An ineligible request is a
// domain outcome, not an error: the client gets a 200 with the structured
// rejection so it can render the reason.
func (h *Handler) GenerateNotes(w http.ResponseWriter, r *http.Request) {
	chapterId := chi.URLParam(r, "chapter")
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	schoolId, err := h.catalog.SchoolForChapter(r.Context(), chapterId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	membership, err := h.authorize(r.Context(), user.Id, schoolId, domain.ActionGenerateAiNotes)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	settings, err := h.school.GetSettings(r.Context(), schoolId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	notes, rejection, err := h.governor.Generate(r.Context(), chapterId, user.Id, membership.Role, settings)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if rejection != nil {
		writeJSON(w, api.GenerateNotesResponse{
			Generated: false,
			Rejection: &api.RejectionResponse{
				Reason:            rejection.Reason,
				ContributionCount: rejection.ContributionCount,
				Required:          rejection.Required,
				RemainingMinutes:  rejection.RemainingMinutes,
			},
		})
		return
	}

	response := notesResponse(*notes)
	writeJSON(w, api.GenerateNotesResponse{Generated: true, Notes: &response})
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	chapterId := chi.URLParam(r, "chapter")
	if _, _, ok := h.chapterMember(w, r, chapterId); !ok {
		return
	}

	notes, err := h.governor.ListNotes(r.Context(), chapterId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := make([]api.NotesResponse, 0, len(notes))
	for _, n := range notes {
		response = append(response, notesResponse(n))
	}
	writeJSON(w, api.NotesListResponse{Notes: response})
}

func (h *Handler) NotesHtml(w http.ResponseWriter, r *http.Request) {
	notesId := chi.URLParam(r, "notes")
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	notes, err := h.governor.GetNotes(r.Context(), notesId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	schoolId, err := h.catalog.SchoolForChapter(r.Context(), notes.ChapterId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if _, err := h.memberOf(r.Context(), user.Id, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	html, err := h.renderer.Render(notes)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
