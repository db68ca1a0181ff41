package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lectern-dev/lectern/shared/api"
	"github.com/lectern-dev/lectern/shared/domain"
	"github.com/lectern-dev/lectern/shared/utils"
)

// chapterMember authorizes the caller as a member of the school that
// transitively owns the chapter.
func (h *Handler) chapterMember(w http.ResponseWriter, r *http.Request, chapterId domain.ChapterId) (*domain.User, *domain.Membership, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return nil, nil, false
	}
	schoolId, err := h.catalog.SchoolForChapter(r.Context(), chapterId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return nil, nil, false
	}
	membership, err := h.memberOf(r.Context(), user.Id, schoolId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return nil, nil, false
	}
	return user, membership, true
}

func (h *Handler) CreateContribution(w http.ResponseWriter, r *http.Request) {
	chapterId := chi.URLParam(r, "chapter")
	user, _, ok := h.chapterMember(w, r, chapterId)
	if !ok {
		return
	}

	var body api.CreateContributionRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	contribution, err := h.contributions.Create(r.Context(), domain.ContributionCreationData{
		ChapterId: chapterId,
		Type:      domain.ContributionType(body.Type),
		Title:     body.Title,
		Content:   body.Content,
		Anonymous: body.Anonymous,
		Link:      body.Link,
		ImageUrl:  body.ImageUrl,
		AuthorId:  user.Id,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, api.ContributionResponse{Contribution: contribution})
}

func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	chapterId := chi.URLParam(r, "chapter")
	if _, _, ok := h.chapterMember(w, r, chapterId); !ok {
		return
	}

	typeFilter := domain.ContributionType(r.URL.Query().Get("type"))
	contributions, err := h.contributions.List(r.Context(), chapterId, typeFilter)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.ContributionListResponse{Contributions: contributions})
}

// helpfulMember authorizes a helpful toggle through the contribution's
// chapter.
func (h *Handler) helpfulMember(w http.ResponseWriter, r *http.Request, contributionId domain.ContributionId) (*domain.User, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	contribution, err := h.contributions.Get(r.Context(), contributionId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return nil, false
	}
	schoolId, err := h.catalog.SchoolForChapter(r.Context(), contribution.ChapterId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return nil, false
	}
	if _, err := h.memberOf(r.Context(), user.Id, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return nil, false
	}
	return user, true
}

func (h *Handler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	contributionId := chi.URLParam(r, "contribution")
	user, ok := h.helpfulMember(w, r, contributionId)
	if !ok {
		return
	}

	count, _, err := h.contributions.MarkHelpful(r.Context(), contributionId, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.HelpfulResponse{HelpfulCount: count, Marked: true})
}

func (h *Handler) UnmarkHelpful(w http.ResponseWriter, r *http.Request) {
	contributionId := chi.URLParam(r, "contribution")
	user, ok := h.helpfulMember(w, r, contributionId)
	if !ok {
		return
	}

	count, _, err := h.contributions.UnmarkHelpful(r.Context(), contributionId, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.HelpfulResponse{HelpfulCount: count, Marked: false})
}
