package handler

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/lectern-dev/lectern/shared/api"
	"github.com/lectern-dev/lectern/shared/domain"
	"github.com/lectern-dev/lectern/shared/logger"
	"github.com/lectern-dev/lectern/shared/utils"
)

func (h *Handler) CreateSchool(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.CreateSchoolRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	school, err := h.school.Create(r.Context(), domain.SchoolCreationData{
		Name:        body.Name,
		Description: body.Description,
		CreatorId:   user.Id,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, api.CreateSchoolResponse{SchoolId: school.Id, JoinKey: school.JoinKey})
}

func (h *Handler) JoinSchool(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.JoinSchoolRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	school, membership, err := h.school.Join(r.Context(), user.Id, body.JoinKey)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.JoinSchoolResponse{SchoolId: school.Id, Name: school.Name, Role: string(membership.Role)})
}

func (h *Handler) ListMySchools(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	memberships, err := h.membership.ListForUser(r.Context(), user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	schools := make([]api.SchoolSummary, 0, len(memberships))
	for schoolId, membership := range memberships {
		school, err := h.school.Get(r.Context(), schoolId)
		if err != nil {
			// a dangling membership is logged and skipped, never a 500
			logger.Log.Warn("membership points at missing school", "school", schoolId, "user", user.Id, "err", err)
			continue
		}
		schools = append(schools, api.SchoolSummary{
			Id:       school.Id,
			Name:     school.Name,
			Role:     string(membership.Role),
			JoinedAt: membership.JoinedAt,
		})
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].Name < schools[j].Name })

	writeJSON(w, api.SchoolListResponse{Schools: schools})
}

func (h *Handler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	schoolId := chi.URLParam(r, "school")
	action := domain.Action(r.URL.Query().Get("action"))
	if action == "" {
		http.Error(w, "action query parameter is required", http.StatusBadRequest)
		return
	}

	membership, err := h.membership.Get(r.Context(), user.Id, schoolId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.PermissionResponse{Allowed: h.permissions.Can(membership, action), UserId: user.Id})
}

func (h *Handler) RegenerateJoinKey(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	schoolId := chi.URLParam(r, "school")

	if _, err := h.authorize(r.Context(), user.Id, schoolId, domain.ActionRegenerateJoinKey); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	joinKey, err := h.school.RegenerateJoinKey(r.Context(), schoolId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.JoinKeyResponse{JoinKey: joinKey})
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	schoolId := chi.URLParam(r, "school")

	if _, err := h.memberOf(r.Context(), user.Id, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	settings, err := h.school.GetSettings(r.Context(), schoolId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.SettingsResponse{
		MinContributions:     settings.MinContributions,
		StudentCooldownHours: settings.StudentCooldownHours,
		TeacherCooldownHours: settings.TeacherCooldownHours,
	})
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	schoolId := chi.URLParam(r, "school")

	if _, err := h.authorize(r.Context(), user.Id, schoolId, domain.ActionChangeAiSettings); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.UpdateSettingsRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	err := h.school.UpdateSettings(r.Context(), domain.SchoolSettings{
		SchoolId:             schoolId,
		MinContributions:     body.MinContributions,
		StudentCooldownHours: body.StudentCooldownHours,
		TeacherCooldownHours: body.TeacherCooldownHours,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	schoolId := chi.URLParam(r, "school")

	if _, err := h.memberOf(r.Context(), user.Id, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	members, err := h.membership.ListForSchool(r.Context(), schoolId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := make([]api.MemberResponse, 0, len(members))
	for _, m := range members {
		response = append(response, api.MemberResponse{UserId: m.UserId, Role: string(m.Role), JoinedAt: m.JoinedAt})
	}
	sort.Slice(response, func(i, j int) bool { return response[i].UserId < response[j].UserId })

	writeJSON(w, api.MemberListResponse{Members: response})
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	schoolId := chi.URLParam(r, "school")
	target := chi.URLParam(r, "user")

	if _, err := h.authorize(r.Context(), user.Id, schoolId, domain.ActionPromoteMembers); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.UpdateMemberRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.membership.UpdateRole(r.Context(), target, schoolId, domain.Role(body.Role)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	schoolId := chi.URLParam(r, "school")
	target := chi.URLParam(r, "user")

	if _, err := h.authorize(r.Context(), user.Id, schoolId, domain.ActionRemoveMembers); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.membership.Remove(r.Context(), target, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
