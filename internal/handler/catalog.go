package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lectern-dev/lectern/shared/api"
	"github.com/lectern-dev/lectern/shared/domain"
	"github.com/lectern-dev/lectern/shared/utils"
)

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	schoolId := chi.URLParam(r, "school")

	if _, err := h.authorize(r.Context(), user.Id, schoolId, domain.ActionCreateSubject); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.CreateSubjectRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	subject, err := h.catalog.CreateSubject(r.Context(), schoolId, body.Name, body.ColorTag)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, api.SubjectResponse{Subject: subject})
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	schoolId := chi.URLParam(r, "school")

	if _, err := h.memberOf(r.Context(), user.Id, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	subjects, err := h.catalog.ListSubjects(r.Context(), schoolId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.SubjectListResponse{Subjects: subjects})
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	subjectId := chi.URLParam(r, "subject")

	schoolId, err := h.catalog.SchoolForSubject(r.Context(), subjectId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if _, err := h.authorize(r.Context(), user.Id, schoolId, domain.ActionCreateCourse); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.CreateCourseRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	course, err := h.catalog.CreateCourse(r.Context(), subjectId, body.Code, body.Title, body.Teacher, body.Term)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, api.CourseResponse{Course: course})
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	subjectId := chi.URLParam(r, "subject")

	schoolId, err := h.catalog.SchoolForSubject(r.Context(), subjectId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if _, err := h.memberOf(r.Context(), user.Id, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	courses, err := h.catalog.ListCourses(r.Context(), subjectId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.CourseListResponse{Courses: courses})
}

// Chapter creation is course-level content management, so it shares the
// create_course action.
func (h *Handler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseId := chi.URLParam(r, "course")

	schoolId, err := h.catalog.SchoolForCourse(r.Context(), courseId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if _, err := h.authorize(r.Context(), user.Id, schoolId, domain.ActionCreateCourse); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.CreateChapterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	chapter, err := h.catalog.CreateChapter(r.Context(), domain.ChapterCreationData{
		CourseId: courseId,
		Label:    body.Label,
		Title:    body.Title,
		Creator:  user.Id,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, api.ChapterResponse{Chapter: chapter})
}

func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseId := chi.URLParam(r, "course")

	schoolId, err := h.catalog.SchoolForCourse(r.Context(), courseId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if _, err := h.memberOf(r.Context(), user.Id, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	chapters, err := h.catalog.ListChapters(r.Context(), courseId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.ChapterListResponse{Chapters: chapters})
}

func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	chapterId := chi.URLParam(r, "chapter")

	schoolId, err := h.catalog.SchoolForChapter(r.Context(), chapterId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if _, err := h.memberOf(r.Context(), user.Id, schoolId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	chapter, err := h.catalog.GetChapter(r.Context(), chapterId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.ChapterResponse{Chapter: chapter})
}
