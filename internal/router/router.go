package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lectern-dev/lectern/internal/setup"
	mw "github.com/lectern-dev/lectern/shared/middleware"
	"github.com/lectern-dev/lectern/shared/middleware/metrics"
	"github.com/lectern-dev/lectern/shared/middleware/ratelimiter"
)

func SetupRouter(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware)
	r.Use(mw.GlobalRateLimit(ratelimiter.Rps100()))

	h := deps.Handler

	// Public routes
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.NeedAuth())
		r.Use(mw.RateLimit(ratelimiter.Rps10(), mw.GetUserIDFromContext))

		r.Post("/v1/schools", h.CreateSchool)
		r.Get("/v1/schools", h.ListMySchools)
		r.Post("/v1/schools/join", h.JoinSchool)
		r.Get("/v1/schools/{school}/permissions", h.CheckPermission)
		r.Post("/v1/schools/{school}/join_key", h.RegenerateJoinKey)
		r.Get("/v1/schools/{school}/settings", h.GetSettings)
		r.Put("/v1/schools/{school}/settings", h.UpdateSettings)
		r.Get("/v1/schools/{school}/members", h.ListMembers)
		r.Put("/v1/schools/{school}/members/{user}", h.UpdateMember)
		r.Delete("/v1/schools/{school}/members/{user}", h.RemoveMember)

		r.Post("/v1/schools/{school}/subjects", h.CreateSubject)
		r.Get("/v1/schools/{school}/subjects", h.ListSubjects)
		r.Post("/v1/subjects/{subject}/courses", h.CreateCourse)
		r.Get("/v1/subjects/{subject}/courses", h.ListCourses)
		r.Post("/v1/courses/{course}/chapters", h.CreateChapter)
		r.Get("/v1/courses/{course}/chapters", h.ListChapters)
		r.Get("/v1/chapters/{chapter}", h.GetChapter)

		r.Post("/v1/chapters/{chapter}/contributions", h.CreateContribution)
		r.Get("/v1/chapters/{chapter}/contributions", h.ListContributions)
		r.Post("/v1/contributions/{contribution}/helpful", h.MarkHelpful)
		r.Delete("/v1/contributions/{contribution}/helpful", h.UnmarkHelpful)

		// Generation is expensive; on top of the governor's cooldown each
		// user gets at most one attempt per second.
		r.With(mw.RateLimit(ratelimiter.OnceInSecond(), mw.GetUserIDFromContext)).
			Post("/v1/chapters/{chapter}/notes", h.GenerateNotes)
		r.Get("/v1/chapters/{chapter}/notes", h.ListNotes)
		r.Get("/v1/notes/{notes}/html", h.NotesHtml)

		r.Get("/v1/search", h.Search)
		r.Post("/v1/sandbox/enter", h.EnterSandbox)
	})

	return r
}
