package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/lectern-dev/lectern/internal/permissions"
	"github.com/lectern-dev/lectern/internal/render"
	"github.com/lectern-dev/lectern/internal/service"
	"github.com/lectern-dev/lectern/shared/config"
	"github.com/lectern-dev/lectern/shared/domain"
	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	mw "github.com/lectern-dev/lectern/shared/middleware"
)

type Handler struct {
	school        service.SchoolService
	membership    service.MembershipService
	catalog       service.CatalogService
	contributions service.ContributionService
	governor      service.GovernorService
	search        service.SearchService
	sandbox       service.SandboxService
	permissions   *permissions.Engine
	renderer      *render.NotesRenderer
	cfg           *config.Config
}

func New(
	school service.SchoolService,
	membership service.MembershipService,
	catalog service.CatalogService,
	contributions service.ContributionService,
	governor service.GovernorService,
	search service.SearchService,
	sandbox service.SandboxService,
	permissions *permissions.Engine,
	cfg *config.Config,
) *Handler {
	return &Handler{
		school:        school,
		membership:    membership,
		catalog:       catalog,
		contributions: contributions,
		governor:      governor,
		search:        search,
		sandbox:       sandbox,
		permissions:   permissions,
		renderer:      render.New(),
		cfg:           cfg,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Print(err.Error())
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
}

// requireUser returns the authenticated user or writes a 401. Routes are
// mounted behind NeedAuth, so a nil user here means a wiring mistake
// rather than a missing token; the response is the same either way.
func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

// memberOf resolves the caller's membership in a school; a non-member gets
// the same generic Forbidden as a member without the needed action.
func (h *Handler) memberOf(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId) (*domain.Membership, error) {
	membership, err := h.membership.Get(ctx, userId, schoolId)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, internal_errors.Forbidden()
	}
	return membership, nil
}

// authorize checks the action against the caller's membership. Denials are
// never explained: no distinction between non-member, insufficient role and
// sandbox override.
func (h *Handler) authorize(ctx context.Context, userId domain.UserId, schoolId domain.SchoolId, action domain.Action) (*domain.Membership, error) {
	membership, err := h.membership.Get(ctx, userId, schoolId)
	if err != nil {
		return nil, err
	}
	if !h.permissions.Can(membership, action) {
		return nil, internal_errors.Forbidden()
	}
	return membership, nil
}
