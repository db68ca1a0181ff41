package handler

import (
	"net/http"

	"github.com/lectern-dev/lectern/shared/api"
	"github.com/lectern-dev/lectern/shared/utils"
)

// EnterSandbox provisions the demo school if needed and enrolls the caller
// as a student.
func (h *Handler) EnterSandbox(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	membership, err := h.sandbox.AutoEnroll(r.Context(), user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.SandboxEnterResponse{SchoolId: membership.SchoolId, Role: string(membership.Role)})
}
