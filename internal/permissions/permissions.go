// Package permissions implements the fixed role/action matrix with the
// sandbox tenant override. Decisions are pure functions of
// (role, schoolId, action); nothing here reads the clock or the store.
package permissions

import (
	"github.com/lectern-dev/lectern/shared/domain"
)

// matrix lists the actions each role gains on top of the previous one.
// student ⊂ teacher ⊂ admin, strictly.
var studentActions = []domain.Action{
	domain.ActionGenerateAiNotes,
}

var teacherActions = append([]domain.Action{
	domain.ActionCreateSubject,
	domain.ActionCreateCourse,
}, studentActions...)

var adminActions = append([]domain.Action{
	domain.ActionOpenAdminDashboard,
	domain.ActionManageMembers,
	domain.ActionChangeAiSettings,
	domain.ActionRegenerateJoinKey,
	domain.ActionPromoteMembers,
	domain.ActionRemoveMembers,
	domain.ActionDeleteSchool,
}, teacherActions...)

var byRole = map[domain.Role]map[domain.Action]bool{
	domain.RoleStudent: toSet(studentActions),
	domain.RoleTeacher: toSet(teacherActions),
	domain.RoleAdmin:   toSet(adminActions),
}

func toSet(actions []domain.Action) map[domain.Action]bool {
	set := make(map[domain.Action]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return set
}

// Engine answers allow/deny questions. The sandbox school id is fixed at
// construction; it is the only tenant-level override that exists.
type Engine struct {
	sandboxSchoolId domain.SchoolId
}

func New(sandboxSchoolId domain.SchoolId) *Engine {
	return &Engine{sandboxSchoolId: sandboxSchoolId}
}

// Can reports whether the membership allows the action. A nil membership
// denies everything. In the sandbox school every action except
// generate_ai_notes is denied regardless of role.
func (e *Engine) Can(membership *domain.Membership, action domain.Action) bool {
	if membership == nil {
		return false
	}
	if e.sandboxSchoolId != "" && membership.SchoolId == e.sandboxSchoolId &&
		action != domain.ActionGenerateAiNotes {
		return false
	}
	allowed, ok := byRole[membership.Role]
	if !ok {
		return false
	}
	return allowed[action]
}
