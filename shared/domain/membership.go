package domain

import "time"

// Membership ties a user to a school with a role.
// At most one record may exist per (UserId, SchoolId); adding a second
// is a conflict (see service.Membership).
type Membership struct {
	UserId   UserId
	SchoolId SchoolId
	Role     Role
	JoinedAt time.Time
}
