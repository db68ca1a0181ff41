package domain

// User is the identity resolved from the access token.
// Roles are per-school (see Membership), not global.
type User struct {
	Id   UserId
	Name string
}
