package models

// User is the stored shape of a user record. The HTTP layer maps it onto its
// own wire type, so it carries no serialization tags.
type User struct {
	ID       int64
	Username string
}
