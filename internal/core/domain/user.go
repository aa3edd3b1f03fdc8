package domain

// User is the remote api account behind a console session.
type User struct {
	ID       int64
	Username string
	Email    string
	FullName string
	IsActive bool
}
