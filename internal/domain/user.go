package domain

// User is a board participant. Users are registered once at startup and never change.
type User struct {
	ID     string
	Name   string
	Email  string
	Avatar string
}
