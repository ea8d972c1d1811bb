package domain

import "time"

// Comment is an append-only entry in a ticket thread.
type Comment struct {
	ID        string
	Author    User
	Content   string
	CreatedAt time.Time
}
