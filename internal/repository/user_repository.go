package repository

import (
	"github.com/spec-kit/issue-board/internal/domain"
)

// UserDirectory is the static registry of board participants.
type UserDirectory interface {
	List() []domain.User
	GetByID(id string) (domain.User, bool)
}

type userDirectory struct {
	users []domain.User
	byID  map[string]int
}

// NewUserDirectory builds a directory; later entries with a duplicate id are ignored.
func NewUserDirectory(users []domain.User) UserDirectory {
	dir := &userDirectory{byID: make(map[string]int, len(users))}
	for _, user := range users {
		if _, exists := dir.byID[user.ID]; exists {
			continue
		}
		dir.byID[user.ID] = len(dir.users)
		dir.users = append(dir.users, user)
	}
	return dir
}

func (d *userDirectory) List() []domain.User {
	out := make([]domain.User, len(d.users))
	copy(out, d.users)
	return out
}

func (d *userDirectory) GetByID(id string) (domain.User, bool) {
	idx, ok := d.byID[id]
	if !ok {
		return domain.User{}, false
	}
	return d.users[idx], true
}
