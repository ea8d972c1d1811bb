package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-board/internal/domain"
	"github.com/spec-kit/issue-board/internal/repository"
)

func TestUserDirectory(t *testing.T) {
	t.Parallel()

	dir := repository.NewUserDirectory([]domain.User{
		{ID: "1", Name: "John Smith"},
		{ID: "2", Name: "Sarah Johnson"},
		{ID: "1", Name: "Duplicate"},
	})

	users := dir.List()
	require.Len(t, users, 2)
	assert.Equal(t, "John Smith", users[0].Name)

	users[0].Name = "mutated"
	got, ok := dir.GetByID("1")
	require.True(t, ok)
	assert.Equal(t, "John Smith", got.Name)

	_, ok = dir.GetByID("3")
	assert.False(t, ok)
}
