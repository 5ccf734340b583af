package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelter-caller/internal/model"
)

func TestUserRepo_CreateWithRoles(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	n, err := repo.User.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	roles, err := repo.User.EnsureRoles(ctx, []string{model.RoleAdmin, model.RoleVisitor})
	require.NoError(t, err)
	require.Len(t, roles, 2)

	// 再次调用不重复创建
	again, err := repo.User.EnsureRoles(ctx, []string{model.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, roles[0].ID, again[0].ID)

	u := &model.User{Username: "admin", PasswordHash: "hash", Roles: roles}
	require.NoError(t, repo.User.Create(ctx, u))

	got, err := repo.User.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"admin", "visitor"}, got.RoleNames())

	err = repo.User.Create(ctx, &model.User{Username: "admin", PasswordHash: "x"})
	assert.True(t, errors.Is(err, ErrDuplicate))
}
