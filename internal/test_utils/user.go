package test_utils

import (
	"context"

	"github.com/g3tech/donation-engine/pkg/user"
	"github.com/google/uuid"
)

// NewTestUser returns a user with a random uid so tests sharing a database do not see each other's lists.
func NewTestUser() user.User {
	return user.User{Uid: uuid.NewString()}
}

// ContextWithTestUser returns a context carrying a fresh test user together with that user.
func ContextWithTestUser(ctx context.Context) (context.Context, user.User) {
	u := NewTestUser()
	return user.WithUser(ctx, u), u
}
