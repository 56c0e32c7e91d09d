package userctx

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// User is the authenticated identity attached to a request.
type User struct {
	ID       uuid.UUID
	Username string
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func GetUser(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey).(User)
	return user, ok
}
