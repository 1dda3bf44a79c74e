package services

import (
	"context"

	"nba-predictions-go/models"
)

type userContextKey struct{}

// ContextWithUser attaches the authenticated user to ctx
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// CurrentUser returns the user attached to ctx, or nil when signed out
func CurrentUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userContextKey{}).(*models.User); ok {
		return user
	}
	return nil
}

// ContextSession reads the session user from the request context populated
// by the auth middleware
type ContextSession struct{}

// CurrentUser implements interfaces.AuthSession
func (ContextSession) CurrentUser(ctx context.Context) *models.User {
	return CurrentUser(ctx)
}
