package users

import "context"

type actorContextKey struct{}

// ContextWithActor stores the authenticated user in the request context.
func ContextWithActor(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, actorContextKey{}, user)
}

// ActorFromContext extracts the authenticated user from the context.
func ActorFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(actorContextKey{}).(*User)
	return user
}
