package identity

import "context"

type ctxKey string

const (
	userContextKey    ctxKey = "taskdesk.identity.user"
	sessionContextKey ctxKey = "taskdesk.identity.session"
)

// ContextWithUser attaches the resolved user to a request context.
func ContextWithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

func contextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userContextKey).(User)
	return u, ok
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(Session)
	return s, ok
}
