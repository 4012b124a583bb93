package middleware

import (
	"context"

	"github.com/authcore-io/authcore/session"
)

type sessionContextKey struct{}

// SessionFromContext returns the session attached by [Sessions].
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess, ok
}

func withSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}
