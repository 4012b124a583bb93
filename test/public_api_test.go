package test

import (
	"context"
	"net/http"
	"testing"

	authcore "github.com/authcore-io/authcore"
	"github.com/authcore-io/authcore/middleware"
	"github.com/authcore-io/authcore/session"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = authcore.New
	_ = authcore.DefaultConfig

	var _ *authcore.Engine
	var _ authcore.Config
	var _ authcore.Identity
	var _ authcore.Profile
	var _ authcore.SocialProfile
	var _ authcore.IdentityStore
	var _ authcore.ProfileStore
	var _ authcore.AtomicStore
	var _ authcore.Notifier
	var _ authcore.SocialProvider
	var _ authcore.AuditSink
	var _ authcore.AuditEvent
	var _ authcore.MetricsSnapshot

	var _ error = authcore.ErrNotFound
	var _ error = authcore.ErrConflict
	var _ error = authcore.ErrBadCredentials
	var _ error = authcore.ErrForbidden
	var _ error = authcore.ErrLinkExpired
	var _ error = authcore.ErrUnauthorized
	var _ error = authcore.ErrValidation
	var _ error = authcore.ErrRateLimited
	var _ error = authcore.ErrInternal
	var _ error = authcore.ErrDuplicateEmail
	var _ error = authcore.ErrStoreNotFound

	var _ func(*authcore.Engine, middleware.Config) func(http.Handler) http.Handler = middleware.Sessions
	var _ func(middleware.Config) func(http.Handler) http.Handler = middleware.Guard
	var _ func(http.Handler) http.Handler = middleware.RequireAuth

	var _ func(*authcore.Engine, context.Context, string, string, string) (*authcore.Identity, error) = (*authcore.Engine).Register
	var _ func(*authcore.Engine, context.Context, string, string) (*authcore.Identity, error) = (*authcore.Engine).LoginLocal
	var _ func(*authcore.Engine, context.Context, string, string) (*authcore.Identity, error) = (*authcore.Engine).LoginSocial
	var _ func(*authcore.Engine, context.Context, string) error = (*authcore.Engine).RequestEmailVerification
	var _ func(*authcore.Engine, context.Context, string, string) error = (*authcore.Engine).VerifyEmail
	var _ func(*authcore.Engine, context.Context, string) error = (*authcore.Engine).RequestPasswordReset
	var _ func(*authcore.Engine, context.Context, string, string) (string, error) = (*authcore.Engine).RedeemPasswordReset
	var _ func(*authcore.Engine, context.Context, string, string) error = (*authcore.Engine).CompletePasswordReset
	var _ func(*authcore.Engine, context.Context, string, *authcore.Identity) (*session.Session, error) = (*authcore.Engine).EstablishSession
	var _ func(*authcore.Engine, context.Context, string) error = (*authcore.Engine).Logout
	var _ func(*authcore.Engine, context.Context, int) (int, error) = (*authcore.Engine).RunCleanup
}
