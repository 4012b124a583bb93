package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

func (s Service) Register(ctx context.Context, args RegisterArgs) (*IdentityRecord, error) {
	return RunRegister(ctx, args, s.deps.Register)
}

func (s Service) LoginLocal(ctx context.Context, email, password string) (*IdentityRecord, error) {
	return RunLoginLocal(ctx, email, password, s.deps.Login)
}

func (s Service) LoginSocial(ctx context.Context, social SocialIdentity) (*IdentityRecord, bool, error) {
	return RunLoginSocial(ctx, social, s.deps.Social)
}

func (s Service) ChangePassword(ctx context.Context, id, next string) error {
	return RunChangePassword(ctx, id, next, s.deps.Credential)
}

func (s Service) ChangeEmail(ctx context.Context, oldEmail, newEmail string) error {
	return RunChangeEmail(ctx, oldEmail, newEmail, s.deps.Credential)
}

func (s Service) RequestVerification(ctx context.Context, email string) error {
	return RunRequestVerification(ctx, email, s.deps.Email)
}

func (s Service) VerifyEmail(ctx context.Context, email, token string) error {
	return RunVerifyEmail(ctx, email, token, s.deps.Email)
}

func (s Service) RequestPasswordReset(ctx context.Context, email string) error {
	return RunRequestPasswordReset(ctx, email, s.deps.Reset)
}

func (s Service) RedeemReset(ctx context.Context, email, token string) (string, error) {
	return RunRedeemReset(ctx, email, token, s.deps.Reset)
}

func (s Service) CompleteReset(ctx context.Context, ticket, newPassword string) error {
	return RunCompleteReset(ctx, ticket, newPassword, s.deps.Reset)
}

func (s Service) DeleteIdentity(ctx context.Context, id string) error {
	return RunDeleteIdentity(ctx, id, s.deps.Delete)
}
