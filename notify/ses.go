package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the slice of the SES v2 client the mailer uses. Tests substitute
// a recording fake.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Config tunes the SES mailer.
type Config struct {
	// Sender is the verified From address.
	Sender string
	// BaseURL is the public origin links are built against, for example
	// "https://example.com".
	BaseURL string
	// VerifyPath and ResetPath are the link paths the token and email are
	// appended to as query parameters.
	VerifyPath string
	ResetPath  string
}

// SESMailer sends verification and reset email through Amazon SES.
type SESMailer struct {
	config Config
	client sesAPI
}

// NewSESMailer loads the ambient AWS configuration chain and returns a
// mailer ready to send.
func NewSESMailer(ctx context.Context, cfg Config) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("notify: load aws config: %w", err)
	}
	return newSESMailer(cfg, sesv2.NewFromConfig(awsCfg))
}

func newSESMailer(cfg Config, client sesAPI) (*SESMailer, error) {
	if cfg.Sender == "" {
		return nil, errors.New("notify: sender address required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("notify: base URL required")
	}
	if cfg.VerifyPath == "" {
		cfg.VerifyPath = "/auth/verifyEmail"
	}
	if cfg.ResetPath == "" {
		cfg.ResetPath = "/auth/resetPassword"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &SESMailer{config: cfg, client: client}, nil
}

// SendVerification mails the email-verification link.
func (m *SESMailer) SendVerification(ctx context.Context, email, token string) error {
	link := m.link(m.config.VerifyPath, email, token)
	return m.send(ctx, email,
		"Verify your email address",
		"Follow this link to verify your email address:\r\n\r\n"+link+
			"\r\n\r\nIf you did not create an account, ignore this message.")
}

// SendPasswordReset mails the password-reset link.
func (m *SESMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	link := m.link(m.config.ResetPath, email, token)
	return m.send(ctx, email,
		"Reset your password",
		"Follow this link to choose a new password:\r\n\r\n"+link+
			"\r\n\r\nIf you did not request a reset, ignore this message and your password stays unchanged.")
}

func (m *SESMailer) link(path, email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return m.config.BaseURL + path + "?" + q.Encode()
}

func (m *SESMailer) send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.config.Sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("notify: send to %s: %w", to, err)
	}
	return nil
}
