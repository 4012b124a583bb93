// Package notify delivers verification and password-reset links over email.
// The SES mailer is the production implementation of the engine's Notifier
// dependency; anything that can deliver a link can stand in for it.
package notify
