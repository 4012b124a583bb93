// Package gormstore persists identities and profiles through gorm. It is
// the production implementation of the engine's store interfaces; the driver
// choice belongs to the host application, which opens the *gorm.DB and
// passes it in with TranslateError enabled.
package gormstore
