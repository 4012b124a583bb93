package gormstore

import (
	"time"

	authcore "github.com/authcore-io/authcore"
)

// IdentityModel is the gorm row backing authcore.Identity. Email carries the
// unique constraint the engine's conflict handling relies on.
type IdentityModel struct {
	ID             string    `gorm:"primaryKey;size:64"`
	Email          string    `gorm:"size:255;uniqueIndex;not null"`
	Username       string    `gorm:"size:255"`
	PasswordDigest string    `gorm:"size:512"`
	LoginType      string    `gorm:"size:32;not null"`
	EmailVerified  bool      `gorm:"default:false"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (IdentityModel) TableName() string {
	return "identities"
}

func (m *IdentityModel) toIdentity() *authcore.Identity {
	return &authcore.Identity{
		ID:             m.ID,
		Email:          m.Email,
		Username:       m.Username,
		PasswordDigest: m.PasswordDigest,
		LoginType:      authcore.LoginType(m.LoginType),
		EmailVerified:  m.EmailVerified,
	}
}

func identityModel(id *authcore.Identity) *IdentityModel {
	return &IdentityModel{
		ID:             id.ID,
		Email:          id.Email,
		Username:       id.Username,
		PasswordDigest: id.PasswordDigest,
		LoginType:      string(id.LoginType),
		EmailVerified:  id.EmailVerified,
	}
}

// ProfileModel is the gorm row backing authcore.Profile, keyed by the
// identity id.
type ProfileModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Username  string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

func (m *ProfileModel) toProfile() *authcore.Profile {
	return &authcore.Profile{ID: m.ID, Username: m.Username}
}
