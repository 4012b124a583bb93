package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	authcore "github.com/authcore-io/authcore"
)

// AutoMigrate creates or updates the identity and profile tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&IdentityModel{}, &ProfileModel{})
}

/*
====================================
IDENTITY STORE
====================================
*/

// IdentityStore implements authcore.IdentityStore and authcore.AtomicStore
// over a gorm connection. The caller owns the *gorm.DB; open it with
// TranslateError enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey across drivers.
type IdentityStore struct {
	db *gorm.DB
}

func NewIdentityStore(db *gorm.DB) *IdentityStore {
	return &IdentityStore{db: db}
}

func (s *IdentityStore) Insert(ctx context.Context, identity *authcore.Identity) error {
	err := s.db.WithContext(ctx).Create(identityModel(identity)).Error
	return mapWriteErr(err)
}

func (s *IdentityStore) GetByID(ctx context.Context, id string) (*authcore.Identity, error) {
	var model IdentityModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		return nil, mapReadErr(err)
	}
	return model.toIdentity(), nil
}

func (s *IdentityStore) GetByEmail(ctx context.Context, email string) (*authcore.Identity, error) {
	var model IdentityModel
	err := s.db.WithContext(ctx).First(&model, "email = ?", strings.ToLower(email)).Error
	if err != nil {
		return nil, mapReadErr(err)
	}
	return model.toIdentity(), nil
}

func (s *IdentityStore) Update(ctx context.Context, identity *authcore.Identity) error {
	// Save with a full model so boolean false fields are written too.
	res := s.db.WithContext(ctx).Model(&IdentityModel{ID: identity.ID}).
		Select("Email", "Username", "PasswordDigest", "EmailVerified").
		Updates(identityModel(identity))
	if res.Error != nil {
		return mapWriteErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return authcore.ErrStoreNotFound
	}
	return nil
}

func (s *IdentityStore) Delete(ctx context.Context, id string) error {
	// Idempotent, deleting an absent row succeeds.
	err := s.db.WithContext(ctx).Delete(&IdentityModel{}, "id = ?", id).Error
	return mapWriteErr(err)
}

// InsertIdentityAndProfile implements authcore.AtomicStore: both rows commit
// or neither does.
func (s *IdentityStore) InsertIdentityAndProfile(ctx context.Context, identity *authcore.Identity, profile *authcore.Profile) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(identityModel(identity)).Error; err != nil {
			return err
		}
		return tx.Create(&ProfileModel{ID: profile.ID, Username: profile.Username}).Error
	})
	return mapWriteErr(err)
}

/*
====================================
PROFILE STORE
====================================
*/

// ProfileStore implements authcore.ProfileStore over the same connection.
type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Insert(ctx context.Context, profile *authcore.Profile) error {
	err := s.db.WithContext(ctx).Create(&ProfileModel{ID: profile.ID, Username: profile.Username}).Error
	return mapWriteErr(err)
}

func (s *ProfileStore) GetByID(ctx context.Context, id string) (*authcore.Profile, error) {
	var model ProfileModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		return nil, mapReadErr(err)
	}
	return model.toProfile(), nil
}

func (s *ProfileStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Delete(&ProfileModel{}, "id = ?", id).Error
	return mapWriteErr(err)
}

func mapReadErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return authcore.ErrStoreNotFound
	}
	return fmt.Errorf("gormstore: %w", err)
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return authcore.ErrDuplicateEmail
	}
	return fmt.Errorf("gormstore: %w", err)
}
