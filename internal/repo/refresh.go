package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fveldev/blog-auth/internal/models"
)

// InsertRefresh persists a record for a freshly issued token string.
func (r *GormRepo) InsertRefresh(ctx context.Context, accountID uuid.UUID, rawToken string, expiresAt time.Time) error {
	rec := models.RefreshToken{
		Token:     sha256Hex(rawToken),
		AccountID: accountID,
		ExpiresAt: expiresAt.Unix(),
		Revoked:   false,
	}
	return r.DB.WithContext(ctx).Create(&rec).Error
}

// FindRefresh looks up the record for a presented token string.
func (r *GormRepo) FindRefresh(ctx context.Context, rawToken string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	err := r.DB.WithContext(ctx).Where("token = ?", sha256Hex(rawToken)).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// RevokeRefresh marks the record revoked only if it is currently not revoked.
// The returned flag reports whether this caller won; under two concurrent
// rotations of the same token exactly one sees true.
func (r *GormRepo) RevokeRefresh(ctx context.Context, rawToken string) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND revoked = ?", sha256Hex(rawToken), false).
		Update("revoked", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteAllRefreshForAccount purges every record for the account, revoked or
// not. Issuance calls this first so one non-revoked chain exists per account;
// it also serves explicit "log out everywhere".
func (r *GormRepo) DeleteAllRefreshForAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.RefreshToken{}).Error
}
