package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/agrotrack/livestock_tracker/internal/models"
)

// RevokeToken records a token as invalid until its natural expiry passes.
// Revoking the same token twice is a no-op.
func (r *GormRepo) RevokeToken(ctx context.Context, token string, expiresAt time.Time) error {
	entry := models.RevokedToken{
		Token:     token,
		ExpiresAt: expiresAt,
	}
	err := r.DB.WithContext(ctx).Create(&entry).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *GormRepo) TokenRevoked(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token = ?", token).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SweepRevokedTokens removes entries whose original expiry has passed. An
// expired token fails signature validation anyway, so tracking it is pointless.
func (r *GormRepo) SweepRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
