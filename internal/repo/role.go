package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fveldev/blog-auth/internal/domain"
	"github.com/fveldev/blog-auth/internal/models"
)

func (r *GormRepo) RoleByName(ctx context.Context, name string) (*domain.Role, error) {
	var m models.Role
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %q not found", domain.ErrRoleResolution, name)
		}
		return nil, err
	}
	return &domain.Role{ID: m.ID, Name: m.Name}, nil
}

func (r *GormRepo) RolesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Role, error) {
	var ms []models.Role
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	if len(ms) != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d role ids exist", domain.ErrRoleResolution, len(ms), len(ids))
	}
	roles := make([]domain.Role, 0, len(ms))
	for _, m := range ms {
		roles = append(roles, domain.Role{ID: m.ID, Name: m.Name})
	}
	return roles, nil
}

// EnsureRoles creates any missing roles by name. Safe to run on every start.
func (r *GormRepo) EnsureRoles(ctx context.Context, names ...string) error {
	for _, name := range names {
		role := models.Role{Name: name}
		tx := r.DB.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&role)
		if tx.Error != nil {
			return tx.Error
		}
	}
	return nil
}
