package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fveldev/blog-auth/internal/domain"
	"github.com/fveldev/blog-auth/internal/models"
)

var ErrAccountNotFound = errors.New("account not found")

func (r *GormRepo) AccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var m models.Account
	err := r.DB.WithContext(ctx).
		Preload("Roles").
		Where("lower(email) = ?", strings.ToLower(email)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return accountToDomain(&m), nil
}

func (r *GormRepo) AccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var m models.Account
	err := r.DB.WithContext(ctx).Preload("Roles").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return accountToDomain(&m), nil
}

func (r *GormRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("lower(email) = ?", strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateAccount(ctx context.Context, a *domain.Account) error {
	m := accountToModel(a)
	if err := r.DB.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	a.ID = m.ID
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return nil
}

// UpdateAccountProfile persists the mutable profile fields. Email,
// credentials and register type stay untouched.
func (r *GormRepo) UpdateAccountProfile(ctx context.Context, a *domain.Account) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"first_name": a.FirstName,
			"last_name":  a.LastName,
			"image_url":  a.ImageURL,
		}).Error
}

func accountToModel(a *domain.Account) *models.Account {
	m := &models.Account{
		ID:        a.ID,
		Email:     strings.ToLower(a.Email),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		ImageURL:  a.ImageURL,
	}
	switch c := a.Credentials.(type) {
	case domain.LocalCredentials:
		h := c.PasswordHash
		m.PasswordHash = &h
		m.RegisterType = string(domain.RegisterLocal)
	case domain.ExternalCredentials:
		m.PasswordHash = nil
		m.RegisterType = string(c.Provider)
	}
	for _, role := range a.Roles {
		m.Roles = append(m.Roles, models.Role{ID: role.ID, Name: role.Name})
	}
	return m
}

func accountToDomain(m *models.Account) *domain.Account {
	a := &domain.Account{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.RegisterType == string(domain.RegisterLocal) && m.PasswordHash != nil {
		a.Credentials = domain.LocalCredentials{PasswordHash: *m.PasswordHash}
	} else {
		a.Credentials = domain.ExternalCredentials{Provider: domain.RegisterType(m.RegisterType)}
	}
	for _, role := range m.Roles {
		a.Roles = append(a.Roles, domain.Role{ID: role.ID, Name: role.Name})
	}
	return a
}
