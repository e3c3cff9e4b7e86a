package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"        json:"email"`
	PasswordHash *string   `gorm:""                            json:"-"`
	FirstName    string    `gorm:"not null"                    json:"first_name"`
	LastName     string    `gorm:""                            json:"last_name"`
	ImageURL     string    `gorm:""                            json:"image_url"`
	RegisterType string    `gorm:"not null"                    json:"register_type"`
	Roles        []Role    `gorm:"many2many:account_roles"     json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name string    `gorm:"uniqueIndex;not null"  json:"name"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RefreshToken rows key on the sha256 digest of the issued token string;
// raw tokens are never stored.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	AccountID uuid.UUID `gorm:"type:uuid;index;not null" json:"account_id"`
	ExpiresAt int64     `gorm:"not null"             json:"expires_at"`
	Revoked   bool      `gorm:"default:false"        json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
