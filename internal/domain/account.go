package domain

import (
	"time"

	"github.com/google/uuid"
)

// RegisterType tags how an account's identity was first established. It is
// immutable after creation: a later login attempt through a different method
// for the same email must be rejected, never merged.
type RegisterType string

const (
	RegisterLocal  RegisterType = "LOCAL"
	RegisterGoogle RegisterType = "GOOGLE"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Credentials is a closed union: an account either holds a local password
// digest or is bound to an external identity provider, never both.
type Credentials interface {
	registerType() RegisterType
}

type LocalCredentials struct {
	PasswordHash string
}

func (LocalCredentials) registerType() RegisterType { return RegisterLocal }

type ExternalCredentials struct {
	Provider RegisterType
}

func (c ExternalCredentials) registerType() RegisterType { return c.Provider }

type Role struct {
	ID   uuid.UUID
	Name string
}

type Account struct {
	ID          uuid.UUID
	Email       string
	FirstName   string
	LastName    string
	ImageURL    string
	Credentials Credentials
	Roles       []Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Account) RegisterType() RegisterType {
	return a.Credentials.registerType()
}

func (a *Account) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.Name)
	}
	return names
}

// ExternalIdentity is a verified assertion from an identity provider. It is
// never persisted; the federation resolver consumes it immediately.
type ExternalIdentity struct {
	Issuer     string
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
	Provider   RegisterType
	ExpiresAt  time.Time
}
