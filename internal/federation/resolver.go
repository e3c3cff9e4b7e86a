package federation

import (
	"context"
	"errors"
	"fmt"

	"github.com/fveldev/blog-auth/internal/domain"
	"github.com/fveldev/blog-auth/internal/repo"
)

// Resolver maps a verified external identity to a local account. First sight
// creates the account; repeat sight refreshes profile fields. An email
// already bound to a different registration method is a hard conflict.
type Resolver struct {
	Repo *repo.GormRepo
}

func (r *Resolver) Resolve(ctx context.Context, id *domain.ExternalIdentity) (*domain.Account, error) {
	account, err := r.Repo.AccountByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, repo.ErrAccountNotFound) {
			return r.create(ctx, id)
		}
		return nil, err
	}

	if account.RegisterType() != id.Provider {
		return nil, fmt.Errorf("%w: account registered with %s",
			domain.ErrMethodConflict, account.RegisterType())
	}

	account.FirstName = id.GivenName
	account.LastName = id.FamilyName
	account.ImageURL = id.Picture
	if err := r.Repo.UpdateAccountProfile(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (r *Resolver) create(ctx context.Context, id *domain.ExternalIdentity) (*domain.Account, error) {
	role, err := r.Repo.RoleByName(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Email:       id.Email,
		FirstName:   id.GivenName,
		LastName:    id.FamilyName,
		ImageURL:    id.Picture,
		Credentials: domain.ExternalCredentials{Provider: id.Provider},
		Roles:       []domain.Role{*role},
	}
	if err := r.Repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
