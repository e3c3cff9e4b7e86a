package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fveldev/blog-auth/internal/domain"
	"github.com/fveldev/blog-auth/internal/hash"
	"github.com/fveldev/blog-auth/internal/repo"
)

// CredentialAuthenticator validates email/password pairs. Every failure mode
// collapses into ErrAuthentication: unknown email, federated-only account
// and wrong password are indistinguishable to the caller.
type CredentialAuthenticator struct {
	Repo *repo.GormRepo
}

func (a *CredentialAuthenticator) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := a.Repo.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: bad credentials", domain.ErrAuthentication)
		}
		return nil, err
	}

	local, ok := account.Credentials.(domain.LocalCredentials)
	if !ok {
		return nil, fmt.Errorf("%w: bad credentials", domain.ErrAuthentication)
	}
	if !hash.CheckPassword(local.PasswordHash, password) {
		return nil, fmt.Errorf("%w: bad credentials", domain.ErrAuthentication)
	}
	return account, nil
}
