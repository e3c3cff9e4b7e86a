package refresh

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fveldev/blog-auth/internal/domain"
	"github.com/fveldev/blog-auth/internal/models"
	"github.com/fveldev/blog-auth/internal/repo"
	"github.com/fveldev/blog-auth/internal/token"
)

// Manager owns the refresh-token state machine: ACTIVE -> rotated, expired
// or revoked. A token string is single-use; presenting it after a successful
// rotation always fails.
type Manager struct {
	Repo       *repo.GormRepo
	Codec      *token.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Issue replaces the account's chain: every prior record is purged, then a
// single ACTIVE record is persisted for a fresh token string. At most one
// non-revoked record exists per account afterwards.
func (m *Manager) Issue(ctx context.Context, account *domain.Account) (string, error) {
	raw, err := m.Codec.MintRefresh(account.Email, m.RefreshTTL)
	if err != nil {
		return "", err
	}
	expiresAt := time.Now().Add(m.RefreshTTL)

	err = m.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.DeleteAllRefreshForAccount(ctx, account.ID); err != nil {
			return err
		}
		return tx.InsertRefresh(ctx, account.ID, raw, expiresAt)
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}

// Rotate consumes the presented token and issues a fresh access/refresh pair
// for the owning account. Lookup, conditional revoke and re-issue run in one
// transaction; of two concurrent rotations of the same string exactly one
// succeeds, the other fails uniformly.
func (m *Manager) Rotate(ctx context.Context, presented string) (*TokenPair, error) {
	var pair *TokenPair

	err := m.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		rec, err := tx.FindRefresh(ctx, presented)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRefreshNotFound
			}
			return err
		}
		if err := classify(rec); err != nil {
			return err
		}

		won, err := tx.RevokeRefresh(ctx, presented)
		if err != nil {
			return err
		}
		if !won {
			return domain.ErrRefreshRevoked
		}

		account, err := tx.AccountByID(ctx, rec.AccountID)
		if err != nil {
			return err
		}

		newRefresh, err := m.Codec.MintRefresh(account.Email, m.RefreshTTL)
		if err != nil {
			return err
		}
		if err := tx.DeleteAllRefreshForAccount(ctx, account.ID); err != nil {
			return err
		}
		if err := tx.InsertRefresh(ctx, account.ID, newRefresh, time.Now().Add(m.RefreshTTL)); err != nil {
			return err
		}

		access, err := m.Codec.Mint(account.Email, account.ID.String(), account.RoleNames(), m.AccessTTL)
		if err != nil {
			return err
		}

		pair = &TokenPair{
			AccessToken:  access,
			RefreshToken: newRefresh,
			ExpiresIn:    int64(m.AccessTTL.Seconds()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Validate classifies the presented token without mutating anything.
func (m *Manager) Validate(ctx context.Context, presented string) error {
	rec, err := m.Repo.FindRefresh(ctx, presented)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRefreshNotFound
		}
		return err
	}
	return classify(rec)
}

func classify(rec *models.RefreshToken) error {
	if rec.Revoked {
		return domain.ErrRefreshRevoked
	}
	if rec.ExpiresAt < time.Now().Unix() {
		return domain.ErrRefreshExpired
	}
	return nil
}
