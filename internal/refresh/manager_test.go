package refresh

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fveldev/blog-auth/internal/domain"
	"github.com/fveldev/blog-auth/internal/models"
	"github.com/fveldev/blog-auth/internal/repo"
	"github.com/fveldev/blog-auth/internal/token"
)

func newTestManager(t *testing.T) (*Manager, *repo.GormRepo) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Role{}, &models.RefreshToken{}))

	r := &repo.GormRepo{DB: db}
	codec, err := token.NewCodec([]byte("test-jwt-secret"))
	require.NoError(t, err)

	return &Manager{
		Repo:       r,
		Codec:      codec,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, r
}

func seedAccount(t *testing.T, r *repo.GormRepo, email string) *domain.Account {
	t.Helper()

	require.NoError(t, r.EnsureRoles(context.Background(), domain.RoleUser))
	role, err := r.RoleByName(context.Background(), domain.RoleUser)
	require.NoError(t, err)

	account := &domain.Account{
		Email:       email,
		FirstName:   "Test",
		Credentials: domain.LocalCredentials{PasswordHash: "x"},
		Roles:       []domain.Role{*role},
	}
	require.NoError(t, r.CreateAccount(context.Background(), account))
	return account
}

func activeRecordCount(t *testing.T, r *repo.GormRepo, accountID uuid.UUID) int64 {
	t.Helper()

	var count int64
	err := r.DB.Model(&models.RefreshToken{}).
		Where("account_id = ? AND revoked = ?", accountID, false).
		Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestManager_Issue_SingleChainPerAccount(t *testing.T) {
	t.Parallel()

	m, r := newTestManager(t)
	ctx := context.Background()
	account := seedAccount(t, r, "alice@site.com")

	first, err := m.Issue(ctx, account)
	require.NoError(t, err)

	second, err := m.Issue(ctx, account)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	assert.EqualValues(t, 1, activeRecordCount(t, r, account.ID))

	// The first chain is gone; presenting its token fails uniformly.
	_, err = m.Rotate(ctx, first)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}

func TestManager_Rotate_IssuesNewPair(t *testing.T) {
	t.Parallel()

	m, r := newTestManager(t)
	ctx := context.Background()
	account := seedAccount(t, r, "alice@site.com")

	r1, err := m.Issue(ctx, account)
	require.NoError(t, err)

	pair, err := m.Rotate(ctx, r1)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, r1, pair.RefreshToken)
	assert.EqualValues(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)

	claims, err := m.Codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.Email, claims.Subject)
	assert.Equal(t, account.ID.String(), claims.UserID)
	assert.Contains(t, claims.Roles, domain.RoleUser)

	assert.EqualValues(t, 1, activeRecordCount(t, r, account.ID))
}

func TestManager_Rotate_SingleUse(t *testing.T) {
	t.Parallel()

	m, r := newTestManager(t)
	ctx := context.Background()
	account := seedAccount(t, r, "alice@site.com")

	r1, err := m.Issue(ctx, account)
	require.NoError(t, err)

	_, err = m.Rotate(ctx, r1)
	require.NoError(t, err)

	// Reuse after rotation always fails.
	pair, err := m.Rotate(ctx, r1)
	require.Error(t, err)
	assert.Nil(t, pair)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}

func TestManager_Rotate_NotFound(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	_, err := m.Rotate(context.Background(), "never-issued")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRefreshNotFound)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}

func TestManager_Rotate_Expired(t *testing.T) {
	t.Parallel()

	m, r := newTestManager(t)
	ctx := context.Background()
	account := seedAccount(t, r, "alice@site.com")

	raw := "expired-token"
	require.NoError(t, r.InsertRefresh(ctx, account.ID, raw, time.Now().Add(-time.Hour)))

	_, err := m.Rotate(ctx, raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRefreshExpired)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	// Failed rotation must not mint a replacement chain.
	assert.EqualValues(t, 1, activeRecordCount(t, r, account.ID))
}

func TestManager_Validate_ReadOnly(t *testing.T) {
	t.Parallel()

	m, r := newTestManager(t)
	ctx := context.Background()
	account := seedAccount(t, r, "alice@site.com")

	r1, err := m.Issue(ctx, account)
	require.NoError(t, err)

	require.NoError(t, m.Validate(ctx, r1))
	require.NoError(t, m.Validate(ctx, r1))

	// Still rotatable afterwards; validation consumed nothing.
	_, err = m.Rotate(ctx, r1)
	require.NoError(t, err)

	err = m.Validate(ctx, r1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}

func TestManager_Rotate_RevokedRecord(t *testing.T) {
	t.Parallel()

	m, r := newTestManager(t)
	ctx := context.Background()
	account := seedAccount(t, r, "alice@site.com")

	raw := "revoked-token"
	require.NoError(t, r.InsertRefresh(ctx, account.ID, raw, time.Now().Add(time.Hour)))
	won, err := r.RevokeRefresh(ctx, raw)
	require.NoError(t, err)
	require.True(t, won)

	_, err = m.Rotate(ctx, raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRefreshRevoked)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}
