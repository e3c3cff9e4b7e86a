package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("test-jwt-secret"))
	require.NoError(t, err)
	return c
}

func TestNewCodec_EmptySecret(t *testing.T) {
	t.Parallel()

	c, err := NewCodec(nil)
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestCodec_MintVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	userID := uuid.NewString()
	email := "alice@site.com"

	tokenStr, err := c.Mint(email, userID, []string{"USER", "ADMIN"}, 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims, err := c.Verify(tokenStr)
	require.NoError(t, err)

	assert.Equal(t, email, claims.Subject)
	assert.Equal(t, userID, claims.UserID)
	assert.ElementsMatch(t, []string{"USER", "ADMIN"}, claims.Roles)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestCodec_Verify_Expired(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	tokenStr, err := c.Mint("alice@site.com", uuid.NewString(), []string{"USER"}, -time.Minute)
	require.NoError(t, err)

	claims, err := c.Verify(tokenStr)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_Verify_TamperedPayload(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	tokenStr, err := c.Mint("alice@site.com", uuid.NewString(), []string{"USER"}, 15*time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	// Alter exactly one byte of a claim value; the JSON stays valid so the
	// failure has to come from the signature, not from parsing.
	tampered := strings.Replace(string(payload), "alice@site.com", "alicf@site.com", 1)
	require.NotEqual(t, string(payload), tampered)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

	claims, err := c.Verify(strings.Join(parts, "."))
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodec_Verify_TamperedAndExpired_StillSignatureError(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	tokenStr, err := c.Mint("alice@site.com", uuid.NewString(), []string{"USER"}, -time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tokenStr, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	tampered := strings.Replace(string(payload), "alice", "malic", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

	_, err = c.Verify(strings.Join(parts, "."))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodec_Verify_WrongSecret(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	other, err := NewCodec([]byte("another-secret"))
	require.NoError(t, err)

	tokenStr, err := c.Mint("alice@site.com", uuid.NewString(), []string{"USER"}, 15*time.Minute)
	require.NoError(t, err)

	_, err = other.Verify(tokenStr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodec_Verify_Malformed(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "two segments", token: "aaaa.bbbb"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := c.Verify(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestCodec_MintRefresh_Unique(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	first, err := c.MintRefresh("alice@site.com", 24*time.Hour)
	require.NoError(t, err)
	second, err := c.MintRefresh("alice@site.com", 24*time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
