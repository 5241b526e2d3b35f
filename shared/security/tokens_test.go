package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

func testUser() *models.User {
	return models.NewUser(models.Identity{
		ID:       42,
		Username: "john@example.com",
		Email:    "john@example.com",
		Role:     models.RolePatient,
	})
}

func TestIssueTokensEmbedsClaims(t *testing.T) {
	m := NewTokenManager("test-secret", 24*time.Hour, 7*24*time.Hour)

	pair, err := m.IssueTokens(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	claims, err := m.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, claims.Role)
	assert.Equal(t, "john@example.com", claims.Username)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 24*time.Hour, lifetime)

	refresh, err := m.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, refresh.ExpiresAt.Sub(refresh.IssuedAt.Time))
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 2*time.Hour)
	pair, err := m.IssueTokens(testUser())
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	_, err = m.RefreshAccess(pair.Access)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestRefreshAccessCarriesClaims(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 2*time.Hour)
	pair, err := m.IssueTokens(testUser())
	require.NoError(t, err)

	access, err := m.RefreshAccess(pair.Refresh)
	require.NoError(t, err)

	claims, err := m.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, models.RolePatient, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 2*time.Hour)
	issuedAt := time.Now().Add(-3 * time.Hour)
	m.now = func() time.Time { return issuedAt }
	pair, err := m.IssueTokens(testUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAccess(pair.Access)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	assert.Contains(t, err.Error(), "expired")

	_, err = m.RefreshAccess(pair.Refresh)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestForeignSignaturesAreRejected(t *testing.T) {
	ours := NewTokenManager("test-secret", time.Hour, 2*time.Hour)
	theirs := NewTokenManager("other-secret", time.Hour, 2*time.Hour)
	pair, err := theirs.IssueTokens(testUser())
	require.NoError(t, err)

	_, err = ours.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{TokenType: TokenTypeAccess})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ours.ParseAccess(raw)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	_, err = ours.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}
