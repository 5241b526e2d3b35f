package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are embedded in both token types. Subject carries the user id.
type Claims struct {
	Role      models.Role `json:"role"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	TokenType string      `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return id, nil
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenManager signs and verifies HS256 tokens with a single server secret.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *TokenManager) sign(base Claims, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := base
	claims.TokenType = tokenType
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   base.Subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func claimsFor(u *models.User) Claims {
	return Claims{
		Role:     u.Role,
		Username: u.Username,
		Email:    u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(u.ID, 10),
		},
	}
}

// IssueTokens mints an access and a refresh token for u.
func (m *TokenManager) IssueTokens(u *models.User) (TokenPair, error) {
	base := claimsFor(u)
	access, err := m.sign(base, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.sign(base, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) parse(tokenStr, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Authentication("Token is expired")
		}
		return nil, apperr.Authentication("Token is invalid")
	}
	if claims.TokenType != tokenType {
		return nil, apperr.Authentication("Token has wrong type")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, apperr.Authentication("Token contained no recognizable user identification")
	}
	return claims, nil
}

func (m *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TokenTypeAccess)
}

func (m *TokenManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TokenTypeRefresh)
}

// RefreshAccess mints a new access token from a valid refresh token. The
// claims are carried over as they were at login; no lookup is made.
func (m *TokenManager) RefreshAccess(refreshToken string) (string, error) {
	claims, err := m.ParseRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	base := Claims{
		Role:     claims.Role,
		Username: claims.Username,
		Email:    claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: claims.Subject,
		},
	}
	return m.sign(base, TokenTypeAccess, m.accessTTL)
}
