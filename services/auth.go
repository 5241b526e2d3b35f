package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"medicare-backend/shared/apperr"
	"medicare-backend/shared/security"
)

const invalidCredentials = "No active account found with the given credentials"

// dummyHash keeps the cost of a failed lookup close to a failed password
// check.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3OXgyB5xbAqLCKhOP6p0N3K"

type Auth struct {
	users     UserStore
	tokens    TokenIssuer
	passwords Passwords
	log       zerolog.Logger
}

func NewAuth(users UserStore, tokens TokenIssuer, passwords Passwords, logger zerolog.Logger) *Auth {
	return &Auth{users: users, tokens: tokens, passwords: passwords, log: logger}
}

// ResolveIdentifier maps an email to the stored username. Identifiers that
// match no email are returned unchanged and treated as usernames.
func (s *Auth) ResolveIdentifier(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	u, err := s.users.GetByEmail(ctx, identifier)
	switch {
	case err == nil:
		return u.Username, nil
	case errors.Is(err, apperr.ErrNotFound):
		return identifier, nil
	default:
		return "", err
	}
}

// Login verifies the credentials and issues a token pair. Unknown
// identifiers and wrong passwords fail identically.
func (s *Auth) Login(ctx context.Context, identifier, password string) (security.TokenPair, error) {
	username, err := s.ResolveIdentifier(ctx, identifier)
	if err != nil {
		return security.TokenPair{}, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return security.TokenPair{}, err
		}
		s.passwords.Matches(dummyHash, password)
		s.log.Debug().Msg("login failed: unknown identifier")
		return security.TokenPair{}, apperr.Authentication(invalidCredentials)
	}
	if !s.passwords.Matches(user.PasswordHash, password) {
		s.log.Debug().Int64("user_id", user.ID).Msg("login failed: password mismatch")
		return security.TokenPair{}, apperr.Authentication(invalidCredentials)
	}

	pair, err := s.tokens.IssueTokens(user)
	if err != nil {
		return security.TokenPair{}, err
	}
	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *Auth) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", apperr.FieldError("refresh", "This field is required.")
	}
	return s.tokens.RefreshAccess(refreshToken)
}
