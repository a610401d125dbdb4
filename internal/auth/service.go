// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package auth implements accounts and sessions: signup, login by email or
// handle, logout with token revocation, and the middleware that turns a
// verified session token into the request's viewer.
//
// Sessions are HS256 JWTs carried in an Authorization bearer header or the
// HTTP-only "token" cookie. Logout records the token id in a RevocationStore
// (memory or BadgerDB) until the token would have expired.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/shutterfeed/internal/database"
	"github.com/tomtom215/shutterfeed/internal/logging"
	"github.com/tomtom215/shutterfeed/internal/metrics"
	"github.com/tomtom215/shutterfeed/internal/models"
	"github.com/tomtom215/shutterfeed/internal/social"
	"github.com/tomtom215/shutterfeed/internal/validation"
)

// ErrLoginThrottled is returned when an identifier exceeded its login attempts.
var ErrLoginThrottled = errors.New("too many login attempts")

// AccountStore is the storage used by Service. *database.DB implements it.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByHandle(ctx context.Context, handle string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

var _ AccountStore = (*database.DB)(nil)

// SignupInput is the body of a signup request.
type SignupInput struct {
	Handle      string `json:"handle" validate:"required,handle"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"max=100"`
}

// LoginInput is the body of a login request. Identifier is an email address
// or a handle.
type LoginInput struct {
	Identifier string `json:"identifier" validate:"notblank"`
	Password   string `json:"password" validate:"required"`
}

// Session is an issued session token and the account it belongs to.
type Session struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Account   models.SelfAccount `json:"account"`
}

// Service handles signup, login, logout and the current account.
type Service struct {
	accounts    AccountStore
	jwt         *JWTManager
	revocations RevocationStore
	throttle    *LoginThrottle
	bcryptCost  int
}

// NewService creates the auth service. throttle may be nil to disable login
// throttling.
func NewService(accounts AccountStore, jwtManager *JWTManager, revocations RevocationStore, throttle *LoginThrottle, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{
		accounts:    accounts,
		jwt:         jwtManager,
		revocations: revocations,
		throttle:    throttle,
		bcryptCost:  bcryptCost,
	}
}

// Signup registers an account and opens a session for it.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Handle = strings.TrimSpace(in.Handle)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, social.FromValidation(verr)
	}

	if err := s.ensureAvailable(ctx, in.Handle, in.Email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, social.Internal("Failed to create account", err)
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Handle
	}
	account := &models.Account{
		Handle:       in.Handle,
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, social.Conflict("Handle or email already in use")
		}
		return nil, social.Internal("Failed to create account", err)
	}

	logging.Ctx(ctx).Info().Str("account_id", account.ID).Str("handle", account.Handle).Msg("Account created")
	return s.issue(account)
}

// ensureAvailable reports a taken handle or email with a specific message.
// The unique constraints remain the source of truth for races.
func (s *Service) ensureAvailable(ctx context.Context, handle, email string) error {
	if _, err := s.accounts.GetAccountByEmail(ctx, email); err == nil {
		return social.Conflict("Email already registered")
	} else if !errors.Is(err, database.ErrNotFound) {
		return social.Internal("Failed to create account", err)
	}

	if _, err := s.accounts.GetAccountByHandle(ctx, handle); err == nil {
		return social.Conflict("Handle already taken")
	} else if !errors.Is(err, database.ErrNotFound) {
		return social.Internal("Failed to create account", err)
	}
	return nil
}

// Login verifies credentials and opens a session. Unknown accounts and wrong
// passwords produce the same "Invalid credentials" error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Identifier = strings.TrimSpace(in.Identifier)
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, social.FromValidation(verr)
	}

	if !s.throttle.Allow(in.Identifier) {
		metrics.RecordLogin("throttled")
		logging.Ctx(ctx).Warn().Str("identifier", in.Identifier).Msg("Login throttled")
		return nil, ErrLoginThrottled
	}

	account, err := s.lookup(ctx, in.Identifier)
	if errors.Is(err, database.ErrNotFound) {
		burnPasswordCheck(in.Password)
		metrics.RecordLogin("invalid")
		return nil, social.Unauthorized("Invalid credentials")
	}
	if err != nil {
		metrics.RecordLogin("error")
		return nil, social.Internal("Failed to log in", err)
	}

	ok, err := CheckPassword(account.PasswordHash, in.Password)
	if err != nil {
		metrics.RecordLogin("error")
		return nil, social.Internal("Failed to log in", err)
	}
	if !ok {
		metrics.RecordLogin("invalid")
		return nil, social.Unauthorized("Invalid credentials")
	}

	s.throttle.Reset(in.Identifier)
	metrics.RecordLogin("success")
	return s.issue(account)
}

func (s *Service) lookup(ctx context.Context, identifier string) (*models.Account, error) {
	if strings.Contains(identifier, "@") {
		return s.accounts.GetAccountByEmail(ctx, identifier)
	}
	return s.accounts.GetAccountByHandle(ctx, identifier)
}

func (s *Service) issue(account *models.Account) (*Session, error) {
	token, claims, err := s.jwt.GenerateToken(account)
	if err != nil {
		return nil, social.Internal("Failed to create session", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Account:   models.ToSelfView(account),
	}, nil
}

// Logout revokes token until it expires. Missing, invalid and expired tokens
// have nothing to revoke and succeed.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" || s.revocations == nil {
		return nil
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil
	}

	ttl := claims.remaining()
	if ttl <= 0 {
		return nil
	}
	entry := &RevocationEntry{JTI: claims.ID, AccountID: claims.AccountID}
	if err := s.revocations.Revoke(ctx, entry, ttl); err != nil {
		return social.Internal("Failed to log out", err)
	}

	logging.Ctx(ctx).Info().Str("account_id", claims.AccountID).Msg("Session revoked")
	return nil
}

// Me returns the authenticated account's own view.
func (s *Service) Me(ctx context.Context, accountID string) (*models.SelfAccount, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, social.NotFound("User not found")
	}
	if err != nil {
		return nil, social.Internal("Failed to load account", err)
	}
	self := models.ToSelfView(account)
	return &self, nil
}
