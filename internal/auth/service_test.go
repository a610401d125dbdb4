// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/shutterfeed/internal/social"
)

func newTestService(t *testing.T) (*Service, *MemoryRevocationStore) {
	t.Helper()
	revocations := NewMemoryRevocationStore()
	svc := NewService(newMemoryAccounts(), newTestJWTManager(t, time.Hour), revocations, NewLoginThrottle(3, time.Hour), bcrypt.MinCost)
	return svc, revocations
}

func TestSignup(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Signup(ctx, SignupInput{Handle: "ada", Email: " Ada@Example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if session.Token == "" || session.Account.Handle != "ada" {
		t.Errorf("session = %+v", session)
	}
	if session.Account.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", session.Account.Email)
	}
	if session.Account.DisplayName != "ada" {
		t.Errorf("display name = %q, want handle fallback", session.Account.DisplayName)
	}

	tests := []struct {
		name    string
		in      SignupInput
		kind    social.Kind
		message string
	}{
		{"email taken", SignupInput{Handle: "other", Email: "ADA@example.com", Password: "secret1"}, social.KindConflict, "Email already registered"},
		{"handle taken", SignupInput{Handle: "ada", Email: "new@example.com", Password: "secret1"}, social.KindConflict, "Handle already taken"},
		{"short password", SignupInput{Handle: "bob", Email: "bob@example.com", Password: "12345"}, social.KindValidation, ""},
		{"bad handle", SignupInput{Handle: "a b", Email: "ab@example.com", Password: "secret1"}, social.KindValidation, ""},
		{"bad email", SignupInput{Handle: "carol", Email: "carol", Password: "secret1"}, social.KindValidation, "email must be a valid email address"},
		{"long display name", SignupInput{Handle: "dave", Email: "d@example.com", Password: "secret1", DisplayName: strings.Repeat("d", 101)}, social.KindValidation, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.in)
			if !social.IsKind(err, tt.kind) {
				t.Fatalf("Signup() error = %v, want kind %s", err, tt.kind)
			}
			var se *social.Error
			if tt.message != "" && errors.As(err, &se) && se.Message != tt.message {
				t.Errorf("message = %q, want %q", se.Message, tt.message)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Handle: "ada", Email: "ada@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	for _, identifier := range []string{"ada", "ADA@example.com"} {
		session, err := svc.Login(ctx, LoginInput{Identifier: identifier, Password: "secret1"})
		if err != nil {
			t.Fatalf("Login(%s) error = %v", identifier, err)
		}
		if session.Account.Handle != "ada" {
			t.Errorf("Login(%s) account = %+v", identifier, session.Account)
		}
	}

	for _, in := range []LoginInput{
		{Identifier: "ada", Password: "wrong"},
		{Identifier: "nobody", Password: "secret1"},
		{Identifier: "nobody@example.com", Password: "secret1"},
	} {
		_, err := svc.Login(ctx, in)
		var se *social.Error
		if !errors.As(err, &se) || se.Kind != social.KindUnauthorized || se.Message != "Invalid credentials" {
			t.Errorf("Login(%+v) error = %v, want Invalid credentials", in, err)
		}
	}

	if _, err := svc.Login(ctx, LoginInput{Identifier: " ", Password: "x"}); !social.IsKind(err, social.KindValidation) {
		t.Errorf("blank identifier error = %v", err)
	}
}

func TestLogin_Throttled(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = svc.Login(ctx, LoginInput{Identifier: "victim", Password: "guess"})
	}
	if _, err := svc.Login(ctx, LoginInput{Identifier: "victim", Password: "guess"}); !errors.Is(err, ErrLoginThrottled) {
		t.Errorf("error = %v, want ErrLoginThrottled", err)
	}
}

func TestLogin_ThrottleIgnoresEmailCase(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"Ada@Example.com", "ada@example.com", "ADA@EXAMPLE.COM"} {
		_, _ = svc.Login(ctx, LoginInput{Identifier: id, Password: "guess"})
	}
	if _, err := svc.Login(ctx, LoginInput{Identifier: "aDa@example.com", Password: "guess"}); !errors.Is(err, ErrLoginThrottled) {
		t.Errorf("error = %v, want ErrLoginThrottled", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, revocations := newTestService(t)
	ctx := context.Background()

	session, err := svc.Signup(ctx, SignupInput{Handle: "ada", Email: "ada@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	claims, err := svc.jwt.ValidateToken(session.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if revoked, _ := revocations.IsRevoked(ctx, claims.ID); !revoked {
		t.Error("token not revoked after logout")
	}

	// Nothing to revoke.
	if err := svc.Logout(ctx, ""); err != nil {
		t.Errorf("Logout(empty) error = %v", err)
	}
	if err := svc.Logout(ctx, "garbage"); err != nil {
		t.Errorf("Logout(garbage) error = %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Signup(ctx, SignupInput{Handle: "ada", Email: "ada@example.com", Password: "secret1", DisplayName: "Ada L"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	me, err := svc.Me(ctx, session.Account.ID)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if me.Email != "ada@example.com" || me.DisplayName != "Ada L" {
		t.Errorf("me = %+v", me)
	}

	if _, err := svc.Me(ctx, "missing"); !social.IsKind(err, social.KindNotFound) {
		t.Errorf("Me(missing) error = %v", err)
	}
}
