// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the bcrypt work factor used when none is configured.
const DefaultBcryptCost = 10

// HashPassword hashes a password with bcrypt.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to compare password: %w", err)
}

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// burnPasswordCheck runs a comparison against a fixed hash so unknown
// accounts take as long to reject as wrong passwords.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		//nolint:errcheck // fixed input cannot fail at the default cost
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shutterfeed-timing"), DefaultBcryptCost)
	})
	//nolint:errcheck // result intentionally discarded
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
