// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package models

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name           string
		page, limit    int
		total          int64
		wantTotalPages int
		wantHasMore    bool
	}{
		{"empty", 1, 10, 0, 0, false},
		{"single partial page", 1, 10, 3, 1, false},
		{"exact multiple", 1, 10, 20, 2, true},
		{"last exact page", 2, 10, 20, 2, false},
		{"ceil division", 2, 10, 21, 3, true},
		{"beyond last page", 5, 10, 21, 3, false},
		{"limit one", 3, 1, 3, 3, false},
		{"zero limit treated as one", 1, 0, 2, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			if p.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantTotalPages)
			}
			if p.HasMore != tt.wantHasMore {
				t.Errorf("HasMore = %v, want %v", p.HasMore, tt.wantHasMore)
			}
			if p.TotalCount != tt.total {
				t.Errorf("TotalCount = %d, want %d", p.TotalCount, tt.total)
			}
		})
	}
}

// TestNewPagination_Property checks the arithmetic for a grid of inputs.
func TestNewPagination_Property(t *testing.T) {
	for limit := 1; limit <= 7; limit++ {
		for total := int64(0); total <= 30; total++ {
			for page := 1; page <= 8; page++ {
				p := NewPagination(page, limit, total)
				want := 0
				if total > 0 {
					want = int(total) / limit
					if int(total)%limit != 0 {
						want++
					}
				}
				if p.TotalPages != want {
					t.Fatalf("NewPagination(%d, %d, %d).TotalPages = %d, want %d", page, limit, total, p.TotalPages, want)
				}
				if p.HasMore != (page < want) {
					t.Fatalf("NewPagination(%d, %d, %d).HasMore = %v", page, limit, total, p.HasMore)
				}
			}
		}
	}
}

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		page, limit, max    int
		wantPage, wantLimit int
		wantOffset          int
	}{
		{1, 10, 100, 1, 10, 0},
		{0, 10, 100, 1, 10, 0},
		{-3, 10, 100, 1, 10, 0},
		{2, 0, 100, 2, 1, 1},
		{3, 500, 100, 3, 100, 200},
		{2, 25, 0, 2, 25, 25},
		{math.MaxInt, 10, 100, math.MaxInt / 10, 10, (math.MaxInt/10 - 1) * 10},
		{math.MaxInt / 5, 20, 100, math.MaxInt / 20, 20, (math.MaxInt/20 - 1) * 20},
		{math.MaxInt, 1, 0, math.MaxInt, 1, math.MaxInt - 1},
	}

	for _, tt := range tests {
		pr := NewPageRequest(tt.page, tt.limit, tt.max)
		if pr.Page != tt.wantPage || pr.Limit != tt.wantLimit {
			t.Errorf("NewPageRequest(%d, %d, %d) = %+v, want page=%d limit=%d", tt.page, tt.limit, tt.max, pr, tt.wantPage, tt.wantLimit)
		}
		if pr.Offset() < 0 {
			t.Errorf("NewPageRequest(%d, %d, %d).Offset() = %d, want non-negative", tt.page, tt.limit, tt.max, pr.Offset())
		}
		if pr.Offset() != tt.wantOffset {
			t.Errorf("Offset() = %d, want %d", pr.Offset(), tt.wantOffset)
		}
	}
}

func TestToPublicSummary_NeverLeaksCredentials(t *testing.T) {
	acct := &Account{
		ID:           "a1",
		Handle:       "ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$secret",
		DisplayName:  "Ada",
		AvatarURL:    "https://img.test/ada.png",
		CreatedAt:    time.Now(),
	}

	summary := ToPublicSummary(acct)
	if summary.Handle != "ada" || summary.DisplayName != "Ada" || summary.AvatarURL != acct.AvatarURL {
		t.Errorf("unexpected summary: %+v", summary)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") || strings.Contains(string(data), "example.com") {
		t.Errorf("public summary leaked private fields: %s", data)
	}

	full, err := json.Marshal(acct)
	if err != nil {
		t.Fatalf("marshal account: %v", err)
	}
	if strings.Contains(string(full), "secret") {
		t.Errorf("account JSON leaked the password hash: %s", full)
	}
}

func TestToPublicSummary_Nil(t *testing.T) {
	if got := ToPublicSummary(nil); got != (PublicAccount{}) {
		t.Errorf("ToPublicSummary(nil) = %+v, want zero value", got)
	}
}
