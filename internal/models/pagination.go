// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package models

import "math"

// Pagination describes one page of a paginated listing. Feed, user posts and
// post comments all return this exact shape.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// NewPagination computes totalPages = ceil(totalCount/limit) and
// hasMore = page < totalPages. totalPages is 0 when totalCount is 0.
// page and limit are expected to be already normalized (see PageRequest).
func NewPagination(page, limit int, totalCount int64) Pagination {
	if limit < 1 {
		limit = 1
	}
	if totalCount < 0 {
		totalCount = 0
	}
	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// PageRequest is a normalized page request.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps page and limit to at least 1 and caps limit at max
// (a max below 1 disables the cap). page is also capped so that Offset
// cannot overflow.
func NewPageRequest(page, limit, max int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if max >= 1 && limit > max {
		limit = max
	}
	if lastPage := math.MaxInt / limit; page > lastPage {
		page = lastPage
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip for this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PostPage is a page of enriched posts.
type PostPage struct {
	Posts      []EnrichedPost `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

// CommentPage is a page of enriched comments.
type CommentPage struct {
	Comments   []EnrichedComment `json:"comments"`
	Pagination Pagination        `json:"pagination"`
}
