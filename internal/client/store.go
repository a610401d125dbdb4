// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package client

import (
	"sync"

	"github.com/tomtom215/shutterfeed/internal/models"
)

// FeedView is the view name of the viewer's feed.
const FeedView = "feed"

// UserView returns the view name of an account's post list.
func UserView(accountID string) string {
	return "user:" + accountID
}

// ViewState is the cached pagination of a view.
type ViewState struct {
	Pagination models.Pagination
	Loaded     bool
}

// Store is a normalized cache of fetched entities. Posts and profiles are
// kept once by id; views hold ordered post ids. All changes go through
// Dispatch, so a post shown in several views is updated everywhere at once.
//
// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	posts    map[string]models.EnrichedPost
	profiles map[string]models.Profile
	accounts map[string]models.PublicAccount
	views    map[string][]string
	pages    map[string]ViewState

	listeners []func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		posts:    make(map[string]models.EnrichedPost),
		profiles: make(map[string]models.Profile),
		accounts: make(map[string]models.PublicAccount),
		views:    make(map[string][]string),
		pages:    make(map[string]ViewState),
	}
}

// Dispatch applies an action.
func (s *Store) Dispatch(a Action) {
	s.apply(a)
}

// apply reduces a under the lock and returns its inverse, if it has one.
func (s *Store) apply(a Action) Action {
	if a == nil {
		return nil
	}
	s.mu.Lock()
	inverse := a.reduce(s)
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return inverse
}

// Subscribe registers fn to run after every dispatched action.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Post returns a cached post.
func (s *Store) Post(id string) (models.EnrichedPost, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	return p, ok
}

// Profile returns a cached profile.
func (s *Store) Profile(id string) (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	return p, ok
}

// Account returns a cached account summary.
func (s *Store) Account(id string) (models.PublicAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	return a, ok
}

// View resolves a view to its posts, in order.
func (s *Store) View(name string) []models.EnrichedPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.views[name]
	out := make([]models.EnrichedPost, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ViewIDs returns a copy of a view's post ids.
func (s *Store) ViewIDs(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.views[name]...)
}

// ViewState returns the cached pagination of a view.
func (s *Store) ViewState(name string) ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages[name]
}

// putPost stores a post and its owner summary. The caller holds the lock.
func (s *Store) putPost(p models.EnrichedPost) {
	s.posts[p.ID] = p
	if p.Owner.ID != "" {
		s.accounts[p.Owner.ID] = p.Owner
	}
}

// mergeView writes page ids into a view: page 1 replaces the list, later
// pages append ids not already present. The caller holds the lock.
func (s *Store) mergeView(name string, page models.PostPage) {
	for _, p := range page.Posts {
		s.putPost(p)
	}

	if page.Pagination.Page <= 1 {
		ids := make([]string, 0, len(page.Posts))
		seen := make(map[string]struct{}, len(page.Posts))
		for _, p := range page.Posts {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			ids = append(ids, p.ID)
		}
		s.views[name] = ids
	} else {
		existing := s.views[name]
		seen := make(map[string]struct{}, len(existing))
		for _, id := range existing {
			seen[id] = struct{}{}
		}
		for _, p := range page.Posts {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			existing = append(existing, p.ID)
		}
		s.views[name] = existing
	}
	s.pages[name] = ViewState{Pagination: page.Pagination, Loaded: true}
}

// prepend puts id at the front of a view if the view is loaded.
// The caller holds the lock.
func (s *Store) prepend(name, id string) {
	if !s.pages[name].Loaded {
		return
	}
	ids := s.views[name]
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	s.views[name] = append([]string{id}, ids...)
}

// removePost drops a post from the entity map and every view.
// The caller holds the lock.
func (s *Store) removePost(id string) {
	delete(s.posts, id)
	for name, ids := range s.views {
		kept := ids[:0]
		for _, existing := range ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		s.views[name] = kept
	}
}
