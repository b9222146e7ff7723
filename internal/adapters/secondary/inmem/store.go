// Package inmem fournit des stores mémoire thread-safe implémentant les
// ports de persistance. Utilisés par les tests et le mode local sans DB.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ohduran/MycroBlog/internal/core/domain"
)

// --- UserRepository ---

type UserStore struct {
	mu         sync.RWMutex
	users      map[string]*domain.User // par ID
	byUsername map[string]string       // username -> ID
	byEmail    map[string]string       // email -> ID
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[string]*domain.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (s *UserStore) Save(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Équivalent mémoire des index UNIQUE de la DB
	if _, taken := s.byUsername[user.Username]; taken {
		return domain.ErrUsernameTaken
	}
	if _, taken := s.byEmail[user.Email]; taken {
		return domain.ErrEmailTaken
	}

	u := *user
	s.users[u.ID] = &u
	s.byUsername[u.Username] = u.ID
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.getLocked(id)
}

func (s *UserStore) GetByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			c := *u
			users = append(users, &c)
		}
	}
	return users, nil
}

func (s *UserStore) ExistsUsername(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byUsername[username]
	return ok, nil
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}

	if id, taken := s.byUsername[user.Username]; taken && id != user.ID {
		return domain.ErrUsernameTaken
	}
	if id, taken := s.byEmail[user.Email]; taken && id != user.ID {
		return domain.ErrEmailTaken
	}

	delete(s.byUsername, current.Username)
	delete(s.byEmail, current.Email)

	u := *user
	s.users[u.ID] = &u
	s.byUsername[u.Username] = u.ID
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *UserStore) UpdateLastSeen(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastSeen = at
	return nil
}

func (s *UserStore) getLocked(id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

// --- FollowRepository ---

type FollowStore struct {
	mu sync.RWMutex
	// edges[followerID][followedID] : une paire ordonnée au plus une fois
	edges map[string]map[string]bool
}

func NewFollowStore() *FollowStore {
	return &FollowStore{edges: make(map[string]map[string]bool)}
}

func (s *FollowStore) Create(_ context.Context, followerID, followedID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edges[followerID] == nil {
		s.edges[followerID] = make(map[string]bool)
	}
	if s.edges[followerID][followedID] {
		return false, nil
	}
	s.edges[followerID][followedID] = true
	return true, nil
}

func (s *FollowStore) Delete(_ context.Context, followerID, followedID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.edges[followerID][followedID] {
		return false, nil
	}
	delete(s.edges[followerID], followedID)
	return true, nil
}

func (s *FollowStore) Exists(_ context.Context, followerID, followedID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edges[followerID][followedID], nil
}

func (s *FollowStore) CountFollowed(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges[userID]), nil
}

func (s *FollowStore) CountFollowers(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, followed := range s.edges {
		if followed[userID] {
			n++
		}
	}
	return n, nil
}

func (s *FollowStore) ListFollowedIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.edges[userID]))
	for id := range s.edges[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids) // ordre stable, les maps ne le sont pas
	return ids, nil
}

func (s *FollowStore) ListFollowerIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	for follower, followed := range s.edges {
		if followed[userID] {
			ids = append(ids, follower)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// --- PostRepository ---

type PostStore struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
}

func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]*domain.Post)}
}

func (s *PostStore) Save(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *post
	s.posts[p.ID] = &p
	return nil
}

func (s *PostStore) GetByID(_ context.Context, postID string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	c := *p
	return &c, nil
}

func (s *PostStore) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	return s.ListByAuthors(ctx, []string{authorID})
}

func (s *PostStore) ListByAuthors(_ context.Context, authorIDs []string) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		wanted[id] = true
	}

	posts := []*domain.Post{}
	for _, p := range s.posts {
		if wanted[p.AuthorID] {
			c := *p
			posts = append(posts, &c)
		}
	}

	domain.SortPostsDesc(posts)
	return posts, nil
}
