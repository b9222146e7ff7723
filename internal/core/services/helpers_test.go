package services

import (
	"context"
	"sync"

	"github.com/ohduran/MycroBlog/internal/core/domain"
)

// fakeHasher évite le coût d'Argon2 dans les tests unitaires.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Compare(hash, password string) error  { return nil }

// fakePublisher enregistre les événements émis, sans broker.
type fakePublisher struct {
	mu         sync.Mutex
	registered []string // user IDs
	follows    []string // "follower->followed"
	postsPub   []string // post IDs
}

func (p *fakePublisher) PublishUserRegistered(_ context.Context, user *domain.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, user.ID)
	return nil
}

func (p *fakePublisher) PublishFollowCreated(_ context.Context, followerID, followedID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.follows = append(p.follows, followerID+"->"+followedID)
	return nil
}

func (p *fakePublisher) PublishPostCreated(_ context.Context, post *domain.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.postsPub = append(p.postsPub, post.ID)
	return nil
}

// fakeTimelineCache capture les lots du fan-out.
type fakeTimelineCache struct {
	mu      sync.Mutex
	batches [][]string
	items   map[string][]*domain.FeedItem // par user
}

func newFakeTimelineCache() *fakeTimelineCache {
	return &fakeTimelineCache{items: make(map[string][]*domain.FeedItem)}
}

func (c *fakeTimelineCache) AddToTimelines(_ context.Context, userIDs []string, item *domain.FeedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := append([]string(nil), userIDs...)
	c.batches = append(c.batches, batch)
	for _, id := range userIDs {
		c.items[id] = append(c.items[id], item)
	}
	return nil
}

func (c *fakeTimelineCache) GetTimeline(_ context.Context, req domain.FeedRequest) ([]*domain.FeedItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[req.UserID], nil
}
