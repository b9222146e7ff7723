package services

import (
	"context"
	"errors"

	"github.com/ohduran/MycroBlog/internal/core/domain"
	"github.com/ohduran/MycroBlog/internal/core/ports"
)

type graphService struct {
	follows   ports.FollowRepository
	users     ports.UserRepository
	publisher ports.EventPublisher
}

func NewGraphService(follows ports.FollowRepository, users ports.UserRepository, publisher ports.EventPublisher) ports.GraphService {
	return &graphService{follows: follows, users: users, publisher: publisher}
}

// Follow crée l'arête follower -> target. Idempotent : un second appel
// renvoie false sans changer l'état. Se suivre soi-même est permis, et le
// feed en dépend (ses propres posts n'y figurent que via l'auto-arête).
func (s *graphService) Follow(ctx context.Context, followerID, targetID string) (bool, error) {
	if followerID == "" || targetID == "" {
		return false, errors.New("ids cannot be empty")
	}

	created, err := s.follows.Create(ctx, followerID, targetID)
	if err != nil {
		return false, err
	}

	if created {
		// Best effort : la notification ne conditionne pas la mutation.
		_ = s.publisher.PublishFollowCreated(ctx, followerID, targetID)
	}

	return created, nil
}

// Unfollow supprime l'arête. No-op false si elle n'existe pas, ou si
// follower == target : l'auto-unfollow est refusé même quand l'auto-arête
// existe. Asymétrie voulue avec Follow.
func (s *graphService) Unfollow(ctx context.Context, followerID, targetID string) (bool, error) {
	if followerID == "" || targetID == "" {
		return false, errors.New("ids cannot be empty")
	}
	if followerID == targetID {
		return false, nil
	}
	return s.follows.Delete(ctx, followerID, targetID)
}

func (s *graphService) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	return s.follows.Exists(ctx, followerID, targetID)
}

func (s *graphService) FollowedCount(ctx context.Context, userID string) (int, error) {
	return s.follows.CountFollowed(ctx, userID)
}

func (s *graphService) FollowerCount(ctx context.Context, userID string) (int, error) {
	return s.follows.CountFollowers(ctx, userID)
}

func (s *graphService) ListFollowed(ctx context.Context, userID string) ([]*domain.User, error) {
	ids, err := s.follows.ListFollowedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, ids)
}

func (s *graphService) ListFollowers(ctx context.Context, userID string) ([]*domain.User, error) {
	ids, err := s.follows.ListFollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, ids)
}

func (s *graphService) hydrate(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	return s.users.GetByIDs(ctx, ids)
}
