package services

import (
	"context"
	"log/slog"

	"github.com/ohduran/MycroBlog/internal/core/domain"
	"github.com/ohduran/MycroBlog/internal/core/ports"
)

const defaultFanoutBatch = 1000

type feedService struct {
	follows   ports.FollowRepository
	posts     ports.PostRepository
	cache     ports.TimelineCache
	batchSize int
}

// NewFeedService compose le graphe et le store de posts.
// cache peut rester nil si le chemin fan-out n'est pas câblé (lib pure).
func NewFeedService(follows ports.FollowRepository, posts ports.PostRepository, cache ports.TimelineCache, batchSize int) ports.FeedService {
	if batchSize <= 0 {
		batchSize = defaultFanoutBatch
	}
	return &feedService{follows: follows, posts: posts, cache: cache, batchSize: batchSize}
}

// GetFeed : modèle pull. F = suivis de user (user lui-même inclus seulement
// si l'auto-arête existe), union des posts des auteurs de F, tri timestamp
// décroissant (égalité : ID décroissant), fenêtre [(page-1)*size, page*size).
func (s *feedService) GetFeed(ctx context.Context, userID string, page, pageSize int) (*domain.Page, error) {
	if err := domain.ValidatePaging(page, pageSize); err != nil {
		return nil, err
	}

	followedIDs, err := s.follows.ListFollowedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(followedIDs) == 0 {
		return domain.NewPage(nil, page, pageSize), nil
	}

	posts, err := s.posts.ListByAuthors(ctx, followedIDs)
	if err != nil {
		return nil, err
	}

	domain.SortPostsDesc(posts)
	return domain.NewPage(posts, page, pageSize), nil
}

// DistributePost pousse un post dans la timeline en cache de chaque follower
// de l'auteur, par paquets pour ne pas saturer Redis ni la RAM.
func (s *feedService) DistributePost(ctx context.Context, item *domain.FeedItem) error {
	slog.Info("📢 Fan-out starting", "post_id", item.PostID, "author_id", item.AuthorID)

	followers, err := s.follows.ListFollowerIDs(ctx, item.AuthorID)
	if err != nil {
		return err
	}
	if len(followers) == 0 {
		return nil
	}

	for i := 0; i < len(followers); i += s.batchSize {
		end := i + s.batchSize
		if end > len(followers) {
			end = len(followers)
		}

		if err := s.cache.AddToTimelines(ctx, followers[i:end], item); err != nil {
			slog.Error("❌ Failed to push batch to cache", "error", err, "batch_start", i)
			continue
		}
	}

	slog.Info("✅ Fan-out complete", "count", len(followers))
	return nil
}

func (s *feedService) GetTimeline(ctx context.Context, req domain.FeedRequest) ([]*domain.FeedItem, error) {
	return s.cache.GetTimeline(ctx, req)
}
