package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ohduran/MycroBlog/internal/core/domain"
)

const (
	// On plafonne chaque timeline pour économiser la RAM : au-delà,
	// le lecteur repasse par le feed pull (source of truth).
	maxTimelineLen = 500

	timelineTTL = 24 * 30 * time.Hour
)

// RedisTimelineCache garde une timeline par utilisateur dans un Sorted Set :
// membre "authorID:postID", score = timestamp Unix du post.
type RedisTimelineCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTimelineCache(client *redis.Client) *RedisTimelineCache {
	return &RedisTimelineCache{client: client, ttl: timelineTTL}
}

// AddToTimelines implémente le fan-out : une entrée par follower, en pipeline.
func (r *RedisTimelineCache) AddToTimelines(ctx context.Context, userIDs []string, item *domain.FeedItem) error {
	pipe := r.client.Pipeline()

	member := fmt.Sprintf("%s:%s", item.AuthorID, item.PostID)
	score := float64(item.CreatedAt.Unix())

	for _, uid := range userIDs {
		key := timelineKey(uid)

		pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
		pipe.ZRemRangeByRank(ctx, key, 0, -(maxTimelineLen + 1))
		pipe.Expire(ctx, key, r.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisTimelineCache) GetTimeline(ctx context.Context, req domain.FeedRequest) ([]*domain.FeedItem, error) {
	key := timelineKey(req.UserID)

	// Bornes Redis inclusives
	start := req.Offset
	stop := req.Offset + req.Limit - 1

	results, err := r.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, err
	}

	items := make([]*domain.FeedItem, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}

		authorID, postID, ok := strings.Cut(member, ":")
		if !ok {
			// Donnée corrompue : on saute plutôt que de crasher la lecture
			continue
		}

		items = append(items, &domain.FeedItem{
			PostID:    postID,
			AuthorID:  authorID,
			CreatedAt: time.Unix(int64(z.Score), 0).UTC(),
		})
	}

	return items, nil
}

func timelineKey(userID string) string {
	return "timeline:" + userID
}
