package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ohduran/MycroBlog/internal/adapters/secondary/inmem"
	"github.com/ohduran/MycroBlog/internal/core/domain"
	"github.com/ohduran/MycroBlog/internal/core/ports"
)

// seedGraph reproduit le scénario à quatre utilisateurs : chacun poste une
// fois (p1 le plus ancien, p4 le plus récent) et suit un sous-ensemble des
// autres. u1 se suit lui-même, donc ses propres posts figurent dans son feed.
func seedGraph(t *testing.T) ports.FeedService {
	t.Helper()
	ctx := context.Background()

	follows := inmem.NewFollowStore()
	posts := inmem.NewPostStore()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 4; i++ {
		post := &domain.Post{
			ID:        fmt.Sprintf("p%d", i),
			AuthorID:  fmt.Sprintf("u%d", i),
			Body:      fmt.Sprintf("post from u%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}
		if err := posts.Save(ctx, post); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	edges := map[string][]string{
		"u1": {"u1", "u2", "u4"},
		"u2": {"u2", "u3"},
		"u3": {"u3", "u4"},
		"u4": {"u4"},
	}
	for follower, targets := range edges {
		for _, target := range targets {
			if _, err := follows.Create(ctx, follower, target); err != nil {
				t.Fatalf("Create(%s,%s) failed: %v", follower, target, err)
			}
		}
	}

	return NewFeedService(follows, posts, newFakeTimelineCache(), 0)
}

func feedIDs(page *domain.Page) []string {
	ids := make([]string, 0, len(page.Items))
	for _, p := range page.Items {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestGetFeedUnion(t *testing.T) {
	svc := seedGraph(t)
	ctx := context.Background()

	cases := []struct {
		user string
		want []string
	}{
		{"u1", []string{"p4", "p2", "p1"}},
		{"u2", []string{"p3", "p2"}},
		{"u3", []string{"p4", "p3"}},
		{"u4", []string{"p4"}},
	}

	for _, tc := range cases {
		page, err := svc.GetFeed(ctx, tc.user, 1, 10)
		if err != nil {
			t.Fatalf("GetFeed(%s) failed: %v", tc.user, err)
		}
		got := feedIDs(page)
		if len(got) != len(tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.user, tc.want, got)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("%s: expected %v, got %v", tc.user, tc.want, got)
				break
			}
		}
	}
}

func TestGetFeedNoFollows(t *testing.T) {
	svc := NewFeedService(inmem.NewFollowStore(), inmem.NewPostStore(), newFakeTimelineCache(), 0)

	// Aucun suivi (même pas soi) : feed vide, pas d'erreur.
	page, err := svc.GetFeed(context.Background(), "loner", 1, 10)
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(page.Items) != 0 || page.HasNext {
		t.Errorf("expected empty feed, got %d items HasNext=%v", len(page.Items), page.HasNext)
	}
}

func TestGetFeedPagination(t *testing.T) {
	ctx := context.Background()
	follows := inmem.NewFollowStore()
	posts := inmem.NewPostStore()

	if _, err := follows.Create(ctx, "reader", "author"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		post := &domain.Post{
			ID:        fmt.Sprintf("p%d", i),
			AuthorID:  "author",
			Body:      "post",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := posts.Save(ctx, post); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	svc := NewFeedService(follows, posts, newFakeTimelineCache(), 0)

	page, err := svc.GetFeed(ctx, "reader", 1, 2)
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(page.Items) != 2 || !page.HasNext {
		t.Errorf("page 1: expected 2 items with HasNext, got %d HasNext=%v", len(page.Items), page.HasNext)
	}

	page, err = svc.GetFeed(ctx, "reader", 3, 2)
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(page.Items) != 1 || page.HasNext {
		t.Errorf("page 3: expected 1 item without HasNext, got %d HasNext=%v", len(page.Items), page.HasNext)
	}

	page, err = svc.GetFeed(ctx, "reader", 4, 2)
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(page.Items) != 0 || page.HasNext {
		t.Errorf("page 4: expected empty page, got %d HasNext=%v", len(page.Items), page.HasNext)
	}

	if _, err := svc.GetFeed(ctx, "reader", 0, 2); !errors.Is(err, domain.ErrInvalidPage) {
		t.Errorf("page=0: expected ErrInvalidPage, got %v", err)
	}
	if _, err := svc.GetFeed(ctx, "reader", 1, -1); !errors.Is(err, domain.ErrInvalidPage) {
		t.Errorf("pageSize=-1: expected ErrInvalidPage, got %v", err)
	}
}

func TestGetFeedTieBreak(t *testing.T) {
	ctx := context.Background()
	follows := inmem.NewFollowStore()
	posts := inmem.NewPostStore()

	if _, err := follows.Create(ctx, "reader", "author"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		if err := posts.Save(ctx, &domain.Post{ID: id, AuthorID: "author", Body: "tie", Timestamp: ts}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	svc := NewFeedService(follows, posts, newFakeTimelineCache(), 0)

	// Timestamps identiques : ID décroissant, stable d'un appel à l'autre.
	for i := 0; i < 3; i++ {
		page, err := svc.GetFeed(ctx, "reader", 1, 10)
		if err != nil {
			t.Fatalf("GetFeed failed: %v", err)
		}
		got := feedIDs(page)
		if got[0] != "c" || got[1] != "b" || got[2] != "a" {
			t.Fatalf("expected [c b a], got %v", got)
		}
	}
}

func TestDistributePostBatches(t *testing.T) {
	ctx := context.Background()
	follows := inmem.NewFollowStore()
	cache := newFakeTimelineCache()

	for i := 0; i < 5; i++ {
		if _, err := follows.Create(ctx, fmt.Sprintf("f%d", i), "author"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	svc := NewFeedService(follows, inmem.NewPostStore(), cache, 2)

	item := &domain.FeedItem{PostID: "p1", AuthorID: "author", CreatedAt: time.Now()}
	if err := svc.DistributePost(ctx, item); err != nil {
		t.Fatalf("DistributePost failed: %v", err)
	}

	// 5 followers par lots de 2 : tailles 2, 2, 1.
	if len(cache.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(cache.batches))
	}
	sizes := []int{len(cache.batches[0]), len(cache.batches[1]), len(cache.batches[2])}
	if sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Errorf("expected batch sizes [2 2 1], got %v", sizes)
	}

	// Chaque follower a reçu l'entrée.
	for i := 0; i < 5; i++ {
		items, err := svc.GetTimeline(ctx, domain.FeedRequest{UserID: fmt.Sprintf("f%d", i)})
		if err != nil {
			t.Fatalf("GetTimeline failed: %v", err)
		}
		if len(items) != 1 || items[0].PostID != "p1" {
			t.Errorf("f%d: expected [p1] in timeline, got %v", i, items)
		}
	}
}

func TestDistributePostNoFollowers(t *testing.T) {
	cache := newFakeTimelineCache()
	svc := NewFeedService(inmem.NewFollowStore(), inmem.NewPostStore(), cache, 0)

	item := &domain.FeedItem{PostID: "p1", AuthorID: "hermit", CreatedAt: time.Now()}
	if err := svc.DistributePost(context.Background(), item); err != nil {
		t.Fatalf("DistributePost failed: %v", err)
	}
	if len(cache.batches) != 0 {
		t.Errorf("expected no batches, got %d", len(cache.batches))
	}
}
