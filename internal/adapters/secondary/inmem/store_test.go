package inmem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ohduran/MycroBlog/internal/core/domain"
)

func TestUserStoreUniqueness(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	susan, err := domain.NewUser("susan", "susan@example.com", "h")
	if err != nil {
		t.Fatalf("NewUser failed: %v", err)
	}
	if err := store.Save(ctx, susan); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Même username, email différent.
	dup, _ := domain.NewUser("susan", "other@example.com", "h")
	if err := store.Save(ctx, dup); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	// Même email, username différent.
	dup, _ = domain.NewUser("susana", "susan@example.com", "h")
	if err := store.Save(ctx, dup); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	taken, err := store.ExistsUsername(ctx, "susan")
	if err != nil || !taken {
		t.Errorf("expected susan taken, got %v %v", taken, err)
	}
	taken, err = store.ExistsUsername(ctx, "free")
	if err != nil || taken {
		t.Errorf("expected free available, got %v %v", taken, err)
	}
}

func TestUserStoreReturnsCopies(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	susan, _ := domain.NewUser("susan", "susan@example.com", "h")
	if err := store.Save(ctx, susan); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByID(ctx, susan.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	// Muter la copie ne doit pas toucher le store.
	got.AboutMe = "mutated"
	again, _ := store.GetByID(ctx, susan.ID)
	if again.AboutMe == "mutated" {
		t.Error("store leaked internal state")
	}
}

func TestUserStoreUpdateReleasesIndexes(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	susan, _ := domain.NewUser("susan", "susan@example.com", "h")
	if err := store.Save(ctx, susan); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	susan.Username = "susan_g"
	if err := store.Update(ctx, susan); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, err := store.GetByUsername(ctx, "susan"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected old username released, got %v", err)
	}
	if _, err := store.GetByUsername(ctx, "susan_g"); err != nil {
		t.Errorf("expected new username resolvable, got %v", err)
	}
}

func TestUserStoreUpdateLastSeen(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	susan, _ := domain.NewUser("susan", "susan@example.com", "h")
	if err := store.Save(ctx, susan); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := store.UpdateLastSeen(ctx, susan.ID, at); err != nil {
		t.Fatalf("UpdateLastSeen failed: %v", err)
	}
	got, _ := store.GetByID(ctx, susan.ID)
	if !got.LastSeen.Equal(at) {
		t.Errorf("expected LastSeen %v, got %v", at, got.LastSeen)
	}

	if err := store.UpdateLastSeen(ctx, "nope", at); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFollowStoreIdempotence(t *testing.T) {
	store := NewFollowStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "john", "susan")
	if err != nil || !created {
		t.Fatalf("first Create: expected true, got %v %v", created, err)
	}
	created, err = store.Create(ctx, "john", "susan")
	if err != nil || created {
		t.Fatalf("second Create: expected false, got %v %v", created, err)
	}

	n, _ := store.CountFollowed(ctx, "john")
	if n != 1 {
		t.Errorf("expected CountFollowed=1, got %d", n)
	}

	removed, err := store.Delete(ctx, "john", "susan")
	if err != nil || !removed {
		t.Fatalf("Delete: expected true, got %v %v", removed, err)
	}
	removed, err = store.Delete(ctx, "john", "susan")
	if err != nil || removed {
		t.Fatalf("second Delete: expected false, got %v %v", removed, err)
	}
}

func TestFollowStoreDirectedEdges(t *testing.T) {
	store := NewFollowStore()
	ctx := context.Background()

	// john -> susan n'implique pas susan -> john.
	if _, err := store.Create(ctx, "john", "susan"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, _ := store.Exists(ctx, "john", "susan")
	if !exists {
		t.Error("expected john -> susan")
	}
	exists, _ = store.Exists(ctx, "susan", "john")
	if exists {
		t.Error("did not expect susan -> john")
	}
}

func TestFollowStoreListsAreSorted(t *testing.T) {
	store := NewFollowStore()
	ctx := context.Background()

	for _, target := range []string{"zoe", "adam", "mary"} {
		if _, err := store.Create(ctx, "john", target); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := store.Create(ctx, target, "john"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	followed, _ := store.ListFollowedIDs(ctx, "john")
	want := []string{"adam", "mary", "zoe"}
	for i := range want {
		if followed[i] != want[i] {
			t.Fatalf("expected sorted %v, got %v", want, followed)
		}
	}

	followers, _ := store.ListFollowerIDs(ctx, "john")
	for i := range want {
		if followers[i] != want[i] {
			t.Fatalf("expected sorted %v, got %v", want, followers)
		}
	}
}

func TestPostStoreListByAuthors(t *testing.T) {
	store := NewPostStore()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seed := []struct {
		id, author string
		offset     time.Duration
	}{
		{"p1", "john", 0},
		{"p2", "susan", time.Minute},
		{"p3", "mary", 2 * time.Minute},
		{"p4", "john", 3 * time.Minute},
	}
	for _, s := range seed {
		post := &domain.Post{ID: s.id, AuthorID: s.author, Body: "b", Timestamp: base.Add(s.offset)}
		if err := store.Save(ctx, post); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	// Filtre sur le sous-ensemble d'auteurs, tri du plus récent au plus ancien.
	posts, err := store.ListByAuthors(ctx, []string{"john", "susan"})
	if err != nil {
		t.Fatalf("ListByAuthors failed: %v", err)
	}
	want := []string{"p4", "p2", "p1"}
	if len(posts) != len(want) {
		t.Fatalf("expected %v, got %d posts", want, len(posts))
	}
	for i := range want {
		if posts[i].ID != want[i] {
			t.Fatalf("expected %v, got %s at %d", want, posts[i].ID, i)
		}
	}

	only, err := store.ListByAuthor(ctx, "mary")
	if err != nil {
		t.Fatalf("ListByAuthor failed: %v", err)
	}
	if len(only) != 1 || only[0].ID != "p3" {
		t.Errorf("expected [p3], got %v", only)
	}
}

func TestPostStoreGetByID(t *testing.T) {
	store := NewPostStore()
	ctx := context.Background()

	if _, err := store.GetByID(ctx, "nope"); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}

	post := &domain.Post{ID: "p1", AuthorID: "john", Body: "b", Timestamp: time.Now()}
	if err := store.Save(ctx, post); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.GetByID(ctx, "p1")
	if err != nil || got.ID != "p1" {
		t.Fatalf("expected p1, got %v %v", got, err)
	}
}
