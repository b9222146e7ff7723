package ports

import (
	"context"
	"time"

	"github.com/ohduran/MycroBlog/internal/core/domain"
)

// --- PERSISTANCE (DB) ---

// UserRepository est un port Driven. Les lectures n'ont aucun effet de bord.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByIDs hydrate un lot d'utilisateurs (les IDs absents sont ignorés).
	GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error)

	ExistsUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastSeen(ctx context.Context, userID string, at time.Time) error
}

// FollowRepository maintient les arêtes dirigées (follower_id, followed_id).
// Invariant : une paire ordonnée apparaît au plus une fois.
type FollowRepository interface {
	// Create est idempotent : renvoie false si l'arête existait déjà.
	Create(ctx context.Context, followerID, followedID string) (bool, error)

	// Delete renvoie false si l'arête n'existait pas.
	Delete(ctx context.Context, followerID, followedID string) (bool, error)

	Exists(ctx context.Context, followerID, followedID string) (bool, error)
	CountFollowed(ctx context.Context, userID string) (int, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
	ListFollowedIDs(ctx context.Context, userID string) ([]string, error)
	ListFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, postID string) (*domain.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error)

	// ListByAuthors est l'union brute pour le feed (le service trie et pagine).
	ListByAuthors(ctx context.Context, authorIDs []string) ([]*domain.Post, error)
}

// --- CACHE (TIMELINES) ---

// TimelineCache stocke les timelines matérialisées par le fan-out.
// Lecture momentanément stale acceptable.
type TimelineCache interface {
	AddToTimelines(ctx context.Context, userIDs []string, item *domain.FeedItem) error
	GetTimeline(ctx context.Context, req domain.FeedRequest) ([]*domain.FeedItem, error)
}

// --- MESSAGERIE (BROKER) ---

// EventPublisher notifie les consommateurs externes (fan-out, notifications)
// qu'un événement du domaine a eu lieu.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishFollowCreated(ctx context.Context, followerID, followedID string) error
	PublishPostCreated(ctx context.Context, post *domain.Post) error
}

// --- SÉCURITÉ (CRYPTO) ---

// PasswordHasher abstrait l'algorithme de hachage (Argon2, Bcrypt).
// Le cœur ne stocke que le hash, jamais le mot de passe.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
