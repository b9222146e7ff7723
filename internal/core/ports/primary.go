package ports

import (
	"context"

	"github.com/ohduran/MycroBlog/internal/core/domain"
)

// --- INPUTS (Command Pattern) ---
// Des structs permettent d'ajouter des champs optionnels sans casser la signature.

type RegisterCmd struct {
	Username string // Désiré : le service résout les collisions (bob -> bob2)
	Email    string
	Password string
	AboutMe  string
}

type UpdateProfileCmd struct {
	UserID   string
	Username *string // Pointeur : nil = pas de changement
	AboutMe  *string
}

// --- PORTS PRIMAIRES (Driving) ---
// L'API que le cœur expose à la couche service externe.
// Chaque opération prend l'identité agissante en paramètre explicite :
// pas d'état ambiant "current user".

type IdentityService interface {
	Register(ctx context.Context, cmd RegisterCmd) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCmd) (*domain.User, error)

	// TouchLastSeen est appelé par la couche externe à chaque activité.
	TouchLastSeen(ctx context.Context, userID string) error

	// AllocateUsername sonde desired, desired2, desired3... jusqu'à un nom libre.
	// Ne réserve rien : l'appelant doit persister rapidement.
	AllocateUsername(ctx context.Context, desired string) (string, error)
}

type GraphService interface {
	// Follow renvoie true si l'arête a été créée (false = déjà suivi).
	// Se suivre soi-même est permis.
	Follow(ctx context.Context, followerID, targetID string) (bool, error)

	// Unfollow renvoie true si l'arête a été supprimée.
	// Se désabonner de soi-même est toujours refusé (no-op false).
	Unfollow(ctx context.Context, followerID, targetID string) (bool, error)

	IsFollowing(ctx context.Context, followerID, targetID string) (bool, error)
	FollowedCount(ctx context.Context, userID string) (int, error)
	FollowerCount(ctx context.Context, userID string) (int, error)
	ListFollowed(ctx context.Context, userID string) ([]*domain.User, error)
	ListFollowers(ctx context.Context, userID string) ([]*domain.User, error)
}

type PostService interface {
	CreatePost(ctx context.Context, authorID, body string) (*domain.Post, error)
	GetPost(ctx context.Context, postID string) (*domain.Post, error)

	// ListByAuthor pagine les posts d'un profil, du plus récent au plus ancien.
	ListByAuthor(ctx context.Context, authorID string, page, pageSize int) (*domain.Page, error)
}

type FeedService interface {
	// GetFeed calcule le flux paginé : union des posts des suivis,
	// triée par timestamp décroissant.
	GetFeed(ctx context.Context, userID string, page, pageSize int) (*domain.Page, error)

	// DistributePost est appelé quand un event "post.created" arrive (fan-out).
	DistributePost(ctx context.Context, item *domain.FeedItem) error

	// GetTimeline lit la timeline matérialisée en cache.
	GetTimeline(ctx context.Context, req domain.FeedRequest) ([]*domain.FeedItem, error)
}
