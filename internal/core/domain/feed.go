package domain

import "time"

// FeedItem est l'entrée dénormalisée poussée dans les timelines en cache.
// C'est un pointeur vers un Post, pas le Post lui-même.
type FeedItem struct {
	PostID    string
	AuthorID  string
	CreatedAt time.Time
}

// FeedRequest encapsule les critères de lecture d'une timeline en cache.
type FeedRequest struct {
	UserID string
	Limit  int64
	Offset int64
}
