package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrEmptyBody    = errors.New("post body cannot be empty")
	ErrBodyTooLong  = errors.New("post body must be at most 140 characters")
)

const MaxBodyLen = 140

// Post est immuable après création : pas d'édition, pas de suppression.
type Post struct {
	ID        string
	AuthorID  string
	Body      string
	Timestamp time.Time
}

// NewPost valide le corps et horodate le post.
func NewPost(authorID, body string) (*Post, error) {
	if body == "" {
		return nil, ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > MaxBodyLen {
		return nil, ErrBodyTooLong
	}

	return &Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}, nil
}
