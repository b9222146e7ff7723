package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ohduran/MycroBlog/internal/core/domain"
)

type PostgresPostRepo struct {
	db *pgxpool.Pool
}

func NewPostgresPostRepo(pool *pgxpool.Pool) *PostgresPostRepo {
	return &PostgresPostRepo{db: pool}
}

func (r *PostgresPostRepo) Save(ctx context.Context, post *domain.Post) error {
	q := `
		INSERT INTO posts (id, author_id, body, timestamp)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, q, post.ID, post.AuthorID, post.Body, post.Timestamp); err != nil {
		return fmt.Errorf("db: save post: %w", err)
	}
	return nil
}

func (r *PostgresPostRepo) GetByID(ctx context.Context, postID string) (*domain.Post, error) {
	q := `SELECT id, author_id, body, timestamp FROM posts WHERE id = $1`

	var p domain.Post
	err := r.db.QueryRow(ctx, q, postID).Scan(&p.ID, &p.AuthorID, &p.Body, &p.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("db: get post: %w", err)
	}
	return &p, nil
}

func (r *PostgresPostRepo) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	q := `
		SELECT id, author_id, body, timestamp
		FROM posts
		WHERE author_id = $1
		ORDER BY timestamp DESC, id DESC
	`
	rows, err := r.db.Query(ctx, q, authorID)
	if err != nil {
		return nil, fmt.Errorf("db: list by author: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListByAuthors : union brute pour le feed, en une seule requête (ANY).
// L'ordre renvoyé est déjà le bon mais le service re-trie de toute façon.
func (r *PostgresPostRepo) ListByAuthors(ctx context.Context, authorIDs []string) ([]*domain.Post, error) {
	q := `
		SELECT id, author_id, body, timestamp
		FROM posts
		WHERE author_id = ANY($1)
		ORDER BY timestamp DESC, id DESC
	`
	rows, err := r.db.Query(ctx, q, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("db: list by authors: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows pgx.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Body, &p.Timestamp); err != nil {
			return nil, err
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}
