package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFollowRepo matérialise le graphe social dans la table follows :
// la self-jointure many-to-many du schéma, avec ses deux directions de
// jointure asymétriques (follower_id et followed_id pointent tous deux
// vers users.id).
type PostgresFollowRepo struct {
	db *pgxpool.Pool
}

func NewPostgresFollowRepo(pool *pgxpool.Pool) *PostgresFollowRepo {
	return &PostgresFollowRepo{db: pool}
}

// Create est idempotent : la clé composite UNIQUE + ON CONFLICT DO NOTHING
// absorbe les doublons ET les courses entre deux appels concurrents.
func (r *PostgresFollowRepo) Create(ctx context.Context, followerID, followedID string) (bool, error) {
	q := `
		INSERT INTO follows (follower_id, followed_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, q, followerID, followedID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("db: create follow: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresFollowRepo) Delete(ctx context.Context, followerID, followedID string) (bool, error) {
	q := `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`
	tag, err := r.db.Exec(ctx, q, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("db: delete follow: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresFollowRepo) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2)`
	if err := r.db.QueryRow(ctx, q, followerID, followedID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db: follow exists: %w", err)
	}
	return exists, nil
}

func (r *PostgresFollowRepo) CountFollowed(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM follows WHERE follower_id = $1`, userID)
}

func (r *PostgresFollowRepo) CountFollowers(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM follows WHERE followed_id = $1`, userID)
}

func (r *PostgresFollowRepo) ListFollowedIDs(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT followed_id FROM follows WHERE follower_id = $1 ORDER BY followed_id`, userID)
}

func (r *PostgresFollowRepo) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT follower_id FROM follows WHERE followed_id = $1 ORDER BY follower_id`, userID)
}

// --- HELPERS ---

func (r *PostgresFollowRepo) count(ctx context.Context, q, userID string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db: count follows: %w", err)
	}
	return n, nil
}

func (r *PostgresFollowRepo) listIDs(ctx context.Context, q, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("db: list follows: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
