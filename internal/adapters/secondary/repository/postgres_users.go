package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ohduran/MycroBlog/internal/core/domain"
)

const userColumns = `id, username, email, about_me, last_seen, password_hash, created_at`

type PostgresUserRepo struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepo reçoit un pool déjà configuré (otelpgx inclus) par le main.
func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, user *domain.User) error {
	q := `
		INSERT INTO users (id, username, email, about_me, last_seen, password_hash, created_at)
		VALUES (@id, @username, @email, @about_me, @last_seen, @password_hash, @created_at)
	`
	args := pgx.NamedArgs{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"about_me":      user.AboutMe,
		"last_seen":     user.LastSeen,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, q, id), "get by id")
}

func (r *PostgresUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(r.db.QueryRow(ctx, q, username), "get by username")
}

// GetByIDs hydrate un lot en une seule requête (ANY évite le N+1).
func (r *PostgresUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("db: get by ids: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresUserRepo) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	if err := r.db.QueryRow(ctx, q, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db: exists username: %w", err)
	}
	return exists, nil
}

func (r *PostgresUserRepo) Update(ctx context.Context, user *domain.User) error {
	q := `
		UPDATE users
		SET username = @username, email = @email, about_me = @about_me
		WHERE id = @id
	`
	args := pgx.NamedArgs{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"about_me": user.AboutMe,
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepo) UpdateLastSeen(ctx context.Context, userID string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET last_seen = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("db: update last seen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// --- HELPERS ---

func (r *PostgresUserRepo) scanOne(row pgx.Row, op string) (*domain.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound // traduction technique -> domaine
		}
		return nil, fmt.Errorf("db: %s: %w", op, err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.AboutMe, &u.LastSeen, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// mapUniqueViolation traduit le code 23505 de Postgres en erreur du domaine.
// Le nom de la contrainte dit quelle colonne a perdu la course.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "username") {
			return domain.ErrUsernameTaken
		}
		return domain.ErrEmailTaken
	}
	return err
}
