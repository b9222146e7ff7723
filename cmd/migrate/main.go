// migrate applique le schéma Postgres du cœur social : comptes, posts et
// arêtes de suivi. Idempotent (IF NOT EXISTS partout), donc relançable.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ohduran/MycroBlog/config"
)

var statements = []struct {
	name string
	sql  string
}{
	{
		name: "users",
		sql: `CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      VARCHAR(64)  NOT NULL,
			email         VARCHAR(120) NOT NULL,
			about_me      VARCHAR(140) NOT NULL DEFAULT '',
			last_seen     TIMESTAMPTZ,
			password_hash TEXT         NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
		)`,
	},
	{
		name: "users_username_key",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username)`,
	},
	{
		name: "users_email_key",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,
	},
	{
		name: "posts",
		sql: `CREATE TABLE IF NOT EXISTS posts (
			id        TEXT PRIMARY KEY,
			author_id TEXT         NOT NULL REFERENCES users (id),
			body      VARCHAR(140) NOT NULL,
			timestamp TIMESTAMPTZ  NOT NULL
		)`,
	},
	{
		name: "posts_author_ts_idx",
		sql:  `CREATE INDEX IF NOT EXISTS posts_author_ts_idx ON posts (author_id, timestamp DESC)`,
	},
	{
		name: "follows",
		sql: `CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT        NOT NULL REFERENCES users (id),
			followed_id TEXT        NOT NULL REFERENCES users (id),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (follower_id, followed_id)
		)`,
	},
	{
		name: "follows_followed_idx",
		sql:  `CREATE INDEX IF NOT EXISTS follows_followed_idx ON follows (followed_id)`,
	},
}

func main() {
	cfg := config.Load()
	slog.Info("🚀 Running mycroblog migrations", "env", cfg.Env)

	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, cfg.DBUrl)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		slog.Error("Database ping failed", "error", err)
		os.Exit(1)
	}

	for _, stmt := range statements {
		if _, err := dbPool.Exec(ctx, stmt.sql); err != nil {
			slog.Error("Migration failed", "step", stmt.name, "error", err)
			os.Exit(1)
		}
		slog.Info("✅ Applied", "step", stmt.name)
	}

	slog.Info("🎉 All migrations applied")
}
