// mycroblogd est le worker asynchrone du cœur social : il consomme les
// événements post.created / follow.created et entretient les timelines en
// cache. La surface API (HTTP) vit dans la couche service externe, qui
// importe le cœur comme une bibliothèque.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	// Drivers
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	// Instrumentation
	"github.com/exaring/otelpgx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	// Interne
	"github.com/ohduran/MycroBlog/config"
	"github.com/ohduran/MycroBlog/internal/adapters/primary/events"
	"github.com/ohduran/MycroBlog/internal/adapters/secondary/cache"
	"github.com/ohduran/MycroBlog/internal/adapters/secondary/eventbroker"
	"github.com/ohduran/MycroBlog/internal/adapters/secondary/repository"
	"github.com/ohduran/MycroBlog/internal/adapters/secondary/security"
	"github.com/ohduran/MycroBlog/internal/core/ports"
	"github.com/ohduran/MycroBlog/internal/core/services"
)

func main() {
	// 1. Config & Logger
	cfg := config.Load()
	initLogger(cfg)
	slog.Info("🚀 Starting mycroblog worker", "env", cfg.Env, "graph_backend", cfg.GraphBackend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing)
	tp, err := initTracer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure : Postgres
	dbConfig, err := pgxpool.ParseConfig(cfg.DBUrl)
	if err != nil {
		slog.Error("Unable to parse DB config", "error", err)
		os.Exit(1)
	}
	// Instrumentation SQL (requêtes visibles dans Jaeger)
	dbConfig.ConnConfig.Tracer = otelpgx.NewTracer()

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Vérification connectivité immédiate (fail fast)
	if err := dbPool.Ping(ctx); err != nil {
		slog.Error("Database ping failed", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Connected to Postgres")

	// 4. Infrastructure : Redis (timelines)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		slog.Error("Failed to instrument Redis", "error", err)
		os.Exit(1)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("✅ Connected to Redis")

	// 5. Infrastructure : NATS
	nc, err := nats.Connect(cfg.NatsUrl)
	if err != nil {
		slog.Error("Unable to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()
	slog.Info("✅ Connected to NATS")

	// 6. Graphe social : Postgres par défaut, Neo4j en alternative
	var followRepo ports.FollowRepository
	switch cfg.GraphBackend {
	case "neo4j":
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			slog.Error("Failed to create neo4j driver", "error", err)
			os.Exit(1)
		}
		defer driver.Close(context.Background())

		if err := driver.VerifyConnectivity(ctx); err != nil {
			slog.Error("Failed to connect to Neo4j", "error", err)
			os.Exit(1)
		}

		neoRepo := repository.NewNeo4jFollowRepo(driver)
		if err := neoRepo.EnsureSchema(ctx); err != nil {
			slog.Warn("Neo4j schema init failed (might already exist)", "error", err)
		}
		followRepo = neoRepo
		slog.Info("✅ Connected to Neo4j")
	default:
		followRepo = repository.NewPostgresFollowRepo(dbPool)
	}

	// 7. Wiring (injection de dépendances) : Adapters -> Services
	userRepo := repository.NewPostgresUserRepo(dbPool)
	postRepo := repository.NewPostgresPostRepo(dbPool)
	timelines := cache.NewRedisTimelineCache(rdb)
	publisher := eventbroker.NewNatsPublisher(nc)
	hasher := security.NewArgon2Hasher(nil) // params par défaut

	identityService := services.NewIdentityService(userRepo, hasher, publisher)
	feedService := services.NewFeedService(followRepo, postRepo, timelines, cfg.FanoutBatchSize)

	// 8. Consumer NATS (adapter primaire asynchrone)
	handler := events.NewEventHandler(feedService, identityService)
	if err := handler.Subscribe(nc); err != nil {
		slog.Error("Failed to subscribe to NATS", "error", err)
		os.Exit(1)
	}
	slog.Info("👂 Listening for events (NATS)")

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("🛑 Signal received, shutting down...", "signal", sig)

	// Drain : les messages en vol sont traités avant la fermeture
	if err := nc.Drain(); err != nil {
		slog.Error("NATS drain failed", "error", err)
	}

	slog.Info("👋 Worker stopped")
}

// --- HELPERS ---

func initLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Env == "local" {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Env == "local" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func initTracer(ctx context.Context, cfg config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cfg.Env),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// Propagateur global : le trace-id voyage via les headers NATS
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
