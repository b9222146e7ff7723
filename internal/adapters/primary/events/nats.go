// Package events est l'adapter primaire asynchrone : il consomme les
// événements du domaine et pilote le cœur (fan-out, notifications).
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ohduran/MycroBlog/internal/adapters/secondary/eventbroker"
	"github.com/ohduran/MycroBlog/internal/core/domain"
	"github.com/ohduran/MycroBlog/internal/core/ports"
)

const fanoutTimeout = 30 * time.Second

type EventHandler struct {
	feed     ports.FeedService
	identity ports.IdentityService
}

func NewEventHandler(feed ports.FeedService, identity ports.IdentityService) *EventHandler {
	return &EventHandler{feed: feed, identity: identity}
}

// Subscribe branche les handlers sur la connexion NATS.
func (h *EventHandler) Subscribe(nc *nats.Conn) error {
	if _, err := nc.Subscribe(eventbroker.SubjectPostCreated, h.HandlePostCreated); err != nil {
		return err
	}
	if _, err := nc.Subscribe(eventbroker.SubjectFollowCreated, h.HandleFollowCreated); err != nil {
		return err
	}
	return nil
}

// HandlePostCreated déclenche le fan-out du post vers les timelines.
func (h *EventHandler) HandlePostCreated(msg *nats.Msg) {
	ctx, span := h.startSpan(msg, "process_post_created")
	defer span.End()

	var event eventbroker.PostCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		span.RecordError(err)
		slog.Error("❌ Invalid event format", "subject", msg.Subject, "error", err)
		return
	}

	slog.Info("📨 Received event", "subject", msg.Subject, "post_id", event.ID)

	item := &domain.FeedItem{
		PostID:    event.ID,
		AuthorID:  event.AuthorID,
		CreatedAt: event.CreatedAt,
	}

	// Fan-out en background : on libère le thread NATS, en gardant le
	// contexte de trace pour que Redis hérite du trace-id.
	go func() {
		childCtx, cancel := context.WithTimeout(ctx, fanoutTimeout)
		defer cancel()

		if err := h.feed.DistributePost(childCtx, item); err != nil {
			slog.Error("❌ Fan-out failed", "post_id", event.ID, "error", err)
		}
	}()
}

// HandleFollowCreated est le point d'accroche des notifications :
// "X is now following you". L'envoi effectif (mail) appartient à la couche
// externe ; ici on résout les usernames et on trace l'événement.
func (h *EventHandler) HandleFollowCreated(msg *nats.Msg) {
	ctx, span := h.startSpan(msg, "process_follow_created")
	defer span.End()

	var event eventbroker.FollowCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		span.RecordError(err)
		slog.Error("❌ Invalid event format", "subject", msg.Subject, "error", err)
		return
	}

	follower, err := h.identity.GetUser(ctx, event.FollowerID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			span.RecordError(err)
		}
		slog.Warn("Follower lookup failed, skipping notification", "follower_id", event.FollowerID, "error", err)
		return
	}

	followed, err := h.identity.GetUser(ctx, event.FollowedID)
	if err != nil {
		slog.Warn("Followed lookup failed, skipping notification", "followed_id", event.FollowedID, "error", err)
		return
	}

	slog.Info("📣 Follower notification",
		"to", followed.Username,
		"message", follower.Username+" is now following you!",
	)
}

// startSpan extrait le contexte de trace des headers NATS et ouvre un span consumer.
func (h *EventHandler) startSpan(msg *nats.Msg, name string) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.HeaderCarrier(msg.Header))
	tracer := otel.Tracer("mycroblog-worker")
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindConsumer))
}
