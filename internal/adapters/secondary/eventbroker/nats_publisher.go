// Package eventbroker publie les événements du domaine sur NATS.
// Contrat implicite avec le worker (fan-out, notifications) : JSON + sujets
// user.registered / follow.created / post.created.
package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ohduran/MycroBlog/internal/core/domain"
)

const (
	SubjectUserRegistered = "user.registered"
	SubjectFollowCreated  = "follow.created"
	SubjectPostCreated    = "post.created"
)

type UserRegisteredEvent struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type FollowCreatedEvent struct {
	FollowerID string    `json:"follower_id"`
	FollowedID string    `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type PostCreatedEvent struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

func (p *NatsPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, SubjectUserRegistered, UserRegisteredEvent{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

func (p *NatsPublisher) PublishFollowCreated(ctx context.Context, followerID, followedID string) error {
	return p.publish(ctx, SubjectFollowCreated, FollowCreatedEvent{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now().UTC(),
	})
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	return p.publish(ctx, SubjectPostCreated, PostCreatedEvent{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Body:      post.Body,
		CreatedAt: post.Timestamp,
	})
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}

	// Injection du trace-id dans les headers NATS : le worker héritera
	// du contexte de trace de la mutation d'origine.
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	return p.nc.PublishMsg(msg)
}
