package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis channel session events are published on.
const EventsChannel = "study_sessions:events"

type EventKind string

const (
	EventSessionCreated   EventKind = "session.created"
	EventSessionUpdated   EventKind = "session.updated"
	EventSessionDeleted   EventKind = "session.deleted"
	EventSessionsImported EventKind = "sessions.imported"
)

type SessionEvent struct {
	ID         uuid.UUID `json:"id"`
	Kind       EventKind `json:"kind"`
	SessionID  int64     `json:"session_id,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Count      int       `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newSessionEvent(kind EventKind, now time.Time) SessionEvent {
	return SessionEvent{ID: uuid.New(), Kind: kind, OccurredAt: now.UTC()}
}

// EventPublisher announces session changes to whoever listens. Publishing is
// best effort: the service never fails an operation because of it.
type EventPublisher interface {
	Publish(ctx context.Context, event SessionEvent) error
}

type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, SessionEvent) error { return nil }

type RedisEventPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{client: client, channel: EventsChannel}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, event SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Kind, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Kind, err)
	}
	return nil
}
