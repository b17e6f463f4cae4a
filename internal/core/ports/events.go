package ports

import (
	"context"

	"collabcore/internal/core/domain"
)

// EventPublisher fans registry events out to observers. Publishing is
// best-effort: registries emit after a successful mutation and never fail
// an operation because an observer is unreachable.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.Event)
}

// NoopPublisher discards all events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *domain.Event) {}
