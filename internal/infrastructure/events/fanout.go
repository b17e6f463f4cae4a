package events

import (
	"context"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
)

// Fanout publishes each event to several publishers in order. Used to
// feed the in-process bus and the Redis mirror from one registry hook.
type Fanout []ports.EventPublisher

func (f Fanout) Publish(ctx context.Context, event *domain.Event) {
	for _, publisher := range f {
		publisher.Publish(ctx, event)
	}
}
