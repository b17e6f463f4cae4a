package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"collabcore/internal/core/domain"
	"collabcore/pkg/circuitbreaker"
	"collabcore/pkg/retry"
	"collabcore/pkg/utils"
)

// RedisPublisher mirrors registry events onto a Redis channel so sibling
// instances and external consumers can observe them. Publishing stays
// best-effort: failures are retried, then dropped behind the breaker.
type RedisPublisher struct {
	client     *redis.Client
	channel    string
	instanceID string
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
	logger     *zap.SugaredLogger
}

func NewRedisPublisher(client *redis.Client, channel, instanceID string, logger *zap.SugaredLogger) *RedisPublisher {
	retryCfg := retry.Config{
		Enabled:      true,
		MaxAttempts:  2,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     500 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       true,
	}
	return &RedisPublisher{
		client:     client,
		channel:    channel,
		instanceID: instanceID,
		breaker:    circuitbreaker.New(circuitbreaker.DefaultConfig()),
		retryCfg:   retryCfg,
		logger:     logger,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, event *domain.Event) {
	event.InstanceID = p.instanceID
	if event.Timestamp.IsZero() {
		event.Timestamp = utils.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorw("event marshal failed", "type", event.Type, "error", err)
		return
	}

	err = p.breaker.Execute(ctx, func() error {
		return retry.Retry(ctx, p.retryCfg, func() error {
			return p.client.Publish(ctx, p.channel, data).Err()
		})
	})
	if err != nil {
		p.logger.Warnw("event publish dropped",
			"type", event.Type,
			"session_id", event.SessionID,
			"error", err,
		)
		return
	}

	p.logger.Debugw("event published",
		"type", event.Type,
		"session_id", event.SessionID,
		"entity_id", event.EntityID,
	)
}

// Subscribe consumes events from the channel until ctx is cancelled.
// Events published by this instance are skipped.
func (p *RedisPublisher) Subscribe(ctx context.Context, handler func(*domain.Event)) error {
	pubsub := p.client.Subscribe(ctx, p.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				p.logger.Warnw("event unmarshal failed", "error", err)
				continue
			}
			if event.InstanceID == p.instanceID {
				continue
			}
			handler(&event)
		}
	}
}
