package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
	"collabcore/pkg/utils"
	"collabcore/pkg/validation"
)

type streamEntry struct {
	mu      sync.Mutex
	deleted bool
	stream  domain.LiveStream
}

type liveStreamCoordinator struct {
	mu      sync.RWMutex
	streams map[domain.StreamID]*streamEntry

	events ports.EventPublisher
	logger *zap.SugaredLogger
}

// NewLiveStreamCoordinator creates an empty in-memory live stream coordinator.
func NewLiveStreamCoordinator(events ports.EventPublisher, logger *zap.SugaredLogger) ports.LiveStreamCoordinator {
	return &liveStreamCoordinator{
		streams: make(map[domain.StreamID]*streamEntry),
		events:  events,
		logger:  logger,
	}
}

func (c *liveStreamCoordinator) CreateStream(ctx context.Context, sessionID domain.SessionID, provider, ingestURL, playbackURL string) (*domain.LiveStream, error) {
	if sessionID == "" {
		return nil, apperrors.NewInvalidInputError("sessionId is required")
	}
	if provider == "" {
		return nil, apperrors.NewInvalidInputError("provider is required")
	}
	if err := validation.ValidateIngestURL(ingestURL); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if playbackURL != "" {
		if err := validation.ValidatePlaybackURL(playbackURL); err != nil {
			return nil, apperrors.NewInvalidInputError(err.Error())
		}
	}

	now := utils.Now()
	stream := domain.LiveStream{
		ID:              domain.StreamID(utils.GenerateID()),
		SessionID:       sessionID,
		Provider:        provider,
		IngestURL:       ingestURL,
		PlaybackURL:     playbackURL,
		Status:          domain.StreamPreparing,
		CreatedAt:       now,
		LastHeartbeatAt: now,
	}

	c.mu.Lock()
	c.streams[stream.ID] = &streamEntry{stream: stream}
	c.mu.Unlock()

	c.logger.Debugw("live stream created",
		"stream_id", stream.ID,
		"session_id", sessionID,
		"provider", provider,
	)
	c.publishStatus(ctx, &stream)

	snapshot := cloneStream(&stream)
	return &snapshot, nil
}

func (c *liveStreamCoordinator) GetStream(ctx context.Context, streamID domain.StreamID) (*domain.LiveStream, error) {
	entry, err := c.entry(streamID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("live stream")
	}
	snapshot := cloneStream(&entry.stream)
	return &snapshot, nil
}

func (c *liveStreamCoordinator) ListStreamsBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.LiveStream, error) {
	c.mu.RLock()
	entries := make([]*streamEntry, 0, len(c.streams))
	for _, entry := range c.streams {
		entries = append(entries, entry)
	}
	c.mu.RUnlock()

	streams := make([]*domain.LiveStream, 0)
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted && entry.stream.SessionID == sessionID {
			snapshot := cloneStream(&entry.stream)
			streams = append(streams, &snapshot)
		}
		entry.mu.Unlock()
	}
	return streams, nil
}

func (c *liveStreamCoordinator) GoLive(ctx context.Context, streamID domain.StreamID) (*domain.LiveStream, error) {
	now := utils.Now()
	return c.transition(ctx, streamID,
		[]domain.StreamStatus{domain.StreamPreparing},
		domain.StreamLive,
		func(stream *domain.LiveStream) {
			stream.StartedAt = &now
			stream.LastHeartbeatAt = now
		})
}

func (c *liveStreamCoordinator) EndStream(ctx context.Context, streamID domain.StreamID) (*domain.LiveStream, error) {
	now := utils.Now()
	return c.transition(ctx, streamID,
		[]domain.StreamStatus{domain.StreamPreparing, domain.StreamLive},
		domain.StreamEnded,
		func(stream *domain.LiveStream) { stream.EndedAt = &now })
}

func (c *liveStreamCoordinator) FailStream(ctx context.Context, streamID domain.StreamID, errorMessage string) (*domain.LiveStream, error) {
	now := utils.Now()
	return c.transition(ctx, streamID,
		[]domain.StreamStatus{domain.StreamPreparing, domain.StreamLive},
		domain.StreamError,
		func(stream *domain.LiveStream) {
			stream.ErrorMessage = errorMessage
			stream.EndedAt = &now
		})
}

// Heartbeat bumps the liveness timestamp only. Status is never derived
// from heartbeat age here; stall detection belongs to the caller.
func (c *liveStreamCoordinator) Heartbeat(ctx context.Context, streamID domain.StreamID) error {
	entry, err := c.entry(streamID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("live stream")
	}
	if entry.stream.Status.Terminal() {
		return apperrors.NewInvalidStateError("live stream is " + string(entry.stream.Status))
	}
	entry.stream.LastHeartbeatAt = utils.Now()
	return nil
}

func (c *liveStreamCoordinator) transition(ctx context.Context, streamID domain.StreamID, from []domain.StreamStatus, to domain.StreamStatus, mutate func(*domain.LiveStream)) (*domain.LiveStream, error) {
	entry, err := c.entry(streamID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("live stream")
	}

	allowed := false
	for _, status := range from {
		if entry.stream.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.NewInvalidStateError("live stream is " + string(entry.stream.Status))
	}

	entry.stream.Status = to
	if mutate != nil {
		mutate(&entry.stream)
	}
	c.publishStatus(ctx, &entry.stream)

	snapshot := cloneStream(&entry.stream)
	return &snapshot, nil
}

func (c *liveStreamCoordinator) entry(streamID domain.StreamID) (*streamEntry, error) {
	if streamID == "" {
		return nil, apperrors.NewInvalidInputError("streamId is required")
	}
	c.mu.RLock()
	entry, exists := c.streams[streamID]
	c.mu.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError("live stream")
	}
	return entry, nil
}

func (c *liveStreamCoordinator) publishStatus(ctx context.Context, stream *domain.LiveStream) {
	c.events.Publish(ctx, &domain.Event{
		Type:      domain.EventStreamStatus,
		Timestamp: utils.Now(),
		SessionID: stream.SessionID,
		EntityID:  string(stream.ID),
	})
}

func cloneStream(s *domain.LiveStream) domain.LiveStream {
	clone := *s
	if s.StartedAt != nil {
		startedAt := *s.StartedAt
		clone.StartedAt = &startedAt
	}
	if s.EndedAt != nil {
		endedAt := *s.EndedAt
		clone.EndedAt = &endedAt
	}
	return clone
}
