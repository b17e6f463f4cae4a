package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
	"collabcore/pkg/utils"
	"collabcore/pkg/validation"
)

// ScreenShareConfig carries the idle windows applied by share cleanup.
type ScreenShareConfig struct {
	// IdleTimeout removes shares with no activity for this long.
	IdleTimeout time.Duration
	// ViewerTimeout prunes viewers unseen for this long from surviving shares.
	ViewerTimeout time.Duration
}

type shareEntry struct {
	mu      sync.Mutex
	deleted bool
	share   domain.ScreenShareSession
}

type screenShareRegistry struct {
	mu     sync.RWMutex
	shares map[domain.ShareID]*shareEntry
	// byPair indexes the single active share per (room, presenter) pair.
	byPair map[sharePairKey]domain.ShareID

	cfg    ScreenShareConfig
	events ports.EventPublisher
	logger *zap.SugaredLogger
}

type sharePairKey struct {
	roomID      domain.RoomID
	presenterID domain.ParticipantID
}

// NewScreenShareRegistry creates an empty in-memory screen share registry.
func NewScreenShareRegistry(cfg ScreenShareConfig, events ports.EventPublisher, logger *zap.SugaredLogger) ports.ScreenShareRegistry {
	return &screenShareRegistry{
		shares: make(map[domain.ShareID]*shareEntry),
		byPair: make(map[sharePairKey]domain.ShareID),
		cfg:    cfg,
		events: events,
		logger: logger,
	}
}

func (r *screenShareRegistry) StartShare(ctx context.Context, roomID domain.RoomID, presenterID domain.ParticipantID, mediaType domain.MediaType, metadata map[string]string) (*domain.ScreenShareSession, ports.UpsertOutcome, error) {
	if roomID == "" {
		return nil, "", apperrors.NewInvalidInputError("roomId is required")
	}
	if presenterID == "" {
		return nil, "", apperrors.NewInvalidInputError("presenterId is required")
	}
	if !mediaType.Valid() {
		return nil, "", apperrors.NewInvalidInputError("unknown media type")
	}
	if err := validation.ValidateMetadata(metadata); err != nil {
		return nil, "", apperrors.NewInvalidInputError(err.Error())
	}

	key := sharePairKey{roomID: roomID, presenterID: presenterID}
	now := utils.Now()

	// Fast path: restarting an existing share updates it in place.
	r.mu.RLock()
	shareID, exists := r.byPair[key]
	entry := r.shares[shareID]
	r.mu.RUnlock()

	if exists && entry != nil {
		entry.mu.Lock()
		if !entry.deleted {
			entry.share.MediaType = mediaType
			entry.share.Metadata = cloneMetadata(metadata)
			entry.share.LastActivityAt = now
			snapshot := cloneShare(&entry.share)
			entry.mu.Unlock()
			return &snapshot, ports.OutcomeUpdated, nil
		}
		entry.mu.Unlock()
	}

	share := domain.ScreenShareSession{
		ID:             domain.ShareID(utils.GenerateShareID()),
		RoomID:         roomID,
		PresenterID:    presenterID,
		MediaType:      mediaType,
		Metadata:       cloneMetadata(metadata),
		StartedAt:      now,
		LastActivityAt: now,
	}

	r.mu.Lock()
	// Re-check the pair index under the write lock: a concurrent
	// StartShare for the same pair may have won the race.
	if existingID, ok := r.byPair[key]; ok {
		if existing := r.shares[existingID]; existing != nil {
			r.mu.Unlock()
			existing.mu.Lock()
			defer existing.mu.Unlock()
			existing.share.MediaType = mediaType
			existing.share.Metadata = cloneMetadata(metadata)
			existing.share.LastActivityAt = now
			snapshot := cloneShare(&existing.share)
			return &snapshot, ports.OutcomeUpdated, nil
		}
	}
	r.shares[share.ID] = &shareEntry{share: share}
	r.byPair[key] = share.ID
	r.mu.Unlock()

	r.logger.Debugw("screen share started",
		"share_id", share.ID,
		"room_id", roomID,
		"presenter_id", presenterID,
		"media_type", mediaType,
	)
	r.events.Publish(ctx, &domain.Event{
		Type:      domain.EventShareStarted,
		Timestamp: now,
		EntityID:  string(share.ID),
	})

	snapshot := cloneShare(&share)
	return &snapshot, ports.OutcomeCreated, nil
}

func (r *screenShareRegistry) StopShare(ctx context.Context, shareID domain.ShareID) error {
	entry, err := r.entry(shareID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	if entry.deleted {
		entry.mu.Unlock()
		return apperrors.NewNotFoundError("screen share")
	}
	entry.deleted = true
	key := sharePairKey{roomID: entry.share.RoomID, presenterID: entry.share.PresenterID}
	entry.mu.Unlock()

	r.mu.Lock()
	delete(r.shares, shareID)
	if r.byPair[key] == shareID {
		delete(r.byPair, key)
	}
	r.mu.Unlock()

	r.events.Publish(ctx, &domain.Event{
		Type:      domain.EventShareStopped,
		Timestamp: utils.Now(),
		EntityID:  string(shareID),
	})
	return nil
}

func (r *screenShareRegistry) GetShare(ctx context.Context, shareID domain.ShareID) (*domain.ScreenShareSession, error) {
	entry, err := r.entry(shareID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("screen share")
	}
	snapshot := cloneShare(&entry.share)
	return &snapshot, nil
}

func (r *screenShareRegistry) GetActiveShareByRoom(ctx context.Context, roomID domain.RoomID) (*domain.ScreenShareSession, error) {
	if roomID == "" {
		return nil, apperrors.NewInvalidInputError("roomId is required")
	}

	r.mu.RLock()
	entries := make([]*shareEntry, 0, len(r.shares))
	for _, entry := range r.shares {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted && entry.share.RoomID == roomID {
			snapshot := cloneShare(&entry.share)
			entry.mu.Unlock()
			return &snapshot, nil
		}
		entry.mu.Unlock()
	}
	// Nobody is sharing in this room.
	return nil, nil
}

func (r *screenShareRegistry) ListShares(ctx context.Context) ([]*domain.ScreenShareSession, error) {
	r.mu.RLock()
	entries := make([]*shareEntry, 0, len(r.shares))
	for _, entry := range r.shares {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	shares := make([]*domain.ScreenShareSession, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted {
			snapshot := cloneShare(&entry.share)
			shares = append(shares, &snapshot)
		}
		entry.mu.Unlock()
	}
	return shares, nil
}

func (r *screenShareRegistry) RegisterViewer(ctx context.Context, shareID domain.ShareID, viewerID domain.ParticipantID) error {
	if viewerID == "" {
		return apperrors.NewInvalidInputError("viewerId is required")
	}

	entry, err := r.entry(shareID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("screen share")
	}

	now := utils.Now()
	for i := range entry.share.Viewers {
		if entry.share.Viewers[i].ViewerID == viewerID {
			entry.share.Viewers[i].LastSeenAt = now
			entry.share.LastActivityAt = now
			return nil
		}
	}
	entry.share.Viewers = append(entry.share.Viewers, domain.ShareViewer{
		ViewerID:   viewerID,
		JoinedAt:   now,
		LastSeenAt: now,
	})
	entry.share.LastActivityAt = now
	return nil
}

func (r *screenShareRegistry) ViewerHeartbeat(ctx context.Context, shareID domain.ShareID, viewerID domain.ParticipantID) error {
	entry, err := r.entry(shareID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("screen share")
	}

	now := utils.Now()
	for i := range entry.share.Viewers {
		if entry.share.Viewers[i].ViewerID == viewerID {
			entry.share.Viewers[i].LastSeenAt = now
			entry.share.LastActivityAt = now
			return nil
		}
	}
	return apperrors.NewNotFoundError("viewer")
}

func (r *screenShareRegistry) RemoveViewer(ctx context.Context, shareID domain.ShareID, viewerID domain.ParticipantID) error {
	entry, err := r.entry(shareID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("screen share")
	}

	for i := range entry.share.Viewers {
		if entry.share.Viewers[i].ViewerID == viewerID {
			entry.share.Viewers = append(entry.share.Viewers[:i], entry.share.Viewers[i+1:]...)
			entry.share.LastActivityAt = utils.Now()
			return nil
		}
	}
	return apperrors.NewNotFoundError("viewer")
}

func (r *screenShareRegistry) Cleanup(ctx context.Context, now time.Time) int {
	r.mu.RLock()
	ids := make([]domain.ShareID, 0, len(r.shares))
	for id := range r.shares {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range ids {
		r.mu.RLock()
		entry, exists := r.shares[id]
		r.mu.RUnlock()
		if !exists {
			continue
		}

		entry.mu.Lock()
		if entry.deleted {
			entry.mu.Unlock()
			continue
		}

		idle := now.Sub(entry.share.LastActivityAt) > r.cfg.IdleTimeout
		var key sharePairKey
		if idle {
			entry.deleted = true
			key = sharePairKey{roomID: entry.share.RoomID, presenterID: entry.share.PresenterID}
		} else {
			// Prune stale viewers from surviving shares.
			kept := entry.share.Viewers[:0]
			for _, viewer := range entry.share.Viewers {
				if now.Sub(viewer.LastSeenAt) <= r.cfg.ViewerTimeout {
					kept = append(kept, viewer)
				}
			}
			entry.share.Viewers = kept
		}
		entry.mu.Unlock()

		if idle {
			r.mu.Lock()
			delete(r.shares, id)
			if r.byPair[key] == id {
				delete(r.byPair, key)
			}
			r.mu.Unlock()
			removed++
		}
	}

	if removed > 0 {
		r.logger.Infow("idle screen shares removed", "count", removed)
	}
	return removed
}

func (r *screenShareRegistry) entry(shareID domain.ShareID) (*shareEntry, error) {
	if shareID == "" {
		return nil, apperrors.NewInvalidInputError("shareId is required")
	}
	r.mu.RLock()
	entry, exists := r.shares[shareID]
	r.mu.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError("screen share")
	}
	return entry, nil
}

func cloneShare(s *domain.ScreenShareSession) domain.ScreenShareSession {
	clone := *s
	clone.Metadata = cloneMetadata(s.Metadata)
	clone.Viewers = append([]domain.ShareViewer(nil), s.Viewers...)
	return clone
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	clone := make(map[string]string, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
