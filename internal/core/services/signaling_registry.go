package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
	"collabcore/pkg/utils"
	"collabcore/pkg/validation"
)

// SignalingConfig carries the TTLs applied by the signaling registry.
type SignalingConfig struct {
	// SessionTTL is the sliding expiry pushed forward on every peer mutation.
	SessionTTL time.Duration
	// PeerIdleTTL is the shorter per-peer idle window checked by cleanup.
	PeerIdleTTL time.Duration
}

type sessionEntry struct {
	mu      sync.Mutex
	deleted bool
	session domain.SignalingSession
}

type signalingRegistry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionEntry

	cfg    SignalingConfig
	events ports.EventPublisher
	logger *zap.SugaredLogger
}

// NewSignalingRegistry creates an empty in-memory signaling registry.
func NewSignalingRegistry(cfg SignalingConfig, events ports.EventPublisher, logger *zap.SugaredLogger) ports.SignalingRegistry {
	return &signalingRegistry{
		sessions: make(map[domain.SessionID]*sessionEntry),
		cfg:      cfg,
		events:   events,
		logger:   logger,
	}
}

func (r *signalingRegistry) CreateSession(ctx context.Context, roomID domain.RoomID, hostID domain.PeerID, tags []string) (*domain.SessionSummary, error) {
	if roomID == "" {
		return nil, apperrors.NewInvalidInputError("roomId is required")
	}
	if hostID == "" {
		return nil, apperrors.NewInvalidInputError("hostId is required")
	}
	if err := validation.ValidateTags(tags); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	now := utils.Now()
	session := domain.SignalingSession{
		ID:        domain.SessionID(utils.GenerateSessionID()),
		RoomID:    roomID,
		HostID:    hostID,
		CreatedAt: now,
		ExpiresAt: now.Add(r.cfg.SessionTTL),
		Metadata: domain.SessionMetadata{
			Tags: append([]string(nil), tags...),
		},
		Peers: make(map[domain.PeerID]domain.PeerConnectionState),
	}

	r.mu.Lock()
	r.sessions[session.ID] = &sessionEntry{session: session}
	r.mu.Unlock()

	r.logger.Debugw("signaling session created",
		"session_id", session.ID,
		"room_id", roomID,
		"host_id", hostID,
	)
	r.publish(ctx, domain.EventSessionCreated, session.ID, string(roomID), nil)

	summary := summarize(&session)
	return &summary, nil
}

func (r *signalingRegistry) GetSession(ctx context.Context, sessionID domain.SessionID) (*domain.SignalingSession, error) {
	entry, err := r.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("signaling session")
	}

	snapshot := cloneSession(&entry.session)
	return &snapshot, nil
}

func (r *signalingRegistry) ListSessions(ctx context.Context) ([]*domain.SessionSummary, error) {
	r.mu.RLock()
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, entry := range r.sessions {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	summaries := make([]*domain.SessionSummary, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted {
			summary := summarize(&entry.session)
			summaries = append(summaries, &summary)
		}
		entry.mu.Unlock()
	}
	return summaries, nil
}

func (r *signalingRegistry) RegisterPeer(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID, role domain.PeerRole, description string) (*domain.PeerConnectionState, ports.UpsertOutcome, error) {
	if peerID == "" {
		return nil, "", apperrors.NewInvalidInputError("peerId is required")
	}
	if !role.Valid() {
		return nil, "", apperrors.NewInvalidInputError("unknown peer role")
	}

	entry, err := r.entry(sessionID)
	if err != nil {
		return nil, "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, "", apperrors.NewNotFoundError("signaling session")
	}

	now := utils.Now()
	outcome := ports.OutcomeCreated

	peer, exists := entry.session.Peers[peerID]
	if exists {
		// Idempotent re-registration: refresh role, description and the
		// idle timer, keep the pending candidate queue.
		outcome = ports.OutcomeUpdated
		peer.Role = role
		if description != "" {
			peer.Description = description
		}
	} else {
		peer = domain.PeerConnectionState{
			PeerID:      peerID,
			Role:        role,
			Description: description,
		}
	}
	peer.LastActivityAt = now
	entry.session.Peers[peerID] = peer
	entry.session.ExpiresAt = now.Add(r.cfg.SessionTTL)

	r.publish(ctx, domain.EventPeerRegistered, sessionID, string(peerID), nil)

	snapshot := clonePeer(peer)
	return &snapshot, outcome, nil
}

func (r *signalingRegistry) AddIceCandidate(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID, candidate string) ([]string, error) {
	if candidate == "" {
		return nil, apperrors.NewInvalidInputError("candidate is required")
	}

	entry, err := r.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("signaling session")
	}

	peer, exists := entry.session.Peers[peerID]
	if !exists {
		return nil, apperrors.NewNotFoundError("peer")
	}

	now := utils.Now()
	peer.PendingIceCandidates = append(peer.PendingIceCandidates, candidate)
	peer.LastActivityAt = now
	entry.session.Peers[peerID] = peer
	entry.session.ExpiresAt = now.Add(r.cfg.SessionTTL)

	return append([]string(nil), peer.PendingIceCandidates...), nil
}

func (r *signalingRegistry) ConsumeIceCandidates(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID) ([]string, error) {
	entry, err := r.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("signaling session")
	}

	peer, exists := entry.session.Peers[peerID]
	if !exists {
		return nil, apperrors.NewNotFoundError("peer")
	}

	now := utils.Now()
	drained := peer.PendingIceCandidates
	peer.PendingIceCandidates = nil
	peer.LastActivityAt = now
	entry.session.Peers[peerID] = peer
	entry.session.ExpiresAt = now.Add(r.cfg.SessionTTL)

	if drained == nil {
		drained = []string{}
	}
	return drained, nil
}

func (r *signalingRegistry) UpdatePeerDescription(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID, description string) error {
	entry, err := r.entry(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("signaling session")
	}

	peer, exists := entry.session.Peers[peerID]
	if !exists {
		return apperrors.NewNotFoundError("peer")
	}

	now := utils.Now()
	peer.Description = description
	peer.LastActivityAt = now
	entry.session.Peers[peerID] = peer
	entry.session.ExpiresAt = now.Add(r.cfg.SessionTTL)
	return nil
}

func (r *signalingRegistry) MarkScreenSharing(ctx context.Context, sessionID domain.SessionID, active bool) error {
	return r.markFlag(sessionID, func(m *domain.SessionMetadata) { m.IsScreenSharing = active })
}

func (r *signalingRegistry) MarkRecording(ctx context.Context, sessionID domain.SessionID, active bool) error {
	return r.markFlag(sessionID, func(m *domain.SessionMetadata) { m.IsRecording = active })
}

func (r *signalingRegistry) markFlag(sessionID domain.SessionID, set func(*domain.SessionMetadata)) error {
	entry, err := r.entry(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("signaling session")
	}

	set(&entry.session.Metadata)
	return nil
}

func (r *signalingRegistry) RemovePeer(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID) error {
	entry, err := r.entry(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	if entry.deleted {
		entry.mu.Unlock()
		return apperrors.NewNotFoundError("signaling session")
	}

	if _, exists := entry.session.Peers[peerID]; !exists {
		entry.mu.Unlock()
		return apperrors.NewNotFoundError("peer")
	}

	delete(entry.session.Peers, peerID)
	entry.session.ExpiresAt = utils.Now().Add(r.cfg.SessionTTL)
	empty := len(entry.session.Peers) == 0
	if empty {
		entry.deleted = true
	}
	entry.mu.Unlock()

	if empty {
		r.mu.Lock()
		delete(r.sessions, sessionID)
		r.mu.Unlock()
		r.logger.Debugw("signaling session dropped after last peer left", "session_id", sessionID)
	}

	r.publish(ctx, domain.EventPeerRemoved, sessionID, string(peerID), nil)
	return nil
}

func (r *signalingRegistry) CleanupExpired(ctx context.Context, now time.Time) int {
	r.mu.RLock()
	ids := make([]domain.SessionID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range ids {
		r.mu.RLock()
		entry, exists := r.sessions[id]
		r.mu.RUnlock()
		if !exists {
			// Removed by a concurrent operation; nothing to do.
			continue
		}

		entry.mu.Lock()
		if entry.deleted {
			entry.mu.Unlock()
			continue
		}

		expired := now.After(entry.session.ExpiresAt)
		if !expired {
			for peerID, peer := range entry.session.Peers {
				if now.Sub(peer.LastActivityAt) > r.cfg.PeerIdleTTL {
					delete(entry.session.Peers, peerID)
				}
			}
			expired = len(entry.session.Peers) == 0 && now.Sub(entry.session.CreatedAt) > r.cfg.PeerIdleTTL
		}
		if expired {
			entry.deleted = true
		}
		entry.mu.Unlock()

		if expired {
			r.mu.Lock()
			delete(r.sessions, id)
			r.mu.Unlock()
			removed++
		}
	}

	if removed > 0 {
		r.logger.Infow("expired signaling sessions purged", "count", removed)
	}
	return removed
}

func (r *signalingRegistry) entry(sessionID domain.SessionID) (*sessionEntry, error) {
	if sessionID == "" {
		return nil, apperrors.NewInvalidInputError("sessionId is required")
	}
	r.mu.RLock()
	entry, exists := r.sessions[sessionID]
	r.mu.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError("signaling session")
	}
	return entry, nil
}

func (r *signalingRegistry) publish(ctx context.Context, eventType domain.EventType, sessionID domain.SessionID, entityID string, payload json.RawMessage) {
	r.events.Publish(ctx, &domain.Event{
		Type:      eventType,
		Timestamp: utils.Now(),
		SessionID: sessionID,
		EntityID:  entityID,
		Payload:   payload,
	})
}

func summarize(s *domain.SignalingSession) domain.SessionSummary {
	return domain.SessionSummary{
		ID:        s.ID,
		RoomID:    s.RoomID,
		HostID:    s.HostID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		Metadata: domain.SessionMetadata{
			Tags:            append([]string(nil), s.Metadata.Tags...),
			IsRecording:     s.Metadata.IsRecording,
			IsScreenSharing: s.Metadata.IsScreenSharing,
		},
		PeerCount: len(s.Peers),
	}
}

func cloneSession(s *domain.SignalingSession) domain.SignalingSession {
	clone := *s
	clone.Metadata.Tags = append([]string(nil), s.Metadata.Tags...)
	clone.Peers = make(map[domain.PeerID]domain.PeerConnectionState, len(s.Peers))
	for id, peer := range s.Peers {
		clone.Peers[id] = clonePeer(peer)
	}
	return clone
}

func clonePeer(p domain.PeerConnectionState) domain.PeerConnectionState {
	clone := p
	clone.PendingIceCandidates = append([]string(nil), p.PendingIceCandidates...)
	return clone
}
