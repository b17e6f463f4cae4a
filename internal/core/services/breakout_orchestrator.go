package services

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
	"collabcore/pkg/utils"
)

type breakoutEntry struct {
	mu      sync.Mutex
	deleted bool
	session domain.BreakoutSession
}

type breakoutOrchestrator struct {
	mu       sync.RWMutex
	sessions map[domain.BreakoutSessionID]*breakoutEntry

	events ports.EventPublisher
	logger *zap.SugaredLogger
}

// NewBreakoutOrchestrator creates an empty in-memory breakout orchestrator.
func NewBreakoutOrchestrator(events ports.EventPublisher, logger *zap.SugaredLogger) ports.BreakoutOrchestrator {
	return &breakoutOrchestrator{
		sessions: make(map[domain.BreakoutSessionID]*breakoutEntry),
		events:   events,
		logger:   logger,
	}
}

func (o *breakoutOrchestrator) CreateBreakoutSession(ctx context.Context, sessionID domain.SessionID, rooms []ports.RoomSpec, autoAssign bool) (*domain.BreakoutSession, error) {
	if sessionID == "" {
		return nil, apperrors.NewInvalidInputError("sessionId is required")
	}
	if len(rooms) == 0 {
		return nil, apperrors.NewInvalidInputError("at least one room is required")
	}
	for _, spec := range rooms {
		if spec.Name == "" {
			return nil, apperrors.NewInvalidInputError("room name is required")
		}
	}

	now := utils.Now()
	session := domain.BreakoutSession{
		ID:         domain.BreakoutSessionID(utils.GenerateID()),
		SessionID:  sessionID,
		Status:     domain.BreakoutDraft,
		AutoAssign: autoAssign,
		Rooms:      make([]domain.BreakoutRoom, 0, len(rooms)),
		CreatedAt:  now,
	}
	for _, spec := range rooms {
		session.Rooms = append(session.Rooms, domain.BreakoutRoom{
			ID:   domain.RoomID(utils.GenerateID()),
			Name: spec.Name,
		})
	}

	o.mu.Lock()
	o.sessions[session.ID] = &breakoutEntry{session: session}
	o.mu.Unlock()

	o.logger.Debugw("breakout session created",
		"breakout_session_id", session.ID,
		"session_id", sessionID,
		"rooms", len(rooms),
	)

	snapshot := cloneBreakout(&session)
	return &snapshot, nil
}

func (o *breakoutOrchestrator) GetBreakoutSession(ctx context.Context, id domain.BreakoutSessionID) (*domain.BreakoutSession, error) {
	entry, err := o.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("breakout session")
	}
	snapshot := cloneBreakout(&entry.session)
	return &snapshot, nil
}

func (o *breakoutOrchestrator) Start(ctx context.Context, id domain.BreakoutSessionID) (*domain.BreakoutSession, error) {
	return o.transition(ctx, id, []domain.BreakoutStatus{domain.BreakoutDraft}, domain.BreakoutLive, domain.EventBreakoutStarted)
}

// Close ends the breakout session. Draft sessions may be closed without
// ever going live; closed is terminal either way.
func (o *breakoutOrchestrator) Close(ctx context.Context, id domain.BreakoutSessionID) (*domain.BreakoutSession, error) {
	return o.transition(ctx, id, []domain.BreakoutStatus{domain.BreakoutDraft, domain.BreakoutLive}, domain.BreakoutClosed, domain.EventBreakoutClosed)
}

func (o *breakoutOrchestrator) transition(ctx context.Context, id domain.BreakoutSessionID, from []domain.BreakoutStatus, to domain.BreakoutStatus, eventType domain.EventType) (*domain.BreakoutSession, error) {
	entry, err := o.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("breakout session")
	}
	allowed := false
	for _, status := range from {
		if entry.session.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.NewInvalidStateError("breakout session is " + string(entry.session.Status))
	}

	entry.session.Status = to
	o.events.Publish(ctx, &domain.Event{
		Type:      eventType,
		Timestamp: utils.Now(),
		SessionID: entry.session.SessionID,
		EntityID:  string(id),
	})

	snapshot := cloneBreakout(&entry.session)
	return &snapshot, nil
}

func (o *breakoutOrchestrator) AssignParticipant(ctx context.Context, id domain.BreakoutSessionID, roomID domain.RoomID, participantID domain.ParticipantID, role domain.PeerRole) error {
	if participantID == "" {
		return apperrors.NewInvalidInputError("participantId is required")
	}
	if !role.Valid() {
		return apperrors.NewInvalidInputError("unknown participant role")
	}

	entry, err := o.entry(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("breakout session")
	}
	if entry.session.Status == domain.BreakoutClosed {
		return apperrors.NewInvalidStateError("breakout session is closed")
	}

	room := findRoom(&entry.session, roomID)
	if room == nil {
		return apperrors.NewNotFoundError("breakout room")
	}

	// Room-scoped dedup only: drop any existing assignment in this room
	// before re-adding. Cross-room uniqueness is the caller's contract,
	// routed through MoveParticipant.
	removeAssignment(room, participantID)
	room.Assignments = append(room.Assignments, domain.RoomAssignment{
		ParticipantID: participantID,
		JoinedAt:      utils.Now(),
		Role:          role,
	})
	return nil
}

func (o *breakoutOrchestrator) MoveParticipant(ctx context.Context, id domain.BreakoutSessionID, fromRoomID, toRoomID domain.RoomID, participantID domain.ParticipantID) error {
	if participantID == "" {
		return apperrors.NewInvalidInputError("participantId is required")
	}
	if fromRoomID == toRoomID {
		return apperrors.NewInvalidInputError("source and destination rooms are the same")
	}

	entry, err := o.entry(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("breakout session")
	}
	if entry.session.Status == domain.BreakoutClosed {
		return apperrors.NewInvalidStateError("breakout session is closed")
	}

	source := findRoom(&entry.session, fromRoomID)
	if source == nil {
		return apperrors.NewNotFoundError("source breakout room")
	}
	dest := findRoom(&entry.session, toRoomID)
	if dest == nil {
		return apperrors.NewNotFoundError("destination breakout room")
	}

	assignment := takeAssignment(source, participantID)
	if assignment == nil {
		return apperrors.NewNotFoundError("participant in source room")
	}

	// Removal and re-add happen under the same session lock, so the
	// participant is never visible in both rooms.
	removeAssignment(dest, participantID)
	assignment.JoinedAt = utils.Now()
	dest.Assignments = append(dest.Assignments, *assignment)

	payload, _ := json.Marshal(map[string]string{
		"participant_id": string(participantID),
		"from_room_id":   string(fromRoomID),
		"to_room_id":     string(toRoomID),
	})
	o.events.Publish(ctx, &domain.Event{
		Type:      domain.EventParticipantMove,
		Timestamp: utils.Now(),
		SessionID: entry.session.SessionID,
		EntityID:  string(id),
		Payload:   payload,
	})
	return nil
}

func (o *breakoutOrchestrator) RemoveParticipant(ctx context.Context, id domain.BreakoutSessionID, roomID domain.RoomID, participantID domain.ParticipantID) error {
	entry, err := o.entry(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("breakout session")
	}
	if entry.session.Status == domain.BreakoutClosed {
		return apperrors.NewInvalidStateError("breakout session is closed")
	}

	room := findRoom(&entry.session, roomID)
	if room == nil {
		return apperrors.NewNotFoundError("breakout room")
	}
	if !removeAssignment(room, participantID) {
		return apperrors.NewNotFoundError("participant")
	}
	return nil
}

func (o *breakoutOrchestrator) ToggleRoomLock(ctx context.Context, id domain.BreakoutSessionID, roomID domain.RoomID, locked bool) error {
	entry, err := o.entry(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("breakout session")
	}
	if entry.session.Status == domain.BreakoutClosed {
		return apperrors.NewInvalidStateError("breakout session is closed")
	}

	room := findRoom(&entry.session, roomID)
	if room == nil {
		return apperrors.NewNotFoundError("breakout room")
	}
	room.IsLocked = locked
	return nil
}

func (o *breakoutOrchestrator) FindParticipantRoom(ctx context.Context, id domain.BreakoutSessionID, participantID domain.ParticipantID) (domain.RoomID, bool, error) {
	entry, err := o.entry(id)
	if err != nil {
		return "", false, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return "", false, apperrors.NewNotFoundError("breakout session")
	}

	for i := range entry.session.Rooms {
		for _, assignment := range entry.session.Rooms[i].Assignments {
			if assignment.ParticipantID == participantID {
				return entry.session.Rooms[i].ID, true, nil
			}
		}
	}
	return "", false, nil
}

func (o *breakoutOrchestrator) entry(id domain.BreakoutSessionID) (*breakoutEntry, error) {
	if id == "" {
		return nil, apperrors.NewInvalidInputError("breakoutSessionId is required")
	}
	o.mu.RLock()
	entry, exists := o.sessions[id]
	o.mu.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError("breakout session")
	}
	return entry, nil
}

func findRoom(s *domain.BreakoutSession, roomID domain.RoomID) *domain.BreakoutRoom {
	for i := range s.Rooms {
		if s.Rooms[i].ID == roomID {
			return &s.Rooms[i]
		}
	}
	return nil
}

// removeAssignment drops the participant from the room, reporting whether
// an assignment was present.
func removeAssignment(room *domain.BreakoutRoom, participantID domain.ParticipantID) bool {
	for i := range room.Assignments {
		if room.Assignments[i].ParticipantID == participantID {
			room.Assignments = append(room.Assignments[:i], room.Assignments[i+1:]...)
			return true
		}
	}
	return false
}

// takeAssignment removes and returns the participant's assignment, or nil.
func takeAssignment(room *domain.BreakoutRoom, participantID domain.ParticipantID) *domain.RoomAssignment {
	for i := range room.Assignments {
		if room.Assignments[i].ParticipantID == participantID {
			assignment := room.Assignments[i]
			room.Assignments = append(room.Assignments[:i], room.Assignments[i+1:]...)
			return &assignment
		}
	}
	return nil
}

func cloneBreakout(s *domain.BreakoutSession) domain.BreakoutSession {
	clone := *s
	clone.Rooms = make([]domain.BreakoutRoom, len(s.Rooms))
	for i, room := range s.Rooms {
		roomClone := room
		roomClone.Assignments = append([]domain.RoomAssignment(nil), room.Assignments...)
		clone.Rooms[i] = roomClone
	}
	return clone
}
