package services

import (
	"context"
	"iter"
	"sync"

	"go.uber.org/zap"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
	"collabcore/pkg/utils"
)

type boardEntry struct {
	// mu serializes appends so sequence numbers stay gapless; it is the
	// single-writer-per-board lock.
	mu           sync.Mutex
	deleted      bool
	board        domain.WhiteboardBoard
	participants map[domain.ParticipantID]struct{}
}

type whiteboardLog struct {
	mu     sync.RWMutex
	boards map[domain.BoardID]*boardEntry

	events ports.EventPublisher
	logger *zap.SugaredLogger
}

// NewWhiteboardLog creates an empty in-memory whiteboard log registry.
func NewWhiteboardLog(events ports.EventPublisher, logger *zap.SugaredLogger) ports.WhiteboardLog {
	return &whiteboardLog{
		boards: make(map[domain.BoardID]*boardEntry),
		events: events,
		logger: logger,
	}
}

func (w *whiteboardLog) CreateBoard(ctx context.Context, sessionID domain.SessionID, createdBy domain.ParticipantID) (*domain.WhiteboardBoard, error) {
	if sessionID == "" {
		return nil, apperrors.NewInvalidInputError("sessionId is required")
	}
	if createdBy == "" {
		return nil, apperrors.NewInvalidInputError("createdBy is required")
	}

	board := domain.WhiteboardBoard{
		ID:        domain.BoardID(utils.GenerateID()),
		SessionID: sessionID,
		CreatedBy: createdBy,
		CreatedAt: utils.Now(),
	}
	entry := &boardEntry{
		board:        board,
		participants: map[domain.ParticipantID]struct{}{createdBy: {}},
	}

	w.mu.Lock()
	w.boards[board.ID] = entry
	w.mu.Unlock()

	w.logger.Debugw("whiteboard created", "board_id", board.ID, "session_id", sessionID)

	snapshot := entry.snapshot()
	return &snapshot, nil
}

func (w *whiteboardLog) GetBoard(ctx context.Context, boardID domain.BoardID) (*domain.WhiteboardBoard, error) {
	entry, err := w.entry(boardID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("whiteboard")
	}
	snapshot := entry.snapshot()
	return &snapshot, nil
}

func (w *whiteboardLog) JoinBoard(ctx context.Context, boardID domain.BoardID, participantID domain.ParticipantID) error {
	if participantID == "" {
		return apperrors.NewInvalidInputError("participantId is required")
	}

	entry, err := w.entry(boardID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("whiteboard")
	}
	entry.participants[participantID] = struct{}{}
	return nil
}

func (w *whiteboardLog) LeaveBoard(ctx context.Context, boardID domain.BoardID, participantID domain.ParticipantID) error {
	entry, err := w.entry(boardID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("whiteboard")
	}
	if _, exists := entry.participants[participantID]; !exists {
		return apperrors.NewNotFoundError("participant")
	}
	delete(entry.participants, participantID)
	return nil
}

func (w *whiteboardLog) AppendOperation(ctx context.Context, boardID domain.BoardID, performedBy domain.ParticipantID, opType domain.OperationType, payload domain.OperationPayload) (*domain.WhiteboardOperation, error) {
	if performedBy == "" {
		return nil, apperrors.NewInvalidInputError("performedBy is required")
	}
	if !opType.Valid() {
		return nil, apperrors.NewInvalidInputError("unknown operation type")
	}

	entry, err := w.entry(boardID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("whiteboard")
	}

	// Sequence assignment and append happen under the board lock, which
	// is what keeps the run gapless under concurrent appends.
	op := domain.WhiteboardOperation{
		ID:          domain.OperationID(utils.GenerateOperationID()),
		PerformedBy: performedBy,
		Type:        opType,
		Payload:     payload,
		Sequence:    uint64(len(entry.board.Operations)) + 1,
		CreatedAt:   utils.Now(),
	}
	entry.board.Operations = append(entry.board.Operations, op)

	w.events.Publish(ctx, &domain.Event{
		Type:      domain.EventBoardOperation,
		Timestamp: op.CreatedAt,
		SessionID: entry.board.SessionID,
		EntityID:  string(boardID),
	})

	clone := op
	return &clone, nil
}

func (w *whiteboardLog) GetOperationsSince(ctx context.Context, boardID domain.BoardID, afterSequence uint64) (iter.Seq[domain.WhiteboardOperation], error) {
	entry, err := w.entry(boardID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	if entry.deleted {
		entry.mu.Unlock()
		return nil, apperrors.NewNotFoundError("whiteboard")
	}
	// Operations are ordered by sequence, so the suffix is a single copy.
	var tail []domain.WhiteboardOperation
	if afterSequence < uint64(len(entry.board.Operations)) {
		tail = append(tail, entry.board.Operations[afterSequence:]...)
	}
	entry.mu.Unlock()

	return func(yield func(domain.WhiteboardOperation) bool) {
		for _, op := range tail {
			if !yield(op) {
				return
			}
		}
	}, nil
}

func (w *whiteboardLog) ResetBoard(ctx context.Context, boardID domain.BoardID, performedBy domain.ParticipantID) error {
	if performedBy == "" {
		return apperrors.NewInvalidInputError("performedBy is required")
	}

	entry, err := w.entry(boardID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("whiteboard")
	}

	// Destructive: the log is cleared and the participant set re-seeded
	// to the resetter only. No undo.
	entry.board.Operations = nil
	entry.participants = map[domain.ParticipantID]struct{}{performedBy: {}}

	w.events.Publish(ctx, &domain.Event{
		Type:      domain.EventBoardReset,
		Timestamp: utils.Now(),
		SessionID: entry.board.SessionID,
		EntityID:  string(boardID),
	})

	w.logger.Infow("whiteboard reset", "board_id", boardID, "performed_by", performedBy)
	return nil
}

func (w *whiteboardLog) entry(boardID domain.BoardID) (*boardEntry, error) {
	if boardID == "" {
		return nil, apperrors.NewInvalidInputError("boardId is required")
	}
	w.mu.RLock()
	entry, exists := w.boards[boardID]
	w.mu.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError("whiteboard")
	}
	return entry, nil
}

// snapshot deep-copies the board state. Callers must hold entry.mu.
func (e *boardEntry) snapshot() domain.WhiteboardBoard {
	clone := e.board
	clone.Operations = append([]domain.WhiteboardOperation(nil), e.board.Operations...)
	clone.Participants = make([]domain.ParticipantID, 0, len(e.participants))
	for id := range e.participants {
		clone.Participants = append(clone.Participants, id)
	}
	return clone
}
