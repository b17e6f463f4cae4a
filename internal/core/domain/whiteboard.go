package domain

import "time"

type OperationType string

const (
	OpDraw       OperationType = "draw"
	OpErase      OperationType = "erase"
	OpText       OperationType = "text"
	OpShape      OperationType = "shape"
	OpStickyNote OperationType = "sticky-note"
)

// Valid reports whether the operation type is one of the known kinds.
func (o OperationType) Valid() bool {
	switch o {
	case OpDraw, OpErase, OpText, OpShape, OpStickyNote:
		return true
	}
	return false
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OperationPayload carries the drawing data of a whiteboard operation.
// Known fields are typed; Extra holds client-specific JSON-compatible
// values that the core round-trips without interpreting.
type OperationPayload struct {
	Color  string                 `json:"color,omitempty"`
	Width  float64                `json:"width,omitempty"`
	Text   string                 `json:"text,omitempty"`
	Points []Point                `json:"points,omitempty"`
	Extra  map[string]interface{} `json:"extra,omitempty"`
}

// WhiteboardOperation is one immutable entry of a board's append-only log.
// Sequence numbers are strictly increasing, gapless, starting at 1.
type WhiteboardOperation struct {
	ID          OperationID      `json:"operation_id"`
	PerformedBy ParticipantID    `json:"performed_by"`
	Type        OperationType    `json:"type"`
	Payload     OperationPayload `json:"payload"`
	Sequence    uint64           `json:"sequence"`
	CreatedAt   time.Time        `json:"created_at"`
}

// WhiteboardBoard is the snapshot view of a board: its participant set and
// the full operation log in append order.
type WhiteboardBoard struct {
	ID           BoardID               `json:"board_id"`
	SessionID    SessionID             `json:"session_id"`
	CreatedBy    ParticipantID         `json:"created_by"`
	Participants []ParticipantID       `json:"participants"`
	Operations   []WhiteboardOperation `json:"operations"`
	CreatedAt    time.Time             `json:"created_at"`
}
