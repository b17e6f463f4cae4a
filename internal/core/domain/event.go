package domain

import (
	"encoding/json"
	"time"
)

// EventType identifies an observable registry mutation.
type EventType string

const (
	EventSessionCreated  EventType = "signaling.session_created"
	EventPeerRegistered  EventType = "signaling.peer_registered"
	EventPeerRemoved     EventType = "signaling.peer_removed"
	EventShareStarted    EventType = "screenshare.started"
	EventShareStopped    EventType = "screenshare.stopped"
	EventBreakoutStarted EventType = "breakout.started"
	EventBreakoutClosed  EventType = "breakout.closed"
	EventParticipantMove EventType = "breakout.participant_moved"
	EventBoardOperation  EventType = "whiteboard.operation_appended"
	EventBoardReset      EventType = "whiteboard.board_reset"
	EventVoteCast        EventType = "polling.vote_cast"
	EventToolClosed      EventType = "polling.tool_closed"
	EventRecordingStatus EventType = "recording.status_changed"
	EventStreamStatus    EventType = "livestream.status_changed"
)

// Event is the read-only notification emitted after a successful registry
// mutation. Observers (moderation, analytics) consume events; they cannot
// mutate registry state through them.
type Event struct {
	Type       EventType       `json:"type"`
	InstanceID string          `json:"instance_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	SessionID  SessionID       `json:"session_id,omitempty"`
	EntityID   string          `json:"entity_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}
