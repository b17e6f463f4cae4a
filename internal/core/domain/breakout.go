package domain

import "time"

type BreakoutStatus string

const (
	BreakoutDraft  BreakoutStatus = "draft"
	BreakoutLive   BreakoutStatus = "live"
	BreakoutClosed BreakoutStatus = "closed"
)

// RoomAssignment places a participant in a breakout room.
type RoomAssignment struct {
	ParticipantID ParticipantID `json:"participant_id"`
	JoinedAt      time.Time     `json:"joined_at"`
	Role          PeerRole      `json:"role"`
}

// BreakoutRoom is a sub-grouping of participants split out of a main
// session for small-group work.
type BreakoutRoom struct {
	ID          RoomID           `json:"room_id"`
	Name        string           `json:"name"`
	IsLocked    bool             `json:"is_locked"`
	Assignments []RoomAssignment `json:"assignments"`
}

// BreakoutSession owns an ordered set of rooms. A participant appears in
// at most one room's assignments at any time; cross-room moves go through
// MoveParticipant. Once closed, the session accepts no further mutation.
type BreakoutSession struct {
	ID         BreakoutSessionID `json:"breakout_session_id"`
	SessionID  SessionID         `json:"session_id"`
	Status     BreakoutStatus    `json:"status"`
	AutoAssign bool              `json:"auto_assign"`
	Rooms      []BreakoutRoom    `json:"rooms"`
	CreatedAt  time.Time         `json:"created_at"`
}
