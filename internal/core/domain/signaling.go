package domain

import "time"

type PeerRole string

const (
	RoleHost        PeerRole = "host"
	RolePresenter   PeerRole = "presenter"
	RoleParticipant PeerRole = "participant"
	RoleViewer      PeerRole = "viewer"
)

// Valid reports whether the role is one of the known peer roles.
func (r PeerRole) Valid() bool {
	switch r {
	case RoleHost, RolePresenter, RoleParticipant, RoleViewer:
		return true
	}
	return false
}

// SessionMetadata carries call-level flags toggled while the session runs.
type SessionMetadata struct {
	Tags            []string `json:"tags"`
	IsRecording     bool     `json:"is_recording"`
	IsScreenSharing bool     `json:"is_screen_sharing"`
}

// PeerConnectionState tracks one peer inside a signaling session. The
// description and ICE candidates are opaque strings; the core never
// inspects SDP content.
type PeerConnectionState struct {
	PeerID               PeerID    `json:"peer_id"`
	Role                 PeerRole  `json:"role"`
	Description          string    `json:"description,omitempty"`
	PendingIceCandidates []string  `json:"pending_ice_candidates"`
	LastActivityAt       time.Time `json:"last_activity_at"`
}

// SignalingSession is the coordination record for a WebRTC call,
// independent of actual media transport. The session expires on a sliding
// TTL: any peer mutation pushes ExpiresAt forward.
type SignalingSession struct {
	ID        SessionID                      `json:"session_id"`
	RoomID    RoomID                         `json:"room_id"`
	HostID    PeerID                         `json:"host_id"`
	CreatedAt time.Time                      `json:"created_at"`
	ExpiresAt time.Time                      `json:"expires_at"`
	Metadata  SessionMetadata                `json:"metadata"`
	Peers     map[PeerID]PeerConnectionState `json:"peers"`
}

// SessionSummary is the creation/list view of a signaling session.
type SessionSummary struct {
	ID        SessionID       `json:"session_id"`
	RoomID    RoomID          `json:"room_id"`
	HostID    PeerID          `json:"host_id"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Metadata  SessionMetadata `json:"metadata"`
	PeerCount int             `json:"peer_count"`
}
