package domain

import "time"

type StreamStatus string

const (
	StreamIdle      StreamStatus = "idle"
	StreamPreparing StreamStatus = "preparing"
	StreamLive      StreamStatus = "live"
	StreamEnded     StreamStatus = "ended"
	StreamError     StreamStatus = "error"
)

// Terminal reports whether the status accepts no further transitions.
func (s StreamStatus) Terminal() bool {
	return s == StreamEnded || s == StreamError
}

// LiveStream is the state machine for one outbound stream. Liveness
// detection is the caller's job; the core only owns the status field and
// the heartbeat timestamp.
type LiveStream struct {
	ID              StreamID     `json:"stream_id"`
	SessionID       SessionID    `json:"session_id"`
	Provider        string       `json:"provider"`
	IngestURL       string       `json:"ingest_url"`
	PlaybackURL     string       `json:"playback_url"`
	Status          StreamStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	StartedAt       *time.Time   `json:"started_at,omitempty"`
	EndedAt         *time.Time   `json:"ended_at,omitempty"`
	LastHeartbeatAt time.Time    `json:"last_heartbeat_at"`
	ErrorMessage    string       `json:"error_message,omitempty"`
}
