package domain

import "time"

type MediaType string

const (
	MediaScreen      MediaType = "screen"
	MediaWindow      MediaType = "window"
	MediaApplication MediaType = "application"
	MediaTab         MediaType = "tab"
)

// Valid reports whether the media type is one of the known capture kinds.
func (m MediaType) Valid() bool {
	switch m {
	case MediaScreen, MediaWindow, MediaApplication, MediaTab:
		return true
	}
	return false
}

// ShareViewer is a watcher of a screen share, kept alive by heartbeats.
type ShareViewer struct {
	ViewerID   ParticipantID `json:"viewer_id"`
	JoinedAt   time.Time     `json:"joined_at"`
	LastSeenAt time.Time     `json:"last_seen_at"`
}

// ScreenShareSession tracks one active share. At most one share exists per
// (room, presenter) pair; restarting replaces the media type and metadata
// in place.
type ScreenShareSession struct {
	ID             ShareID           `json:"share_id"`
	RoomID         RoomID            `json:"room_id"`
	PresenterID    ParticipantID     `json:"presenter_id"`
	MediaType      MediaType         `json:"media_type"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
	LastActivityAt time.Time         `json:"last_activity_at"`
	Viewers        []ShareViewer     `json:"viewers"`
}
