package domain

// Opaque identifiers. All of them are random tokens generated at creation
// time and never reused; callers supply already-authenticated identities.
type (
	SessionID         string
	RoomID            string
	PeerID            string
	ParticipantID     string
	ShareID           string
	BreakoutSessionID string
	BoardID           string
	OperationID       string
	ToolID            string
	OptionID          string
	RecordingID       string
	SegmentID         string
	StreamID          string
)
