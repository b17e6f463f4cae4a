package ports

import (
	"context"
	"iter"
	"time"

	"collabcore/internal/core/domain"
)

// UpsertOutcome tags find-or-create operations so callers and tests can
// tell which path was taken.
type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
)

// SignalingRegistry tracks WebRTC signaling sessions and their peers.
// Any peer mutation refreshes the session's sliding TTL.
type SignalingRegistry interface {
	CreateSession(ctx context.Context, roomID domain.RoomID, hostID domain.PeerID, tags []string) (*domain.SessionSummary, error)
	GetSession(ctx context.Context, sessionID domain.SessionID) (*domain.SignalingSession, error)
	ListSessions(ctx context.Context) ([]*domain.SessionSummary, error)
	RegisterPeer(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID, role domain.PeerRole, description string) (*domain.PeerConnectionState, UpsertOutcome, error)
	AddIceCandidate(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID, candidate string) ([]string, error)
	ConsumeIceCandidates(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID) ([]string, error)
	UpdatePeerDescription(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID, description string) error
	MarkScreenSharing(ctx context.Context, sessionID domain.SessionID, active bool) error
	MarkRecording(ctx context.Context, sessionID domain.SessionID, active bool) error
	RemovePeer(ctx context.Context, sessionID domain.SessionID, peerID domain.PeerID) error
	CleanupExpired(ctx context.Context, now time.Time) int
}

// ScreenShareRegistry tracks active screen shares and their viewers.
type ScreenShareRegistry interface {
	StartShare(ctx context.Context, roomID domain.RoomID, presenterID domain.ParticipantID, mediaType domain.MediaType, metadata map[string]string) (*domain.ScreenShareSession, UpsertOutcome, error)
	StopShare(ctx context.Context, shareID domain.ShareID) error
	GetShare(ctx context.Context, shareID domain.ShareID) (*domain.ScreenShareSession, error)
	// GetActiveShareByRoom returns the room's first active share, or nil
	// when nobody is sharing.
	GetActiveShareByRoom(ctx context.Context, roomID domain.RoomID) (*domain.ScreenShareSession, error)
	ListShares(ctx context.Context) ([]*domain.ScreenShareSession, error)
	RegisterViewer(ctx context.Context, shareID domain.ShareID, viewerID domain.ParticipantID) error
	ViewerHeartbeat(ctx context.Context, shareID domain.ShareID, viewerID domain.ParticipantID) error
	RemoveViewer(ctx context.Context, shareID domain.ShareID, viewerID domain.ParticipantID) error
	Cleanup(ctx context.Context, now time.Time) int
}

// RoomSpec names a breakout room to create.
type RoomSpec struct {
	Name string
}

// BreakoutOrchestrator manages breakout sessions and room assignments.
//
// AssignParticipant deduplicates only within the room it targets. Callers
// that may be re-homing a participant must locate the current room via
// FindParticipantRoom and route through MoveParticipant; that contract is
// what keeps a participant in at most one room.
type BreakoutOrchestrator interface {
	CreateBreakoutSession(ctx context.Context, sessionID domain.SessionID, rooms []RoomSpec, autoAssign bool) (*domain.BreakoutSession, error)
	GetBreakoutSession(ctx context.Context, id domain.BreakoutSessionID) (*domain.BreakoutSession, error)
	Start(ctx context.Context, id domain.BreakoutSessionID) (*domain.BreakoutSession, error)
	Close(ctx context.Context, id domain.BreakoutSessionID) (*domain.BreakoutSession, error)
	AssignParticipant(ctx context.Context, id domain.BreakoutSessionID, roomID domain.RoomID, participantID domain.ParticipantID, role domain.PeerRole) error
	MoveParticipant(ctx context.Context, id domain.BreakoutSessionID, fromRoomID, toRoomID domain.RoomID, participantID domain.ParticipantID) error
	RemoveParticipant(ctx context.Context, id domain.BreakoutSessionID, roomID domain.RoomID, participantID domain.ParticipantID) error
	ToggleRoomLock(ctx context.Context, id domain.BreakoutSessionID, roomID domain.RoomID, locked bool) error
	FindParticipantRoom(ctx context.Context, id domain.BreakoutSessionID, participantID domain.ParticipantID) (domain.RoomID, bool, error)
}

// WhiteboardLog manages per-board append-only operation logs.
type WhiteboardLog interface {
	CreateBoard(ctx context.Context, sessionID domain.SessionID, createdBy domain.ParticipantID) (*domain.WhiteboardBoard, error)
	GetBoard(ctx context.Context, boardID domain.BoardID) (*domain.WhiteboardBoard, error)
	JoinBoard(ctx context.Context, boardID domain.BoardID, participantID domain.ParticipantID) error
	LeaveBoard(ctx context.Context, boardID domain.BoardID, participantID domain.ParticipantID) error
	AppendOperation(ctx context.Context, boardID domain.BoardID, performedBy domain.ParticipantID, opType domain.OperationType, payload domain.OperationPayload) (*domain.WhiteboardOperation, error)
	// GetOperationsSince returns a finite, restartable iterator over
	// operations with sequence > afterSequence, in append order. Used for
	// client reconnection catch-up.
	GetOperationsSince(ctx context.Context, boardID domain.BoardID, afterSequence uint64) (iter.Seq[domain.WhiteboardOperation], error)
	ResetBoard(ctx context.Context, boardID domain.BoardID, performedBy domain.ParticipantID) error
}

// CreateToolParams describes a poll, quiz or survey to create.
type CreateToolParams struct {
	SessionID     domain.SessionID
	CreatedBy     domain.ParticipantID
	Type          domain.ToolType
	Question      string
	Options       []string
	AllowMultiple bool
	IsAnonymous   bool
	ClosesAt      *time.Time
}

// PollingEngine manages interactive tools and their votes.
type PollingEngine interface {
	CreateTool(ctx context.Context, params CreateToolParams) (*domain.InteractiveTool, error)
	GetTool(ctx context.Context, toolID domain.ToolID) (*domain.InteractiveTool, error)
	ListToolsBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.InteractiveTool, error)
	Vote(ctx context.Context, toolID domain.ToolID, participantID domain.ParticipantID, optionIDs []domain.OptionID) (*domain.InteractiveTool, error)
	CloseTool(ctx context.Context, toolID domain.ToolID) error
	GetResults(ctx context.Context, toolID domain.ToolID) (*domain.ToolResults, error)
}

// SegmentParams describes a segment to append. Missing timestamps default
// to the current time.
type SegmentParams struct {
	StartedAt *time.Time
	EndedAt   *time.Time
	URL       string
}

// RecordingCoordinator manages recording job lifecycles and segments.
//
// StartRecording creates a job already recording. ScheduleRecording is the
// explicit scheduling path that makes the queued state reachable;
// ActivateRecording promotes a queued job. StopRecording finalizes the job
// directly when no transcode worker is attached; BeginProcessing and
// CompleteRecording are the worker-driven path.
type RecordingCoordinator interface {
	StartRecording(ctx context.Context, sessionID domain.SessionID) (*domain.RecordingJob, error)
	ScheduleRecording(ctx context.Context, sessionID domain.SessionID) (*domain.RecordingJob, error)
	ActivateRecording(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error)
	GetRecording(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error)
	ListRecordingsBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.RecordingJob, error)
	AppendSegment(ctx context.Context, recordingID domain.RecordingID, params SegmentParams) (*domain.RecordingSegment, error)
	StopRecording(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error)
	BeginProcessing(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error)
	CompleteRecording(ctx context.Context, recordingID domain.RecordingID, outputLocation string) (*domain.RecordingJob, error)
	FailRecording(ctx context.Context, recordingID domain.RecordingID, reason string) (*domain.RecordingJob, error)
	CancelRecording(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error)
	CleanupOlderThan(ctx context.Context, days int) int
}

// LiveStreamCoordinator manages live stream lifecycles and heartbeats.
type LiveStreamCoordinator interface {
	CreateStream(ctx context.Context, sessionID domain.SessionID, provider, ingestURL, playbackURL string) (*domain.LiveStream, error)
	GetStream(ctx context.Context, streamID domain.StreamID) (*domain.LiveStream, error)
	ListStreamsBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.LiveStream, error)
	GoLive(ctx context.Context, streamID domain.StreamID) (*domain.LiveStream, error)
	EndStream(ctx context.Context, streamID domain.StreamID) (*domain.LiveStream, error)
	FailStream(ctx context.Context, streamID domain.StreamID, errorMessage string) (*domain.LiveStream, error)
	Heartbeat(ctx context.Context, streamID domain.StreamID) error
}
