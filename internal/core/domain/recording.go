package domain

import "time"

type RecordingStatus string

const (
	RecordingQueued     RecordingStatus = "queued"
	RecordingActive     RecordingStatus = "recording"
	RecordingProcessing RecordingStatus = "processing"
	RecordingComplete   RecordingStatus = "complete"
	RecordingFailed     RecordingStatus = "failed"
	RecordingCancelled  RecordingStatus = "cancelled"
)

// Terminal reports whether the status accepts no further transitions.
func (s RecordingStatus) Terminal() bool {
	switch s {
	case RecordingComplete, RecordingFailed, RecordingCancelled:
		return true
	}
	return false
}

// RecordingSegment is one captured chunk. Segments are append-only and
// never reordered.
type RecordingSegment struct {
	ID              SegmentID `json:"segment_id"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	URL             string    `json:"url,omitempty"`
}

// RecordingJob is the state machine for one recording. Actual encoding is
// an external worker; only lifecycle and segment bookkeeping live here.
type RecordingJob struct {
	ID             RecordingID        `json:"recording_id"`
	SessionID      SessionID          `json:"session_id"`
	Status         RecordingStatus    `json:"status"`
	Segments       []RecordingSegment `json:"segments"`
	OutputLocation string             `json:"output_location,omitempty"`
	FailureReason  string             `json:"failure_reason,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	EndedAt        *time.Time         `json:"ended_at,omitempty"`
}
