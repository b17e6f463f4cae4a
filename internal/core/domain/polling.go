package domain

import "time"

type ToolType string

const (
	ToolPoll   ToolType = "poll"
	ToolQuiz   ToolType = "quiz"
	ToolSurvey ToolType = "survey"
)

// Valid reports whether the tool type is one of the known kinds.
func (t ToolType) Valid() bool {
	switch t {
	case ToolPoll, ToolQuiz, ToolSurvey:
		return true
	}
	return false
}

// ToolOption is one selectable answer with its running vote counter.
type ToolOption struct {
	ID    OptionID `json:"option_id"`
	Label string   `json:"label"`
	Votes int      `json:"votes"`
}

// InteractiveTool is a poll, quiz or survey. Per-participant ballots are
// registry-private; a participant's previous selection is fully retracted
// before a new one is counted, so option counters never double-count.
type InteractiveTool struct {
	ID            ToolID        `json:"tool_id"`
	SessionID     SessionID     `json:"session_id"`
	CreatedBy     ParticipantID `json:"created_by"`
	Type          ToolType      `json:"type"`
	Question      string        `json:"question"`
	Options       []ToolOption  `json:"options"`
	AllowMultiple bool          `json:"allow_multiple"`
	IsAnonymous   bool          `json:"is_anonymous"`
	ClosesAt      *time.Time    `json:"closes_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Closed reports whether the tool no longer accepts votes at the given time.
func (t *InteractiveTool) Closed(now time.Time) bool {
	return t.ClosesAt != nil && now.After(*t.ClosesAt)
}

// OptionResult is one option's tally in a results view.
type OptionResult struct {
	OptionID   OptionID `json:"option_id"`
	Label      string   `json:"label"`
	Votes      int      `json:"votes"`
	Percentage float64  `json:"percentage"`
}

// ToolResults is the aggregate view returned to clients. Percentages are 0
// when no votes have been cast.
type ToolResults struct {
	ToolID     ToolID         `json:"tool_id"`
	Question   string         `json:"question"`
	TotalVotes int            `json:"total_votes"`
	Options    []OptionResult `json:"options"`
	Closed     bool           `json:"closed"`
}
