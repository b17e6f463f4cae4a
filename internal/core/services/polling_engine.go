package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
	"collabcore/pkg/utils"
	"collabcore/pkg/validation"
)

type toolEntry struct {
	mu      sync.Mutex
	deleted bool
	tool    domain.InteractiveTool
	// ballots is the private per-participant selection used for the
	// retract-then-apply vote update. Never exposed to callers.
	ballots map[domain.ParticipantID][]domain.OptionID
}

type pollingEngine struct {
	mu    sync.RWMutex
	tools map[domain.ToolID]*toolEntry

	events ports.EventPublisher
	logger *zap.SugaredLogger
}

// NewPollingEngine creates an empty in-memory polling engine.
func NewPollingEngine(events ports.EventPublisher, logger *zap.SugaredLogger) ports.PollingEngine {
	return &pollingEngine{
		tools:  make(map[domain.ToolID]*toolEntry),
		events: events,
		logger: logger,
	}
}

func (p *pollingEngine) CreateTool(ctx context.Context, params ports.CreateToolParams) (*domain.InteractiveTool, error) {
	if params.SessionID == "" {
		return nil, apperrors.NewInvalidInputError("sessionId is required")
	}
	if params.CreatedBy == "" {
		return nil, apperrors.NewInvalidInputError("createdBy is required")
	}
	if !params.Type.Valid() {
		return nil, apperrors.NewInvalidInputError("unknown tool type")
	}
	if err := validation.ValidateQuestion(params.Question); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if err := validation.ValidateOptions(params.Options); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	tool := domain.InteractiveTool{
		ID:            domain.ToolID(utils.GenerateToolID()),
		SessionID:     params.SessionID,
		CreatedBy:     params.CreatedBy,
		Type:          params.Type,
		Question:      params.Question,
		Options:       make([]domain.ToolOption, 0, len(params.Options)),
		AllowMultiple: params.AllowMultiple,
		IsAnonymous:   params.IsAnonymous,
		CreatedAt:     utils.Now(),
	}
	if params.ClosesAt != nil {
		closesAt := *params.ClosesAt
		tool.ClosesAt = &closesAt
	}
	for _, label := range params.Options {
		tool.Options = append(tool.Options, domain.ToolOption{
			ID:    domain.OptionID(utils.GenerateID()),
			Label: label,
		})
	}

	p.mu.Lock()
	p.tools[tool.ID] = &toolEntry{
		tool:    tool,
		ballots: make(map[domain.ParticipantID][]domain.OptionID),
	}
	p.mu.Unlock()

	p.logger.Debugw("interactive tool created",
		"tool_id", tool.ID,
		"session_id", params.SessionID,
		"type", params.Type,
	)

	snapshot := cloneTool(&tool)
	return &snapshot, nil
}

func (p *pollingEngine) GetTool(ctx context.Context, toolID domain.ToolID) (*domain.InteractiveTool, error) {
	entry, err := p.entry(toolID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("interactive tool")
	}
	snapshot := cloneTool(&entry.tool)
	return &snapshot, nil
}

func (p *pollingEngine) ListToolsBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.InteractiveTool, error) {
	p.mu.RLock()
	entries := make([]*toolEntry, 0, len(p.tools))
	for _, entry := range p.tools {
		entries = append(entries, entry)
	}
	p.mu.RUnlock()

	tools := make([]*domain.InteractiveTool, 0)
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted && entry.tool.SessionID == sessionID {
			snapshot := cloneTool(&entry.tool)
			tools = append(tools, &snapshot)
		}
		entry.mu.Unlock()
	}
	return tools, nil
}

// Vote replaces the participant's selection. The previous ballot is fully
// retracted (counters decremented) before the new one is applied, all
// under the tool lock, so switching votes never double-counts.
func (p *pollingEngine) Vote(ctx context.Context, toolID domain.ToolID, participantID domain.ParticipantID, optionIDs []domain.OptionID) (*domain.InteractiveTool, error) {
	if participantID == "" {
		return nil, apperrors.NewInvalidInputError("participantId is required")
	}

	entry, err := p.entry(toolID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("interactive tool")
	}

	now := utils.Now()
	if entry.tool.Closed(now) {
		return nil, apperrors.NewInvalidStateError("tool is closed")
	}

	// Unknown option ids are silently dropped; duplicates collapse.
	valid := make([]domain.OptionID, 0, len(optionIDs))
	seen := make(map[domain.OptionID]bool, len(optionIDs))
	for _, id := range optionIDs {
		if seen[id] || findOption(&entry.tool, id) < 0 {
			continue
		}
		seen[id] = true
		valid = append(valid, id)
	}
	if len(valid) == 0 {
		return nil, apperrors.NewInvalidInputError("no valid options in vote")
	}
	if !entry.tool.AllowMultiple && len(valid) > 1 {
		valid = valid[:1]
	}

	// Retract, then apply.
	for _, prev := range entry.ballots[participantID] {
		if i := findOption(&entry.tool, prev); i >= 0 {
			entry.tool.Options[i].Votes--
		}
	}
	for _, id := range valid {
		if i := findOption(&entry.tool, id); i >= 0 {
			entry.tool.Options[i].Votes++
		}
	}
	entry.ballots[participantID] = valid

	p.events.Publish(ctx, &domain.Event{
		Type:      domain.EventVoteCast,
		Timestamp: now,
		SessionID: entry.tool.SessionID,
		EntityID:  string(toolID),
	})

	snapshot := cloneTool(&entry.tool)
	return &snapshot, nil
}

// CloseTool closes the tool immediately. Closing an already closed tool is
// a no-op.
func (p *pollingEngine) CloseTool(ctx context.Context, toolID domain.ToolID) error {
	entry, err := p.entry(toolID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return apperrors.NewNotFoundError("interactive tool")
	}

	now := utils.Now()
	if entry.tool.Closed(now) {
		return nil
	}
	entry.tool.ClosesAt = &now

	p.events.Publish(ctx, &domain.Event{
		Type:      domain.EventToolClosed,
		Timestamp: now,
		SessionID: entry.tool.SessionID,
		EntityID:  string(toolID),
	})
	return nil
}

func (p *pollingEngine) GetResults(ctx context.Context, toolID domain.ToolID) (*domain.ToolResults, error) {
	entry, err := p.entry(toolID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return nil, apperrors.NewNotFoundError("interactive tool")
	}

	total := 0
	for _, option := range entry.tool.Options {
		total += option.Votes
	}

	results := &domain.ToolResults{
		ToolID:     entry.tool.ID,
		Question:   entry.tool.Question,
		TotalVotes: total,
		Options:    make([]domain.OptionResult, 0, len(entry.tool.Options)),
		Closed:     entry.tool.Closed(utils.Now()),
	}
	for _, option := range entry.tool.Options {
		percentage := 0.0
		if total > 0 {
			percentage = float64(option.Votes) / float64(total) * 100
		}
		results.Options = append(results.Options, domain.OptionResult{
			OptionID:   option.ID,
			Label:      option.Label,
			Votes:      option.Votes,
			Percentage: percentage,
		})
	}
	return results, nil
}

func (p *pollingEngine) entry(toolID domain.ToolID) (*toolEntry, error) {
	if toolID == "" {
		return nil, apperrors.NewInvalidInputError("toolId is required")
	}
	p.mu.RLock()
	entry, exists := p.tools[toolID]
	p.mu.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError("interactive tool")
	}
	return entry, nil
}

func findOption(tool *domain.InteractiveTool, optionID domain.OptionID) int {
	for i := range tool.Options {
		if tool.Options[i].ID == optionID {
			return i
		}
	}
	return -1
}

func cloneTool(t *domain.InteractiveTool) domain.InteractiveTool {
	clone := *t
	clone.Options = append([]domain.ToolOption(nil), t.Options...)
	if t.ClosesAt != nil {
		closesAt := *t.ClosesAt
		clone.ClosesAt = &closesAt
	}
	return clone
}
