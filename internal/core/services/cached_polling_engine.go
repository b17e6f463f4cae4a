package services

import (
	"context"
	"fmt"
	"time"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	"collabcore/pkg/cache"
)

// CachedPollingEngine wraps a PollingEngine with short-TTL caching of
// results and session listings. Live result dashboards poll aggressively,
// so even a couple of seconds of staleness cuts most of the read load.
type CachedPollingEngine struct {
	base       ports.PollingEngine
	cache      *cache.Cache
	resultsTTL time.Duration
}

// NewCachedPollingEngine wraps base with a results cache using the given TTL.
func NewCachedPollingEngine(base ports.PollingEngine, resultsTTL time.Duration) *CachedPollingEngine {
	return &CachedPollingEngine{
		base:       base,
		cache:      cache.New(resultsTTL),
		resultsTTL: resultsTTL,
	}
}

func (s *CachedPollingEngine) CreateTool(ctx context.Context, params ports.CreateToolParams) (*domain.InteractiveTool, error) {
	tool, err := s.base.CreateTool(ctx, params)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(fmt.Sprintf("tools:session:%s", params.SessionID))
	return tool, nil
}

func (s *CachedPollingEngine) GetTool(ctx context.Context, toolID domain.ToolID) (*domain.InteractiveTool, error) {
	return s.base.GetTool(ctx, toolID)
}

func (s *CachedPollingEngine) ListToolsBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.InteractiveTool, error) {
	key := fmt.Sprintf("tools:session:%s", sessionID)
	value, err := s.cache.GetOrSet(ctx, key, s.resultsTTL, func(ctx context.Context) (interface{}, error) {
		return s.base.ListToolsBySession(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	return value.([]*domain.InteractiveTool), nil
}

func (s *CachedPollingEngine) Vote(ctx context.Context, toolID domain.ToolID, participantID domain.ParticipantID, optionIDs []domain.OptionID) (*domain.InteractiveTool, error) {
	tool, err := s.base.Vote(ctx, toolID, participantID, optionIDs)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(fmt.Sprintf("results:%s", toolID))
	s.cache.Invalidate(fmt.Sprintf("tools:session:%s", tool.SessionID))
	return tool, nil
}

func (s *CachedPollingEngine) CloseTool(ctx context.Context, toolID domain.ToolID) error {
	if err := s.base.CloseTool(ctx, toolID); err != nil {
		return err
	}
	s.cache.Invalidate(fmt.Sprintf("results:%s", toolID))
	s.cache.Invalidate("tools:session:")
	return nil
}

func (s *CachedPollingEngine) GetResults(ctx context.Context, toolID domain.ToolID) (*domain.ToolResults, error) {
	key := fmt.Sprintf("results:%s", toolID)
	value, err := s.cache.GetOrSet(ctx, key, s.resultsTTL, func(ctx context.Context) (interface{}, error) {
		return s.base.GetResults(ctx, toolID)
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.ToolResults), nil
}

// Stop terminates the cache sweeper.
func (s *CachedPollingEngine) Stop() {
	s.cache.Stop()
}
