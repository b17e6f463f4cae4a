package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
	"collabcore/pkg/utils"
)

func newTestPoll(t *testing.T, allowMultiple bool) (ports.PollingEngine, *domain.InteractiveTool) {
	t.Helper()
	engine := NewPollingEngine(ports.NoopPublisher{}, zaptest.NewLogger(t).Sugar())
	tool, err := engine.CreateTool(context.Background(), ports.CreateToolParams{
		SessionID:     "session-1",
		CreatedBy:     "host",
		Type:          domain.ToolPoll,
		Question:      "Lunch?",
		Options:       []string{"Pizza", "Sushi", "Salad"},
		AllowMultiple: allowMultiple,
	})
	require.NoError(t, err)
	return engine, tool
}

func TestPollingEngine_CreateValidation(t *testing.T) {
	engine := NewPollingEngine(ports.NoopPublisher{}, zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	base := ports.CreateToolParams{
		SessionID: "session-1",
		CreatedBy: "host",
		Type:      domain.ToolPoll,
		Question:  "Lunch?",
		Options:   []string{"Pizza", "Sushi"},
	}

	params := base
	params.Options = []string{"Pizza"}
	_, err := engine.CreateTool(ctx, params)
	assert.True(t, apperrors.IsInvalidInput(err))

	params = base
	params.Question = "   "
	_, err = engine.CreateTool(ctx, params)
	assert.True(t, apperrors.IsInvalidInput(err))

	params = base
	params.Type = "raffle"
	_, err = engine.CreateTool(ctx, params)
	assert.True(t, apperrors.IsInvalidInput(err))

	params = base
	params.SessionID = ""
	_, err = engine.CreateTool(ctx, params)
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestPollingEngine_VoteSwitchNeverDoubleCounts(t *testing.T) {
	engine, tool := newTestPoll(t, false)
	ctx := context.Background()
	pizza, sushi := tool.Options[0].ID, tool.Options[1].ID

	_, err := engine.Vote(ctx, tool.ID, "alice", []domain.OptionID{pizza})
	require.NoError(t, err)
	current, err := engine.Vote(ctx, tool.ID, "bob", []domain.OptionID{pizza})
	require.NoError(t, err)
	assert.Equal(t, 2, current.Options[0].Votes)

	// Alice switches: her previous ballot is retracted first.
	current, err = engine.Vote(ctx, tool.ID, "alice", []domain.OptionID{sushi})
	require.NoError(t, err)
	assert.Equal(t, 1, current.Options[0].Votes)
	assert.Equal(t, 1, current.Options[1].Votes)

	results, err := engine.GetResults(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, results.TotalVotes)
}

func TestPollingEngine_SingleChoiceKeepsFirstOption(t *testing.T) {
	engine, tool := newTestPoll(t, false)
	ctx := context.Background()
	pizza, sushi := tool.Options[0].ID, tool.Options[1].ID

	current, err := engine.Vote(ctx, tool.ID, "alice", []domain.OptionID{pizza, sushi})
	require.NoError(t, err)
	assert.Equal(t, 1, current.Options[0].Votes)
	assert.Equal(t, 0, current.Options[1].Votes)
}

func TestPollingEngine_MultipleChoice(t *testing.T) {
	engine, tool := newTestPoll(t, true)
	ctx := context.Background()
	pizza, sushi := tool.Options[0].ID, tool.Options[1].ID

	// Duplicates collapse, unknown ids are dropped.
	current, err := engine.Vote(ctx, tool.ID, "alice", []domain.OptionID{pizza, pizza, sushi, "bogus"})
	require.NoError(t, err)
	assert.Equal(t, 1, current.Options[0].Votes)
	assert.Equal(t, 1, current.Options[1].Votes)

	results, err := engine.GetResults(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, results.TotalVotes)

	_, err = engine.Vote(ctx, tool.ID, "bob", []domain.OptionID{"bogus"})
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestPollingEngine_CloseTool(t *testing.T) {
	engine, tool := newTestPoll(t, false)
	ctx := context.Background()
	pizza := tool.Options[0].ID

	_, err := engine.Vote(ctx, tool.ID, "alice", []domain.OptionID{pizza})
	require.NoError(t, err)

	require.NoError(t, engine.CloseTool(ctx, tool.ID))
	// Closing again is a no-op.
	require.NoError(t, engine.CloseTool(ctx, tool.ID))

	_, err = engine.Vote(ctx, tool.ID, "bob", []domain.OptionID{pizza})
	assert.True(t, apperrors.IsInvalidState(err))

	results, err := engine.GetResults(ctx, tool.ID)
	require.NoError(t, err)
	assert.True(t, results.Closed)
	assert.Equal(t, 1, results.TotalVotes)
}

func TestPollingEngine_ScheduledClose(t *testing.T) {
	engine := NewPollingEngine(ports.NoopPublisher{}, zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	utils.Now = func() time.Time { return base }
	defer func() { utils.Now = time.Now }()

	closesAt := base.Add(time.Minute)
	tool, err := engine.CreateTool(ctx, ports.CreateToolParams{
		SessionID: "session-1",
		CreatedBy: "host",
		Type:      domain.ToolQuiz,
		Question:  "2+2?",
		Options:   []string{"3", "4"},
		ClosesAt:  &closesAt,
	})
	require.NoError(t, err)

	_, err = engine.Vote(ctx, tool.ID, "alice", []domain.OptionID{tool.Options[1].ID})
	require.NoError(t, err)

	utils.Now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = engine.Vote(ctx, tool.ID, "bob", []domain.OptionID{tool.Options[1].ID})
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestPollingEngine_ResultsPercentages(t *testing.T) {
	engine, tool := newTestPoll(t, false)
	ctx := context.Background()

	results, err := engine.GetResults(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, results.TotalVotes)
	for _, option := range results.Options {
		assert.Zero(t, option.Percentage)
	}

	pizza, sushi := tool.Options[0].ID, tool.Options[1].ID
	_, err = engine.Vote(ctx, tool.ID, "alice", []domain.OptionID{pizza})
	require.NoError(t, err)
	_, err = engine.Vote(ctx, tool.ID, "bob", []domain.OptionID{pizza})
	require.NoError(t, err)
	_, err = engine.Vote(ctx, tool.ID, "carol", []domain.OptionID{sushi})
	require.NoError(t, err)

	results, err = engine.GetResults(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, results.TotalVotes)
	assert.InDelta(t, 66.6, results.Options[0].Percentage, 0.1)
	assert.InDelta(t, 33.3, results.Options[1].Percentage, 0.1)
}

func TestPollingEngine_ConcurrentVoteConservation(t *testing.T) {
	engine, tool := newTestPoll(t, false)
	ctx := context.Background()

	const voters = 20
	const switches = 10

	var wg sync.WaitGroup
	for v := 0; v < voters; v++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			participant := domain.ParticipantID(string(rune('a' + v)))
			for i := 0; i < switches; i++ {
				option := tool.Options[(v+i)%len(tool.Options)].ID
				if _, err := engine.Vote(ctx, tool.ID, participant, []domain.OptionID{option}); err != nil {
					t.Error(err)
					return
				}
			}
		}(v)
	}
	wg.Wait()

	// Every voter holds exactly one counted ballot regardless of switches.
	results, err := engine.GetResults(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, results.TotalVotes)
}

func TestPollingEngine_ListToolsBySession(t *testing.T) {
	engine, tool := newTestPoll(t, false)
	ctx := context.Background()

	tools, err := engine.ListToolsBySession(ctx, tool.SessionID)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, tool.ID, tools[0].ID)

	tools, err = engine.ListToolsBySession(ctx, "other-session")
	require.NoError(t, err)
	assert.Empty(t, tools)
}
