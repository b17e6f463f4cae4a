package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
)

func newTestWhiteboard(t *testing.T) (ports.WhiteboardLog, *domain.WhiteboardBoard) {
	t.Helper()
	log := NewWhiteboardLog(ports.NoopPublisher{}, zaptest.NewLogger(t).Sugar())
	board, err := log.CreateBoard(context.Background(), "session-1", "alice")
	require.NoError(t, err)
	return log, board
}

func drawOp() domain.OperationPayload {
	return domain.OperationPayload{
		Color:  "#000000",
		Width:  2,
		Points: []domain.Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
	}
}

func TestWhiteboardLog_CreateAndMembership(t *testing.T) {
	log, board := newTestWhiteboard(t)
	ctx := context.Background()

	assert.Equal(t, []domain.ParticipantID{"alice"}, board.Participants)

	require.NoError(t, log.JoinBoard(ctx, board.ID, "bob"))
	// Joining twice is a no-op.
	require.NoError(t, log.JoinBoard(ctx, board.ID, "bob"))

	current, err := log.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.Len(t, current.Participants, 2)

	require.NoError(t, log.LeaveBoard(ctx, board.ID, "bob"))
	err = log.LeaveBoard(ctx, board.ID, "bob")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestWhiteboardLog_AppendAssignsSequence(t *testing.T) {
	log, board := newTestWhiteboard(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		op, err := log.AppendOperation(ctx, board.ID, "alice", domain.OpDraw, drawOp())
		require.NoError(t, err)
		assert.Equal(t, uint64(i), op.Sequence)
		assert.NotEmpty(t, op.ID)
	}

	_, err := log.AppendOperation(ctx, board.ID, "alice", "scribble", drawOp())
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestWhiteboardLog_ConcurrentAppendsStayGapless(t *testing.T) {
	log, board := newTestWhiteboard(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 25

	var mu sync.Mutex
	var sequences []uint64
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				op, err := log.AppendOperation(ctx, board.ID, "alice", domain.OpDraw, drawOp())
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				sequences = append(sequences, op.Sequence)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, sequences, writers*perWriter)
	sort.Slice(sequences, func(i, j int) bool { return sequences[i] < sequences[j] })
	for i, seq := range sequences {
		assert.Equal(t, uint64(i+1), seq)
	}
}

func TestWhiteboardLog_GetOperationsSince(t *testing.T) {
	log, board := newTestWhiteboard(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := log.AppendOperation(ctx, board.ID, "alice", domain.OpDraw, drawOp())
		require.NoError(t, err)
	}

	seq, err := log.GetOperationsSince(ctx, board.ID, 3)
	require.NoError(t, err)

	var got []uint64
	for op := range seq {
		got = append(got, op.Sequence)
	}
	assert.Equal(t, []uint64{4, 5}, got)

	// The iterator is restartable.
	got = got[:0]
	for op := range seq {
		got = append(got, op.Sequence)
	}
	assert.Equal(t, []uint64{4, 5}, got)

	// Catch-up beyond the tail yields nothing.
	seq, err = log.GetOperationsSince(ctx, board.ID, 99)
	require.NoError(t, err)
	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 0, count)
}

func TestWhiteboardLog_ResetBoard(t *testing.T) {
	log, board := newTestWhiteboard(t)
	ctx := context.Background()

	require.NoError(t, log.JoinBoard(ctx, board.ID, "bob"))
	for i := 0; i < 3; i++ {
		_, err := log.AppendOperation(ctx, board.ID, "bob", domain.OpDraw, drawOp())
		require.NoError(t, err)
	}

	require.NoError(t, log.ResetBoard(ctx, board.ID, "bob"))

	current, err := log.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.Empty(t, current.Operations)
	assert.Equal(t, []domain.ParticipantID{"bob"}, current.Participants)

	// Sequences restart after a reset.
	op, err := log.AppendOperation(ctx, board.ID, "bob", domain.OpDraw, drawOp())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), op.Sequence)
}

func TestWhiteboardLog_UnknownBoard(t *testing.T) {
	log, _ := newTestWhiteboard(t)
	ctx := context.Background()

	_, err := log.GetBoard(ctx, "no-such-board")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = log.AppendOperation(ctx, "no-such-board", "alice", domain.OpDraw, drawOp())
	assert.True(t, apperrors.IsNotFound(err))
	err = log.ResetBoard(ctx, "no-such-board", "alice")
	assert.True(t, apperrors.IsNotFound(err))
}
