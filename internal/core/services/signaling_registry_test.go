package services

import (
	"context"
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

func newTestSignalingRegistry(t *testing.T) ports.SignalingRegistry {
	t.Helper()
	return NewSignalingRegistry(SignalingConfig{
		SessionTTL:  30 * time.Minute,
		PeerIdleTTL: 5 * time.Minute,
	}, ports.NoopPublisher{}, zaptest.NewLogger(t).Sugar())
}

func TestSignalingRegistry_CreateAndGetSession(t *testing.T) {
	reg := newTestSignalingRegistry(t)
	ctx := context.Background()

	summary, err := reg.CreateSession(ctx, "room-1", "host-1", []string{"standup"})
	require.NoError(t, err)
	require.NotEmpty(t, summary.ID)
	assert.Equal(t, domain.RoomID("room-1"), summary.RoomID)
	assert.Equal(t, domain.PeerID("host-1"), summary.HostID)
	assert.Equal(t, 0, summary.PeerCount)
	assert.Equal(t, []string{"standup"}, summary.Metadata.Tags)

	session, err := reg.GetSession(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, session.ID)
	assert.Empty(t, session.Peers)

	_, err = reg.CreateSession(ctx, "", "host-1", nil)
	assert.True(t, apperrors.IsInvalidInput(err))

	_, err = reg.GetSession(ctx, "no-such-session")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSignalingRegistry_RegisterPeerIdempotent(t *testing.T) {
	reg := newTestSignalingRegistry(t)
	ctx := context.Background()

	summary, err := reg.CreateSession(ctx, "room-1", "host-1", nil)
	require.NoError(t, err)

	peer, outcome, err := reg.RegisterPeer(ctx, summary.ID, "peer-a", domain.RoleParticipant, "offer-sdp")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeCreated, outcome)
	assert.Equal(t, "offer-sdp", peer.Description)

	// Re-registering the same peer updates rather than duplicating.
	peer, outcome, err = reg.RegisterPeer(ctx, summary.ID, "peer-a", domain.RolePresenter, "")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeUpdated, outcome)
	assert.Equal(t, domain.RolePresenter, peer.Role)
	assert.Equal(t, "offer-sdp", peer.Description)

	session, err := reg.GetSession(ctx, summary.ID)
	require.NoError(t, err)
	assert.Len(t, session.Peers, 1)

	_, _, err = reg.RegisterPeer(ctx, summary.ID, "peer-b", "director", "")
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestSignalingRegistry_IceCandidateQueue(t *testing.T) {
	reg := newTestSignalingRegistry(t)
	ctx := context.Background()

	summary, err := reg.CreateSession(ctx, "room-1", "host-1", nil)
	require.NoError(t, err)
	_, _, err = reg.RegisterPeer(ctx, summary.ID, "peer-a", domain.RoleParticipant, "")
	require.NoError(t, err)

	pending, err := reg.AddIceCandidate(ctx, summary.ID, "peer-a", "candidate-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"candidate-1"}, pending)

	pending, err = reg.AddIceCandidate(ctx, summary.ID, "peer-a", "candidate-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"candidate-1", "candidate-2"}, pending)

	drained, err := reg.ConsumeIceCandidates(ctx, summary.ID, "peer-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"candidate-1", "candidate-2"}, drained)

	// A second consume finds an empty, non-nil queue.
	drained, err = reg.ConsumeIceCandidates(ctx, summary.ID, "peer-a")
	require.NoError(t, err)
	require.NotNil(t, drained)
	assert.Empty(t, drained)

	_, err = reg.AddIceCandidate(ctx, summary.ID, "ghost", "candidate-3")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSignalingRegistry_RemoveLastPeerDropsSession(t *testing.T) {
	reg := newTestSignalingRegistry(t)
	ctx := context.Background()

	summary, err := reg.CreateSession(ctx, "room-1", "host-1", nil)
	require.NoError(t, err)
	_, _, err = reg.RegisterPeer(ctx, summary.ID, "peer-a", domain.RoleParticipant, "")
	require.NoError(t, err)
	_, _, err = reg.RegisterPeer(ctx, summary.ID, "peer-b", domain.RoleViewer, "")
	require.NoError(t, err)

	require.NoError(t, reg.RemovePeer(ctx, summary.ID, "peer-a"))
	session, err := reg.GetSession(ctx, summary.ID)
	require.NoError(t, err)
	assert.Len(t, session.Peers, 1)

	require.NoError(t, reg.RemovePeer(ctx, summary.ID, "peer-b"))
	_, err = reg.GetSession(ctx, summary.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSignalingRegistry_SlidingTTL(t *testing.T) {
	reg := newTestSignalingRegistry(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	utils.Now = func() time.Time { return base }
	defer func() { utils.Now = time.Now }()

	summary, err := reg.CreateSession(ctx, "room-1", "host-1", nil)
	require.NoError(t, err)
	assert.Equal(t, base.Add(30*time.Minute), summary.ExpiresAt)

	// A peer mutation 10 minutes later pushes the expiry forward.
	utils.Now = func() time.Time { return base.Add(10 * time.Minute) }
	_, _, err = reg.RegisterPeer(ctx, summary.ID, "peer-a", domain.RoleParticipant, "")
	require.NoError(t, err)

	session, err := reg.GetSession(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, base.Add(40*time.Minute), session.ExpiresAt)

	// Metadata flags do not refresh the TTL.
	utils.Now = func() time.Time { return base.Add(20 * time.Minute) }
	require.NoError(t, reg.MarkRecording(ctx, summary.ID, true))

	session, err = reg.GetSession(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, base.Add(40*time.Minute), session.ExpiresAt)
	assert.True(t, session.Metadata.IsRecording)
}

func TestSignalingRegistry_CleanupExpired(t *testing.T) {
	reg := newTestSignalingRegistry(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	utils.Now = func() time.Time { return base }
	defer func() { utils.Now = time.Now }()

	stale, err := reg.CreateSession(ctx, "room-stale", "host-1", nil)
	require.NoError(t, err)
	_, _, err = reg.RegisterPeer(ctx, stale.ID, "peer-a", domain.RoleParticipant, "")
	require.NoError(t, err)

	utils.Now = func() time.Time { return base.Add(29 * time.Minute) }
	fresh, err := reg.CreateSession(ctx, "room-fresh", "host-2", nil)
	require.NoError(t, err)
	_, _, err = reg.RegisterPeer(ctx, fresh.ID, "peer-b", domain.RoleParticipant, "")
	require.NoError(t, err)

	removed := reg.CleanupExpired(ctx, base.Add(31*time.Minute))
	assert.Equal(t, 1, removed)

	_, err = reg.GetSession(ctx, stale.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = reg.GetSession(ctx, fresh.ID)
	assert.NoError(t, err)

	// Idempotent: nothing left to remove at the same instant.
	assert.Equal(t, 0, reg.CleanupExpired(ctx, base.Add(31*time.Minute)))
}

func TestSignalingRegistry_CleanupPrunesIdlePeers(t *testing.T) {
	reg := newTestSignalingRegistry(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	utils.Now = func() time.Time { return base }
	defer func() { utils.Now = time.Now }()

	summary, err := reg.CreateSession(ctx, "room-1", "host-1", nil)
	require.NoError(t, err)
	_, _, err = reg.RegisterPeer(ctx, summary.ID, "idle-peer", domain.RoleParticipant, "")
	require.NoError(t, err)

	utils.Now = func() time.Time { return base.Add(4 * time.Minute) }
	_, _, err = reg.RegisterPeer(ctx, summary.ID, "active-peer", domain.RoleParticipant, "")
	require.NoError(t, err)

	removed := reg.CleanupExpired(ctx, base.Add(6*time.Minute))
	assert.Equal(t, 0, removed)

	session, err := reg.GetSession(ctx, summary.ID)
	require.NoError(t, err)
	assert.Len(t, session.Peers, 1)
	_, survived := session.Peers["active-peer"]
	assert.True(t, survived)
}

func TestSignalingRegistry_SnapshotIsolation(t *testing.T) {
	reg := newTestSignalingRegistry(t)
	ctx := context.Background()

	summary, err := reg.CreateSession(ctx, "room-1", "host-1", []string{"a"})
	require.NoError(t, err)
	_, _, err = reg.RegisterPeer(ctx, summary.ID, "peer-a", domain.RoleParticipant, "")
	require.NoError(t, err)

	session, err := reg.GetSession(ctx, summary.ID)
	require.NoError(t, err)

	// Mutating the snapshot must not leak into registry state.
	session.Metadata.Tags[0] = "mutated"
	delete(session.Peers, "peer-a")

	again, err := reg.GetSession(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Metadata.Tags)
	assert.Len(t, again.Peers, 1)
}
