package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
)

type SignalingHandler struct {
	registry ports.SignalingRegistry
}

func NewSignalingHandler(registry ports.SignalingRegistry) *SignalingHandler {
	return &SignalingHandler{registry: registry}
}

func (h *SignalingHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions", h.ListSessions)
	api.GET("/sessions/:id", h.GetSession)
	api.POST("/sessions/:id/peers", h.RegisterPeer)
	api.DELETE("/sessions/:id/peers/:peer_id", h.RemovePeer)
	api.PUT("/sessions/:id/peers/:peer_id/description", h.UpdatePeerDescription)
	api.POST("/sessions/:id/peers/:peer_id/candidates", h.AddIceCandidate)
	api.POST("/sessions/:id/peers/:peer_id/candidates/consume", h.ConsumeIceCandidates)
	api.PUT("/sessions/:id/screen-share", h.MarkScreenSharing)
	api.PUT("/sessions/:id/recording", h.MarkRecording)
}

func (h *SignalingHandler) CreateSession(c *gin.Context) {
	var req struct {
		RoomID domain.RoomID `json:"room_id" binding:"required"`
		HostID domain.PeerID `json:"host_id" binding:"required"`
		Tags   []string      `json:"tags"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	summary, err := h.registry.CreateSession(c.Request.Context(), req.RoomID, req.HostID, req.Tags)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": summary})
}

func (h *SignalingHandler) ListSessions(c *gin.Context) {
	sessions, err := h.registry.ListSessions(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SignalingHandler) GetSession(c *gin.Context) {
	session, err := h.registry.GetSession(c.Request.Context(), domain.SessionID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SignalingHandler) RegisterPeer(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))

	var req struct {
		PeerID      domain.PeerID   `json:"peer_id" binding:"required"`
		Role        domain.PeerRole `json:"role" binding:"required"`
		Description string          `json:"description"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	peer, outcome, err := h.registry.RegisterPeer(c.Request.Context(), sessionID, req.PeerID, req.Role, req.Description)
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusOK
	if outcome == ports.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"peer": peer, "outcome": outcome})
}

func (h *SignalingHandler) RemovePeer(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))
	peerID := domain.PeerID(c.Param("peer_id"))

	if err := h.registry.RemovePeer(c.Request.Context(), sessionID, peerID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *SignalingHandler) UpdatePeerDescription(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))
	peerID := domain.PeerID(c.Param("peer_id"))

	var req struct {
		Description string `json:"description" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.registry.UpdatePeerDescription(c.Request.Context(), sessionID, peerID, req.Description); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *SignalingHandler) AddIceCandidate(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))
	peerID := domain.PeerID(c.Param("peer_id"))

	var req struct {
		Candidate string `json:"candidate" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	queued, err := h.registry.AddIceCandidate(c.Request.Context(), sessionID, peerID, req.Candidate)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"queued": queued})
}

func (h *SignalingHandler) ConsumeIceCandidates(c *gin.Context) {
	sessionID := domain.SessionID(c.Param("id"))
	peerID := domain.PeerID(c.Param("peer_id"))

	candidates, err := h.registry.ConsumeIceCandidates(c.Request.Context(), sessionID, peerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

func (h *SignalingHandler) MarkScreenSharing(c *gin.Context) {
	h.markFlag(c, h.registry.MarkScreenSharing)
}

func (h *SignalingHandler) MarkRecording(c *gin.Context) {
	h.markFlag(c, h.registry.MarkRecording)
}

func (h *SignalingHandler) markFlag(c *gin.Context, mark func(ctx context.Context, sessionID domain.SessionID, active bool) error) {
	sessionID := domain.SessionID(c.Param("id"))

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := mark(c.Request.Context(), sessionID, *req.Active); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
