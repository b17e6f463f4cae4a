package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
)

type BreakoutHandler struct {
	orchestrator ports.BreakoutOrchestrator
}

func NewBreakoutHandler(orchestrator ports.BreakoutOrchestrator) *BreakoutHandler {
	return &BreakoutHandler{orchestrator: orchestrator}
}

func (h *BreakoutHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/breakouts", h.CreateBreakoutSession)
	api.GET("/breakouts/:id", h.GetBreakoutSession)
	api.POST("/breakouts/:id/start", h.Start)
	api.POST("/breakouts/:id/close", h.Close)
	api.POST("/breakouts/:id/rooms/:room_id/participants", h.AssignParticipant)
	api.DELETE("/breakouts/:id/rooms/:room_id/participants/:participant_id", h.RemoveParticipant)
	api.PUT("/breakouts/:id/rooms/:room_id/lock", h.ToggleRoomLock)
	api.POST("/breakouts/:id/move", h.MoveParticipant)
	api.GET("/breakouts/:id/participants/:participant_id/room", h.FindParticipantRoom)
}

func (h *BreakoutHandler) CreateBreakoutSession(c *gin.Context) {
	var req struct {
		SessionID  domain.SessionID `json:"session_id" binding:"required"`
		Rooms      []string         `json:"rooms" binding:"required,min=1"`
		AutoAssign bool             `json:"auto_assign"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	specs := make([]ports.RoomSpec, 0, len(req.Rooms))
	for _, name := range req.Rooms {
		specs = append(specs, ports.RoomSpec{Name: name})
	}

	session, err := h.orchestrator.CreateBreakoutSession(c.Request.Context(), req.SessionID, specs, req.AutoAssign)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"breakout": session})
}

func (h *BreakoutHandler) GetBreakoutSession(c *gin.Context) {
	session, err := h.orchestrator.GetBreakoutSession(c.Request.Context(), domain.BreakoutSessionID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"breakout": session})
}

func (h *BreakoutHandler) Start(c *gin.Context) {
	session, err := h.orchestrator.Start(c.Request.Context(), domain.BreakoutSessionID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"breakout": session})
}

func (h *BreakoutHandler) Close(c *gin.Context) {
	session, err := h.orchestrator.Close(c.Request.Context(), domain.BreakoutSessionID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"breakout": session})
}

func (h *BreakoutHandler) AssignParticipant(c *gin.Context) {
	id := domain.BreakoutSessionID(c.Param("id"))
	roomID := domain.RoomID(c.Param("room_id"))

	var req struct {
		ParticipantID domain.ParticipantID `json:"participant_id" binding:"required"`
		Role          domain.PeerRole      `json:"role"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleParticipant
	}

	if err := h.orchestrator.AssignParticipant(c.Request.Context(), id, roomID, req.ParticipantID, req.Role); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "assigned"})
}

func (h *BreakoutHandler) RemoveParticipant(c *gin.Context) {
	id := domain.BreakoutSessionID(c.Param("id"))
	roomID := domain.RoomID(c.Param("room_id"))
	participantID := domain.ParticipantID(c.Param("participant_id"))

	if err := h.orchestrator.RemoveParticipant(c.Request.Context(), id, roomID, participantID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *BreakoutHandler) ToggleRoomLock(c *gin.Context) {
	id := domain.BreakoutSessionID(c.Param("id"))
	roomID := domain.RoomID(c.Param("room_id"))

	var req struct {
		Locked *bool `json:"locked" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.orchestrator.ToggleRoomLock(c.Request.Context(), id, roomID, *req.Locked); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *BreakoutHandler) MoveParticipant(c *gin.Context) {
	id := domain.BreakoutSessionID(c.Param("id"))

	var req struct {
		FromRoomID    domain.RoomID        `json:"from_room_id" binding:"required"`
		ToRoomID      domain.RoomID        `json:"to_room_id" binding:"required"`
		ParticipantID domain.ParticipantID `json:"participant_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.orchestrator.MoveParticipant(c.Request.Context(), id, req.FromRoomID, req.ToRoomID, req.ParticipantID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "moved"})
}

func (h *BreakoutHandler) FindParticipantRoom(c *gin.Context) {
	id := domain.BreakoutSessionID(c.Param("id"))
	participantID := domain.ParticipantID(c.Param("participant_id"))

	roomID, found, err := h.orchestrator.FindParticipantRoom(c.Request.Context(), id, participantID)
	if err != nil {
		c.Error(err)
		return
	}
	if !found {
		c.Error(apperrors.NewNotFoundError("participant assignment"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": roomID})
}
