package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
)

type ScreenShareHandler struct {
	registry ports.ScreenShareRegistry
}

func NewScreenShareHandler(registry ports.ScreenShareRegistry) *ScreenShareHandler {
	return &ScreenShareHandler{registry: registry}
}

func (h *ScreenShareHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/shares", h.StartShare)
	api.GET("/shares", h.ListShares)
	api.GET("/shares/:id", h.GetShare)
	api.DELETE("/shares/:id", h.StopShare)
	api.GET("/rooms/:room_id/share", h.GetActiveShareByRoom)
	api.POST("/shares/:id/viewers", h.RegisterViewer)
	api.PUT("/shares/:id/viewers/:viewer_id/heartbeat", h.ViewerHeartbeat)
	api.DELETE("/shares/:id/viewers/:viewer_id", h.RemoveViewer)
}

func (h *ScreenShareHandler) StartShare(c *gin.Context) {
	var req struct {
		RoomID      domain.RoomID        `json:"room_id" binding:"required"`
		PresenterID domain.ParticipantID `json:"presenter_id" binding:"required"`
		MediaType   domain.MediaType     `json:"media_type" binding:"required"`
		Metadata    map[string]string    `json:"metadata"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	share, outcome, err := h.registry.StartShare(c.Request.Context(), req.RoomID, req.PresenterID, req.MediaType, req.Metadata)
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusOK
	if outcome == ports.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"share": share, "outcome": outcome})
}

func (h *ScreenShareHandler) ListShares(c *gin.Context) {
	shares, err := h.registry.ListShares(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

func (h *ScreenShareHandler) GetShare(c *gin.Context) {
	share, err := h.registry.GetShare(c.Request.Context(), domain.ShareID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"share": share})
}

func (h *ScreenShareHandler) StopShare(c *gin.Context) {
	if err := h.registry.StopShare(c.Request.Context(), domain.ShareID(c.Param("id"))); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (h *ScreenShareHandler) GetActiveShareByRoom(c *gin.Context) {
	share, err := h.registry.GetActiveShareByRoom(c.Request.Context(), domain.RoomID(c.Param("room_id")))
	if err != nil {
		c.Error(err)
		return
	}

	// No active share is an empty result, not an error.
	c.JSON(http.StatusOK, gin.H{"share": share})
}

func (h *ScreenShareHandler) RegisterViewer(c *gin.Context) {
	shareID := domain.ShareID(c.Param("id"))

	var req struct {
		ViewerID domain.ParticipantID `json:"viewer_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.registry.RegisterViewer(c.Request.Context(), shareID, req.ViewerID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "watching"})
}

func (h *ScreenShareHandler) ViewerHeartbeat(c *gin.Context) {
	shareID := domain.ShareID(c.Param("id"))
	viewerID := domain.ParticipantID(c.Param("viewer_id"))

	if err := h.registry.ViewerHeartbeat(c.Request.Context(), shareID, viewerID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *ScreenShareHandler) RemoveViewer(c *gin.Context) {
	shareID := domain.ShareID(c.Param("id"))
	viewerID := domain.ParticipantID(c.Param("viewer_id"))

	if err := h.registry.RemoveViewer(c.Request.Context(), shareID, viewerID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
