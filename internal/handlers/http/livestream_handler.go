package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
)

type LiveStreamHandler struct {
	coordinator ports.LiveStreamCoordinator
}

func NewLiveStreamHandler(coordinator ports.LiveStreamCoordinator) *LiveStreamHandler {
	return &LiveStreamHandler{coordinator: coordinator}
}

func (h *LiveStreamHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/streams", h.CreateStream)
	api.GET("/streams/:id", h.GetStream)
	api.GET("/sessions/:id/streams", h.ListStreamsBySession)
	api.POST("/streams/:id/live", h.GoLive)
	api.POST("/streams/:id/end", h.EndStream)
	api.POST("/streams/:id/fail", h.FailStream)
	api.POST("/streams/:id/heartbeat", h.Heartbeat)
}

func (h *LiveStreamHandler) CreateStream(c *gin.Context) {
	var req struct {
		SessionID   domain.SessionID `json:"session_id" binding:"required"`
		Provider    string           `json:"provider" binding:"required"`
		IngestURL   string           `json:"ingest_url" binding:"required"`
		PlaybackURL string           `json:"playback_url"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	stream, err := h.coordinator.CreateStream(c.Request.Context(), req.SessionID, req.Provider, req.IngestURL, req.PlaybackURL)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stream": stream})
}

func (h *LiveStreamHandler) GetStream(c *gin.Context) {
	stream, err := h.coordinator.GetStream(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream": stream})
}

func (h *LiveStreamHandler) ListStreamsBySession(c *gin.Context) {
	streams, err := h.coordinator.ListStreamsBySession(c.Request.Context(), domain.SessionID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"streams": streams})
}

func (h *LiveStreamHandler) GoLive(c *gin.Context) {
	h.lifecycle(c, h.coordinator.GoLive)
}

func (h *LiveStreamHandler) EndStream(c *gin.Context) {
	h.lifecycle(c, h.coordinator.EndStream)
}

func (h *LiveStreamHandler) FailStream(c *gin.Context) {
	streamID := domain.StreamID(c.Param("id"))

	var req struct {
		ErrorMessage string `json:"error_message" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	stream, err := h.coordinator.FailStream(c.Request.Context(), streamID, req.ErrorMessage)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream": stream})
}

func (h *LiveStreamHandler) Heartbeat(c *gin.Context) {
	if err := h.coordinator.Heartbeat(c.Request.Context(), domain.StreamID(c.Param("id"))); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *LiveStreamHandler) lifecycle(c *gin.Context, action func(ctx context.Context, streamID domain.StreamID) (*domain.LiveStream, error)) {
	stream, err := action(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream": stream})
}
