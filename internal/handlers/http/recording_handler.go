package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
)

type RecordingHandler struct {
	coordinator ports.RecordingCoordinator
}

func NewRecordingHandler(coordinator ports.RecordingCoordinator) *RecordingHandler {
	return &RecordingHandler{coordinator: coordinator}
}

func (h *RecordingHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/recordings", h.CreateRecording)
	api.GET("/recordings/:id", h.GetRecording)
	api.GET("/sessions/:id/recordings", h.ListRecordingsBySession)
	api.POST("/recordings/:id/activate", h.ActivateRecording)
	api.POST("/recordings/:id/segments", h.AppendSegment)
	api.POST("/recordings/:id/stop", h.StopRecording)
	api.POST("/recordings/:id/processing", h.BeginProcessing)
	api.POST("/recordings/:id/complete", h.CompleteRecording)
	api.POST("/recordings/:id/fail", h.FailRecording)
	api.POST("/recordings/:id/cancel", h.CancelRecording)
}

func (h *RecordingHandler) CreateRecording(c *gin.Context) {
	var req struct {
		SessionID domain.SessionID `json:"session_id" binding:"required"`
		Scheduled bool             `json:"scheduled"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	var job *domain.RecordingJob
	var err error
	if req.Scheduled {
		job, err = h.coordinator.ScheduleRecording(c.Request.Context(), req.SessionID)
	} else {
		job, err = h.coordinator.StartRecording(c.Request.Context(), req.SessionID)
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recording": job})
}

func (h *RecordingHandler) GetRecording(c *gin.Context) {
	job, err := h.coordinator.GetRecording(c.Request.Context(), domain.RecordingID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recording": job})
}

func (h *RecordingHandler) ListRecordingsBySession(c *gin.Context) {
	jobs, err := h.coordinator.ListRecordingsBySession(c.Request.Context(), domain.SessionID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recordings": jobs})
}

func (h *RecordingHandler) ActivateRecording(c *gin.Context) {
	h.lifecycle(c, h.coordinator.ActivateRecording)
}

func (h *RecordingHandler) AppendSegment(c *gin.Context) {
	recordingID := domain.RecordingID(c.Param("id"))

	var req struct {
		StartedAt *time.Time `json:"started_at"`
		EndedAt   *time.Time `json:"ended_at"`
		URL       string     `json:"url" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	segment, err := h.coordinator.AppendSegment(c.Request.Context(), recordingID, ports.SegmentParams{
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
		URL:       req.URL,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"segment": segment})
}

func (h *RecordingHandler) StopRecording(c *gin.Context) {
	h.lifecycle(c, h.coordinator.StopRecording)
}

func (h *RecordingHandler) BeginProcessing(c *gin.Context) {
	h.lifecycle(c, h.coordinator.BeginProcessing)
}

func (h *RecordingHandler) CompleteRecording(c *gin.Context) {
	recordingID := domain.RecordingID(c.Param("id"))

	var req struct {
		OutputLocation string `json:"output_location" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	job, err := h.coordinator.CompleteRecording(c.Request.Context(), recordingID, req.OutputLocation)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recording": job})
}

func (h *RecordingHandler) FailRecording(c *gin.Context) {
	recordingID := domain.RecordingID(c.Param("id"))

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	job, err := h.coordinator.FailRecording(c.Request.Context(), recordingID, req.Reason)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recording": job})
}

func (h *RecordingHandler) CancelRecording(c *gin.Context) {
	h.lifecycle(c, h.coordinator.CancelRecording)
}

func (h *RecordingHandler) lifecycle(c *gin.Context, action func(ctx context.Context, recordingID domain.RecordingID) (*domain.RecordingJob, error)) {
	job, err := action(c.Request.Context(), domain.RecordingID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recording": job})
}
