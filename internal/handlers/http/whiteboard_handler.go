package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
)

type WhiteboardHandler struct {
	log ports.WhiteboardLog
}

func NewWhiteboardHandler(log ports.WhiteboardLog) *WhiteboardHandler {
	return &WhiteboardHandler{log: log}
}

func (h *WhiteboardHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/boards", h.CreateBoard)
	api.GET("/boards/:id", h.GetBoard)
	api.POST("/boards/:id/join", h.JoinBoard)
	api.POST("/boards/:id/leave", h.LeaveBoard)
	api.POST("/boards/:id/operations", h.AppendOperation)
	api.GET("/boards/:id/operations", h.GetOperationsSince)
	api.POST("/boards/:id/reset", h.ResetBoard)
}

func (h *WhiteboardHandler) CreateBoard(c *gin.Context) {
	var req struct {
		SessionID domain.SessionID     `json:"session_id" binding:"required"`
		CreatedBy domain.ParticipantID `json:"created_by" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	board, err := h.log.CreateBoard(c.Request.Context(), req.SessionID, req.CreatedBy)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"board": board})
}

func (h *WhiteboardHandler) GetBoard(c *gin.Context) {
	board, err := h.log.GetBoard(c.Request.Context(), domain.BoardID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"board": board})
}

func (h *WhiteboardHandler) JoinBoard(c *gin.Context) {
	h.membership(c, h.log.JoinBoard, "joined")
}

func (h *WhiteboardHandler) LeaveBoard(c *gin.Context) {
	h.membership(c, h.log.LeaveBoard, "left")
}

func (h *WhiteboardHandler) AppendOperation(c *gin.Context) {
	boardID := domain.BoardID(c.Param("id"))

	var req struct {
		PerformedBy domain.ParticipantID    `json:"performed_by" binding:"required"`
		Type        domain.OperationType    `json:"type" binding:"required"`
		Payload     domain.OperationPayload `json:"payload"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	op, err := h.log.AppendOperation(c.Request.Context(), boardID, req.PerformedBy, req.Type, req.Payload)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"operation": op})
}

func (h *WhiteboardHandler) GetOperationsSince(c *gin.Context) {
	boardID := domain.BoardID(c.Param("id"))

	after := uint64(0)
	if raw := c.Query("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.Error(apperrors.NewInvalidInputError("after must be a non-negative integer"))
			return
		}
		after = parsed
	}

	seq, err := h.log.GetOperationsSince(c.Request.Context(), boardID, after)
	if err != nil {
		c.Error(err)
		return
	}

	operations := make([]domain.WhiteboardOperation, 0)
	for op := range seq {
		operations = append(operations, op)
	}

	c.JSON(http.StatusOK, gin.H{"operations": operations})
}

func (h *WhiteboardHandler) ResetBoard(c *gin.Context) {
	boardID := domain.BoardID(c.Param("id"))

	var req struct {
		PerformedBy domain.ParticipantID `json:"performed_by" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := h.log.ResetBoard(c.Request.Context(), boardID, req.PerformedBy); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (h *WhiteboardHandler) membership(c *gin.Context, action func(ctx context.Context, boardID domain.BoardID, participantID domain.ParticipantID) error, status string) {
	boardID := domain.BoardID(c.Param("id"))

	var req struct {
		ParticipantID domain.ParticipantID `json:"participant_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	if err := action(c.Request.Context(), boardID, req.ParticipantID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}
