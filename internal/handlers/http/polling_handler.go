package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"collabcore/internal/core/domain"
	"collabcore/internal/core/ports"
	apperrors "collabcore/pkg/errors"
)

type PollingHandler struct {
	engine ports.PollingEngine
}

func NewPollingHandler(engine ports.PollingEngine) *PollingHandler {
	return &PollingHandler{engine: engine}
}

func (h *PollingHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/tools", h.CreateTool)
	api.GET("/tools/:id", h.GetTool)
	api.GET("/sessions/:id/tools", h.ListToolsBySession)
	api.POST("/tools/:id/votes", h.Vote)
	api.POST("/tools/:id/close", h.CloseTool)
	api.GET("/tools/:id/results", h.GetResults)
}

func (h *PollingHandler) CreateTool(c *gin.Context) {
	var req struct {
		SessionID     domain.SessionID     `json:"session_id" binding:"required"`
		CreatedBy     domain.ParticipantID `json:"created_by" binding:"required"`
		Type          domain.ToolType      `json:"type" binding:"required"`
		Question      string               `json:"question" binding:"required"`
		Options       []string             `json:"options" binding:"required,min=2"`
		AllowMultiple bool                 `json:"allow_multiple"`
		IsAnonymous   bool                 `json:"is_anonymous"`
		ClosesAt      *time.Time           `json:"closes_at"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	tool, err := h.engine.CreateTool(c.Request.Context(), ports.CreateToolParams{
		SessionID:     req.SessionID,
		CreatedBy:     req.CreatedBy,
		Type:          req.Type,
		Question:      req.Question,
		Options:       req.Options,
		AllowMultiple: req.AllowMultiple,
		IsAnonymous:   req.IsAnonymous,
		ClosesAt:      req.ClosesAt,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tool": tool})
}

func (h *PollingHandler) GetTool(c *gin.Context) {
	tool, err := h.engine.GetTool(c.Request.Context(), domain.ToolID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tool": tool})
}

func (h *PollingHandler) ListToolsBySession(c *gin.Context) {
	tools, err := h.engine.ListToolsBySession(c.Request.Context(), domain.SessionID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

func (h *PollingHandler) Vote(c *gin.Context) {
	toolID := domain.ToolID(c.Param("id"))

	var req struct {
		ParticipantID domain.ParticipantID `json:"participant_id" binding:"required"`
		OptionIDs     []domain.OptionID    `json:"option_ids" binding:"required,min=1"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	tool, err := h.engine.Vote(c.Request.Context(), toolID, req.ParticipantID, req.OptionIDs)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tool": tool})
}

func (h *PollingHandler) CloseTool(c *gin.Context) {
	if err := h.engine.CloseTool(c.Request.Context(), domain.ToolID(c.Param("id"))); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (h *PollingHandler) GetResults(c *gin.Context) {
	results, err := h.engine.GetResults(c.Request.Context(), domain.ToolID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
