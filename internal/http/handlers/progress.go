package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/calisthenics-backend/internal/http/response"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/services"
)

// ProgressHandler serves the read side of a user's progression: hexagon,
// streak and onboarding assessment.
type ProgressHandler struct {
	log         *logger.Logger
	hexagon     services.HexagonService
	streaks     services.StreakService
	assessments services.AssessmentService
}

func NewProgressHandler(
	log *logger.Logger,
	hexagon services.HexagonService,
	streaks services.StreakService,
	assessments services.AssessmentService,
) *ProgressHandler {
	return &ProgressHandler{
		log:         log.With("handler", "ProgressHandler"),
		hexagon:     hexagon,
		streaks:     streaks,
		assessments: assessments,
	}
}

// GET /hexagon
func (h *ProgressHandler) GetHexagon(c *gin.Context) {
	view, err := h.hexagon.Get(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"hexagon": view})
}

// POST /hexagon/recalculate
func (h *ProgressHandler) RecalculateHexagon(c *gin.Context) {
	view, err := h.hexagon.Recalculate(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"hexagon": view})
}

// POST /hexagon/import
// Body: {"values": {"relativeStrength": 6.5, "bodyTensionXP": 52000, ...}}
func (h *ProgressHandler) ImportLegacyHexagon(c *gin.Context) {
	var req struct {
		Values map[string]float64 `json:"values" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	view, err := h.hexagon.ImportLegacy(c.Request.Context(), req.Values)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"hexagon": view})
}

// GET /streaks
func (h *ProgressHandler) GetStreak(c *gin.Context) {
	view, err := h.streaks.Get(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"streak": view})
}

// POST /assessment
func (h *ProgressHandler) SubmitAssessment(c *gin.Context) {
	var in services.AssessmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondBindError(c, err)
		return
	}
	res, err := h.assessments.Submit(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /assessment
func (h *ProgressHandler) GetAssessment(c *gin.Context) {
	view, err := h.assessments.Latest(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"assessment": view})
}
