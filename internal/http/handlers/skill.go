package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/calisthenics-backend/internal/http/response"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/services"
)

type SkillHandler struct {
	log          *logger.Logger
	skills       services.SkillService
	achievements services.AchievementService
}

func NewSkillHandler(log *logger.Logger, skills services.SkillService, achievements services.AchievementService) *SkillHandler {
	return &SkillHandler{log: log.With("handler", "SkillHandler"), skills: skills, achievements: achievements}
}

// GET /skills
func (h *SkillHandler) List(c *gin.Context) {
	tree, err := h.skills.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, tree)
}

// POST /skills/:key/complete
func (h *SkillHandler) Complete(c *gin.Context) {
	res, err := h.skills.Complete(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /achievements
func (h *SkillHandler) ListAchievements(c *gin.Context) {
	view, err := h.achievements.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /achievements/unlock
func (h *SkillHandler) UnlockAchievements(c *gin.Context) {
	res, err := h.achievements.UnlockAchievements(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
