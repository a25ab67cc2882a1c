package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/calisthenics-backend/internal/http/response"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/services"
)

type DashboardHandler struct {
	log         *logger.Logger
	dashboard   services.DashboardService
	leaderboard services.LeaderboardService
}

func NewDashboardHandler(log *logger.Logger, dashboard services.DashboardService, leaderboard services.LeaderboardService) *DashboardHandler {
	return &DashboardHandler{log: log.With("handler", "DashboardHandler"), dashboard: dashboard, leaderboard: leaderboard}
}

// GET /dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.dashboard.Get(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, d)
}

// GET /leaderboard?limit=10
func (h *DashboardHandler) Leaderboard(c *gin.Context) {
	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	board, err := h.leaderboard.Weekly(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, board)
}
