package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/calisthenics-backend/internal/http/response"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

// GET /me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /me
// body: { "first_name"?, "last_name"?, "goals"?, "equipment"? }
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		FirstName *string  `json:"first_name" binding:"omitempty,min=1,max=100"`
		LastName  *string  `json:"last_name" binding:"omitempty,max=100"`
		Goals     []string `json:"goals" binding:"omitempty,max=20"`
		Equipment []string `json:"equipment" binding:"omitempty,max=20"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	me, err := uh.userService.UpdateProfile(c.Request.Context(), services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Goals:     req.Goals,
		Equipment: req.Equipment,
	})
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /me/level
func (uh *UserHandler) GetLevel(c *gin.Context) {
	level, err := uh.userService.GetLevel(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"level": level})
}
