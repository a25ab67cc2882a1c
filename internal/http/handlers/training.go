package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/calisthenics-backend/internal/http/response"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/services"
)

// TrainingHandler covers the daily loop: routine, workout logging and
// missions.
type TrainingHandler struct {
	log      *logger.Logger
	routines services.RoutineService
	workouts services.WorkoutService
	missions services.MissionService
}

func NewTrainingHandler(
	log *logger.Logger,
	routines services.RoutineService,
	workouts services.WorkoutService,
	missions services.MissionService,
) *TrainingHandler {
	return &TrainingHandler{
		log:      log.With("handler", "TrainingHandler"),
		routines: routines,
		workouts: workouts,
		missions: missions,
	}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return v, nil
}

// queryList accepts both repeated keys and comma-separated values.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func pathUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		c.Abort()
		return uuid.Nil, false
	}
	return id, true
}

// GET /routines/today?duration=30&targetSkill=crow-pose&focusAreas=core,balance
// POST /routines/today with the same fields as JSON.
func (h *TrainingHandler) Today(c *gin.Context) {
	var req services.RoutineRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondBindError(c, err)
			return
		}
	} else {
		d, err := queryInt(c, "duration", 0)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		req.DurationMinutes = d
		req.TargetSkill = c.Query("targetSkill")
		req.FocusAreas = queryList(c, "focusAreas")
	}
	view, err := h.routines.Today(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"routine": view})
}

// GET /routines/:id
func (h *TrainingHandler) GetRoutine(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.routines.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"routine": view})
}

// GET /routines?limit=7
func (h *TrainingHandler) ListRoutines(c *gin.Context) {
	limit, err := queryInt(c, "limit", 7)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	list, err := h.routines.List(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"routines": list})
}

// POST /workouts/complete
func (h *TrainingHandler) CompleteWorkout(c *gin.Context) {
	var in services.WorkoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondBindError(c, err)
		return
	}
	res, err := h.workouts.Complete(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /workouts?limit=20&offset=0
func (h *TrainingHandler) History(c *gin.Context) {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	page, err := h.workouts.History(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /missions/daily
func (h *TrainingHandler) DailyMissions(c *gin.Context) {
	list, err := h.missions.Daily(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"missions": list})
}

// POST /missions/:id/complete
func (h *TrainingHandler) CompleteMission(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.missions.Complete(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /missions/refresh
func (h *TrainingHandler) RefreshMissions(c *gin.Context) {
	list, err := h.missions.Refresh(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"missions": list})
}
