package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/calisthenics-backend/internal/http/response"
	"github.com/yungbote/calisthenics-backend/internal/observability"
	"github.com/yungbote/calisthenics-backend/internal/pkg/ctxutil"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /events
// Streams the caller's progression events until the client disconnects.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}
	client := h.hub.NewSSEClient(userID)
	h.hub.AddChannel(client, realtime.UserChannel(userID))

	m := observability.Current()
	m.SSEClientsInc()
	defer m.SSEClientsDec()
	defer h.hub.CloseClient(client)

	h.log.Debug("sse stream open", "user_id", userID, "client_id", client.ID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
