package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	once     sync.Once
	Logger   *logger.Logger
}

// UserChannel is the per-user channel every stream subscribes to.
func UserChannel(userID uuid.UUID) string { return "user:" + userID.String() }
