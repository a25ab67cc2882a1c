package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/calisthenics-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
)

func requireUser(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("no authenticated user: %w", pkgerrors.ErrUnauthorized)
	}
	return id, nil
}

func jsonStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func toJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}

func errUserMissing(userID uuid.UUID) error {
	return fmt.Errorf("user %s: %w", userID, pkgerrors.ErrNotFound)
}
