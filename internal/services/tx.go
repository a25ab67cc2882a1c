package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/data/db"
	"github.com/yungbote/calisthenics-backend/internal/pkg/dbctx"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

const txAttempts = 3

// runTx runs fn in a transaction and retries the whole transaction on
// serialization failures and deadlocks.
func runTx(ctx context.Context, conn *gorm.DB, log *logger.Logger, op string, fn func(dbc dbctx.Context) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.Context{Ctx: ctx, Tx: tx})
		})
		if err == nil || !db.IsRetryable(err) || attempt == txAttempts {
			break
		}
		log.Warn("retrying transaction", "op", op, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return err
}

// savepoint runs fn inside a named savepoint of dbc's transaction. When fn
// fails the savepoint is rolled back, so the outer transaction stays usable
// and carries none of fn's writes.
func savepoint(dbc dbctx.Context, name string, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx == nil {
		return fn(dbc)
	}
	if err := dbc.Tx.SavePoint(name).Error; err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	if err := fn(dbc); err != nil {
		if rbErr := dbc.Tx.RollbackTo(name).Error; rbErr != nil {
			return fmt.Errorf("rollback to %s: %v: %w", name, rbErr, err)
		}
		return err
	}
	return nil
}
