package auth

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tirzah-studio/site-api/pkg/logger"
)

// RetentionWindow is how long spent reset records and idle login attempt
// rows are kept.
const RetentionWindow = 24 * time.Hour

// RetentionSchedule runs the cleanup once an hour.
const RetentionSchedule = "@hourly"

// RunRetention deletes reset records that expired or were used more than a
// day ago and login attempt rows idle for a day with no active block.
func RunRetention(ctx context.Context, store Store, log logger.Logger) error {
	log = log.WithComponent("retention")
	start := time.Now()
	cutoff := start.Add(-RetentionWindow)

	resets, err := store.PurgeResets(ctx, cutoff)
	if err != nil {
		log.Error("Retention failed on password_resets", err)
		return err
	}
	attempts, err := store.PurgeAttempts(ctx, cutoff)
	if err != nil {
		log.Error("Retention failed on admin_login_attempts", err)
		return err
	}

	log.Info("Auth retention completed",
		logger.Int64("password_resets_deleted", resets),
		logger.Int64("login_attempts_deleted", attempts),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}

// ScheduleRetention registers RunRetention on c. The caller owns the
// scheduler's lifecycle.
func ScheduleRetention(ctx context.Context, c *cron.Cron, store Store, log logger.Logger) (cron.EntryID, error) {
	return c.AddFunc(RetentionSchedule, func() {
		_ = RunRetention(ctx, store, log)
	})
}
