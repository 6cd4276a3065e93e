package tasks

import (
	"context"
	"time"
)

// usageRetentionDays is how long daily usage counters are kept. Only today's
// row is ever read; the retention window exists purely so operators can
// eyeball recent activity.
const usageRetentionDays = 30

// newUsagePruneTask creates the scheduled task that deletes stale daily usage
// counters.
func newUsagePruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "usage_prune")
	loc := time.FixedZone("home", deps.Config.Quota.TimezoneOffset*3600)

	return func(ctx context.Context) error {
		cutoff := time.Now().In(loc).AddDate(0, 0, -usageRetentionDays).Format("2006-01-02")

		deleted, err := deps.Store.PruneDailyUsage(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Usage prune task failed", "cutoff", cutoff, "error", err)
			return err
		}

		log.InfoContext(ctx, "Usage prune task completed", "cutoff", cutoff, "deleted", deleted)
		return nil
	}
}
