// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"idcard.link/configs/configslog"
	"idcard.link/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const cleanupTimeout = 2 * time.Minute

// PurgeRevoked drops expired logout entries once.
func PurgeRevoked(ctx context.Context, store services.RevocationStore) {
	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()
	n, err := store.Purge(ctx, time.Now())
	if err != nil {
		configslog.Log.Error("Revoked session cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		configslog.Log.Info("Revoked session cleanup", zap.Int64("removed", n))
	}
}

// StartTokenCleanup schedules PurgeRevoked. The caller stops the returned cron on shutdown.
func StartTokenCleanup(schedule string, store services.RevocationStore) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		PurgeRevoked(context.Background(), store)
	}); err != nil {
		return nil, err
	}
	configslog.Log.Info("Token cleanup scheduled", zap.String("schedule", schedule))
	c.Start()
	return c, nil
}
