// Package cleanup removes blacklist entries whose tokens have expired on
// their own. Removal is idempotent: a run with nothing to purge is a no-op.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/metrics"
)

// Purger is the part of the token blacklist the job drives.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	Size(ctx context.Context) (int64, error)
}

// Job purges expired entries. Run is the frequent sweep; Deep also reports
// the store size before and after.
type Job struct {
	purger  Purger
	metrics metrics.Recorder
	log     logging.Logger
	now     func() time.Time
}

func NewJob(purger Purger, rec metrics.Recorder, log logging.Logger) *Job {
	return &Job{
		purger:  purger,
		metrics: rec,
		log:     log.With("module", "cleanup"),
		now:     time.Now,
	}
}

// Run removes every entry that expired at or before now.
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	removed, err := j.purge(ctx)
	if err != nil {
		return err
	}

	j.log.Info(ctx, "blacklist cleanup done",
		"removed", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Deep is Run with before and after counts.
func (j *Job) Deep(ctx context.Context) error {
	start := time.Now()

	before, err := j.purger.Size(ctx)
	if err != nil {
		j.log.Error(ctx, "blacklist size unavailable", "error", err.Error())
		return fmt.Errorf("count before cleanup: %w", err)
	}

	removed, err := j.purge(ctx)
	if err != nil {
		return err
	}

	after, err := j.purger.Size(ctx)
	if err != nil {
		j.log.Error(ctx, "blacklist size unavailable", "error", err.Error())
		return fmt.Errorf("count after cleanup: %w", err)
	}
	j.metrics.SetBlacklistSize(after)

	j.log.Info(ctx, "deep blacklist cleanup done",
		"before", before,
		"removed", removed,
		"after", after,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (j *Job) purge(ctx context.Context) (int64, error) {
	removed, err := j.purger.PurgeExpired(ctx, j.now())
	j.metrics.RecordPurge(removed)
	if err != nil {
		j.log.Error(ctx, "blacklist cleanup failed", "removed", removed, "error", err.Error())
		return removed, fmt.Errorf("purge expired tokens: %w", err)
	}
	return removed, nil
}
