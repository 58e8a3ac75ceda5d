package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// GeoIPCachePruneJobName is the scheduler name of the cache prune job
const GeoIPCachePruneJobName = "geoip_cache_prune"

// CachePruner deletes expired GeoIP cache entries
type CachePruner interface {
	Prune(ctx context.Context) (int64, error)
}

// GeoIPCachePruneJob removes expired rows from the database-backed
// country cache so lookups never read stale entries and the table stays small
type GeoIPCachePruneJob struct {
	pruner  CachePruner
	logger  *zap.Logger
	timeout time.Duration
}

func NewGeoIPCachePruneJob(pruner CachePruner, logger *zap.Logger, timeout time.Duration) *GeoIPCachePruneJob {
	return &GeoIPCachePruneJob{
		pruner:  pruner,
		logger:  logger,
		timeout: timeout,
	}
}

// Run prunes the cache once. Errors are logged; the next tick retries.
func (j *GeoIPCachePruneJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	removed, err := j.pruner.Prune(ctx)
	if err != nil {
		j.logger.Error("geoip cache prune failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("geoip cache pruned",
		zap.Int64("removed", removed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterGeoIPCachePruneJob adds the prune job to scheduler on cronExpr
func RegisterGeoIPCachePruneJob(scheduler *Scheduler, pruner CachePruner, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewGeoIPCachePruneJob(pruner, logger, timeout)
	return scheduler.AddJob(GeoIPCachePruneJobName, cronExpr, job.Run)
}
