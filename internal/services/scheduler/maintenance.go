package scheduler

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
)

const (
	StrategyReaperJob = "strategy_reaper"
	ExportCleanupJob  = "export_cleanup"

	defaultReaperSchedule = "*/15 * * * *"
	defaultRetainFinished = 24 * time.Hour
)

// StrategyReaper removes finished research strategies
type StrategyReaper interface {
	Reap(ctx context.Context, retain time.Duration) (int, error)
}

// ExportCleaner removes export files whose download window has passed
type ExportCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// RegisterMaintenanceJobs wires the cleanup jobs onto the scheduler.
// Either dependency may be nil, in which case its job is skipped.
func RegisterMaintenanceJobs(s *Service, reaper StrategyReaper, cleaner ExportCleaner, config *common.StrategyConfig, logger arbor.ILogger) error {
	schedule := config.ReaperSchedule
	if schedule == "" {
		schedule = defaultReaperSchedule
	}
	retain := common.ParseDuration(config.RetainFinished, defaultRetainFinished)

	if reaper != nil {
		err := s.RegisterJob(StrategyReaperJob, schedule, "Delete finished research strategies", func(ctx context.Context) error {
			removed, err := reaper.Reap(ctx, retain)
			if err != nil {
				return err
			}
			if removed > 0 {
				logger.Info().Int("removed", removed).Str("retain", retain.String()).Msg("Reaped finished strategies")
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if cleaner != nil {
		err := s.RegisterJob(ExportCleanupJob, schedule, "Remove expired export files", func(ctx context.Context) error {
			removed, err := cleaner.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if removed > 0 {
				logger.Info().Int("removed", removed).Msg("Removed expired exports")
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
