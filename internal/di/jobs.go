package di

import (
	"fmt"

	"github.com/finlit/finlit/internal/config"
	"github.com/finlit/finlit/internal/reliability"
	"github.com/finlit/finlit/internal/scheduler"
	"github.com/rs/zerolog"
)

// Job schedules (six-field cron with seconds)
const (
	scheduleCheckDatabases   = "0 0 */6 * * *"
	scheduleWALCheckpoint    = "0 */15 * * * *"
	schedulePurgeIdle        = "0 */10 * * * *"
	scheduleDailyMaintenance = "0 30 2 * * *"
)

type scheduledJob struct {
	schedule string
	job      scheduler.Job
}

// RegisterJobs creates the maintenance jobs and registers them with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	container.Scheduler = scheduler.New(log)
	dbs := container.Databases()

	instances := &JobInstances{
		CheckDatabases:     scheduler.NewCheckDatabasesJob(dbs, log),
		CheckWALCheckpoint: scheduler.NewCheckWALCheckpointsJob(dbs, log),
		PurgeIdle:          scheduler.NewPurgeIdleJob(container.Sessions, container.ChatRelay, cfg.Game.SessionTTL, log),
		DailyMaintenance:   reliability.NewDailyMaintenanceJob(dbs, cfg.DataDir, log),
	}

	schedules := []scheduledJob{
		{scheduleCheckDatabases, instances.CheckDatabases},
		{scheduleWALCheckpoint, instances.CheckWALCheckpoint},
		{schedulePurgeIdle, instances.PurgeIdle},
		{scheduleDailyMaintenance, instances.DailyMaintenance},
	}

	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService)
		schedules = append(schedules, scheduledJob{cfg.Backup.Schedule, instances.Backup})
	}

	for _, s := range schedules {
		if err := container.Scheduler.AddJob(s.schedule, s.job); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", s.job.Name(), err)
		}
	}

	log.Info().Int("jobs", len(schedules)).Msg("Jobs registered")
	return instances, nil
}
