package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/exercise-tracker/internal/models"
	"github.com/isdelr/exercise-tracker/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler periodically deletes activity events older than the retention window.
type Scheduler struct {
	events   services.EventServiceProvider
	activity *services.ActivityRecorder
	maxAge   time.Duration
	cron     *cron.Cron
	now      func() time.Time
}

// NewScheduler creates a scheduler that runs on the given standard cron
// expression and keeps retentionDays of events.
func NewScheduler(spec string, retentionDays int, events services.EventServiceProvider, activity *services.ActivityRecorder) (*Scheduler, error) {
	if retentionDays <= 0 {
		return nil, fmt.Errorf("retention must be at least one day, got %d", retentionDays)
	}

	s := &Scheduler{
		events:   events,
		activity: activity,
		maxAge:   time.Duration(retentionDays) * 24 * time.Hour,
		cron:     cron.New(),
		now:      time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the job in the background.
func (s *Scheduler) Start() {
	log.Info().Dur("max_age", s.maxAge).Msg("Starting event retention scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped event retention scheduler")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.Prune(ctx); err != nil {
		log.Error().Err(err).Msg("Event retention prune failed")
	}
}

// Prune deletes expired events once and reports how many were removed.
func (s *Scheduler) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.maxAge)
	removed, err := s.events.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("Pruned old events")
	if removed > 0 && s.activity != nil {
		s.activity.Record(ctx, models.EventRetentionPrune, fmt.Sprintf("Pruned %d events older than %s.", removed, cutoff.Format(models.DayLayout)), nil)
	}
	return removed, nil
}
