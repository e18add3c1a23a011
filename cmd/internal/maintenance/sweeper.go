package maintenance

import (
	"time"

	"github.com/labstack/gommon/log"
	"github.com/robfig/cron/v3"
)

// MeetingPurger is the one repository operation the sweep needs.
type MeetingPurger interface {
	PurgeCancelledBefore(cutoffMillis int64) (int64, error)
}

// Sweeper hard-deletes cancelled meeting rows once they have aged out.
// Cancellation only flags a row so the slot frees up instantly; this keeps
// the table from accumulating dead rows forever.
type Sweeper struct {
	meetings  MeetingPurger
	retention time.Duration
	cron      *cron.Cron
}

func NewSweeper(meetings MeetingPurger, retentionDays int) *Sweeper {
	return &Sweeper{
		meetings:  meetings,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		cron:      cron.New(),
	}
}

// Start schedules the nightly sweep and runs one immediately.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	go s.sweep()
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().UTC().Add(-s.retention).UnixMilli()
	purged, err := s.meetings.PurgeCancelledBefore(cutoff)
	if err != nil {
		log.Errorf("failed to purge cancelled meetings: %v", err)
		return
	}
	if purged > 0 {
		log.Infof("purged %d cancelled meetings", purged)
	}
}
