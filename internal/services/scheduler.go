package services

import (
	"context"
	"sync"
	"time"

	"arogyam-go/internal/models"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// checkInterval is how often the scheduler looks for work.
const checkInterval = time.Minute

type ReminderStore interface {
	DueForReminder(ctx context.Context, day time.Time) ([]models.Consultation, error)
	MarkReminded(ctx context.Context, id uint, at time.Time) error
}

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type ReminderSender interface {
	SendConsultationReminder(c models.Consultation) error
}

// Scheduler sends consultation reminders the day before and clears expired
// admin tokens.
type Scheduler struct {
	log       *zap.Logger
	clock     clock.Clock
	reminders ReminderStore
	sessions  SessionPurger
	sender    ReminderSender

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewScheduler(log *zap.Logger, clk clock.Clock, reminders ReminderStore, sessions SessionPurger, sender ReminderSender) *Scheduler {
	return &Scheduler{
		log:       log,
		clock:     clk,
		reminders: reminders,
		sessions:  sessions,
		sender:    sender,
		stop:      make(chan struct{}),
	}
}

// Start runs the scheduler in a goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Starting reminder scheduler...")
	ticker := s.clock.Ticker(checkInterval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.RunOnce(context.Background())
			}
		}
	}()
}

// Stop ends the loop and waits for the current run to finish.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// RunOnce performs one pass of every scheduled job.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := s.clock.Now().UTC()
	s.sendReminders(ctx, now)
	s.purgeSessions(ctx, now)
}

func (s *Scheduler) sendReminders(ctx context.Context, now time.Time) {
	y, m, d := now.AddDate(0, 0, 1).Date()
	tomorrow := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	s.log.Debug("Running reminder check", zap.Time("day", tomorrow))

	due, err := s.reminders.DueForReminder(ctx, tomorrow)
	if err != nil {
		s.log.Error("Failed to get consultations due for a reminder", zap.Error(err))
		return
	}

	for _, c := range due {
		if err := s.sender.SendConsultationReminder(c); err != nil {
			s.log.Error("Failed to send reminder", zap.Uint("consultationID", c.ID), zap.Error(err))
			continue
		}
		// Marked only after sending, so a failure is retried on the next tick.
		if err := s.reminders.MarkReminded(ctx, c.ID, now); err != nil {
			s.log.Error("Failed to mark consultation reminded", zap.Uint("consultationID", c.ID), zap.Error(err))
		}
	}
}

func (s *Scheduler) purgeSessions(ctx context.Context, now time.Time) {
	n, err := s.sessions.PurgeExpiredSessions(ctx, now)
	if err != nil {
		s.log.Error("Failed to purge expired admin sessions", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("Purged expired admin sessions", zap.Int64("count", n))
	}
}
