// Package schedule runs one-shot jobs at a wall-clock time.
//
// Jobs live in process memory only. A job registered with At fires once and is
// then removed; Stop waits for running jobs and drops the rest.
package schedule

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrPast is returned by At for times that are not in the future.
var ErrPast = errors.New("schedule: time is not in the future")

// ErrUnknownEntry is returned by Cancel for ids that are not pending.
var ErrUnknownEntry = errors.New("schedule: unknown entry")

// Job is the work run at the scheduled time.
type Job func(ctx context.Context)

// Entry describes a pending job.
type Entry struct {
	ID    string
	At    time.Time
	Label string
}

// once is a cron.Schedule that fires a single time.
type once struct {
	at time.Time
}

// Next implements cron.Schedule. A zero time tells cron never to run again.
func (o once) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

type pending struct {
	entry  Entry
	cronID cron.EntryID
}

// Scheduler owns a cron runner dedicated to one-shot jobs.
type Scheduler struct {
	cron   *cron.Cron
	now    func() time.Time
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[string]pending
	ctx     context.Context
	cancel  context.CancelFunc
}

// New starts a scheduler.
func New(logger zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    cron.New(),
		now:     time.Now,
		logger:  logger.With().Str("component", "schedule").Logger(),
		pending: map[string]pending{},
		ctx:     ctx,
		cancel:  cancel,
	}
	s.cron.Start()
	return s
}

// At registers job to run at t and returns its entry.
func (s *Scheduler) At(t time.Time, label string, job Job) (Entry, error) {
	if !t.After(s.now()) {
		return Entry{}, ErrPast
	}
	entry := Entry{ID: uuid.NewString(), At: t, Label: label}

	s.mu.Lock()
	defer s.mu.Unlock()
	cronID := s.cron.Schedule(once{at: t}, cron.FuncJob(func() {
		if !s.take(entry.ID) {
			return
		}
		s.logger.Info().Str("id", entry.ID).Str("label", label).Msg("running scheduled job")
		job(s.ctx)
	}))
	s.pending[entry.ID] = pending{entry: entry, cronID: cronID}
	s.logger.Debug().Str("id", entry.ID).Time("at", t).Str("label", label).Msg("job scheduled")
	return entry, nil
}

// take removes id from the pending set and reports whether it was present.
func (s *Scheduler) take(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	s.cron.Remove(p.cronID)
	return true
}

// Cancel drops a pending job.
func (s *Scheduler) Cancel(id string) error {
	if !s.take(id) {
		return ErrUnknownEntry
	}
	return nil
}

// Pending lists jobs that have not fired, earliest first.
func (s *Scheduler) Pending() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.pending))
	for _, p := range s.pending {
		entries = append(entries, p.entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].At.Before(entries[j].At)
	})
	return entries
}

// Stop stops the runner, waits for running jobs, and discards pending ones.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.pending); n > 0 {
		s.logger.Warn().Int("dropped", n).Msg("scheduler stopped with pending jobs")
	}
	s.pending = map[string]pending{}
}
