// Package scheduler fires a job at fixed wall-clock times in one timezone.
//
// The trigger list is static configuration; a single Run loop consumes it, so no
// registration state is shared between goroutines.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Trigger is a daily fire time (hour and minute in the scheduler's location).
type Trigger struct {
	Hour   int
	Minute int
}

func (t Trigger) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTriggers parses a comma separated list of HH:MM times. The result is
// sorted and free of duplicates.
func ParseTriggers(s string) ([]Trigger, error) {
	seen := make(map[Trigger]bool)
	var out []Trigger
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		hh, mm, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("trigger %q: expected HH:MM", part)
		}
		h, err := strconv.Atoi(hh)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("trigger %q: hour must be 0-23", part)
		}
		m, err := strconv.Atoi(mm)
		if err != nil || m < 0 || m > 59 {
			return nil, fmt.Errorf("trigger %q: minute must be 0-59", part)
		}
		t := Trigger{Hour: h, Minute: m}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, errors.New("no trigger times")
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].Minute < out[j].Minute
	})
	return out, nil
}

// Job is invoked once per fire. A returned error is logged and does not stop
// the loop.
type Job func(ctx context.Context, now time.Time) error

type Scheduler struct {
	triggers    []Trigger
	loc         *time.Location
	everyMinute bool
	job         Job
	logger      *slog.Logger

	now   func() time.Time
	after func(d time.Duration) <-chan time.Time
}

// New builds a scheduler. With everyMinute set the trigger list is ignored and
// the job fires at the top of every minute (development mode).
func New(triggers []Trigger, loc *time.Location, everyMinute bool, job Job, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		triggers:    triggers,
		loc:         loc,
		everyMinute: everyMinute,
		job:         job,
		logger:      logger.With("component", "scheduler"),
		now:         time.Now,
		after:       time.After,
	}
}

// Next returns the first fire time strictly after from.
func (s *Scheduler) Next(from time.Time) time.Time {
	t := from.In(s.loc)
	if s.everyMinute || len(s.triggers) == 0 {
		return t.Truncate(time.Minute).Add(time.Minute)
	}
	for day := 0; day <= 1; day++ {
		for _, tr := range s.triggers {
			cand := time.Date(t.Year(), t.Month(), t.Day()+day, tr.Hour, tr.Minute, 0, 0, s.loc)
			if cand.After(t) {
				return cand
			}
		}
	}
	// Unreachable with a non-empty trigger list.
	first := s.triggers[0]
	return time.Date(t.Year(), t.Month(), t.Day()+1, first.Hour, first.Minute, 0, 0, s.loc)
}

// Run blocks until ctx is cancelled, invoking the job at every fire time.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.everyMinute {
		s.logger.Info("scheduler started", "mode", "every-minute", "timezone", s.loc.String())
	} else {
		s.logger.Info("scheduler started", "triggers", s.triggers, "timezone", s.loc.String())
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := s.now()
		next := s.Next(now)
		s.logger.Debug("next tick scheduled", "at", next.Format(time.RFC3339), "in", next.Sub(now).Round(time.Second))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(next.Sub(now)):
			fired := s.now().In(s.loc)
			if err := s.job(ctx, fired); err != nil {
				s.logger.Error("tick failed", "at", fired.Format(time.RFC3339), "error", err)
			}
		}
	}
}
