package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

type TickResult int

const (
	TickOffSchedule TickResult = iota
	TickDuplicate
	TickFeedFailed
	TickStored
	TickFailed
)

func (r TickResult) String() string {
	switch r {
	case TickOffSchedule:
		return "off_schedule"
	case TickDuplicate:
		return "duplicate"
	case TickFeedFailed:
		return "feed_failed"
	case TickStored:
		return "stored"
	case TickFailed:
		return "failed"
	}
	return fmt.Sprintf("TickResult(%d)", int(r))
}

// Tick runs one ingestion attempt for the wall-clock time now. Only
// TickFeedFailed and TickFailed come with a non-nil error.
func (s *Service) Tick(ctx context.Context, now time.Time) (TickResult, error) {
	local := now.In(s.loc)
	date := local.Format(types.DateLayout)
	hour := local.Hour()
	logger := s.logger.With("tick_id", uuid.NewString(), "date", date, "hour", hour)

	slot, ok := types.ResolveSlot(hour)
	if !ok {
		next, tomorrow := types.NextSlotHour(hour)
		when := fmt.Sprintf("%02d:00", next)
		if tomorrow {
			when += " tomorrow"
		}
		logger.Info("not a collection hour", "next_collection", when)
		return TickOffSchedule, nil
	}
	logger = logger.With("slot", slot)

	if _, exists, err := s.repository.GetReading(ctx, date, slot); err != nil {
		logger.Error("check existing reading", "error", err)
		return TickFailed, fmt.Errorf("check existing reading: %w", err)
	} else if exists {
		logger.Info("reading already stored")
		return TickDuplicate, nil
	}

	res := s.feed.Fetch(ctx)
	if !res.Success {
		logger.Error("feed fetch failed", "source", s.feed.Name(), "message", res.Message)
		return TickFeedFailed, fmt.Errorf("%w: %s: %s", ErrFeedUnavailable, s.feed.Name(), res.Message)
	}

	stamp := s.now()
	rec := types.Reading{
		Date:        date,
		Slot:        slot,
		Temperature: types.RoundTemperature(res.Temperature),
		Source:      s.feed.Name(),
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
	inserted, err := s.repository.InsertReadingIfAbsent(ctx, rec)
	if err != nil {
		logger.Error("store reading", "error", err)
		return TickFailed, err
	}
	if !inserted {
		logger.Info("reading stored concurrently")
		return TickDuplicate, nil
	}
	logger.Info("reading stored", "temperature", rec.Temperature, "source", rec.Source)

	if s.publisher != nil {
		if err := s.publisher.PublishReading(ctx, rec); err != nil {
			logger.Warn("publish reading", "error", err)
		}
	}
	return TickStored, nil
}
