package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

// Submission is a manually entered reading. Temperature is nil when the
// caller omitted it.
type Submission struct {
	Date           string
	Slot           string
	Temperature    *float64
	ForceOverwrite bool
}

type SubmitOutcome int

const (
	SubmitCreated SubmitOutcome = iota + 1
	SubmitUpdated
)

type SubmitResult struct {
	Outcome SubmitOutcome
	Reading types.Reading
	// Previous is the replaced reading when Outcome is SubmitUpdated.
	Previous *types.Reading
}

// SubmitReading validates and stores a manual reading. today is the caller's
// current time; dates after today's date in the service location are
// rejected. An existing reading is only replaced when ForceOverwrite is set,
// otherwise a *DuplicateError is returned.
func (s *Service) SubmitReading(ctx context.Context, sub Submission, today time.Time) (SubmitResult, error) {
	rec, err := s.validateSubmission(sub, today)
	if err != nil {
		return SubmitResult{}, err
	}
	logger := s.logger.With("date", rec.Date, "slot", rec.Slot)

	existing, exists, err := s.repository.GetReading(ctx, rec.Date, rec.Slot)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("check existing reading: %w", err)
	}

	if !exists {
		inserted, err := s.repository.InsertReadingIfAbsent(ctx, rec)
		if err != nil {
			return SubmitResult{}, err
		}
		if inserted {
			logger.Info("manual reading stored", "temperature", rec.Temperature)
			return SubmitResult{Outcome: SubmitCreated, Reading: rec}, nil
		}
		// Lost a race with another writer; treat as existing.
		existing, exists, err = s.repository.GetReading(ctx, rec.Date, rec.Slot)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("check existing reading: %w", err)
		}
		if !exists {
			return SubmitResult{}, fmt.Errorf("reading for %s %s vanished during insert", rec.Date, rec.Slot)
		}
	}

	if !sub.ForceOverwrite {
		return SubmitResult{}, &DuplicateError{
			Date:     rec.Date,
			Slot:     rec.Slot,
			Existing: existing,
			Proposed: rec.Temperature,
		}
	}

	rec.CreatedAt = existing.CreatedAt
	if err := s.repository.UpsertReading(ctx, rec); err != nil {
		return SubmitResult{}, err
	}
	logger.Info("manual reading overwritten",
		"previous", existing.Temperature,
		"previous_source", existing.Source,
		"temperature", rec.Temperature,
	)
	prev := existing
	return SubmitResult{Outcome: SubmitUpdated, Reading: rec, Previous: &prev}, nil
}

func (s *Service) validateSubmission(sub Submission, today time.Time) (types.Reading, error) {
	verr := &ValidationError{}
	todayDate := today.In(s.loc).Format(types.DateLayout)

	date := strings.TrimSpace(sub.Date)
	switch {
	case date == "":
		verr.add("date", "date is required")
	default:
		parsed, err := time.Parse(types.DateLayout, date)
		if err != nil {
			verr.add("date", "date must be formatted as YYYY-MM-DD")
		} else if parsed.Format(types.DateLayout) > todayDate {
			verr.add("date", "date must be today or earlier")
		} else {
			date = parsed.Format(types.DateLayout)
		}
	}

	var slot types.Slot
	if strings.TrimSpace(sub.Slot) == "" {
		verr.add("slot", "slot is required")
	} else if parsed, err := types.ParseSlot(sub.Slot); err != nil {
		verr.add("slot", "slot must be one of pagi, siang, malam")
	} else {
		slot = parsed
	}

	var temp float64
	if sub.Temperature == nil {
		verr.add("temperature", "temperature is required")
	} else {
		temp = types.RoundTemperature(*sub.Temperature)
		if temp < s.tempMin || temp > s.tempMax {
			verr.add("temperature", fmt.Sprintf("temperature must be between %s and %s",
				FormatTemperature(s.tempMin), FormatTemperature(s.tempMax)))
		}
	}

	if !verr.empty() {
		return types.Reading{}, verr
	}

	stamp := s.now()
	return types.Reading{
		Date:        date,
		Slot:        slot,
		Temperature: temp,
		Source:      types.SourceManual,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}, nil
}
