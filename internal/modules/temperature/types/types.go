package types

import (
	"math"
	"time"
)

// DateLayout is the storage and wire format of a reading's calendar date.
const DateLayout = "2006-01-02"

// Source tags where a reading came from.
type Source string

const (
	SourceThingSpeak Source = "thingspeak"
	SourceFirebase   Source = "firebase"
	SourceManual     Source = "manual"
)

func (s Source) Valid() bool {
	switch s {
	case SourceThingSpeak, SourceFirebase, SourceManual:
		return true
	}
	return false
}

// Reading is the single stored temperature for one (date, slot).
type Reading struct {
	Date        string    `json:"date"`
	Slot        Slot      `json:"slot"`
	Temperature float64   `json:"temperature"`
	Source      Source    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FeedResult is the normalized outcome of one feed fetch. It is never persisted.
type FeedResult struct {
	Success     bool      `json:"success"`
	Temperature float64   `json:"temperature,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
	Message     string    `json:"message,omitempty"`
	Source      Source    `json:"source"`
	// EntryID is the upstream record id when the feed exposes one.
	EntryID int64 `json:"entryId,omitempty"`
}

// RoundTemperature rounds to one fractional digit, half away from zero.
func RoundTemperature(v float64) float64 {
	return math.Round(v*10) / 10
}
