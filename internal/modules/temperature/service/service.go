package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/feed"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/repository"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

// ReadingPublisher receives every reading the scheduler stores.
type ReadingPublisher interface {
	PublishReading(ctx context.Context, r types.Reading) error
}

type Options struct {
	Location *time.Location
	TempMin  float64
	TempMax  float64
}

type Service struct {
	repository repository.ReadingRepository
	feed       feed.Client
	publisher  ReadingPublisher
	loc        *time.Location
	tempMin    float64
	tempMax    float64
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the temperature use cases. publisher may be nil.
func NewService(repo repository.ReadingRepository, feedClient feed.Client, publisher ReadingPublisher, opts Options, logger *slog.Logger) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repository: repo,
		feed:       feedClient,
		publisher:  publisher,
		loc:        loc,
		tempMin:    opts.TempMin,
		tempMax:    opts.TempMax,
		logger:     logger.With("component", "temperature"),
		now:        time.Now,
	}
}

// Location is the wall clock used for slots and "today".
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the current time in the service location.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// Bounds returns the accepted inclusive temperature range.
func (s *Service) Bounds() (lo, hi float64) { return s.tempMin, s.tempMax }

// FeedName is the source tag of the active feed.
func (s *Service) FeedName() types.Source { return s.feed.Name() }

// Realtime fetches the live feed value without storing it.
func (s *Service) Realtime(ctx context.Context) types.FeedResult {
	return s.feed.Fetch(ctx)
}

// Today returns today's readings keyed by slot; missing slots are nil.
func (s *Service) Today(ctx context.Context, today time.Time) (map[types.Slot]*float64, error) {
	date := today.In(s.loc).Format(types.DateLayout)
	readings, err := s.repository.GetReadingsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make(map[types.Slot]*float64, len(types.Slots()))
	for _, slot := range types.Slots() {
		out[slot] = nil
	}
	for _, r := range readings {
		v := r.Temperature
		out[r.Slot] = &v
	}
	return out, nil
}
