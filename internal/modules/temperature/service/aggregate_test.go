package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

func seed(t *testing.T, svc *Service, readings ...types.Reading) {
	t.Helper()
	for _, r := range readings {
		if r.Source == "" {
			r.Source = types.SourceManual
		}
		inserted, err := svc.repository.InsertReadingIfAbsent(context.Background(), r)
		require.NoError(t, err)
		require.True(t, inserted, "seed %s %s", r.Date, r.Slot)
	}
}

func TestMonthlyAggregate_March2025(t *testing.T) {
	svc, _ := newTestService(t, okFeed(0), nil)
	seed(t, svc,
		types.Reading{Date: "2025-03-01", Slot: types.SlotMorning, Temperature: 22.0},
		types.Reading{Date: "2025-03-02", Slot: types.SlotMidday, Temperature: 25.5},
	)

	got, err := svc.MonthlyAggregate(context.Background(), 2025, 3, 1)
	require.NoError(t, err)

	require.Len(t, got.Chart, 31)
	require.Len(t, got.Labels, 31)
	require.Equal(t, 1, got.Labels[0])
	require.Equal(t, 31, got.Labels[30])
	require.NotNil(t, got.Chart[0].Max)
	require.Equal(t, 22.0, *got.Chart[0].Max)
	require.NotNil(t, got.Chart[1].Max)
	require.Equal(t, 25.5, *got.Chart[1].Max)
	for _, p := range got.Chart[2:] {
		require.Nil(t, p.Max, "day %d", p.Day)
	}

	require.Equal(t, 2, got.TotalRows)
	require.Equal(t, 1, got.TotalPages)
	require.Equal(t, PerPage, got.PerPage)
	require.Len(t, got.Rows, 2)

	// Newest first.
	require.Equal(t, "2025-03-02", got.Rows[0].Date)
	require.Equal(t, "-", got.Rows[0].MorningDisplay)
	require.Equal(t, "25.5°C", got.Rows[0].MiddayDisplay)
	require.Equal(t, "-", got.Rows[0].NightDisplay)
	require.Equal(t, "25.5°C", got.Rows[0].HighestDisplay)

	require.Equal(t, "2025-03-01", got.Rows[1].Date)
	require.Equal(t, "22.0°C", got.Rows[1].MorningDisplay)
	require.Equal(t, "22.0°C", got.Rows[1].HighestDisplay)
	require.Equal(t, 22.0, *got.Rows[1].Morning)
}

func TestMonthlyAggregate_EmptyMonth(t *testing.T) {
	svc, _ := newTestService(t, okFeed(0), nil)

	got, err := svc.MonthlyAggregate(context.Background(), 2024, 2, 1)
	require.NoError(t, err)
	require.Len(t, got.Chart, 29, "leap February")
	for _, p := range got.Chart {
		require.Nil(t, p.Max)
	}
	require.Empty(t, got.Rows)
	require.NotNil(t, got.Rows)
	require.Zero(t, got.TotalRows)
	require.Equal(t, 1, got.TotalPages)
}

func TestMonthlyAggregate_Pagination(t *testing.T) {
	svc, _ := newTestService(t, okFeed(0), nil)
	for d := 1; d <= 23; d++ {
		seed(t, svc, types.Reading{Date: fmt.Sprintf("2025-01-%02d", d), Slot: types.SlotNight, Temperature: 20 + float64(d)/10})
	}
	ctx := context.Background()

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantRows  int
		wantFirst string
	}{
		{name: "first page", page: 1, wantPage: 1, wantRows: 10, wantFirst: "2025-01-23"},
		{name: "second page", page: 2, wantPage: 2, wantRows: 10, wantFirst: "2025-01-13"},
		{name: "last page", page: 3, wantPage: 3, wantRows: 3, wantFirst: "2025-01-03"},
		{name: "past the end", page: 4, wantPage: 4, wantRows: 0},
		{name: "far past the end", page: math.MaxInt, wantPage: math.MaxInt, wantRows: 0},
		{name: "zero clamps to first", page: 0, wantPage: 1, wantRows: 10, wantFirst: "2025-01-23"},
		{name: "negative clamps to first", page: -3, wantPage: 1, wantRows: 10, wantFirst: "2025-01-23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.MonthlyAggregate(ctx, 2025, 1, tt.page)
			require.NoError(t, err)
			require.Equal(t, tt.wantPage, got.Page)
			require.Equal(t, 23, got.TotalRows)
			require.Equal(t, 3, got.TotalPages)
			require.Len(t, got.Rows, tt.wantRows)
			if tt.wantRows > 0 {
				require.Equal(t, tt.wantFirst, got.Rows[0].Date)
			}
		})
	}
}

func TestMonthlyAggregate_HugePageDoesNotOverflow(t *testing.T) {
	svc, _ := newTestService(t, okFeed(0), nil)
	seed(t, svc,
		types.Reading{Date: "2025-03-01", Slot: types.SlotMorning, Temperature: 22.0},
		types.Reading{Date: "2025-03-02", Slot: types.SlotMidday, Temperature: 25.5},
	)

	// (page-1)*PerPage wraps negative for this page.
	const page = 922337203685477582

	require.NotPanics(t, func() {
		got, err := svc.MonthlyAggregate(context.Background(), 2025, 3, page)
		require.NoError(t, err)
		require.Empty(t, got.Rows)
		require.Equal(t, 2, got.TotalRows)
		require.Equal(t, 1, got.TotalPages)
		require.Len(t, got.Chart, 31)
	})
}

func TestMonthlyAggregate_InvalidPeriod(t *testing.T) {
	svc, _ := newTestService(t, okFeed(0), nil)

	tests := []struct {
		name      string
		year      int
		month     int
		wantField string
	}{
		{name: "month zero", year: 2025, month: 0, wantField: "month"},
		{name: "month thirteen", year: 2025, month: 13, wantField: "month"},
		{name: "year zero", year: 0, month: 3, wantField: "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MonthlyAggregate(context.Background(), tt.year, tt.month, 1)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "err = %v", err)
			require.Contains(t, verr.Fields, tt.wantField)

			_, err = svc.MonthlyPivot(context.Background(), tt.year, tt.month)
			require.True(t, errors.As(err, &verr))
		})
	}
}

func TestMonthlyPivot_Ascending(t *testing.T) {
	svc, _ := newTestService(t, okFeed(0), nil)
	seed(t, svc,
		types.Reading{Date: "2025-03-10", Slot: types.SlotMorning, Temperature: 21.0},
		types.Reading{Date: "2025-03-02", Slot: types.SlotNight, Temperature: 23.0},
		types.Reading{Date: "2025-03-02", Slot: types.SlotMorning, Temperature: 24.0},
	)

	rows, err := svc.MonthlyPivot(context.Background(), 2025, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "2025-03-02", rows[0].Date)
	require.Equal(t, "2025-03-10", rows[1].Date)
	require.Equal(t, 24.0, *rows[0].Highest)
}

func TestFormatCelsius(t *testing.T) {
	require.Equal(t, "-", FormatCelsius(nil))
	require.Equal(t, "22.0°C", FormatCelsius(ptr(22)))
	require.Equal(t, "25.5°C", FormatCelsius(ptr(25.5)))
}
