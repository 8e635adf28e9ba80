package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

// PerPage is the pivot table page size.
const PerPage = 10

// ChartPoint is the daily maximum for one calendar day; Max is nil for days
// without readings.
type ChartPoint struct {
	Day int      `json:"day"`
	Max *float64 `json:"max"`
}

// PivotRow is a DayPivot with display strings ("22.0°C" or "-").
type PivotRow struct {
	types.DayPivot
	Highest        *float64 `json:"tertinggi"`
	MorningDisplay string   `json:"pagiDisplay"`
	MiddayDisplay  string   `json:"siangDisplay"`
	NightDisplay   string   `json:"malamDisplay"`
	HighestDisplay string   `json:"tertinggiDisplay"`
}

type MonthlyAggregate struct {
	Year       int          `json:"year"`
	Month      int          `json:"month"`
	Labels     []int        `json:"chartLabels"`
	Chart      []ChartPoint `json:"chart"`
	Rows       []PivotRow   `json:"tableData"`
	TotalRows  int          `json:"totalItems"`
	Page       int          `json:"currentPage"`
	PerPage    int          `json:"perPage"`
	TotalPages int          `json:"totalPages"`
}

// MonthlyAggregate builds the chart series and one page of the pivot table
// for (year, month). Pages start at 1; smaller values are clamped.
func (s *Service) MonthlyAggregate(ctx context.Context, year, month, page int) (MonthlyAggregate, error) {
	if err := validatePeriod(year, month); err != nil {
		return MonthlyAggregate{}, err
	}
	if page < 1 {
		page = 1
	}

	pivots, err := s.repository.GetMonthlyPivot(ctx, year, time.Month(month))
	if err != nil {
		return MonthlyAggregate{}, fmt.Errorf("monthly pivot: %w", err)
	}

	maxByDate := make(map[string]*float64, len(pivots))
	for _, p := range pivots {
		maxByDate[p.Date] = p.Max()
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	out := MonthlyAggregate{
		Year:    year,
		Month:   month,
		Labels:  make([]int, 0, days),
		Chart:   make([]ChartPoint, 0, days),
		Rows:    []PivotRow{},
		Page:    page,
		PerPage: PerPage,
	}
	for d := 1; d <= days; d++ {
		date := first.AddDate(0, 0, d-1).Format(types.DateLayout)
		out.Labels = append(out.Labels, d)
		out.Chart = append(out.Chart, ChartPoint{Day: d, Max: maxByDate[date]})
	}

	out.TotalRows = len(pivots)
	out.TotalPages = (out.TotalRows + PerPage - 1) / PerPage
	if out.TotalPages == 0 {
		out.TotalPages = 1
	}

	// Past the last page: empty rows. Checked before multiplying so huge
	// page numbers cannot overflow.
	if page > out.TotalPages {
		return out, nil
	}

	// Table is newest first.
	start := (page - 1) * PerPage
	for i := start; i < start+PerPage && i < len(pivots); i++ {
		out.Rows = append(out.Rows, newPivotRow(pivots[len(pivots)-1-i]))
	}
	return out, nil
}

// MonthlyPivot returns every day of the month with data, oldest first.
func (s *Service) MonthlyPivot(ctx context.Context, year, month int) ([]PivotRow, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	pivots, err := s.repository.GetMonthlyPivot(ctx, year, time.Month(month))
	if err != nil {
		return nil, fmt.Errorf("monthly pivot: %w", err)
	}
	rows := make([]PivotRow, 0, len(pivots))
	for _, p := range pivots {
		rows = append(rows, newPivotRow(p))
	}
	return rows, nil
}

func newPivotRow(p types.DayPivot) PivotRow {
	highest := p.Max()
	return PivotRow{
		DayPivot:       p,
		Highest:        highest,
		MorningDisplay: FormatCelsius(p.Morning),
		MiddayDisplay:  FormatCelsius(p.Midday),
		NightDisplay:   FormatCelsius(p.Night),
		HighestDisplay: FormatCelsius(highest),
	}
}

// FormatCelsius renders v as "22.0°C", or "-" when nil.
func FormatCelsius(v *float64) string {
	if v == nil {
		return "-"
	}
	return FormatTemperature(*v) + "°C"
}

// FormatTemperature renders v with exactly one fractional digit.
func FormatTemperature(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func validatePeriod(year, month int) error {
	verr := &ValidationError{}
	if month < 1 || month > 12 {
		verr.add("month", "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		verr.add("year", "year must be between 1 and 9999")
	}
	if !verr.empty() {
		return verr
	}
	return nil
}
