package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

//go:embed sql/get-reading.sql
var getReadingSQL string

//go:embed sql/get-readings-by-date.sql
var getReadingsByDateSQL string

//go:embed sql/get-monthly-pivot.sql
var getMonthlyPivotSQL string

//go:embed sql/count-readings.sql
var countReadingsSQL string

//go:embed sql/insert-reading-if-absent.sql
var insertReadingIfAbsentSQL string

//go:embed sql/upsert-reading.sql
var upsertReadingSQL string

// ReadingRepository is the reading store. (date, slot) is unique; the write
// methods rely on that constraint instead of a prior lookup.
type ReadingRepository interface {
	GetReading(ctx context.Context, date string, slot types.Slot) (types.Reading, bool, error)
	GetReadingsByDate(ctx context.Context, date string) ([]types.Reading, error)
	GetMonthlyPivot(ctx context.Context, year int, month time.Month) ([]types.DayPivot, error)
	CountReadings(ctx context.Context) (int, error)
	// InsertReadingIfAbsent reports false when a reading for (date, slot) already existed.
	InsertReadingIfAbsent(ctx context.Context, r types.Reading) (bool, error)
	UpsertReading(ctx context.Context, r types.Reading) error
}

type repositoryImpl struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) ReadingRepository {
	return &repositoryImpl{db: db, now: time.Now}
}

func (r *repositoryImpl) GetReading(ctx context.Context, date string, slot types.Slot) (types.Reading, bool, error) {
	rows, err := r.db.QueryContext(ctx, getReadingSQL, date, string(slot))
	if err != nil {
		return types.Reading{}, false, err
	}
	defer closeRows(rows, "reading")
	readings, err := scanReadings(rows)
	if err != nil {
		return types.Reading{}, false, err
	}
	if len(readings) == 0 {
		return types.Reading{}, false, nil
	}
	return readings[0], true, nil
}

func (r *repositoryImpl) GetReadingsByDate(ctx context.Context, date string) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getReadingsByDateSQL, date)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "readings by date")
	return scanReadings(rows)
}

// GetMonthlyPivot returns one row per date with at least one reading in the
// month, oldest first.
func (r *repositoryImpl) GetMonthlyPivot(ctx context.Context, year int, month time.Month) ([]types.DayPivot, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	rows, err := r.db.QueryContext(ctx, getMonthlyPivotSQL, first.Format(types.DateLayout), next.Format(types.DateLayout))
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "monthly pivot")

	var out []types.DayPivot
	for rows.Next() {
		var (
			p                  types.DayPivot
			pagi, siang, malam sql.NullFloat64
		)
		if err := rows.Scan(&p.Date, &pagi, &siang, &malam); err != nil {
			return nil, err
		}
		p.Morning = nullFloat(pagi)
		p.Midday = nullFloat(siang)
		p.Night = nullFloat(malam)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) CountReadings(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countReadingsSQL).Scan(&n)
	return n, err
}

func (r *repositoryImpl) InsertReadingIfAbsent(ctx context.Context, rec types.Reading) (bool, error) {
	args, err := r.writeArgs(rec)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, insertReadingIfAbsentSQL, args...)
	if err != nil {
		return false, fmt.Errorf("insert reading: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert reading: rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *repositoryImpl) UpsertReading(ctx context.Context, rec types.Reading) error {
	args, err := r.writeArgs(rec)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertReadingSQL, args...); err != nil {
		return fmt.Errorf("upsert reading: %w", err)
	}
	return nil
}

func (r *repositoryImpl) writeArgs(rec types.Reading) ([]any, error) {
	if _, err := time.Parse(types.DateLayout, rec.Date); err != nil {
		return nil, fmt.Errorf("invalid reading date %q: %w", rec.Date, err)
	}
	if !rec.Slot.Valid() {
		return nil, fmt.Errorf("invalid reading slot %q", rec.Slot)
	}
	if !rec.Source.Valid() {
		return nil, fmt.Errorf("invalid reading source %q", rec.Source)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	return []any{
		rec.Date,
		string(rec.Slot),
		rec.Temperature,
		string(rec.Source),
		created.UTC().Format(time.RFC3339Nano),
		updated.UTC().Format(time.RFC3339Nano),
	}, nil
}

func scanReadings(rows *sql.Rows) ([]types.Reading, error) {
	var out []types.Reading
	for rows.Next() {
		var (
			rec                types.Reading
			slot, source       string
			createdAt, updated string
		)
		if err := rows.Scan(&rec.Date, &slot, &rec.Temperature, &source, &createdAt, &updated); err != nil {
			return nil, err
		}
		rec.Slot = types.Slot(slot)
		rec.Source = types.Source(source)
		var err error
		if rec.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		if rec.UpdatedAt, err = parseTimestamp(updated); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		var err2 error
		t, err2 = time.Parse(time.RFC3339, ts)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", ts, errors.Join(err, err2))
		}
	}
	return t, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close "+what+" rows", "error", err)
	}
}
