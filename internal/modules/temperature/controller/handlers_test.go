package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/service"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/views"
)

var testNow = time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

type mockService struct {
	today    map[types.Slot]*float64
	todayErr error

	agg       service.MonthlyAggregate
	aggErr    error
	aggCalled struct{ year, month, page int }

	pivot    []service.PivotRow
	pivotErr error

	realtime types.FeedResult

	submitRes service.SubmitResult
	submitErr error
	submitted *service.Submission
}

func (m *mockService) Now() time.Time { return testNow }

func (m *mockService) Bounds() (float64, float64) { return 15, 30 }

func (m *mockService) FeedName() types.Source { return types.SourceThingSpeak }

func (m *mockService) Realtime(context.Context) types.FeedResult { return m.realtime }

func (m *mockService) Today(context.Context, time.Time) (map[types.Slot]*float64, error) {
	return m.today, m.todayErr
}

func (m *mockService) MonthlyAggregate(_ context.Context, year, month, page int) (service.MonthlyAggregate, error) {
	m.aggCalled.year, m.aggCalled.month, m.aggCalled.page = year, month, page
	return m.agg, m.aggErr
}

func (m *mockService) MonthlyPivot(context.Context, int, int) ([]service.PivotRow, error) {
	return m.pivot, m.pivotErr
}

func (m *mockService) SubmitReading(_ context.Context, sub service.Submission, _ time.Time) (service.SubmitResult, error) {
	m.submitted = &sub
	return m.submitRes, m.submitErr
}

func newController(m *mockService) *temperatureControllerImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTemperatureController(m, logger).(*temperatureControllerImpl)
}

func f64(v float64) *float64 { return &v }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func Test_handleToday(t *testing.T) {
	t.Run("returns null for missing slots", func(t *testing.T) {
		ctrl := newController(&mockService{today: map[types.Slot]*float64{
			types.SlotMorning: f64(22.5),
			types.SlotMidday:  nil,
			types.SlotNight:   nil,
		}})
		rec := httptest.NewRecorder()

		ctrl.handleToday(rec, httptest.NewRequest(http.MethodGet, "/api/v1/readings/today", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		body := decodeBody(t, rec)
		if body["pagi"] != 22.5 {
			t.Errorf("pagi = %v; want 22.5", body["pagi"])
		}
		if v, ok := body["siang"]; !ok || v != nil {
			t.Errorf("siang = %v (present=%v); want null", v, ok)
		}
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		ctrl := newController(&mockService{todayErr: errors.New("db gone")})
		rec := httptest.NewRecorder()

		ctrl.handleToday(rec, httptest.NewRequest(http.MethodGet, "/api/v1/readings/today", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func Test_handleMonthly(t *testing.T) {
	t.Run("defaults to current month and page 1", func(t *testing.T) {
		m := &mockService{agg: service.MonthlyAggregate{Year: 2025, Month: 3, Page: 1, PerPage: 10}}
		ctrl := newController(m)
		rec := httptest.NewRecorder()

		ctrl.handleMonthly(rec, httptest.NewRequest(http.MethodGet, "/api/v1/readings/monthly", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if m.aggCalled.year != 2025 || m.aggCalled.month != 3 || m.aggCalled.page != 1 {
			t.Errorf("aggregate called with %+v; want 2025/3 page 1", m.aggCalled)
		}
	})

	t.Run("passes query through", func(t *testing.T) {
		m := &mockService{}
		ctrl := newController(m)
		rec := httptest.NewRecorder()

		ctrl.handleMonthly(rec, httptest.NewRequest(http.MethodGet, "/api/v1/readings/monthly?year=2024&month=12&page=3", nil))

		if m.aggCalled.year != 2024 || m.aggCalled.month != 12 || m.aggCalled.page != 3 {
			t.Errorf("aggregate called with %+v; want 2024/12 page 3", m.aggCalled)
		}
	})

	tests := []struct {
		name       string
		url        string
		aggErr     error
		wantStatus int
	}{
		{name: "non-numeric year", url: "/api/v1/readings/monthly?year=abc", wantStatus: http.StatusBadRequest},
		{name: "non-numeric month", url: "/api/v1/readings/monthly?month=mar", wantStatus: http.StatusBadRequest},
		{
			name:       "validation error",
			url:        "/api/v1/readings/monthly?month=13",
			aggErr:     &service.ValidationError{Fields: map[string]string{"month": "month must be between 1 and 12"}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{name: "store error", url: "/api/v1/readings/monthly", aggErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newController(&mockService{aggErr: tt.aggErr})
			rec := httptest.NewRecorder()

			ctrl.handleMonthly(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func Test_handleRealtime(t *testing.T) {
	tests := []struct {
		name       string
		res        types.FeedResult
		wantStatus int
	}{
		{name: "success", res: types.FeedResult{Success: true, Temperature: 23.1, Source: types.SourceThingSpeak}, wantStatus: http.StatusOK},
		{name: "feed failure", res: types.FeedResult{Success: false, Message: "connection error", Source: types.SourceThingSpeak}, wantStatus: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newController(&mockService{realtime: tt.res})
			rec := httptest.NewRecorder()

			ctrl.handleRealtime(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed/realtime", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantStatus)
			}
			body := decodeBody(t, rec)
			if body["success"] != tt.res.Success {
				t.Errorf("success = %v; want %v", body["success"], tt.res.Success)
			}
		})
	}
}

func Test_handleSubmit(t *testing.T) {
	existing := types.Reading{Date: "2025-03-01", Slot: types.SlotMorning, Temperature: 20.0, Source: types.SourceThingSpeak}
	created := types.Reading{Date: "2025-03-01", Slot: types.SlotMorning, Temperature: 21.0, Source: types.SourceManual}

	tests := []struct {
		name       string
		body       string
		res        service.SubmitResult
		err        error
		wantStatus int
		wantInBody string
	}{
		{
			name:       "created",
			body:       `{"date":"2025-03-01","slot":"pagi","temperature":21.0}`,
			res:        service.SubmitResult{Outcome: service.SubmitCreated, Reading: created},
			wantStatus: http.StatusCreated,
			wantInBody: `"reading stored"`,
		},
		{
			name:       "updated",
			body:       `{"date":"2025-03-01","slot":"pagi","temperature":"21.0","force_overwrite":true}`,
			res:        service.SubmitResult{Outcome: service.SubmitUpdated, Reading: created, Previous: &existing},
			wantStatus: http.StatusOK,
			wantInBody: "from 20.0°C to 21.0°C",
		},
		{
			name:       "duplicate",
			body:       `{"date":"2025-03-01","slot":"pagi","temperature":21}`,
			err:        &service.DuplicateError{Date: "2025-03-01", Slot: types.SlotMorning, Existing: existing, Proposed: 21.0},
			wantStatus: http.StatusConflict,
			wantInBody: `"duplicate":true`,
		},
		{
			name:       "validation",
			body:       `{"date":"2099-01-01","slot":"pagi","temperature":21}`,
			err:        &service.ValidationError{Fields: map[string]string{"date": "date must be today or earlier"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantInBody: "today or earlier",
		},
		{
			name:       "persistence failure",
			body:       `{"date":"2025-03-01","slot":"pagi","temperature":21}`,
			err:        errors.New("database is locked"),
			wantStatus: http.StatusInternalServerError,
			wantInBody: "internal error",
		},
		{
			name:       "malformed json",
			body:       `{"date":`,
			wantStatus: http.StatusBadRequest,
			wantInBody: "invalid JSON body",
		},
		{
			name:       "non-numeric temperature string",
			body:       `{"date":"2025-03-01","slot":"pagi","temperature":"hot"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockService{submitRes: tt.res, submitErr: tt.err}
			ctrl := newController(m)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/readings", strings.NewReader(tt.body))

			ctrl.handleSubmit(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantInBody != "" && !strings.Contains(rec.Body.String(), tt.wantInBody) {
				t.Errorf("body = %q; want it to contain %q", rec.Body.String(), tt.wantInBody)
			}
		})
	}
}

func Test_handleSubmit_passesSubmission(t *testing.T) {
	m := &mockService{submitRes: service.SubmitResult{Outcome: service.SubmitCreated}}
	ctrl := newController(m)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/readings",
		strings.NewReader(`{"date":"2025-03-01","slot":"malam","temperature":22.53,"force_overwrite":true}`))

	ctrl.handleSubmit(rec, req)

	if m.submitted == nil {
		t.Fatal("SubmitReading not called")
	}
	got := *m.submitted
	if got.Date != "2025-03-01" || got.Slot != "malam" || !got.ForceOverwrite {
		t.Errorf("submission = %+v", got)
	}
	if got.Temperature == nil || *got.Temperature != 22.53 {
		t.Errorf("temperature = %v; want 22.53", got.Temperature)
	}
}

func Test_handleSubmit_missingTemperatureIsNil(t *testing.T) {
	m := &mockService{submitErr: &service.ValidationError{Fields: map[string]string{"temperature": "temperature is required"}}}
	ctrl := newController(m)
	rec := httptest.NewRecorder()

	ctrl.handleSubmit(rec, httptest.NewRequest(http.MethodPost, "/api/v1/readings", strings.NewReader(`{"date":"2025-03-01","slot":"pagi"}`)))

	if m.submitted == nil || m.submitted.Temperature != nil {
		t.Fatalf("submission = %+v; want nil temperature", m.submitted)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func Test_handleDashboard(t *testing.T) {
	t.Run("returns 404 when path is not /", func(t *testing.T) {
		ctrl := newController(&mockService{})
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()

		ctrl.handleDashboard(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("renders today and month", func(t *testing.T) {
		if err := views.LoadTemplates(); err != nil {
			t.Fatalf("LoadTemplates(): %v", err)
		}
		m := &mockService{
			today: map[types.Slot]*float64{types.SlotMorning: f64(22.0)},
			agg: service.MonthlyAggregate{
				Year: 2025, Month: 3, Page: 1, PerPage: 10, TotalPages: 1, TotalRows: 1,
				Rows: []service.PivotRow{{
					DayPivot:       types.DayPivot{Date: "2025-03-01"},
					MorningDisplay: "22.0°C", MiddayDisplay: "-", NightDisplay: "-", HighestDisplay: "22.0°C",
				}},
			},
		}
		ctrl := newController(m)
		rec := httptest.NewRecorder()

		ctrl.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q; want text/html", ct)
		}
		out := rec.Body.String()
		for _, want := range []string{"2025-03-01", "22.0°C", "Maret", "thingspeak"} {
			if !strings.Contains(out, want) {
				t.Errorf("dashboard missing %q", want)
			}
		}
	})
}

func Test_handleMonthPartial(t *testing.T) {
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}
	m := &mockService{agg: service.MonthlyAggregate{Year: 2025, Month: 1, Page: 2, TotalPages: 3, TotalRows: 23}}
	ctrl := newController(m)
	rec := httptest.NewRecorder()

	ctrl.handleMonthPartial(rec, httptest.NewRequest(http.MethodGet, "/partials/month?year=2025&month=1&page=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Error("partial rendered the full page")
	}
	if m.aggCalled.page != 2 {
		t.Errorf("page = %d; want 2", m.aggCalled.page)
	}
}

func TestRegisterRoutes(t *testing.T) {
	m := &mockService{realtime: types.FeedResult{Success: true}}
	mux := http.NewServeMux()
	newController(m).RegisterRoutes(mux)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{method: http.MethodGet, path: "/api/v1/feed/realtime", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/readings/today", wantStatus: http.StatusOK},
		{method: http.MethodDelete, path: "/api/v1/readings", wantStatus: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/api/v1/export/xlsx?year=2025&month=3", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func Test_buildPageItems(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		current int
		want    string
	}{
		{name: "none", total: 0, current: 1, want: ""},
		{name: "few pages", total: 3, current: 2, want: "1 2 3"},
		{name: "ellipsis both sides", total: 20, current: 10, want: "1 … 8 9 10 11 12 … 20"},
		{name: "near start", total: 20, current: 1, want: "1 2 3 … 20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parts []string
			for _, it := range buildPageItems(tt.total, tt.current) {
				if it.Ellipsis {
					parts = append(parts, "…")
					continue
				}
				parts = append(parts, strconv.Itoa(it.Page))
			}
			if got := strings.Join(parts, " "); got != tt.want {
				t.Errorf("buildPageItems(%d, %d) = %q; want %q", tt.total, tt.current, got, tt.want)
			}
		})
	}
}

func Test_buildTodayData(t *testing.T) {
	got := buildTodayData("2025-03-01", map[types.Slot]*float64{types.SlotMidday: f64(23.5)})

	want := []struct {
		slot, hour, display string
		present             bool
	}{
		{"pagi", "08:00", "-", false},
		{"siang", "12:00", "23.5°C", true},
		{"malam", "20:00", "-", false},
	}
	if len(got.Slots) != len(want) {
		t.Fatalf("len(Slots) = %d; want %d", len(got.Slots), len(want))
	}
	for i, w := range want {
		s := got.Slots[i]
		if s.Slot != w.slot || s.Hour != w.hour || s.Display != w.display || s.Present != w.present {
			t.Errorf("Slots[%d] = %+v; want slot=%s hour=%s display=%s present=%v", i, s, w.slot, w.hour, w.display, w.present)
		}
	}
}
