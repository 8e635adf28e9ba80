package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/service"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/views"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/utils"
)

const maxSubmitBody = 64 << 10

func (c *temperatureControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	now := c.service.Now()
	year, month, err := parsePeriodQuery(r, now)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	today, err := c.service.Today(r.Context(), now)
	if err != nil {
		c.logger.Error("dashboard: load today failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	agg, err := c.service.MonthlyAggregate(r.Context(), year, month, parsePage(r))
	if err != nil {
		c.writeServiceError(w, "dashboard: monthly aggregate failed", err)
		return
	}

	lo, hi := c.service.Bounds()
	data := &views.DashboardData{
		Today:      buildTodayData(now.Format(types.DateLayout), today),
		Month:      buildMonthData(agg),
		Months:     buildMonthOptions(month),
		FeedSource: string(c.service.FeedName()),
		TempMin:    service.FormatTemperature(lo),
		TempMax:    service.FormatTemperature(hi),
		MaxDate:    now.Format(types.DateLayout),
	}

	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		c.logger.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *temperatureControllerImpl) handleMonthPartial(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriodQuery(r, c.service.Now())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	agg, err := c.service.MonthlyAggregate(r.Context(), year, month, parsePage(r))
	if err != nil {
		c.writeServiceError(w, "month partial: monthly aggregate failed", err)
		return
	}

	data := buildMonthData(agg)
	var buf bytes.Buffer
	if err := views.RenderMonthPartial(&buf, &data); err != nil {
		c.logger.Error("month partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *temperatureControllerImpl) handleToday(w http.ResponseWriter, r *http.Request) {
	today, err := c.service.Today(r.Context(), c.service.Now())
	if err != nil {
		c.logger.Error("today: load readings failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, today)
}

func (c *temperatureControllerImpl) handleMonthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriodQuery(r, c.service.Now())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	agg, err := c.service.MonthlyAggregate(r.Context(), year, month, parsePage(r))
	if err != nil {
		c.writeServiceError(w, "monthly: aggregate failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, agg)
}

func (c *temperatureControllerImpl) handleRealtime(w http.ResponseWriter, r *http.Request) {
	res := c.service.Realtime(r.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	utils.WriteJSON(w, status, res)
}

type submitRequest struct {
	Date           string       `json:"date"`
	Slot           string       `json:"slot"`
	Temperature    *json.Number `json:"temperature"`
	ForceOverwrite bool         `json:"force_overwrite"`
}

type readingPayload struct {
	Date        string `json:"date"`
	Slot        string `json:"slot"`
	Temperature string `json:"temperature"`
	Source      string `json:"source"`
}

func newReadingPayload(r types.Reading) readingPayload {
	return readingPayload{
		Date:        r.Date,
		Slot:        string(r.Slot),
		Temperature: service.FormatTemperature(r.Temperature),
		Source:      string(r.Source),
	}
}

func (c *temperatureControllerImpl) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBody))
	if err := dec.Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	sub := service.Submission{Date: req.Date, Slot: req.Slot, ForceOverwrite: req.ForceOverwrite}
	if req.Temperature != nil {
		v, err := req.Temperature.Float64()
		if err != nil {
			utils.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"success": false,
				"errors":  map[string]string{"temperature": "temperature must be a number"},
			})
			return
		}
		sub.Temperature = &v
	}

	res, err := c.service.SubmitReading(r.Context(), sub, c.service.Now())
	var dup *service.DuplicateError
	switch {
	case errors.As(err, &dup):
		utils.WriteJSON(w, http.StatusConflict, map[string]any{
			"success":   false,
			"duplicate": true,
			"existing":  newReadingPayload(dup.Existing),
			"proposed":  service.FormatTemperature(dup.Proposed),
			"message": fmt.Sprintf("reading for %s on %s already exists (%s°C)",
				dup.Slot, dup.Date, service.FormatTemperature(dup.Existing.Temperature)),
		})
		return
	case err != nil:
		c.writeServiceError(w, "submit: store reading failed", err)
		return
	}

	switch res.Outcome {
	case service.SubmitUpdated:
		prev := newReadingPayload(*res.Previous)
		utils.WriteJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"reading":  newReadingPayload(res.Reading),
			"previous": prev,
			"message": fmt.Sprintf("reading for %s updated from %s°C to %s°C",
				res.Reading.Slot, prev.Temperature, service.FormatTemperature(res.Reading.Temperature)),
		})
	default:
		utils.WriteJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"reading": newReadingPayload(res.Reading),
			"message": "reading stored",
		})
	}
}

// writeServiceError maps validation failures to 422 and anything else to 500.
func (c *temperatureControllerImpl) writeServiceError(w http.ResponseWriter, msg string, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		utils.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"errors":  verr.Fields,
		})
		return
	}
	c.logger.Error(msg, "error", err)
	utils.WriteError(w, http.StatusInternalServerError, "internal error")
}

func buildTodayData(date string, today map[types.Slot]*float64) views.TodayData {
	out := views.TodayData{Date: date}
	for _, slot := range types.Slots() {
		v := today[slot]
		out.Slots = append(out.Slots, views.SlotValue{
			Slot:    string(slot),
			Label:   slot.Label(),
			Hour:    fmt.Sprintf("%02d:00", slot.Hour()),
			Display: service.FormatCelsius(v),
			Present: v != nil,
		})
	}
	return out
}

func buildMonthData(agg service.MonthlyAggregate) views.MonthData {
	rows := make([]views.MonthRow, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		rows = append(rows, views.MonthRow{
			Date:    r.Date,
			Morning: r.MorningDisplay,
			Midday:  r.MiddayDisplay,
			Night:   r.NightDisplay,
			Highest: r.HighestDisplay,
		})
	}
	return views.MonthData{
		Year:        agg.Year,
		Month:       agg.Month,
		MonthName:   types.MonthName(agg.Month),
		Rows:        rows,
		TotalRows:   agg.TotalRows,
		CurrentPage: agg.Page,
		TotalPages:  agg.TotalPages,
		HasPrev:     agg.Page > 1,
		HasNext:     agg.Page < agg.TotalPages,
		PrevPage:    agg.Page - 1,
		NextPage:    agg.Page + 1,
		PageItems:   buildPageItems(agg.TotalPages, agg.Page),
	}
}

func buildMonthOptions(selected int) []views.MonthOption {
	out := make([]views.MonthOption, 0, 12)
	for m := 1; m <= 12; m++ {
		out = append(out, views.MonthOption{Value: m, Name: types.MonthName(m), Selected: m == selected})
	}
	return out
}
