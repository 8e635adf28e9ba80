package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/service"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/utils"
)

const (
	exportSheet     = "Sheet1"
	exportTitle     = "FORMULIR PEMANTAU SUHU RUANG SERVER"
	exportHeaderRow = 4
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{
	"TANGGAL",
	"SUHU PAGI (°C)",
	"SUHU SIANG (°C)",
	"SUHU MALAM (°C)",
	"SUHU TERTINGGI (°C)",
}

func (c *temperatureControllerImpl) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriodQuery(r, c.service.Now())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := c.service.MonthlyPivot(r.Context(), year, month)
	if err != nil {
		c.writeServiceError(w, "export: monthly pivot failed", err)
		return
	}
	if len(rows) == 0 {
		utils.WriteError(w, http.StatusNotFound,
			fmt.Sprintf("no temperature data for %s %d", types.MonthName(month), year))
		return
	}

	buf, err := buildWorkbook(year, month, rows)
	if err != nil {
		c.logger.Error("export: build workbook failed", "year", year, "month", month, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to export workbook")
		return
	}

	filename := fmt.Sprintf("Formulir_Suhu_Server_%s_%d.xlsx", types.MonthName(month), year)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "max-age=0")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		c.logger.Error("export: write response failed", "error", err)
	}
}

// buildWorkbook lays out the monthly form: two merged title rows, a styled
// header on row 4 and one row per date below it.
func buildWorkbook(year, month int, rows []service.PivotRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2C3E50"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	subtitle := fmt.Sprintf("BULAN %s TAHUN %d", strings.ToUpper(types.MonthName(month)), year)
	steps := []func() error{
		func() error { return f.MergeCell(exportSheet, "A1", "E1") },
		func() error { return f.SetCellValue(exportSheet, "A1", exportTitle) },
		func() error { return f.SetCellStyle(exportSheet, "A1", "A1", titleStyle) },
		func() error { return f.MergeCell(exportSheet, "A2", "E2") },
		func() error { return f.SetCellValue(exportSheet, "A2", subtitle) },
		func() error { return f.SetCellStyle(exportSheet, "A2", "A2", subtitleStyle) },
		func() error {
			return f.SetSheetRow(exportSheet, fmt.Sprintf("A%d", exportHeaderRow), &exportHeaders)
		},
		func() error {
			return f.SetCellStyle(exportSheet, fmt.Sprintf("A%d", exportHeaderRow), fmt.Sprintf("E%d", exportHeaderRow), headerStyle)
		},
		func() error { return f.SetColWidth(exportSheet, "A", "E", 22) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		date, err := time.Parse(types.DateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		values := []any{
			date.Format("02/01/2006"),
			exportCell(row.Morning),
			exportCell(row.Midday),
			exportCell(row.Night),
			exportCell(row.Highest),
		}
		cell := fmt.Sprintf("A%d", exportHeaderRow+1+i)
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}

func exportCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return service.FormatTemperature(*v)
}
