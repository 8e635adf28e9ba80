package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/service"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

// TemperatureService is the subset of *service.Service the HTTP layer needs.
type TemperatureService interface {
	Now() time.Time
	Bounds() (lo, hi float64)
	FeedName() types.Source
	Realtime(ctx context.Context) types.FeedResult
	Today(ctx context.Context, today time.Time) (map[types.Slot]*float64, error)
	MonthlyAggregate(ctx context.Context, year, month, page int) (service.MonthlyAggregate, error)
	MonthlyPivot(ctx context.Context, year, month int) ([]service.PivotRow, error)
	SubmitReading(ctx context.Context, sub service.Submission, today time.Time) (service.SubmitResult, error)
}

type TemperatureController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type temperatureControllerImpl struct {
	service TemperatureService
	logger  *slog.Logger
}

func NewTemperatureController(svc TemperatureService, logger *slog.Logger) TemperatureController {
	return &temperatureControllerImpl{service: svc, logger: logger.With("component", "http")}
}

func (c *temperatureControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /partials/month", c.handleMonthPartial)

	mux.HandleFunc("GET /api/v1/readings/today", c.handleToday)
	mux.HandleFunc("GET /api/v1/readings/monthly", c.handleMonthly)
	mux.HandleFunc("POST /api/v1/readings", c.handleSubmit)
	mux.HandleFunc("GET /api/v1/feed/realtime", c.handleRealtime)
	mux.HandleFunc("GET /api/v1/export/xlsx", c.handleExportXLSX)
}
