package temperature

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/config"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/controller"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/feed"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/repository"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/service"
)

// NewService builds the temperature service from cfg. publisher may be nil.
func NewService(cfg config.Config, db *sql.DB, publisher service.ReadingPublisher, logger *slog.Logger) (*service.Service, error) {
	feedClient, err := feed.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return service.NewService(
		repository.NewRepository(db),
		feedClient,
		publisher,
		service.Options{Location: cfg.Location, TempMin: cfg.TempMin, TempMax: cfg.TempMax},
		logger,
	), nil
}

func RegisterFeature(mux *http.ServeMux, svc *service.Service, logger *slog.Logger) {
	temperatureController := controller.NewTemperatureController(svc, logger)
	temperatureController.RegisterRoutes(mux)
}
