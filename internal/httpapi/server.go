package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(logger.With("component", "http"), mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
