package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/config"
	db "github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/db"
	httpapi "github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/httpapi"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/migrate"
	temperature "github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/service"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/views"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/mqtt"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/scheduler"
)

// Run serves HTTP and drives the collection schedule until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logConfig(cfg, logger)

	dbConn, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(dbConn, logger)

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	var publisher service.ReadingPublisher
	if cfg.MQTTBroker != "" {
		mqttPublisher := mqtt.NewPublisher(cfg, logger)
		defer mqttPublisher.Disconnect()
		// Short timeout so a missing broker doesn't block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = mqttPublisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt broker unreachable (continuing, client retries in background)", "error", err)
		}
		publisher = mqttPublisher
	}

	svc, err := temperature.NewService(cfg, dbConn, publisher, logger)
	if err != nil {
		return err
	}

	mux := httpapi.NewMux(dbConn)
	temperature.RegisterFeature(mux, svc, logger)

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	sched := scheduler.New(cfg.ScheduleTriggers, cfg.Location, cfg.ScheduleEveryMinute, tickJob(svc), logger)
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler stopped", "error", err)
		}
	}()

	srv := httpapi.NewServer(cfg, mux, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stop()
		<-schedDone
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-schedDone

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// RunFetch performs one collection tick at the current time.
func RunFetch(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.TickResult, error) {
	return runFetch(ctx, cfg, logger, time.Now())
}

func runFetch(ctx context.Context, cfg config.Config, logger *slog.Logger, now time.Time) (service.TickResult, error) {
	dbConn, err := openStore(ctx, cfg, logger)
	if err != nil {
		return service.TickFailed, err
	}
	defer closeStore(dbConn, logger)

	var publisher service.ReadingPublisher
	if cfg.MQTTBroker != "" {
		p := mqtt.NewPublisher(cfg, logger)
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (reading will not be published)", "error", err)
		}
		defer p.Disconnect()
		publisher = p
	}

	svc, err := temperature.NewService(cfg, dbConn, publisher, logger)
	if err != nil {
		return service.TickFailed, err
	}
	return svc.Tick(ctx, now)
}

// RunMigrate applies pending schema migrations and reports how many ran.
func RunMigrate(ctx context.Context, cfg config.Config, logger *slog.Logger) (int, error) {
	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return 0, err
	}
	defer closeStore(dbConn, logger)

	return migrate.Run(ctx, dbConn, logger)
}

func tickJob(svc *service.Service) scheduler.Job {
	return func(ctx context.Context, now time.Time) error {
		_, err := svc.Tick(ctx, now)
		return err
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	if _, err := migrate.Run(ctx, dbConn, logger); err != nil {
		closeStore(dbConn, logger)
		return nil, err
	}

	var ok int
	if err := dbConn.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		closeStore(dbConn, logger)
		return nil, err
	}
	if ok != 1 {
		closeStore(dbConn, logger)
		return nil, errors.New("database connection failed")
	}
	logger.Info("database connection successful")
	return dbConn, nil
}

func closeStore(dbConn *sql.DB, logger *slog.Logger) {
	if err := db.Close(dbConn); err != nil {
		logger.Error("db close", "error", err)
	}
}

func logConfig(cfg config.Config, logger *slog.Logger) {
	triggers := make([]string, 0, len(cfg.ScheduleTriggers))
	for _, t := range cfg.ScheduleTriggers {
		triggers = append(triggers, t.String())
	}
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"timezone", cfg.Location.String(),
		"scheduleTimes", triggers,
		"scheduleEveryMinute", cfg.ScheduleEveryMinute,
		"feedSource", cfg.FeedSource,
		"feedTimeout", cfg.FeedTimeout,
		"tempRange", fmt.Sprintf("%.1f-%.1f", cfg.TempMin, cfg.TempMax),
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopicPrefix", cfg.MQTTTopicPrefix,
	)
}
