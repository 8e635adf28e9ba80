package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/scheduler"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	// SQLiteLogSQL routes every statement through the logging connector at debug level.
	SQLiteLogSQL bool

	// Location is the wall clock used for slot resolution and "today".
	Location *time.Location

	ScheduleTriggers    []scheduler.Trigger
	ScheduleEveryMinute bool

	FeedSource  string
	FeedTimeout time.Duration

	ThingSpeakBaseURL    string
	ThingSpeakChannelID  string
	ThingSpeakField      string
	ThingSpeakReadAPIKey string

	FirebaseDatabaseURL string
	FirebaseDeviceID    string

	TempMin float64
	TempMax float64

	// MQTTBroker empty disables publishing of stored readings.
	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	httpAddr := envOr("HTTP_ADDR", ":8080")

	driver := envOr("DB_DRIVER", "sqlite3")
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := envOr("SQLITE_PATH", "../dev/sqlite/suhu.db")

	maxOpenConnsStr := envOr("DB_MAX_OPEN_CONNS", "1")
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := envOr("DB_MAX_IDLE_CONNS", "1")
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := envOr("DB_CONN_MAX_LIFETIME", "0s")
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	logSQL, err := parseBool("DB_LOG_SQL", false)
	if err != nil {
		return Config{}, err
	}

	tzName := envOr("TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	everyMinute, err := parseBool("SCHEDULE_EVERY_MINUTE", false)
	if err != nil {
		return Config{}, err
	}

	scheduleStr := envOr("SCHEDULE_TIMES", "08:00,12:00,20:00")
	triggers, err := scheduler.ParseTriggers(scheduleStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SCHEDULE_TIMES %q: %w", scheduleStr, err)
	}
	// A trigger outside a collection hour would only ever produce off-schedule ticks.
	if !everyMinute {
		for _, tr := range triggers {
			if _, ok := types.ResolveSlot(tr.Hour); !ok {
				return Config{}, fmt.Errorf("invalid SCHEDULE_TIMES %q: %s is not a collection hour (allowed hours: 08, 12, 20)", scheduleStr, tr)
			}
		}
	}

	feedSource := strings.ToLower(envOr("FEED_SOURCE", "thingspeak"))
	switch feedSource {
	case "thingspeak", "firebase":
	default:
		return Config{}, fmt.Errorf("invalid FEED_SOURCE %q (allowed: thingspeak, firebase)", feedSource)
	}

	feedTimeoutStr := envOr("FEED_TIMEOUT", "10s")
	feedTimeout, err := time.ParseDuration(feedTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid FEED_TIMEOUT %q: %w", feedTimeoutStr, err)
	}
	if feedTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid FEED_TIMEOUT %q: must be > 0", feedTimeoutStr)
	}

	readKey := strings.TrimSpace(os.Getenv("THINGSPEAK_READ_API_KEY"))
	if readKey == "" {
		readKey = strings.TrimSpace(os.Getenv("THINGSPEAK_API_KEY"))
	}

	tempMinStr := envOr("TEMP_MIN", "15.0")
	tempMin, err := strconv.ParseFloat(tempMinStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TEMP_MIN %q: %w", tempMinStr, err)
	}
	tempMaxStr := envOr("TEMP_MAX", "30.0")
	tempMax, err := strconv.ParseFloat(tempMaxStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TEMP_MAX %q: %w", tempMaxStr, err)
	}
	if tempMin >= tempMax {
		return Config{}, fmt.Errorf("TEMP_MIN (%.1f) must be < TEMP_MAX (%.1f)", tempMin, tempMax)
	}

	mqttPortStr := envOr("MQTT_PORT", "1883")
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		SQLiteDriver:          driver,
		SQLiteDSN:             dsn,
		SQLitePath:            path,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogSQL:          logSQL,
		Location:              loc,
		ScheduleTriggers:      triggers,
		ScheduleEveryMinute:   everyMinute,
		FeedSource:            feedSource,
		FeedTimeout:           feedTimeout,
		ThingSpeakBaseURL:     strings.TrimRight(envOr("THINGSPEAK_BASE_URL", "https://api.thingspeak.com"), "/"),
		ThingSpeakChannelID:   strings.TrimSpace(os.Getenv("THINGSPEAK_CHANNEL_ID")),
		ThingSpeakField:       envOr("THINGSPEAK_FIELD", "field1"),
		ThingSpeakReadAPIKey:  readKey,
		FirebaseDatabaseURL:   strings.TrimRight(strings.TrimSpace(os.Getenv("FIREBASE_DATABASE_URL")), "/"),
		FirebaseDeviceID:      envOr("FIREBASE_DEVICE_ID", "Suhu"),
		TempMin:               tempMin,
		TempMax:               tempMax,
		MQTTBroker:            strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTPort:              mqttPort,
		MQTTClientID:          envOr("MQTT_CLIENT_ID", "suhu-server"),
		MQTTTopicPrefix:       strings.TrimRight(envOr("MQTT_TOPIC_PREFIX", "serverroom"), "/"),
	}, nil
}

// envOr returns the trimmed value of key, or def when unset or blank.
func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func parseBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
