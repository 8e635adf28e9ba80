package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
const epochMillisThreshold = 1e12

type FirebaseOptions struct {
	DatabaseURL string
	DeviceID    string
	Timeout     time.Duration
}

// Firebase reads devices/{id}/last from a Realtime Database over REST.
type Firebase struct {
	opts   FirebaseOptions
	hc     *http.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewFirebase(opts FirebaseOptions, hc *http.Client, logger *slog.Logger) *Firebase {
	if opts.DeviceID == "" {
		opts.DeviceID = "Suhu"
	}
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Firebase{
		opts:   opts,
		hc:     hc,
		logger: logger.With("component", "feed", "source", types.SourceFirebase),
		now:    time.Now,
	}
}

func (c *Firebase) Name() types.Source { return types.SourceFirebase }

func (c *Firebase) Fetch(ctx context.Context) types.FeedResult {
	return guard(ctx, types.SourceFirebase, c.opts.Timeout, c.logger, c.fetch)
}

func (c *Firebase) fetch(ctx context.Context) (types.FeedResult, error) {
	if c.opts.DatabaseURL == "" {
		return types.FeedResult{}, fmt.Errorf("firebase database url not configured")
	}

	endpoint := fmt.Sprintf("%s/devices/%s/last.json", c.opts.DatabaseURL, url.PathEscape(c.opts.DeviceID))
	data, err := getJSON(ctx, c.hc, endpoint)
	if err != nil {
		return types.FeedResult{}, err
	}

	raw, ok := data["temperature"]
	if !ok || raw == nil {
		return types.FeedResult{}, fmt.Errorf("firebase data invalid: temperature missing")
	}
	temp, err := toFloat(raw)
	if err != nil {
		return types.FeedResult{}, fmt.Errorf("invalid temperature: %w", err)
	}

	ts := c.now()
	if n, ok := data["timestamp"].(json.Number); ok {
		if epoch, err := n.Float64(); err == nil && epoch > 0 {
			ts = fromEpoch(epoch)
		}
	}

	c.logger.Info("firebase data fetched", "temperature", temp, "device", c.opts.DeviceID)
	return types.FeedResult{
		Success:     true,
		Temperature: temp,
		Timestamp:   ts,
		Message:     "Data retrieved successfully",
	}, nil
}

func fromEpoch(v float64) time.Time {
	if v > epochMillisThreshold {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}
