package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/config"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

// maxBody caps how much of an upstream response is read.
const maxBody = 1 << 20

// Client fetches the latest temperature from one upstream feed. Fetch never
// returns an error: every failure is reported as FeedResult{Success: false}.
type Client interface {
	Name() types.Source
	Fetch(ctx context.Context) types.FeedResult
}

// New builds the client selected by cfg.FeedSource.
func New(cfg config.Config, logger *slog.Logger) (Client, error) {
	hc := &http.Client{Timeout: cfg.FeedTimeout}
	switch types.Source(cfg.FeedSource) {
	case types.SourceThingSpeak:
		return NewThingSpeak(ThingSpeakOptions{
			BaseURL:   cfg.ThingSpeakBaseURL,
			ChannelID: cfg.ThingSpeakChannelID,
			Field:     cfg.ThingSpeakField,
			APIKey:    cfg.ThingSpeakReadAPIKey,
			Timeout:   cfg.FeedTimeout,
		}, hc, logger), nil
	case types.SourceFirebase:
		return NewFirebase(FirebaseOptions{
			DatabaseURL: cfg.FirebaseDatabaseURL,
			DeviceID:    cfg.FirebaseDeviceID,
			Timeout:     cfg.FeedTimeout,
		}, hc, logger), nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.FeedSource)
	}
}

// fetchFunc does the source-specific work; it may return an error or panic.
type fetchFunc func(ctx context.Context) (types.FeedResult, error)

// guard runs fn under a deadline and converts errors and panics into a
// failed FeedResult tagged with src.
func guard(ctx context.Context, src types.Source, timeout time.Duration, logger *slog.Logger, fn fetchFunc) (res types.FeedResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("feed fetch panicked", "source", src, "panic", r)
			res = failed(src, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := fn(ctx)
	if err != nil {
		logger.Warn("feed fetch failed", "source", src, "error", err)
		return failed(src, err.Error())
	}
	res.Source = src
	return res
}

func failed(src types.Source, msg string) types.FeedResult {
	return types.FeedResult{Success: false, Message: msg, Source: src}
}

// getJSON performs a GET and decodes a JSON object body. Numbers are kept as
// json.Number so callers decide how to interpret them.
func getJSON(ctx context.Context, hc *http.Client, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("close feed response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("api request failed: status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("empty response")
	}
	return out, nil
}

// toFloat accepts a JSON number or a numeric string.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Float64()
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric value %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected value type %T", v)
	}
}
