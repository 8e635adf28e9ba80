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

type ThingSpeakOptions struct {
	BaseURL   string
	ChannelID string
	Field     string
	APIKey    string
	Timeout   time.Duration
}

// ThingSpeak reads the last entry of one channel field.
type ThingSpeak struct {
	opts   ThingSpeakOptions
	hc     *http.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewThingSpeak(opts ThingSpeakOptions, hc *http.Client, logger *slog.Logger) *ThingSpeak {
	if opts.Field == "" {
		opts.Field = "field1"
	}
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &ThingSpeak{
		opts:   opts,
		hc:     hc,
		logger: logger.With("component", "feed", "source", types.SourceThingSpeak),
		now:    time.Now,
	}
}

func (c *ThingSpeak) Name() types.Source { return types.SourceThingSpeak }

func (c *ThingSpeak) Fetch(ctx context.Context) types.FeedResult {
	return guard(ctx, types.SourceThingSpeak, c.opts.Timeout, c.logger, c.fetch)
}

func (c *ThingSpeak) endpoint() string {
	u := fmt.Sprintf("%s/channels/%s/fields/%s/last.json",
		c.opts.BaseURL, url.PathEscape(c.opts.ChannelID), url.PathEscape(c.opts.Field))
	if c.opts.APIKey != "" {
		u += "?" + url.Values{"api_key": {c.opts.APIKey}}.Encode()
	}
	return u
}

func (c *ThingSpeak) fetch(ctx context.Context) (types.FeedResult, error) {
	if c.opts.ChannelID == "" {
		return types.FeedResult{}, fmt.Errorf("thingspeak channel id not configured")
	}

	data, err := getJSON(ctx, c.hc, c.endpoint())
	if err != nil {
		return types.FeedResult{}, err
	}

	raw, ok := data[c.opts.Field]
	if !ok || raw == nil {
		return types.FeedResult{}, fmt.Errorf("no temperature data in response")
	}
	temp, err := toFloat(raw)
	if err != nil {
		return types.FeedResult{}, fmt.Errorf("invalid %s: %w", c.opts.Field, err)
	}

	ts := c.now()
	if s, ok := data["created_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			ts = parsed
		}
	}

	var entryID int64
	if n, ok := data["entry_id"].(json.Number); ok {
		entryID, _ = n.Int64()
	}

	c.logger.Info("thingspeak data fetched", "temperature", temp, "channel", c.opts.ChannelID)
	return types.FeedResult{
		Success:     true,
		Temperature: temp,
		Timestamp:   ts,
		Message:     "Data retrieved successfully",
		EntryID:     entryID,
	}, nil
}
