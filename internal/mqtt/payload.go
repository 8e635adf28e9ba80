package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

// Payload is the JSON body published for one stored reading.
type Payload struct {
	Date        string  `json:"date"`
	Slot        string  `json:"slot"`
	Temperature float64 `json:"temperature"`
	Source      string  `json:"source"`
	RecordedAt  string  `json:"recorded_at,omitempty"`
}

// Topic returns {prefix}/readings/{slot}.
func Topic(prefix string, slot types.Slot) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return fmt.Sprintf("readings/%s", slot)
	}
	return fmt.Sprintf("%s/readings/%s", prefix, slot)
}

func FormatPayload(r types.Reading) ([]byte, error) {
	p := Payload{
		Date:        r.Date,
		Slot:        string(r.Slot),
		Temperature: r.Temperature,
		Source:      string(r.Source),
	}
	if !r.CreatedAt.IsZero() {
		p.RecordedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}
