package mqtt

import (
	"context"
	"sync"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

// FakePublisher records published readings in memory.
type FakePublisher struct {
	Prefix       string
	PublishError error

	mu       sync.Mutex
	Readings []types.Reading
	Topics   []string
	Payloads [][]byte
}

func NewFakePublisher(prefix string) *FakePublisher {
	return &FakePublisher{Prefix: prefix}
}

func (f *FakePublisher) PublishReading(_ context.Context, r types.Reading) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(r)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Readings = append(f.Readings, r)
	f.Topics = append(f.Topics, Topic(f.Prefix, r.Slot))
	f.Payloads = append(f.Payloads, payload)
	return nil
}
