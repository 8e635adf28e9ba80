package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/types"
)

// ErrFeedUnavailable is wrapped by every tick error caused by a failed feed fetch.
var ErrFeedUnavailable = errors.New("feed unavailable")

// ValidationError carries one message per rejected input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) empty() bool { return len(e.Fields) == 0 }

// DuplicateError reports that (Date, Slot) already holds a reading and the
// caller did not ask to overwrite it.
type DuplicateError struct {
	Date     string
	Slot     types.Slot
	Existing types.Reading
	Proposed float64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("reading for %s %s already exists (%.1f°C)", e.Date, e.Slot, e.Existing.Temperature)
}
